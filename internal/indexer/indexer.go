// Package indexer imports user files into storage and refreshes the search engine.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/storage"
)

// Reloader rebuilds the in-memory indexes from storage.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Indexer loads user files into storage and triggers a reload after each import.
type Indexer struct {
	storage  storage.Storage
	reloader Reloader
	logger   *zap.Logger

	mu      sync.Mutex
	digests map[string]uint64
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file imported, unchanged file skipped).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer. reloader may be nil when nothing serves lookups
// from memory (the import command).
func NewIndexer(storage storage.Storage, reloader Reloader, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		storage:  storage,
		reloader: reloader,
		logger:   zap.NewNop(),
		digests:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Result describes one import.
type Result struct {
	Path    string `json:"path"`
	Users   int    `json:"users"`
	Skipped bool   `json:"skipped"`
}

// ImportFile replaces the stored users with the contents of path and reloads
// the engine. A file whose contents have not changed since the last import is
// skipped.
func (idx *Indexer) ImportFile(ctx context.Context, path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if !extensionAllowed(filepath.Ext(absPath), storage.SupportedExtensions) {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedFormat, filepath.Ext(absPath))
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	digest := xxhash.Sum64(data)
	if idx.unchanged(absPath, digest) {
		idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		return &Result{Path: absPath, Skipped: true}, nil
	}

	users, err := storage.LoadFile(absPath)
	if err != nil {
		return nil, err
	}
	if err := idx.storage.ReplaceUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to store users: %w", err)
	}
	if idx.reloader != nil {
		if err := idx.reloader.Reload(ctx); err != nil {
			return nil, err
		}
	}
	idx.remember(absPath, digest)
	idx.logger.Info("users file imported", zap.String("path", absPath), zap.Int("users", len(users)))
	return &Result{Path: absPath, Users: len(users)}, nil
}

// Forget drops the remembered digest for path so the next import always runs.
func (idx *Indexer) Forget(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	idx.mu.Lock()
	delete(idx.digests, absPath)
	idx.mu.Unlock()
}

func (idx *Indexer) unchanged(path string, digest uint64) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, ok := idx.digests[path]
	return ok && prev == digest
}

func (idx *Indexer) remember(path string, digest uint64) {
	idx.mu.Lock()
	idx.digests[path] = digest
	idx.mu.Unlock()
}

func extensionAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(ext)
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}
