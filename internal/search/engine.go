// Package search serves user lookups from an immutable in-memory snapshot
// that is rebuilt from storage and swapped atomically.
package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/match"
	"github.com/hyperjump/ruslat/internal/models"
	"github.com/hyperjump/ruslat/internal/storage"
)

// Snapshot is one loaded generation of users and their indexes. It is never
// modified after it is built.
type Snapshot struct {
	Users      []*models.User
	Candidates []match.Candidate
	Handles    *match.HandleIndex
	LoadedAt   time.Time

	byID map[string]*models.User
}

// User returns the user with the given id.
func (s *Snapshot) User(id string) (*models.User, bool) {
	u, ok := s.byID[id]
	return u, ok
}

// Engine answers name and page-handle lookups.
type Engine struct {
	storage storage.Storage
	config  *config.SearchConfig
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]
}

// NewEngine creates an engine with an empty snapshot. Call Reload to load users from storage.
// A nil logger disables logging.
func NewEngine(storage storage.Storage, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{storage: storage, config: cfg, logger: logger}
	e.Swap(nil)
	return e
}

// Reload reads every user from storage and swaps in a fresh snapshot.
func (e *Engine) Reload(ctx context.Context) error {
	users, err := e.storage.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	snap := e.Swap(users)
	e.logger.Info("users reloaded",
		zap.Int("users", len(snap.Users)),
		zap.Int("handles", snap.Handles.Len()),
	)
	return nil
}

// Swap builds a snapshot from users and makes it current. Readers holding the
// previous snapshot keep a consistent view.
func (e *Engine) Swap(users []*models.User) *Snapshot {
	snap := e.build(users)
	e.current.Store(snap)
	return snap
}

func (e *Engine) build(users []*models.User) *Snapshot {
	snap := &Snapshot{
		Users:      make([]*models.User, 0, len(users)),
		Candidates: make([]match.Candidate, 0, len(users)),
		LoadedAt:   time.Now(),
		byID:       make(map[string]*models.User, len(users)),
	}
	var handles []match.Handle
	for _, u := range users {
		if u == nil || u.ID == "" {
			continue
		}
		if _, dup := snap.byID[u.ID]; dup {
			continue
		}
		snap.byID[u.ID] = u
		snap.Users = append(snap.Users, u)
		snap.Candidates = append(snap.Candidates, match.NewCandidate(u.Name, u.ID))
		if u.HasPage() {
			handles = append(handles, match.Handle{Value: u.ID, Handle: u.Page})
		}
	}

	var opts []match.HandleOption
	if !e.config.HandleKeyboardOrDefault() {
		opts = append(opts, match.WithoutKeyboard())
	}
	snap.Handles = match.NewHandleIndex(handles, opts...)
	return snap
}

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// SearchByPage returns the ids of users whose page handle matches page, in
// stored order. A blank page yields match.ErrEmptyQuery.
func (e *Engine) SearchByPage(page string) ([]string, error) {
	ids, err := e.Snapshot().Handles.Lookup(page)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("page lookup", zap.String("page", page), zap.Int("matches", len(ids)))
	return ids, nil
}

// Search returns the users whose name matches every word of query. A blank
// query returns all users.
func (e *Engine) Search(query string) []*models.User {
	snap := e.Snapshot()
	q := match.ParseQuery(query)
	if q.Empty() {
		return snap.Users
	}
	matched := match.Filter(q, snap.Candidates, func(c match.Candidate) match.Index { return c.Index })
	users := make([]*models.User, 0, len(matched))
	for _, c := range matched {
		if u, ok := snap.User(c.Value); ok {
			users = append(users, u)
		}
	}
	return users
}

// Users returns all users of the current snapshot in stored order.
func (e *Engine) Users() []*models.User {
	return e.Snapshot().Users
}
