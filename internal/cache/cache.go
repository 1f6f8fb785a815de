// Package cache stores page-lookup results so repeated queries skip the server.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/ruslat/internal/config"
)

// Cache maps a normalized query to the ids the server returned for it.
type Cache interface {
	// Get returns the cached ids and whether the key was present.
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, ids []string) error
}

// New builds the cache backend named in cfg.
func New(cfg *config.ClientConfig, redisCfg *config.RedisConfig) (Cache, error) {
	switch cfg.CacheBackend {
	case "", "memory":
		return NewMemory(cfg.CacheSize, cfg.CacheTTL), nil
	case "redis":
		return NewRedis(RedisOptions{
			Addr:      redisCfg.Addr,
			Password:  redisCfg.Password,
			DB:        redisCfg.DB,
			Namespace: redisCfg.Namespace,
			TTL:       cfg.CacheTTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// Memory is an in-process Cache backed by an LRU.
type Memory struct {
	lru *LRU[[]string]
}

// NewMemory creates a Memory cache holding up to size entries for ttl each.
// A non-positive ttl keeps entries until they are evicted.
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: NewLRU[[]string](size, ttl)}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]string, bool, error) {
	ids, ok := m.lru.Get(key)
	return ids, ok, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, ids []string) error {
	m.lru.Set(key, ids)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}
