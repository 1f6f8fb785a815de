package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/ruslat/internal/config"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("c", 3) // evicts b, a was used more recently
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_UpdateMovesToFront(t *testing.T) {
	c := NewLRU[string](2, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated")
	c.Set("c", "3")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", v)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	now = now.Add(30 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(30 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestLRU_MinimumCapacity(t *testing.T) {
	c := NewLRU[int](0, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](16, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := strconv.Itoa(j % 32)
				c.Set(key, i)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(8, time.Minute)

	_, ok, err := m.Get(ctx, "ivan")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "ivan", []string{"1", "2"}))
	ids, ok, err := m.Get(ctx, "ivan")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, ids)

	require.NoError(t, m.Set(ctx, "none", []string{}))
	ids, ok, err = m.Get(ctx, "none")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ids)
	assert.Equal(t, 2, m.Len())
}

func TestNew(t *testing.T) {
	c, err := New(&config.ClientConfig{CacheBackend: "memory", CacheSize: 4}, &config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(&config.ClientConfig{CacheBackend: "memcached"}, &config.RedisConfig{})
	assert.Error(t, err)
}
