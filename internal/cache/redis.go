package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v8"
)

// RedisOptions holds Redis connection parameters for a shared cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Namespace prefixes every key so several deployments can share a server.
	Namespace string
	TTL       time.Duration
}

// Redis is a Cache shared between processes through a Redis server.
// All methods are safe for concurrent use.
type Redis struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedis connects to Redis and verifies connectivity with a PING.
func NewRedis(opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ns := opts.Namespace
	if ns == "" {
		ns = "ruslat"
	}
	return &Redis{client: client, namespace: ns, ttl: opts.TTL}, nil
}

// redisEntry is the stored value. Query guards against two queries whose keys collide.
type redisEntry struct {
	Query string   `json:"query"`
	IDs   []string `json:"ids"`
}

// Get implements Cache. A missing key is a miss, not an error.
func (r *Redis) Get(ctx context.Context, key string) ([]string, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return decodeEntry(data, key)
}

func decodeEntry(data []byte, query string) ([]string, bool, error) {
	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("redis get: corrupt entry: %w", err)
	}
	if e.Query != query {
		return nil, false, nil
	}
	if e.IDs == nil {
		e.IDs = []string{}
	}
	return e.IDs, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(redisEntry{Query: key, IDs: ids})
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// key derives the Redis key for query.
func (r *Redis) key(query string) string {
	return r.namespace + ":page:" + strconv.FormatUint(xxhash.Sum64String(query), 16)
}
