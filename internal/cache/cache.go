package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jengzang/riskdash-backend/internal/observability"
)

// Cache chains the local tier with an optional Redis tier. A nil *Cache
// is valid and caches nothing.
type Cache struct {
	local *LocalCache
	redis *RedisStore
}

// New creates a cache; redis may be nil
func New(local *LocalCache, redis *RedisStore) *Cache {
	return &Cache{local: local, redis: redis}
}

// Close stops the local sweeper and closes Redis
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	c.local.Close()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	if b, ok := c.local.Get(key); ok {
		observability.CacheLookups.WithLabelValues("local", "hit").Inc()
		return b, true
	}
	observability.CacheLookups.WithLabelValues("local", "miss").Inc()

	if c.redis == nil {
		return nil, false
	}
	b, found, err := c.redis.Get(ctx, key)
	if err != nil {
		slog.Warn("Redis cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		observability.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}
	observability.CacheLookups.WithLabelValues("redis", "hit").Inc()
	c.local.Set(key, b)
	return b, true
}

func (c *Cache) store(ctx context.Context, key string, b []byte) {
	c.local.Set(key, b)
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, b); err != nil {
		slog.Warn("Redis cache write failed", "key", key, "error", err)
	}
}

// GetOrLoad returns the cached value of key or computes it with load.
// Errors from load are returned and never cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	if b, ok := c.lookup(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		slog.Warn("Discarding undecodable cache entry", "key", key)
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Value not cacheable", "key", key, "error", err)
		return v, nil
	}
	c.store(ctx, key, b)
	return v, nil
}
