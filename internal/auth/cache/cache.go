// Package cache is a read-through, fail-soft cache on Redis. It is purely an
// optimization: every operation degrades to a miss or a no-op when Redis is
// unreachable, so login and the rest of the auth workflow keep working off
// the authoritative store with the cache down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quayside/authd/pkg/slogx"
)

// DefaultTTL bounds how stale a cached user projection may get (24 hours).
const DefaultTTL = 24 * time.Hour

type Cache struct {
	rdb redis.UniversalClient
}

func New(rdb redis.UniversalClient) *Cache {
	return &Cache{rdb: rdb}
}

// Get unmarshals the value stored under key into dest and reports whether it
// was found. Backend errors are logged and reported as a miss; they never
// propagate to the caller.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slogx.FromContext(ctx).Warn("cache get failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry is as good as a miss; the store stays authoritative.
		slogx.FromContext(ctx).Warn("cache entry unmarshal failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// Set serializes value as JSON and stores it under key with the given TTL
// (DefaultTTL when ttl <= 0). Returns false on any failure, which callers
// are free to ignore: the next read simply falls back to the store.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		slogx.FromContext(ctx).Warn("cache value marshal failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}

	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		slogx.FromContext(ctx).Warn("cache set failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// Delete removes key. Fails soft like everything else here.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		slogx.FromContext(ctx).Warn("cache delete failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	return true
}
