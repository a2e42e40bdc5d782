// Package cache wraps idempotent operations in a content-addressed, time-expiring cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// DefaultTTL is six 30-day months.
const DefaultTTL = 6 * 30 * 24 * time.Hour

// Cache looks results up in a CacheStore before computing them.
// Reads fail open and writes are best effort: a broken store never fails a call.
type Cache struct {
	store     repository.CacheStore
	namespace string
	ttl       time.Duration
	group     singleflight.Group
	log       *zap.SugaredLogger
}

// New creates a Cache. Empty namespace and zero ttl select the defaults.
func New(store repository.CacheStore, namespace string, ttl time.Duration, log *zap.SugaredLogger) *Cache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Cache{store: store, namespace: namespace, ttl: ttl, log: log.Named("cache")}
}

// Key derives the key Do would use for the same arguments.
func (c *Cache) Key(op string, params []Param, body any) (string, error) {
	return Key(c.namespace, op, params, body)
}

// Do returns the cached value for (op, params, body) or computes it with fn.
// A hit is returned as stored, without refreshing its expiry. Concurrent misses
// for the same key inside this process share one call to fn; fn receives the key
// and a context that is not cancelled when the first caller goes away.
func Do[T any](ctx context.Context, c *Cache, op string, params []Param, body any, fn func(ctx context.Context, key string) (T, error)) (T, error) {
	var zero T

	key, err := c.Key(op, params, body)
	if err != nil {
		return zero, err
	}

	if v, ok := lookup[T](ctx, c, key); ok {
		return v, nil
	}

	res, err, shared := c.group.Do(key, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		v, err := fn(detached, key)
		if err != nil {
			return nil, err
		}
		c.put(detached, key, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		c.log.Debugw("Shared in-flight result", "key", key)
	}
	return res.(T), nil
}

func lookup[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	raw, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, repository.ErrCacheMiss):
		c.log.Debugw("Cache miss", "key", key)
		return v, false
	case err != nil:
		c.log.Warnw("Cache read failed, computing fresh result", "key", key, "store", c.store.Name(), "error", err)
		return v, false
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		c.log.Warnw("Cached value is corrupt, computing fresh result", "key", key, "error", err)
		var zero T
		return zero, false
	}
	c.log.Debugw("Cache hit", "key", key)
	return v, true
}

func (c *Cache) put(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warnw("Failed to encode result for cache", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warnw("Cache write failed", "key", key, "store", c.store.Name(), "error", err)
	}
}
