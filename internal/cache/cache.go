// Package cache provides a redis-backed result cache with single-flight
// collapse of concurrent identical computations. A broken or absent redis
// never fails a request; the cache degrades to computing fresh.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"leadscout_backend/platform/logger"
)

// Cache stores JSON-encoded results under canonical keys with a TTL.
// Expiry is enforced by redis; a key past its TTL simply does not exist.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	log    *logger.Logger
}

// New connects to redis via a URL (redis://...). An empty URL disables the
// cache entirely; every Fetch computes fresh.
func New(redisURL string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	if redisURL == "" {
		return &Cache{ttl: ttl, log: log}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return &Cache{
		client: redis.NewClient(opt),
		ttl:    ttl,
		log:    log,
	}, nil
}

// NewWithClient wraps an existing redis client. Used by tests.
func NewWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

// Fetch returns the cached value for key, or runs compute and caches the
// result. Concurrent calls for the same key share one compute; the result
// travels through the flight as JSON so every caller decodes its own copy.
// Redis errors are logged and bypassed; compute errors return uncached.
func (c *Cache) Fetch(ctx context.Context, key string, dest interface{}, compute func(ctx context.Context) (interface{}, error)) error {
	if raw, ok := c.getRaw(ctx, key); ok {
		return json.Unmarshal(raw, dest)
	}

	shared, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another flight may have populated the key while we waited.
		if raw, ok := c.getRaw(ctx, key); ok {
			return raw, nil
		}

		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		c.setRaw(ctx, key, raw)
		return raw, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(shared.([]byte), dest)
}

// Invalidate removes a key. Missing keys and redis errors are non-fatal.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.CacheWarn("del", key, err)
	}
}

func (c *Cache) getRaw(ctx context.Context, key string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.CacheWarn("get", key, err)
		}
		return nil, false
	}
	return raw, true
}

func (c *Cache) setRaw(ctx context.Context, key string, raw []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.CacheWarn("set", key, err)
	}
}
