package store

import (
	"context"
	"time"
)

// Composite pairs the OLTP store with the cache implementation into a
// single Port, the "persistence port over an OLTP store and a key-value
// cache" spec §4.4 describes as one abstraction even though they are two
// physical backends.
type Composite struct {
	*Postgres
	cache *RedisCache
}

func NewComposite(pg *Postgres, cache *RedisCache) *Composite {
	return &Composite{Postgres: pg, cache: cache}
}

func (c *Composite) CacheGet(ctx context.Context, key string) (string, bool, error) {
	return c.cache.CacheGet(ctx, key)
}

func (c *Composite) CacheSet(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.cache.CacheSet(ctx, key, value, ttl)
}

func (c *Composite) CacheInvalidatePattern(ctx context.Context, pattern string) error {
	return c.cache.CacheInvalidatePattern(ctx, pattern)
}

func (c *Composite) Close() error {
	pgErr := c.Postgres.Close()
	cacheErr := c.cache.Close()
	if pgErr != nil {
		return pgErr
	}
	return cacheErr
}

var _ Port = (*Composite)(nil)
