package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisCache implements the cache half of Port, mirroring the teacher's
// api-gateway redis_cache.go middleware: deterministic key prefixes and a
// caller-supplied TTL per entry (spec §5: news-by-id 1h, candidate lists
// 5min, config values 1min).
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func OpenRedis(cfg RedisConfig, logger *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Close() error { return c.client.Close() }

func (c *RedisCache) CacheGet(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, true, nil
}

func (c *RedisCache) CacheSet(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// CacheInvalidatePattern deletes every key matching a prefix-glob pattern
// (e.g. "news:*", "candidates:scan:*"), the same prefix-keyed convention the
// teacher's generateCacheKey uses.
func (c *RedisCache) CacheInvalidatePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", pattern, err)
	}
	return nil
}

// Cache key builders whose prefixes match the invalidation glob patterns
// above. No other package in this module calls them.
func NewsCacheKey(fingerprint string) string        { return "news:" + fingerprint }
func CandidatesCacheKey(scanID string) string        { return "candidates:scan:" + scanID }
func ConfigCacheKey(key string) string               { return "config:" + key }

const (
	NewsCacheTTL      = time.Hour
	CandidatesCacheTTL = 5 * time.Minute
	ConfigCacheTTL     = time.Minute
)
