package resolver

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice_backend/platform/logger"
)

const cacheKeyPrefix = "resolver:persona:rut:"

// RedisCache maps normalized RUTs to CMS document ids. All operations are
// best-effort: a broken Redis degrades to cache misses, never to request
// failures.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCache) GetDocumentID(ctx context.Context, normalizedRUT string) (string, bool) {
	documentID, err := c.client.Get(ctx, cacheKeyPrefix+normalizedRUT).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.SideEffectFailed("resolver_cache_get", err)
		}
		return "", false
	}
	return documentID, documentID != ""
}

func (c *RedisCache) SetDocumentID(ctx context.Context, normalizedRUT, documentID string) {
	if err := c.client.Set(ctx, cacheKeyPrefix+normalizedRUT, documentID, c.ttl).Err(); err != nil {
		c.log.SideEffectFailed("resolver_cache_set", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, normalizedRUT string) {
	if err := c.client.Del(ctx, cacheKeyPrefix+normalizedRUT).Err(); err != nil {
		c.log.SideEffectFailed("resolver_cache_del", err)
	}
}
