package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	listCacheTTL     = 5 * time.Minute
	generationKey    = "catalog:gen"
	listKeyTemplate  = "catalog:%d:%s"
	generationExpiry = 24 * time.Hour
)

// ListCache caches serialized catalog browse pages. Invalidation bumps a
// generation counter instead of scanning keys; stale entries fall out via TTL.
type ListCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewListCache wraps the given Redis client. Cache failures are logged and
// treated as misses so Redis outages never break catalog reads.
func NewListCache(client *redis.Client, log zerolog.Logger) *ListCache {
	return &ListCache{client: client, log: log}
}

func (c *ListCache) Get(ctx context.Context, key string) ([]byte, bool) {
	full, err := c.fullKey(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Msg("list cache generation lookup failed")
		return nil, false
	}

	payload, err := c.client.Get(ctx, full).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", full).Msg("list cache read failed")
		}
		return nil, false
	}
	return payload, true
}

func (c *ListCache) Set(ctx context.Context, key string, payload []byte) {
	full, err := c.fullKey(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Msg("list cache generation lookup failed")
		return
	}
	if err := c.client.Set(ctx, full, payload, listCacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", full).Msg("list cache write failed")
	}
}

// InvalidateAll bumps the generation counter so every previously cached page
// becomes unreachable at once.
func (c *ListCache) InvalidateAll(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("list cache invalidation failed")
		return
	}
	_ = c.client.Expire(ctx, generationKey, generationExpiry).Err()
}

func (c *ListCache) fullKey(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf(listKeyTemplate, gen, key), nil
}
