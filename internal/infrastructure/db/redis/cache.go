package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// DocumentCache keeps JSON copies of store reads for offline use.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = documentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

// Get decodes the cached value into dest, returning domain.ErrCacheMiss
// when nothing is stored.
func (c *DocumentCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (c *DocumentCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, cacheKey(key), raw, c.ttl).Err()
}

func (c *DocumentCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, cacheKey(key)).Err()
}
