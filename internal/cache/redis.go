package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rannerhq/ranner/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds short-lived copies of plain offer-search responses.
// Multi-step workflows never read from it; fares drift too fast for a
// cached offer to be priced or seat-mapped safely.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetSearch(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key string, payload json.RawMessage) error {
	return c.client.Set(ctx, searchKey(key), []byte(payload), c.searchTTL).Err()
}

func searchKey(key string) string {
	return "cache:offers:search:" + key
}
