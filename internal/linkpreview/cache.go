package linkpreview

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/koltech/wallline/internal/domain"
)

// Cache stores resolved metadata per normalized URL so repeat lookups skip
// the outbound fetch.
type Cache interface {
	Get(ctx context.Context, url string) (*domain.LinkMetadata, bool)
	Set(ctx context.Context, url string, meta *domain.LinkMetadata)
}

const cacheKeyPrefix = "linkpreview:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, url string) (*domain.LinkMetadata, bool) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+url).Result()
	if err != nil {
		// redis.Nil je cache miss; ostale greske tretiramo isto
		return nil, false
	}
	var meta domain.LinkMetadata
	if err := json.Unmarshal([]byte(val), &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

func (c *RedisCache) Set(ctx context.Context, url string, meta *domain.LinkMetadata) {
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	// Best-effort: cache write failure nikad ne rusi resolve
	c.client.Set(ctx, cacheKeyPrefix+url, data, c.ttl)
}
