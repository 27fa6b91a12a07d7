package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/pkg/signal"
)

// RedisCache shares vision assessments between service replicas.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a cache over client. A ttl <= 0 defaults to 24h.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl, logger: logging.New("cache")}
}

func (c *RedisCache) key(k string) string {
	return "microscan:assessment:" + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (signal.Assessment, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return signal.Assessment{}, false
	}
	if err != nil {
		c.logger.Warn("redis get failed", "error", err)
		return signal.Assessment{}, false
	}

	var a signal.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		c.logger.Warn("dropping unreadable cached assessment", "error", err)
		return signal.Assessment{}, false
	}
	return a, true
}

func (c *RedisCache) Put(ctx context.Context, key string, a signal.Assessment) {
	data, err := json.Marshal(a)
	if err != nil {
		c.logger.Warn("encoding assessment for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "error", err)
	}
}
