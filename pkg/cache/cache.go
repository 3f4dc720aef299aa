// Package cache provides a small Redis-backed read cache for expensive
// aggregate queries. A nil *Cache is valid and disables caching.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inelac/inventory-backend/pkg/config"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// Cache wraps a Redis client with JSON get/set helpers.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// New creates a cache from configuration. Returns nil (cache disabled)
// when no Redis address is configured.
func New(cfg *config.RedisConfig, log *logger.Logger) *Cache {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Cache{
		client: client,
		ttl:    cfg.TTL,
		logger: log,
	}
}

// Get unmarshals the cached value for key into v.
// Returns false on miss, error, or when caching is disabled.
func (c *Cache) Get(ctx context.Context, key string, v interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, ignoring")
		return false
	}

	return true
}

// Set stores v under key with the configured TTL. Failures are logged,
// never surfaced: the cache is an optimization only.
func (c *Cache) Set(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate removes a key. Used after mutations that change aggregates.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Health reports the cache connection status.
func (c *Cache) Health(ctx context.Context) map[string]string {
	if c == nil {
		return map[string]string{"status": "disabled"}
	}

	status := map[string]string{"status": "up"}
	if err := c.client.Ping(ctx).Err(); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}
	return status
}
