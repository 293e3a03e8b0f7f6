// Package cache provides ResultCache implementations backing the risk
// service: a Redis-backed distributed cache and an in-process expirable one.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/domain"
)

const redisKeyPrefix = "bcrat:result:"

// RedisCache stores serialized risk results in Redis. Results are
// deterministic for a given profile, so the TTL only bounds memory, it never
// protects against staleness.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisCache connects to Redis using the given URL
// (redis://host:port/db) and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, cfg *domain.CacheConfig, logger *logrus.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = cfg.MaxRetries
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	logger.WithField("redis_url", cfg.RedisURL).Info("Connected to Redis result cache")

	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get retrieves a cached result by key. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.RiskResult, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.RiskResult
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logger.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		c.client.Del(ctx, redisKeyPrefix+key)
		return nil, false, nil
	}
	return &result, true, nil
}

// Set stores a result under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, result *domain.RiskResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
