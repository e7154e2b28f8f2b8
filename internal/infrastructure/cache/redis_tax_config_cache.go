package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradeops/backoffice/internal/domain/billing"
	"go.uber.org/zap"
)

// RedisTaxConfigCache implements TaxConfigCache using Redis.
// Suitable for distributed deployments where an invalidation on one instance
// must be visible to all of them.
type RedisTaxConfigCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTaxConfigCache creates a new Redis-backed tax config cache
func NewRedisTaxConfigCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisTaxConfigCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl == 0 {
		ttl = defaultTaxCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisTaxConfigCache{
		client:    client,
		keyPrefix: "tax:config:",
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisTaxConfigCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisTaxConfigCacheWithClient(client *redis.Client, ttl time.Duration) *RedisTaxConfigCache {
	if ttl == 0 {
		ttl = defaultTaxCacheTTL
	}
	return &RedisTaxConfigCache{
		client:    client,
		keyPrefix: "tax:config:",
		ttl:       ttl,
		logger:    zap.NewNop(),
	}
}

// Get returns the cached config for a code if present
func (c *RedisTaxConfigCache) Get(ctx context.Context, code string) (*billing.TaxConfig, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+code).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("tax config cache read failed", zap.String("code", code), zap.Error(err))
		}
		return nil, false
	}

	var cfg billing.TaxConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		c.logger.Warn("tax config cache entry corrupt, evicting",
			zap.String("code", code), zap.Error(err))
		c.client.Del(ctx, c.keyPrefix+code)
		return nil, false
	}
	return &cfg, true
}

// Set stores a config under its code with the configured TTL
func (c *RedisTaxConfigCache) Set(ctx context.Context, config *billing.TaxConfig) {
	data, err := json.Marshal(config)
	if err != nil {
		c.logger.Warn("tax config cache marshal failed",
			zap.String("code", config.Code), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.keyPrefix+config.Code, data, c.ttl).Err(); err != nil {
		c.logger.Warn("tax config cache write failed",
			zap.String("code", config.Code), zap.Error(err))
	}
}

// Invalidate evicts a code
func (c *RedisTaxConfigCache) Invalidate(ctx context.Context, code string) {
	if err := c.client.Del(ctx, c.keyPrefix+code).Err(); err != nil {
		c.logger.Warn("tax config cache invalidation failed",
			zap.String("code", code), zap.Error(err))
	}
}

// Close releases the Redis connection
func (c *RedisTaxConfigCache) Close() error {
	return c.client.Close()
}

// Ensure RedisTaxConfigCache implements TaxConfigCache
var _ TaxConfigCache = (*RedisTaxConfigCache)(nil)
