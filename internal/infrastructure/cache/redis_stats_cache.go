package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// RedisStatsCache implements StatsCache using Redis so that computed
// aggregates are shared across instances
type RedisStatsCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStatsCache creates a new Redis-based stats cache
func NewRedisStatsCache(cfg RedisConfig) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStatsCache{
		client:    client,
		keyPrefix: "cache:",
	}, nil
}

// NewRedisStatsCacheWithClient creates a cache with an existing Redis client
func NewRedisStatsCacheWithClient(client *redis.Client, keyPrefix string) *RedisStatsCache {
	if keyPrefix == "" {
		keyPrefix = "cache:"
	}
	return &RedisStatsCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached value for key. A missing key is not an error;
// it is reported through the second return value.
func (c *RedisStatsCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

// Set stores a value under key with a TTL
func (c *RedisStatsCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

// Ensure RedisStatsCache implements StatsCache
var _ appreferral.StatsCache = (*RedisStatsCache)(nil)
