package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// RedisVisitCounter implements VisitCounter using Redis
// This is suitable for distributed deployments where multiple instances
// need to share traffic counts
type RedisVisitCounter struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisVisitCounter creates a new Redis-based visit counter
func NewRedisVisitCounter(cfg RedisConfig) (*RedisVisitCounter, error) {
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

	return &RedisVisitCounter{
		client:    client,
		keyPrefix: "visits:",
	}, nil
}

// NewRedisVisitCounterWithClient creates a counter with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisVisitCounterWithClient(client *redis.Client, keyPrefix string) *RedisVisitCounter {
	if keyPrefix == "" {
		keyPrefix = "visits:"
	}
	return &RedisVisitCounter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// RecordVisit counts one page view and remembers the visitor IP.
// Both writes go through a single pipeline round trip.
func (c *RedisVisitCounter) RecordVisit(ctx context.Context, ipAddress string) error {
	pipe := c.client.Pipeline()
	pipe.Incr(ctx, c.keyPrefix+"total")
	if ipAddress != "" {
		pipe.SAdd(ctx, c.keyPrefix+"ips", ipAddress)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// Totals returns the running page view count and the distinct visitor count
func (c *RedisVisitCounter) Totals(ctx context.Context) (int64, int64, error) {
	total, err := c.client.Get(ctx, c.keyPrefix+"total").Int64()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("failed to read visit total: %w", err)
	}

	unique, err := c.client.SCard(ctx, c.keyPrefix+"ips").Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read unique visitor count: %w", err)
	}

	return total, unique, nil
}

// Close closes the Redis client
func (c *RedisVisitCounter) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisVisitCounter) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisVisitCounter implements VisitCounter
var _ appreferral.VisitCounter = (*RedisVisitCounter)(nil)
