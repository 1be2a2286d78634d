package cache

import (
	"fmt"

	"go.uber.org/zap"

	appreferral "github.com/worldref/backend/internal/application/referral"
	"github.com/worldref/backend/internal/infrastructure/config"
)

// CacheFactory creates visit counters and stats caches based on configuration
type CacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CacheFactoryOption is a functional option for configuring the factory
type CacheFactoryOption func(*CacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CacheFactoryOption {
	return func(f *CacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory state when
// Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) CacheFactoryOption {
	return func(f *CacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCacheFactory creates a new factory
func NewCacheFactory(cfg config.RedisConfig, opts ...CacheFactoryOption) *CacheFactory {
	f := &CacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *CacheFactory) redisSettings() RedisConfig {
	return RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}
}

// CreateVisitCounter creates a visit counter, preferring Redis so traffic
// counts survive restarts and are shared across instances
func (f *CacheFactory) CreateVisitCounter() (appreferral.VisitCounter, error) {
	counter, err := NewRedisVisitCounter(f.redisSettings())
	if err == nil {
		f.logger.Info("using Redis visit counter")
		return counter, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for visit counting but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory visit counter. "+
		"Traffic counts will not be shared across instances and will reset on restart.",
		zap.Error(err),
	)
	return NewInMemoryVisitCounter(), nil
}

// CreateStatsCache creates a stats cache, preferring Redis so computed
// aggregates are shared across instances
func (f *CacheFactory) CreateStatsCache() (appreferral.StatsCache, error) {
	statsCache, err := NewRedisStatsCache(f.redisSettings())
	if err == nil {
		f.logger.Info("using Redis stats cache")
		return statsCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for stats caching but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stats cache.",
		zap.Error(err),
	)
	return NewInMemoryStatsCache(), nil
}
