package cache

import (
	"context"
	"sync"
	"time"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// cacheEntry represents a stored value with expiration
type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// InMemoryStatsCache implements StatsCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	entries   map[string]cacheEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStatsCache creates a new in-memory stats cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryStatsCache() *InMemoryStatsCache {
	cache := &InMemoryStatsCache{
		entries:  make(map[string]cacheEntry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached value for key. Expired entries are treated as
// misses and left for the cleanup loop.
func (c *InMemoryStatsCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return "", false, nil
	}
	if time.Now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores a value under key with a TTL
func (c *InMemoryStatsCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryStatsCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

// removeExpired removes all expired entries
func (c *InMemoryStatsCache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Close stops the cleanup goroutine
func (c *InMemoryStatsCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
	return nil
}

// Len returns the number of entries, including any not yet cleaned up
// (for testing/monitoring)
func (c *InMemoryStatsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryStatsCache implements StatsCache
var _ appreferral.StatsCache = (*InMemoryStatsCache)(nil)
