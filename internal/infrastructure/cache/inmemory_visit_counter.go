package cache

import (
	"context"
	"sync"

	appreferral "github.com/worldref/backend/internal/application/referral"
)

// InMemoryVisitCounter implements VisitCounter using in-process state
// This is suitable for single-instance deployments and testing
// WARNING: In-memory counters do not share state across process instances,
// which undercounts traffic in distributed deployments
type InMemoryVisitCounter struct {
	mu    sync.RWMutex
	total int64
	ips   map[string]struct{}
}

// NewInMemoryVisitCounter creates a new in-memory visit counter
func NewInMemoryVisitCounter() *InMemoryVisitCounter {
	return &InMemoryVisitCounter{
		ips: make(map[string]struct{}),
	}
}

// RecordVisit counts one page view and remembers the visitor IP
func (c *InMemoryVisitCounter) RecordVisit(ctx context.Context, ipAddress string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if ipAddress != "" {
		c.ips[ipAddress] = struct{}{}
	}
	return nil
}

// Totals returns the running page view count and the distinct visitor count
func (c *InMemoryVisitCounter) Totals(ctx context.Context) (int64, int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.total, int64(len(c.ips)), nil
}

// Ensure InMemoryVisitCounter implements VisitCounter
var _ appreferral.VisitCounter = (*InMemoryVisitCounter)(nil)
