package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/epiverse/bcrat/internal/domain"
)

// MemoryCache is an in-process ResultCache for deployments without Redis.
// Entries expire after a TTL so a long-running process cannot accumulate
// unbounded results.
type MemoryCache struct {
	entries *expirable.LRU[string, *domain.RiskResult]
}

// NewMemoryCache creates a MemoryCache holding at most size entries. A zero
// ttl disables expiry.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{
		entries: expirable.NewLRU[string, *domain.RiskResult](size, nil, ttl),
	}
}

// Get retrieves a cached result by key.
func (c *MemoryCache) Get(_ context.Context, key string) (*domain.RiskResult, bool, error) {
	result, ok := c.entries.Get(key)
	return result, ok, nil
}

// Set stores a result under key.
func (c *MemoryCache) Set(_ context.Context, key string, result *domain.RiskResult) error {
	c.entries.Add(key, result)
	return nil
}

// Len reports the current number of cached entries.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
