package distance

import (
	"context"
	"sync"
	"sync/atomic"
)

// Cache memoizes resolved distances for unordered city pairs.
//
// Store keeps the first value written for a pair and returns the value that
// is effectively cached, so a resolved pair never changes for the session.
type Cache interface {
	Get(ctx context.Context, p Pair) (int, bool, error)
	Store(ctx context.Context, p Pair, distance int) (int, error)
}

// MemoryCache is an in-process Cache. It's safe for concurrent use and never
// evicts.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[Pair]int

	gets atomic.Int64
	hits atomic.Int64
	puts atomic.Int64
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[Pair]int)}
}

func (c *MemoryCache) Get(_ context.Context, p Pair) (int, bool, error) {
	c.mu.RLock()
	d, ok := c.m[p]
	c.mu.RUnlock()

	c.gets.Add(1)
	if ok {
		c.hits.Add(1)
	}
	return d, ok, nil
}

func (c *MemoryCache) Store(_ context.Context, p Pair, distance int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.m[p]; ok {
		return existing, nil
	}
	c.m[p] = distance
	c.puts.Add(1)
	return distance, nil
}

// Len returns the number of cached pairs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Stats returns (gets, hits, puts).
func (c *MemoryCache) Stats() (gets, hits, puts int) {
	return int(c.gets.Load()), int(c.hits.Load()), int(c.puts.Load())
}
