package cache

import (
	"context"
	"sync"
)

// MemoryCache is an in-process LRU cache.
type MemoryCache struct {
	mu      sync.Mutex
	cache   map[string][]byte
	maxSize int
	order   []string // LRU order, least recently used first
	metrics Metrics
	hits    int64
	misses  int64
}

// NewMemoryCache creates a new memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1024
	}

	return &MemoryCache{
		cache:   make(map[string][]byte),
		maxSize: maxSize,
		order:   make([]string, 0, maxSize),
	}
}

// SetMetrics sets the metrics recorder for this cache.
func (c *MemoryCache) SetMetrics(metrics Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = metrics
}

// Get retrieves a value from cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.cache[key]
	if !ok {
		c.misses++
		if c.metrics != nil {
			c.metrics.RecordCacheMiss("memory")
		}
		return nil, false, nil
	}

	c.hits++
	if c.metrics != nil {
		c.metrics.RecordCacheHit("memory")
	}
	c.moveToEnd(key)

	// Return a copy to prevent external mutation
	return append([]byte(nil), value...), true, nil
}

// Set stores a value in cache.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	valueCopy := append([]byte(nil), value...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[key]; exists {
		c.cache[key] = valueCopy
		c.moveToEnd(key)
		return nil
	}

	// Evict if at capacity
	for len(c.cache) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}

	c.cache[key] = valueCopy
	c.order = append(c.order, key)
	return nil
}

// moveToEnd moves a key to the end of the LRU order (must hold lock).
func (c *MemoryCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

// Close clears the cache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]byte)
	c.order = c.order[:0]
	return nil
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:    len(c.cache),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// Stats holds cache statistics.
type Stats struct {
	Size    int   `json:"size"`
	MaxSize int   `json:"max_size"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
