package quote

import (
	"sync"
	"time"

	"github.com/tnammu/dividash/internal/domain/stock"
)

// Cache provides fast in-memory access to recent quotes
// All reads go through cache first (cache-aside pattern)
// Cache is updated on every successful fetch (write-through)
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]*stock.Quote // symbol → cached quote
	ttl    time.Duration

	// Metrics
	hits   int64
	misses int64
}

// NewCache creates a quote cache with the given freshness window
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		quotes: make(map[string]*stock.Quote),
		ttl:    ttl,
	}
}

// Get returns the cached quote for a symbol if it is still fresh.
// Returns nil on a miss or when the entry has aged out.
func (c *Cache) Get(symbol string) *stock.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.quotes[symbol]
	if !ok || cached.Age() > c.ttl {
		c.misses++
		return nil
	}

	c.hits++
	// Return copy to prevent external modification
	cp := *cached
	return &cp
}

// GetStale returns the cached quote regardless of age. Used as a last
// resort when every upstream source has failed.
func (c *Cache) GetStale(symbol string) *stock.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.quotes[symbol]
	if !ok {
		return nil
	}
	cp := *cached
	return &cp
}

// Set stores a quote in the cache
func (c *Cache) Set(q *stock.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *q
	c.quotes[q.Symbol] = &cp
}

// Remove drops a symbol from the cache
func (c *Cache) Remove(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.quotes, symbol)
}

// Clear drops all cached quotes and resets metrics
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes = make(map[string]*stock.Quote)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hitRate := float64(0)
	total := c.hits + c.misses
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Size:    len(c.quotes),
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: hitRate,
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"` // percentage
}
