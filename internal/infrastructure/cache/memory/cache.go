package memory

import (
	"context"
	"sync"

	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
)

var _ output.SummaryCache = (*Cache)(nil)

// Cache is an unbounded, session-scoped summary cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entity.CacheEntry
}

func New() *Cache {
	return &Cache{entries: make(map[string]entity.CacheEntry)}
}

func (c *Cache) Get(_ context.Context, url string) (entity.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	return e, ok
}

func (c *Cache) Put(_ context.Context, url string, entry entity.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; ok {
		return
	}
	c.entries[url] = entry
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
