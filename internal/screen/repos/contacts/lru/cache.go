package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
)

// lookupCache is an LRU-backed implementation of contacts.LookupCache.
// It tracks basic metrics: hits, misses, and evictions.
type lookupCache struct {
	lru       *lru.Cache[string, bool]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache is a no-op LookupCache used when size <= 0.
type disabledCache struct{}

// New creates a LookupCache with the given capacity. If size <= 0, a
// disabled cache is returned that always misses and tracks no metrics.
func New(size int) (contacts.LookupCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	c := &lookupCache{capacity: size}
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ string, _ bool) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = cache
	return c, nil
}

// Get looks up a cached result by normalized identifier.
func (c *lookupCache) Get(id string) (bool, bool) {
	if found, ok := c.lru.Get(id); ok {
		c.hits.Add(1)
		return found, true
	}
	c.misses.Add(1)
	return false, false
}

// Put stores a lookup result.
func (c *lookupCache) Put(id string, found bool) {
	c.lru.Add(id, found)
}

// Len returns the number of entries in the cache.
func (c *lookupCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *lookupCache) Purge() { c.lru.Purge() }

// Stats returns a snapshot of the cache counters.
func (c *lookupCache) Stats() contacts.CacheStats {
	return contacts.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (d *disabledCache) Get(string) (bool, bool) { return false, false }

func (d *disabledCache) Put(string, bool) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() contacts.CacheStats { return contacts.CacheStats{} }

var _ contacts.LookupCache = (*lookupCache)(nil)
var _ contacts.LookupCache = (*disabledCache)(nil)
