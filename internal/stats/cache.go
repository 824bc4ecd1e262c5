package stats

import (
	"sync"
	"time"
)

type cacheEntry struct {
	profile *Profile
	fetched time.Time
}

// cache holds successful fetch results for a fixed time-to-live to
// bound the external request rate. Stale entries are refetched by the
// caller, not actively evicted.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *cache) get(key string) (*Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.fetched) > c.ttl {
		return nil, false
	}
	return entry.profile, true
}

func (c *cache) put(key string, p *Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{profile: p, fetched: c.now()}
}
