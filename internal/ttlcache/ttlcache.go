// Package ttlcache provides a small in-memory key/value cache with per-entry
// expiry. It backs the catalog request dispatcher and the sports aggregator,
// replacing repeated outbound HTTP calls within the TTL window.
package ttlcache

import (
	"sync"
	"time"
)

// sweepThreshold is the entry count at which Set triggers a full sweep of
// expired entries. The sweep only bounds memory; Get and Has re-check expiry
// on every read, so correctness never depends on sweep timing.
const sweepThreshold = 100

type entry struct {
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache. The zero value is not usable; construct
// with New.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a cache whose Set uses defaultTTL for expiry. A non-positive
// defaultTTL falls back to 5 minutes.
func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Set stores value under key with the default TTL, overwriting any existing
// entry for key.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry{value: value, storedAt: now, expiresAt: now.Add(ttl)}
	if len(c.entries) > sweepThreshold {
		c.sweepLocked(now)
	}
}

// Get returns the value stored under key, or ok=false when the key is absent
// or expired. An entry is still live at exactly storedAt+ttl and expires the
// instant after. An expired entry is evicted on read. A miss is a normal
// outcome, not an error.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key without returning it.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Delete removes the entry for key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetNowFunc overrides the cache's clock. Tests use this to step time past
// entry expiries without sleeping.
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Cache) sweepLocked(now time.Time) {
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
