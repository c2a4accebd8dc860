// Package ttlcache is a small keyed cache whose entries expire after a fixed TTL.
// The clock is injected so expiry can be driven deterministically in tests.
package ttlcache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache holds values of type T keyed by string.
// Thread-safe with TTL-based expiration.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
}

type Option[T any] func(*Cache[T])

// WithClock overrides time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

func New[T any](ttl time.Duration, opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value if present and not yet expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache's TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithExpiry(key, value, c.now().Add(c.ttl))
}

// SetWithExpiry stores value with an explicit expiry, e.g. one derived from an
// upstream expires_in.
func (c *Cache[T]) SetWithExpiry(key string, value T, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{value: value, expiresAt: expiresAt}
	c.cleanupExpiredLocked(10)
}

// Delete drops key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// ExpiresAt reports when key expires; ok is false when absent.
func (c *Cache[T]) ExpiresAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.expiresAt, ok
}

// cleanupExpiredLocked removes up to maxCleanup expired entries.
// Must be called with lock held.
func (c *Cache[T]) cleanupExpiredLocked(maxCleanup int) {
	now := c.now()
	cleaned := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			cleaned++
			if cleaned >= maxCleanup {
				break
			}
		}
	}
}
