package notion

import (
	"sync"
	"time"
)

// Cache is a single-slot TTL cache. It is not partitioned by credential:
// the owner must call Invalidate on every credential change, otherwise
// results for the old credential could be served after rotation.
type Cache[T any] struct {
	mu        sync.Mutex
	value     T
	expiresAt time.Time
	filled    bool
	ttl       time.Duration
	now       func() time.Time
}

// NewCache creates an empty cache with the given TTL.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value when present and unexpired.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled || !c.now().Before(c.expiresAt) {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Put replaces the slot with value, valid for one TTL from now.
func (c *Cache[T]) Put(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.expiresAt = c.now().Add(c.ttl)
	c.filled = true
}

// Invalidate clears the slot unconditionally.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.filled = false
}
