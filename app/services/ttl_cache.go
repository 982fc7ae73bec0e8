package services

import (
	"sync"
	"time"

	"github.com/goldfolio/goldfolio-api/utils"
)

// TTLCache memoizes a single value until it expires.
// Concurrent misses are not coalesced; each caller may refresh the value.
type TTLCache[T any] struct {
	mu        sync.RWMutex
	value     T
	expiresAt time.Time
	set       bool
	ttl       time.Duration
	clock     utils.Clock
}

// NewTTLCache creates an empty cache. A nil clock uses the wall clock.
func NewTTLCache[T any](ttl time.Duration, clock utils.Clock) *TTLCache[T] {
	if clock == nil {
		clock = utils.UTCNow
	}
	return &TTLCache[T]{ttl: ttl, clock: clock}
}

// Get returns the value when it is present and not expired
func (c *TTLCache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	if !c.set || !c.clock().Before(c.expiresAt) {
		return zero, false
	}
	return c.value, true
}

// Set stores the value for one TTL from now
func (c *TTLCache[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.expiresAt = c.clock().Add(c.ttl)
	c.set = true
}

// ExpiresAt returns the expiry of the stored value and whether one is stored
func (c *TTLCache[T]) ExpiresAt() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt, c.set
}

// Clear drops the stored value
func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.expiresAt = time.Time{}
	c.set = false
}
