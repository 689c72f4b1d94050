// Package lru wraps hashicorp/golang-lru into the process-local L1 tier
// of the cache layer (C6), fronting the Redis L2 tier with entries that
// each carry a wall-clock expiry time; an expired entry is dropped when
// it is next read.
package lru

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry pairs a cached value with the wall-clock time it should stop
// being served from L1 (it may still be valid in L2).
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a fixed-capacity, per-entry-TTL in-process cache.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	inner *lru.Cache[K, entry[V]]
}

// New creates a Cache with the given entry capacity. size must be > 0.
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	inner, err := lru.New[K, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{inner: inner}, nil
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.inner.Get(key)
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.inner.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Add inserts or replaces the value for key with the given TTL.
func (c *Cache[K, V]) Add(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inner.Add(key, entry[V]{value: value, expiresAt: time.Now().Add(ttl)})
}

// Remove evicts key, if present.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Remove(key)
}

// Keys returns a snapshot of every key currently resident, expired or not.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Keys()
}

// Len returns the number of entries currently resident (including any
// not-yet-reaped expired entries).
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}

// Purge evicts every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
}
