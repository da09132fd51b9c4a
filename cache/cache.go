// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"sync"
	"time"
)

// sweepThreshold bounds the entry map before expired entries are purged.
const sweepThreshold = 4096

// Cache is an in-process TTL cache for poll reads. Mutating handlers
// invalidate the affected keys so readers never serve a stale poll longer
// than one mutation, and the TTL bounds staleness across processes.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

type entry struct {
	value   interface{}
	expires time.Time
}

// New creates a cache whose entries live for ttl. A non-positive ttl
// disables the cache: Get always misses and Set is a no-op.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c.entries == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		c.Invalidate(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *Cache) Set(key string, value interface{}) {
	if c.entries == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= sweepThreshold {
		c.sweepLocked()
	}
	c.entries[key] = entry{value: value, expires: time.Now().Add(c.ttl)}
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(keys ...string) {
	if c.entries == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Flush removes every entry.
func (c *Cache) Flush() {
	if c.entries == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

func (c *Cache) sweepLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
		}
	}
}

// Key builders shared by the handlers that fill and invalidate the cache.

// ListKey is the cache key for a user's poll listing.
func ListKey(ownerID string) string {
	return "polls:owner:" + ownerID
}

// DetailKey is the cache key for a poll's detail view.
func DetailKey(pollID string) string {
	return "poll:" + pollID
}

// ResultsKey is the cache key for a poll's tallied results.
func ResultsKey(pollID string) string {
	return "results:" + pollID
}
