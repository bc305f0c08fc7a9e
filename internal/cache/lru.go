package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMaxEntries bounds the memory cache when no capacity is configured
const DefaultMaxEntries = 1024

// LRU implements bounded in-memory caching with least-recently-used eviction.
// A single TTL applies to all entries; the per-call ttl passed to Set is ignored.
type LRU struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRU creates a memory cache holding at most maxEntries values.
// A ttl of 0 keeps entries until they are evicted by capacity.
func NewLRU(maxEntries int, ttl time.Duration) *LRU {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &LRU{
		lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
	}
}

// Get retrieves a value and marks it as recently used
func (c *LRU) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores a value, evicting the least recently used entry when full
func (c *LRU) Set(key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

// Delete removes a value from the cache
func (c *LRU) Delete(key string) error {
	c.lru.Remove(key)
	return nil
}

// Clear removes all values from the cache
func (c *LRU) Clear() error {
	c.lru.Purge()
	return nil
}

// Len returns the number of cached entries
func (c *LRU) Len() int {
	return c.lru.Len()
}
