package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultLRUCacheSize is the default size for the LRU cache.
	DefaultLRUCacheSize = 10000
	// DefaultLRUCacheTTL is the upper bound on how long the memory tier keeps an entry.
	// Shorter per-entry expirations are enforced through Entry.ExpiresAt.
	DefaultLRUCacheTTL = 1 * time.Hour
)

// LRUCache is the memory tier. Lookups never block on I/O.
type LRUCache struct {
	lru *expirable.LRU[string, *Entry]
}

// NewLRUCache creates the memory tier.
// If size is 0 or negative, DefaultLRUCacheSize is used; a non-positive ttl uses DefaultLRUCacheTTL.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = DefaultLRUCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultLRUCacheTTL
	}

	return &LRUCache{
		lru: expirable.NewLRU[string, *Entry](size, nil, ttl),
	}
}

func (c *LRUCache) Get(_ context.Context, key string, requiredModelVersion uint16) (*Entry, error) {
	item, found := c.lru.Get(key)
	if !found {
		return nil, nil
	}

	if !item.usable(requiredModelVersion) {
		if item.Expired(time.Now()) {
			c.lru.Remove(key)
		}
		return nil, nil
	}

	return item, nil
}

// MSet stores values. The per-call ttl is carried by each entry's ExpiresAt, the
// LRU-wide ttl only bounds residency.
func (c *LRUCache) MSet(_ context.Context, values map[string]*Entry, _ time.Duration) error {
	for k, v := range values {
		c.lru.Add(k, v)
	}

	return nil
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}

var _ Provider = (*LRUCache)(nil)
