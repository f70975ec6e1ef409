// cmd/newsloom/cache.go
package main

import (
	"sync"
	"time"
)

// cacheItem is one entry with an expiration time
type cacheItem struct {
	value    interface{}
	expireAt time.Time
}

// Cache is a small in-memory TTL cache. The orchestrator uses it to throttle
// per-source feed fetches: a source fetched within the minimum interval
// serves its previous items instead of hitting the network again.
type Cache struct {
	items      map[string]cacheItem
	mutex      sync.RWMutex
	maxItems   int
	defaultTTL time.Duration
}

// NewCache creates a cache with the given default TTL and size cap
func NewCache(defaultTTL time.Duration, maxItems int) *Cache {
	return &Cache{
		items:      make(map[string]cacheItem),
		maxItems:   maxItems,
		defaultTTL: defaultTTL,
	}
}

// Set stores a value under the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with an explicit TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = cacheItem{
		value:    value,
		expireAt: time.Now().Add(ttl),
	}

	if c.maxItems > 0 && len(c.items) > c.maxItems {
		c.evictOldest()
	}
}

// Get retrieves a value; expired entries read as missing
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expireAt) {
		return nil, false
	}
	return item.value, true
}

// Delete removes an entry
func (c *Cache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// evictOldest drops the entry closest to expiry; callers hold the lock
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.expireAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.expireAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
