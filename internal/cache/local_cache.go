// Package cache provides the two-tier response cache: a local TTL map in
// front of an optional Redis instance.
package cache

import (
	"sync"
	"time"
)

type cacheItem struct {
	value      []byte
	expiration int64
}

// LocalCache is an in-process TTL cache bounded by item count
type LocalCache struct {
	items   map[string]cacheItem
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLocalCache starts a cache whose expired items are swept every interval
func NewLocalCache(ttl time.Duration, maxSize int, sweep time.Duration) *LocalCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	c := &LocalCache{
		items:   make(map[string]cacheItem),
		ttl:     ttl,
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}
	if sweep > 0 {
		go c.cleanup(sweep)
	}
	return c
}

// Get returns the value of key unless it is missing or expired
func (c *LocalCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || time.Now().UnixNano() > item.expiration {
		return nil, false
	}
	return item.value, true
}

// Set stores value under key. A full cache evicts the entry closest to expiry.
func (c *LocalCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		var oldest string
		var oldestExp int64
		for k, item := range c.items {
			if oldest == "" || item.expiration < oldestExp {
				oldest, oldestExp = k, item.expiration
			}
		}
		delete(c.items, oldest)
	}

	c.items[key] = cacheItem{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
}

// Delete removes key
func (c *LocalCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Size returns the number of stored items, expired ones included
func (c *LocalCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper
func (c *LocalCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *LocalCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *LocalCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixNano()
	for key, item := range c.items {
		if now > item.expiration {
			delete(c.items, key)
		}
	}
}
