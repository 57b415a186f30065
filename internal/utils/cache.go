package utils

import (
	"log"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 500

// CacheItem wraps a value with its expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// GlobalCache is an in-process LRU whose entries carry a TTL.
type GlobalCache struct {
	lruCache *lru.Cache[string, CacheItem]
	now      func() time.Time
}

var (
	cacheInstance *GlobalCache
	cacheOnce     sync.Once
)

// NewCache creates a cache holding at most size entries.
func NewCache(size int) *GlobalCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	return &GlobalCache{lruCache: l, now: time.Now}
}

// InitCache sets the size of the process-wide cache. Only the first call has effect.
func InitCache(size int) *GlobalCache {
	cacheOnce.Do(func() {
		cacheInstance = NewCache(size)
	})
	return cacheInstance
}

// Set stores value for ttl.
func (c *GlobalCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get returns nil when the key is missing or expired.
func (c *GlobalCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Has reports whether key holds an unexpired entry.
func (c *GlobalCache) Has(key string) bool {
	return c.Get(key) != nil
}

// Delete removes key.
func (c *GlobalCache) Delete(key string) {
	c.lruCache.Remove(key)
}

// DeletePrefix removes every key starting with prefix.
func (c *GlobalCache) DeletePrefix(prefix string) {
	for _, key := range c.lruCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lruCache.Remove(key)
		}
	}
}

// Purge drops every entry.
func (c *GlobalCache) Purge() {
	c.lruCache.Purge()
}
