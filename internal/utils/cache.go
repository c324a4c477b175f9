package utils

import (
	"os"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheExpiration is how long an entry lives without being stored again
const DefaultCacheExpiration = 30 * time.Minute

// DefaultCacheCleanupInterval is how often expired entries are purged
const DefaultCacheCleanupInterval = time.Hour

// CacheItem represents a cached item with metadata for invalidation
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// Cache provides a typed cache over go-cache with optional file-based invalidation
type Cache[K ~string, V any] struct {
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache with the default expiration
func NewCache[K ~string, V any]() *Cache[K, V] {
	return NewCacheWithExpiration[K, V](DefaultCacheExpiration, DefaultCacheCleanupInterval)
}

// NewCacheWithExpiration creates a cache whose entries expire after ttl.
// A negative ttl keeps entries until deleted.
func NewCacheWithExpiration[K ~string, V any](ttl, cleanup time.Duration) *Cache[K, V] {
	return &Cache[K, V]{store: gocache.New(ttl, cleanup)}
}

func (c *Cache[K, V]) item(key K) (*CacheItem[V], bool) {
	raw, found := c.store.Get(string(key))
	if !found {
		return nil, false
	}
	item, ok := raw.(*CacheItem[V])
	return item, ok
}

// Get retrieves an item from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if item, ok := c.item(key); ok {
		c.hits.Add(1)
		return item.Value, true
	}

	c.misses.Add(1)
	var zero V
	return zero, false
}

// GetWithFileValidation retrieves an item from the cache with file-based validation
// If the file has been modified since caching, the item is removed and false is returned
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	var zero V
	item, ok := c.item(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	if stat, err := os.Stat(filePath); err == nil {
		if stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
			c.hits.Add(1)
			return item.Value, true
		}
	}

	// File changed or error, remove from cache
	c.store.Delete(string(key))
	c.misses.Add(1)
	return zero, false
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.store.SetDefault(string(key), &CacheItem[V]{Value: value})
}

// SetWithFileInfo stores an item in the cache with file metadata for validation
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	c.store.SetDefault(string(key), &CacheItem[V]{
		Value:   value,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	})
	return nil
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.store.Delete(string(key))
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.store.Flush()
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	return c.store.ItemCount()
}

// Keys returns all unexpired keys in the cache
func (c *Cache[K, V]) Keys() []K {
	items := c.store.Items()
	keys := make([]K, 0, len(items))
	for key := range items {
		keys = append(keys, K(key))
	}
	return keys
}

// GetStats returns cache statistics
func (c *Cache[K, V]) GetStats() CacheStats {
	return CacheStats{
		Size:   c.store.ItemCount(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}
