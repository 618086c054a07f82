package utils

import (
	"slices"
	"sync"
	"time"
)

// EmbeddingCache keeps sentence embeddings across requests. When full, the
// least recently used entry is evicted.
type EmbeddingCache struct {
	mu       sync.RWMutex
	items    map[string]CacheItem
	capacity int
	hits     int
	misses   int
}

type CacheItem struct {
	value      []float64
	lastAccess time.Time
}

func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		items:    make(map[string]CacheItem),
		capacity: capacity,
	}
}

// Lookup returns cached vectors by position and the keys that are missing,
// deduplicated, in first-seen order.
func (c *EmbeddingCache) Lookup(keys []string) ([][]float64, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := make([][]float64, len(keys))
	var missing []string
	now := time.Now()

	for i, key := range keys {
		item, exists := c.items[key]
		if !exists {
			c.misses++
			if !slices.Contains(missing, key) {
				missing = append(missing, key)
			}
			continue
		}

		c.hits++
		item.lastAccess = now
		c.items[key] = item
		found[i] = item.value
	}

	return found, missing
}

func (c *EmbeddingCache) Add(key string, value []float64) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.capacity {
		c.evictOldest()
	}
	c.items[key] = CacheItem{value: value, lastAccess: time.Now()}
}

func (c *EmbeddingCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.lastAccess.Before(oldest) {
			oldestKey, oldest = key, item.lastAccess
		}
	}
	delete(c.items, oldestKey)
}

func (c *EmbeddingCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *EmbeddingCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.hits+c.misses > 0 {
		return float64(c.hits) / float64(c.hits+c.misses)
	}
	return 0.0
}
