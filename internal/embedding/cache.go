package embedding

import (
	"container/list"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// EmbeddingCache is an LRU cache for embeddings keyed by the source text.
// Keys are hashed so long function bodies do not bloat the map.
type EmbeddingCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value []float32
}

// NewEmbeddingCache creates a new cache with the given capacity.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &EmbeddingCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached embedding for text if present and promotes it to
// most-recently-used.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	key := hashKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

// Set stores the embedding for text, evicting the oldest entry if at capacity.
func (c *EmbeddingCache) Set(text string, value []float32) {
	key := hashKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, value: value})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func hashKey(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}
