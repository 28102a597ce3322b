package vector

import (
	"container/list"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ResultCache is a fixed-capacity LRU cache of search results, keyed by a
// hash of the query vector plus the algorithm parameters plus k. It is owned
// by a single index instance and cleared whenever that index's configuration
// changes.
type ResultCache struct {
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
}

type resultEntry struct {
	key     string
	results []SearchResult
}

// NewResultCache creates a cache holding at most capacity entries.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &ResultCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached results for key and promotes the entry to
// most-recently-used.
func (c *ResultCache) Get(key string) ([]SearchResult, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*resultEntry).results, true
}

// Set stores results under key, evicting the least-recently-used entry when
// at capacity. Storing a nil slice is a no-op.
func (c *ResultCache) Set(key string, results []SearchResult) {
	if results == nil {
		return
	}
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*resultEntry).results = results
		return
	}
	elem := c.lru.PushFront(&resultEntry{key: key, results: results})
	c.entries[key] = elem
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*resultEntry).key)
		}
	}
}

// Clear discards every entry.
func (c *ResultCache) Clear() {
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// queryKey builds a cache key from the query vector bytes, k, and the
// parameters that affect the result set.
func queryKey(query []float32, k int, params string) string {
	h := xxhash.New()
	var buf [4]byte
	for _, x := range query {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(x))
		_, _ = h.Write(buf[:])
	}
	return fmt.Sprintf("%x:%d:%s", h.Sum64(), k, params)
}
