package detector

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	"github.com/hyperjump/datadetector/internal/extract"
	"github.com/hyperjump/datadetector/internal/models"
)

// resultCache is an LRU cache of sheet results keyed by input content and parse options.
// A nil *resultCache caches nothing.
type resultCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value []models.SheetResult
}

// newResultCache creates a cache with the given capacity, or returns nil when capacity
// is not positive.
func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		return nil
	}
	return &resultCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func cacheKey(content []byte, ct extract.ContentType, o detectOptions) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(ct))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(o.truncateRows)))
	h.Write([]byte{0})
	h.Write([]byte(o.name))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached results for key if present.
func (c *resultCache) Get(key string) ([]models.SheetResult, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return cloneResults(elem.Value.(*cacheEntry).value), true
	}
	return nil, false
}

// Set stores a copy of value for key, evicting the oldest entry if at capacity.
func (c *resultCache) Set(key string, value []models.SheetResult) {
	if c == nil {
		return
	}
	value = cloneResults(value)

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
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *resultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func cloneResults(rs []models.SheetResult) []models.SheetResult {
	return append([]models.SheetResult(nil), rs...)
}
