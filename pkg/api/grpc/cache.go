package grpc

import (
	"container/list"
	"sync"
	"time"
)

// vertexCache is a thread-safe LRU cache with per-entry TTL used by the
// remote client to avoid re-fetching hot vertices.
type vertexCache struct {
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	cache map[string]*list.Element
	lru   *list.List

	hits   int64
	misses int64
}

// cacheEntry is a single cached value with its expiry.
type cacheEntry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// newVertexCache creates a cache holding at most capacity entries; a zero
// ttl disables expiration.
func newVertexCache(capacity int, ttl time.Duration) *vertexCache {
	return &vertexCache{
		capacity: capacity,
		ttl:      ttl,
		cache:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get returns the cached value for key, or (nil, false) when absent or
// expired.
func (c *vertexCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.remove(elem)
		c.misses++
		return nil, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Put stores or refreshes a value, evicting the oldest entry when full.
func (c *vertexCache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.lru.MoveToFront(elem)
		return
	}

	entry := &cacheEntry{key: key, value: value}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.cache[key] = c.lru.PushFront(entry)

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Len returns the number of live entries.
func (c *vertexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns cumulative hit and miss counts.
func (c *vertexCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// remove deletes one element; callers hold the lock.
func (c *vertexCache) remove(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.cache, entry.key)
	c.lru.Remove(elem)
}
