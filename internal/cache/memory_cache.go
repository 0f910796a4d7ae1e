package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key       string
	value     *Entry
	expiresAt time.Time
}

// MemoryCache implements an in-memory LRU cache bounded by total body
// bytes, with per-entry TTL.
type MemoryCache struct {
	mu       sync.Mutex
	maxBytes int64
	ttl      time.Duration
	bytes    int64
	items    map[string]*list.Element
	lruList  *list.List
	now      func() time.Time
}

func NewMemoryCache(maxBytes int64, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		maxBytes: maxBytes,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		lruList:  list.New(),
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeLocked(elem)
		return nil, false
	}

	c.lruList.MoveToFront(elem)
	return ent.value, true
}

func (c *MemoryCache) Set(key string, value *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		c.bytes += int64(len(value.Body)) - int64(len(ent.value.Body))
		ent.value = value
		ent.expiresAt = c.now().Add(c.ttl)
		c.lruList.MoveToFront(elem)
	} else {
		ent := &entry{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
		c.items[key] = c.lruList.PushFront(ent)
		c.bytes += int64(len(value.Body))
	}

	for c.bytes > c.maxBytes {
		oldest := c.lruList.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lruList = list.New()
	c.bytes = 0
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.items, ent.key)
	c.lruList.Remove(elem)
	c.bytes -= int64(len(ent.value.Body))
}
