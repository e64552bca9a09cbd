package workspace

import (
	"container/list"
	"sync"
	"time"

	"bxls/internal/document"
)

// parseCache is a bounded LRU of filesystem backed documents keyed by URI.
type parseCache struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	uri string
	doc *document.Document
}

func newParseCache(capacity int) *parseCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &parseCache{cap: capacity, ll: list.New(), items: make(map[string]*list.Element)}
}

// get returns the cached document when its modification time matches.
func (c *parseCache) get(uri string, modTime time.Time) (*document.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[uri]
	if !ok {
		parseCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if !entry.doc.ModTime.Equal(modTime) {
		parseCacheLookups.WithLabelValues("stale").Inc()
		c.ll.Remove(el)
		delete(c.items, uri)
		return nil, false
	}
	parseCacheLookups.WithLabelValues("hit").Inc()
	c.ll.MoveToFront(el)
	return entry.doc, true
}

func (c *parseCache) put(uri string, doc *document.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[uri]; ok {
		el.Value.(*cacheEntry).doc = doc
		c.ll.MoveToFront(el)
		return
	}
	c.items[uri] = c.ll.PushFront(&cacheEntry{uri: uri, doc: doc})
	c.evictLocked()
}

func (c *parseCache) remove(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[uri]; ok {
		c.ll.Remove(el)
		delete(c.items, uri)
	}
}

// purge drops every entry and returns how many were dropped.
func (c *parseCache) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.ll.Len()
	parseCacheEvictions.WithLabelValues("purge").Add(float64(n))
	c.ll.Init()
	c.items = make(map[string]*list.Element)
	return n
}

func (c *parseCache) resize(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cap = capacity
	c.evictLocked()
}

func (c *parseCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *parseCache) evictLocked() {
	for c.ll.Len() > c.cap {
		el := c.ll.Back()
		c.ll.Remove(el)
		delete(c.items, el.Value.(*cacheEntry).uri)
		parseCacheEvictions.WithLabelValues("capacity").Inc()
	}
}
