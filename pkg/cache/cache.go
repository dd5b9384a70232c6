// Package cache provides LRU caching of rewrite results.
package cache

import (
	"sync"
	"time"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
)

// Entry represents a cache entry with metadata.
type Entry struct {
	Key        string
	Value      interface{}
	AccessedAt time.Time
	CreatedAt  time.Time
}

// LRUCache is an in-memory LRU cache.
type LRUCache struct {
	mu      sync.RWMutex
	items   map[string]*listItem
	lru     *list // doubly-linked list (most recent at front)
	maxSize int
	onEvict func(key string, value interface{})
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list represents a doubly-linked list.
type list struct {
	head *listItem // most recently accessed
	tail *listItem // least recently accessed
	len  int
}

// moveToFront moves an item to the front (most recently used).
func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.remove(item)
	l.pushFront(item)
}

// pushFront adds an item at the front.
func (l *list) pushFront(item *listItem) {
	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

// remove unlinks an item.
func (l *list) remove(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

// removeBack removes and returns the least recently used item.
func (l *list) removeBack() *listItem {
	item := l.tail
	if item == nil {
		return nil
	}
	l.remove(item)
	return item
}

// Options configures an LRU cache.
type Options struct {
	MaxSize int
	OnEvict func(key string, value interface{})
}

// New creates a new LRU cache.
func New(opts Options) *LRUCache {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &LRUCache{
		items:   make(map[string]*listItem),
		lru:     &list{},
		maxSize: maxSize,
		onEvict: opts.OnEvict,
	}
}

// Get retrieves a value by key.
func (c *LRUCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Value, true
}

// Set stores a key-value pair, evicting the least recently used entry
// when the cache is full.
func (c *LRUCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if item, ok := c.items[key]; ok {
		item.Value = value
		item.AccessedAt = now
		c.lru.moveToFront(item)
		return
	}
	item := &listItem{Entry: Entry{Key: key, Value: value, AccessedAt: now, CreatedAt: now}}
	c.items[key] = item
	c.lru.pushFront(item)
	for c.lru.len > c.maxSize {
		evicted := c.lru.removeBack()
		if evicted == nil {
			break
		}
		delete(c.items, evicted.Key)
		if c.onEvict != nil {
			c.onEvict(evicted.Key, evicted.Value)
		}
	}
}

// Delete removes a key from the cache.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return
	}
	c.lru.remove(item)
	delete(c.items, key)
}

// Clear removes all entries from the cache.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*listItem)
	c.lru = &list{}
}

// Len returns the number of entries in the cache.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats holds cache statistics.
type Stats struct {
	Length int
	Hits   int64
	Misses int64
}

// DiagramCache caches reduced diagrams keyed by the signature of the
// diagram they were reduced from. Stored diagrams are copied on both
// Set and Get so callers can keep rewriting their instance.
type DiagramCache struct {
	lru    *LRUCache
	hits   int64
	misses int64
	mu     sync.Mutex
}

// NewDiagramCache creates a diagram cache holding up to maxSize entries.
func NewDiagramCache(maxSize int) *DiagramCache {
	return &DiagramCache{lru: New(Options{MaxSize: maxSize})}
}

// Get returns a copy of the cached diagram for key, if present.
func (c *DiagramCache) Get(key string) (*diagram.Diagram, bool) {
	v, ok := c.lru.Get(key)
	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	return v.(*diagram.Diagram).Copy(), true
}

// Set stores a copy of g under key.
func (c *DiagramCache) Set(key string, g *diagram.Diagram) {
	c.lru.Set(key, g.Copy())
}

// Len returns the number of cached diagrams.
func (c *DiagramCache) Len() int {
	return c.lru.Len()
}

// Stats returns hit and miss counts alongside the current length.
func (c *DiagramCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Length: c.lru.Len(), Hits: c.hits, Misses: c.misses}
}
