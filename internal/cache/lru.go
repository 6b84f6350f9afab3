package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Versioned is satisfied by every inari entity.
type Versioned interface {
	ID() uuid.UUID
	ModifiedAt() time.Time
}

// LRU cache of entities with TTL and size-based eviction. It never replaces a
// cached entity with an older version of itself.
type LRUCache[T Versioned] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[uuid.UUID]*list.Element
	lru     *list.List
}

type cacheItem[T Versioned] struct {
	data      T
	expiresAt time.Time
}

// NewLRUCache creates a new LRU cache with TTL
func NewLRUCache[T Versioned](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[uuid.UUID]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves an entity by id
func (c *LRUCache[T]) Get(id uuid.UUID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[id]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

// Set stores v unless a newer version of the same entity is cached. It
// reports whether v is now the cached version.
func (c *LRUCache[T]) Set(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := v.ID()
	if elem, exists := c.items[id]; exists {
		current := elem.Value.(*cacheItem[T])
		if current.data.ModifiedAt().After(v.ModifiedAt()) {
			return false
		}
		elem.Value = &cacheItem[T]{data: v, expiresAt: c.now().Add(c.ttl)}
		c.lru.MoveToFront(elem)
		return true
	}

	elem := c.lru.PushFront(&cacheItem[T]{data: v, expiresAt: c.now().Add(c.ttl)})
	c.items[id] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return true
}

// Delete removes an entity from the cache
func (c *LRUCache[T]) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[id]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.data.ID())
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
