// Package cache provides a fixed-size LRU cache.
package cache

import (
	"container/list"
	"sync"
)

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a concurrent, fixed-size cache with an LRU eviction policy.
type LRU[K comparable, V any] struct {
	capacity int

	mu sync.Mutex
	// Front is the most recently used entry.
	list  *list.List
	items map[K]*list.Element
}

// NewLRU creates a cache holding up to capacity entries. A non-positive
// capacity selects 100.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 100
	}

	return &LRU[K, V]{
		capacity: capacity,
		list:     list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	c.list.MoveToFront(element)
	return element.Value.(*lruEntry[K, V]).value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		element.Value.(*lruEntry[K, V]).value = value
		c.list.MoveToFront(element)
		return
	}

	c.items[key] = c.list.PushFront(&lruEntry[K, V]{key: key, value: value})

	if c.list.Len() > c.capacity {
		tail := c.list.Back()
		c.list.Remove(tail)
		delete(c.items, tail.Value.(*lruEntry[K, V]).key)
	}
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.list.Len()
}
