package cache

import "sync"

// Cache stores values keyed by string and is safe for concurrent use.
type Cache[T any] struct {
	mu    sync.Mutex
	items map[string]T
}

// New creates a new Cache instance.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		items: make(map[string]T),
	}
}

// SetIfAbsent stores value only when key is unknown and reports whether it did.
// Check and insert happen under one lock, so concurrent callers never both win.
func (c *Cache[T]) SetIfAbsent(key string, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		return false
	}

	c.items[key] = value

	return true
}

// Len returns the number of stored keys.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
