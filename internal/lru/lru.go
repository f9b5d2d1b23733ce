// Package lru provides a bounded, thread-safe least-recently-used map.
package lru

import "sync"

// Cache holds at most its capacity of entries and evicts the least recently used one
// when a Put would exceed it. The zero value is not usable; call New.
type Cache[K comparable, V any] struct {
	capacity int

	mu     sync.Mutex
	items  map[K]*node[K, V]
	newest *node[K, V]
	oldest *node[K, V]
}

type node[K comparable, V any] struct {
	key          K
	val          V
	newer, older *node[K, V]
}

// New returns a cache bounded to capacity entries; values below one are
// treated as one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: max(capacity, 1),
		items:    make(map[K]*node[K, V]),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.touch(n)
	return n.val, true
}

// Put stores val under key and reports whether an older entry was evicted.
func (c *Cache[K, V]) Put(key K, val V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		n.val = val
		c.touch(n)
		return false
	}

	n := &node[K, V]{key: key, val: val}
	c.items[key] = n
	c.pushNewest(n)
	if len(c.items) <= c.capacity {
		return false
	}
	victim := c.oldest
	c.unlink(victim)
	delete(c.items, victim.key)
	return true
}

// Update replaces the value for key with fn's result while holding the
// lock. fn must not call back into the cache. On error the entry is left
// untouched and the current value is returned alongside the error.
func (c *Cache[K, V]) Update(key K, fn func(V) (V, error)) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false, nil
	}
	next, err := fn(n.val)
	if err != nil {
		return n.val, true, err
	}
	n.val = next
	c.touch(n)
	return next, true, nil
}

// Len reports the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Each calls fn for every entry from newest to oldest without changing
// recency. fn must not call back into the cache.
func (c *Cache[K, V]) Each(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := c.newest; n != nil; n = n.older {
		fn(n.key, n.val)
	}
}

func (c *Cache[K, V]) touch(n *node[K, V]) {
	if n == c.newest {
		return
	}
	c.unlink(n)
	c.pushNewest(n)
}

func (c *Cache[K, V]) pushNewest(n *node[K, V]) {
	n.newer = nil
	n.older = c.newest
	if c.newest != nil {
		c.newest.newer = n
	}
	c.newest = n
	if c.oldest == nil {
		c.oldest = n
	}
}

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.newer != nil {
		n.newer.older = n.older
	} else {
		c.newest = n.older
	}
	if n.older != nil {
		n.older.newer = n.newer
	} else {
		c.oldest = n.newer
	}
	n.newer, n.older = nil, nil
}
