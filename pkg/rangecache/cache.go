// Package rangecache provides a bounded memo with insertion-order eviction.
//
// When a full cache receives a new key, the entry that was inserted first is
// dropped, regardless of how recently it was read. Overwriting an existing
// key keeps its original insertion slot.
//
// Cache is NOT thread-safe. It is meant to be owned by a single calculator
// driven from one event loop.
package rangecache

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 100

// Stats tracks cache performance counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns the hit rate as a percentage (0-100).
// Returns 0 if no lookups have been made.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache maps keys to values and holds at most Capacity() entries.
type Cache[K comparable, V any] struct {
	entries map[K]V

	// order is a ring of keys in insertion order; head is the oldest.
	order []K
	head  int

	stats Stats
}

// New creates a cache holding at most capacity entries.
// A capacity <= 0 disables caching: Put stores nothing.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[K, V]{
		entries: make(map[K]V, capacity),
		order:   make([]K, capacity),
	}
}

// Get returns the value for key and whether it was present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	val, ok := c.entries[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return val, ok
}

// Put stores val under key, evicting the oldest entry if the cache is full.
func (c *Cache[K, V]) Put(key K, val V) {
	capacity := len(c.order)
	if capacity == 0 {
		return
	}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = val
		return
	}

	size := len(c.entries)
	if size == capacity {
		oldest := c.order[c.head]
		delete(c.entries, oldest)
		c.head = (c.head + 1) % capacity
		c.stats.Evictions++
		size--
	}

	c.order[(c.head+size)%capacity] = key
	c.entries[key] = val
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	clear(c.entries)
	clear(c.order)
	c.head = 0
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return len(c.order)
}

// Stats returns a snapshot of the hit, miss and eviction counters.
func (c *Cache[K, V]) Stats() Stats {
	return c.stats
}

// ResetStats zeroes the counters.
func (c *Cache[K, V]) ResetStats() {
	c.stats = Stats{}
}
