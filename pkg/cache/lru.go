// This module implements a fixed-capacity LRU (Least Recently Used) cache.
// Eviction Policy:
// Entries are kept in recency order, from the most recently used (head) to the least recently used (tail). Every Get
// hit and every Add moves the touched entry to the head. When a new key is added to a full cache, exactly one entry
// is evicted first, and it is always the tail.
//
// Both the key index and the recency list are updated together inside each call, so between two calls they always
// hold the same set of entries.

package cache

import (
	"errors"
	"fmt"
	"math"

	"github.com/nobletooth/lru/pkg/utils"
)

// maxCapacity is bounded by the slot type used to address list entries.
const maxCapacity = math.MaxInt32

// ErrInvalidCapacity is returned when an LRU is constructed with a capacity outside [1, maxCapacity].
var ErrInvalidCapacity = errors.New("invalid cache capacity")

// LRU is a fixed-capacity, in-memory cache that evicts the least recently used entry when it runs out of room.
// Get and Add take O(1) on average.
//
// LRU is not safe for concurrent use, Get reorders entries too; wrap it with NewSynchronized when it's shared
// between goroutines.
type LRU[K comparable, V any] struct {
	capacity int                // Maximum number of entries the cache can hold.
	index    map[K]slot         // Provides lookup for an entry by its key.
	list     *recencyList[K, V] // Owns the entries; orders them by recency.
	// onEvict is an optional callback that is executed after an entry was evicted to make room for a new one.
	// It's not called on Purge or when an existing key is updated.
	onEvict func(K, V)
}

var _ Layer[int, int] = (*LRU[int, int])(nil)

// NewLRU is the constructor for LRU. It fails with ErrInvalidCapacity when capacity is not positive; such a cache
// could never hold an entry.
// NOTE: when the LRU is wrapped with Synchronized, onEvict runs under its lock and must not call the cache.
func NewLRU[K comparable, V any](capacity int, onEvict func(K, V)) (*LRU[K, V], error) {
	if capacity <= 0 || capacity > maxCapacity {
		return nil, fmt.Errorf("%w: expected a value in [1, %d], got %d", ErrInvalidCapacity, maxCapacity, capacity)
	}
	return &LRU[K, V]{
		capacity: capacity,
		index:    make(map[K]slot, capacity),
		list:     newRecencyList[K, V](capacity),
		onEvict:  onEvict,
	}, nil
}

// Get retrieves the value stored for `key` and marks it as the most recently used entry.
func (c *LRU[K, V]) Get(key K) (V, bool /*found*/) {
	s, found := c.index[key]
	if !found {
		var zero V
		return zero, false
	}
	c.list.moveToFront(s)
	return c.list.entry(s).value, true
}

// Peek retrieves the value stored for `key` without touching its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool /*found*/) {
	s, found := c.index[key]
	if !found {
		var zero V
		return zero, false
	}
	return c.list.entry(s).value, true
}

// Put stores `value` for `key` and marks it as the most recently used entry, evicting the least recently used entry
// if `key` is new and the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.Add(key, value)
}

// Add works like Put and reports whether an entry was evicted to make room for `key`.
func (c *LRU[K, V]) Add(key K, value V) /*evictionOccurred*/ bool {
	// Update existing entry in place; its slot stays the same.
	if s, found := c.index[key]; found {
		c.list.entry(s).value = value
		c.list.moveToFront(s)
		return false
	}

	// Make room before linking the new entry, so the cache never holds more than capacity entries.
	var evicted *listEntry[K, V]
	if c.list.Len() >= c.capacity {
		victim, ok := c.evictTail()
		if !ok {
			return false
		}
		evicted = &victim
	}

	s := c.list.alloc(key, value)
	c.list.pushFront(s)
	c.index[key] = s

	if evicted == nil {
		return false
	}
	if c.onEvict != nil {
		c.onEvict(evicted.key, evicted.value)
	}
	return true
}

// evictTail removes the least recently used entry from both the list and the index.
func (c *LRU[K, V]) evictTail() (listEntry[K, V], bool /*evicted*/) {
	tail := c.list.Back()
	if tail == noSlot {
		utils.RaiseInvariant("lru", "evict_from_empty_list",
			"Cache is full but its recency list is empty.", "capacity", c.capacity, "indexSize", len(c.index))
		return listEntry[K, V]{}, false
	}
	victim := *c.list.entry(tail)
	c.list.unlink(tail)
	delete(c.index, victim.key)
	c.list.release(tail)
	return victim, true
}

// Keys returns the cached keys ordered from the most to the least recently used.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.list.Len())
	for s := c.list.Front(); s != noSlot; s = c.list.Next(s) {
		keys = append(keys, c.list.entry(s).key)
	}
	return keys
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.list.Len()
}

// Cap returns the maximum number of entries the cache can hold.
func (c *LRU[K, V]) Cap() int {
	return c.capacity
}

// Purge removes all entries without calling the eviction callback.
func (c *LRU[K, V]) Purge() {
	clear(c.index)
	c.list.reset()
}
