// This module implements cache sharding which distributes keys uniformly across cache shards. Since a synchronized
// LRU holds one mutex for every operation (even Get reorders the recency list), sharding helps by distributing the
// locks. Goroutines only lock the shard their key belongs to and don't block goroutines working on other shards.
//
// Recency and capacity are tracked per shard: a Sharded cache of N shards with capacity C each evicts the least
// recently used key of the target shard, not of the whole cache.

package cache

import (
	"github.com/nobletooth/lru/pkg/utils"
)

// Sharded is a cache implementation that distributes keys across multiple underlying cache instances (shards).
type Sharded[K comparable, V any] struct {
	shards []Layer[K, V]
	hash   keyHasher[K] // Helps choose the shards index.
}

var _ Layer[int, int] = (*Sharded[int, int])(nil)

// NewSharded is the constructor for Sharded. It takes a cacheGenerator function, which is responsible for creating
// individual shard instances, and the desired number of shards (shardCount). Shards must be safe for concurrent use
// if the Sharded cache is.
func NewSharded[K comparable, V any](cacheGenerator func() Layer[K, V], shardCount int) *Sharded[K, V] {
	// Ensure there is at least one shard.
	if shardCount <= 0 {
		utils.RaiseInvariant("shard", "non_positive_shard_count",
			"Invalid shard count has been given to sharded cache.", "shardCount", shardCount)
		shardCount = 1
	}
	sharded := &Sharded[K, V]{shards: make([]Layer[K, V], shardCount), hash: newKeyHasher[K]()}
	for i := range shardCount {
		sharded.shards[i] = cacheGenerator()
	}
	return sharded
}

// getShard maps the key hash to a shard index.
func (c *Sharded[K, V]) getShard(key K) Layer[K, V] {
	return c.shards[c.hash(key)%uint64(len(c.shards))]
}

// Get finds the appropriate shard for the key and retrieves the value from it.
func (c *Sharded[K, V]) Get(key K) (V, bool /*found*/) {
	return c.getShard(key).Get(key)
}

// Add finds the appropriate shard for the key and adds the key-value pair to it.
func (c *Sharded[K, V]) Add(key K, value V) /*evictionOccurred*/ bool {
	return c.getShard(key).Add(key, value)
}

// Keys aggregates the keys from all shards into a single slice. Keys are ordered by recency within each shard only.
func (c *Sharded[K, V]) Keys() []K {
	keys := make([]K, 0)
	for _, shard := range c.shards {
		keys = append(keys, shard.Keys()...)
	}
	return keys
}

// Len sums up the shard sizes. Under concurrent writes it's a best-effort number.
func (c *Sharded[K, V]) Len() int {
	size := 0
	for _, shard := range c.shards {
		size += shard.Len()
	}
	return size
}

// Purge clears all items from the cache by calling Purge on every shard.
func (c *Sharded[K, V]) Purge() {
	for _, shard := range c.shards {
		shard.Purge()
	}
}
