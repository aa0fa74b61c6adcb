// The cache backend is the store served by ports, e.g. Redis. It is built from flags: a single synchronized LRU, a
// sharded set of them, or a no-op layer when caching is disabled. Every variant reports metrics.

package port

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/nobletooth/lru/pkg/cache"
)

// backendCacheName labels the metrics of the served cache.
const backendCacheName = "backend"

var (
	cacheEnabled  = flag.Bool("enable_cache", true, "Enable the cache; a disabled cache stores nothing.")
	cacheCapacity = flag.Int("cache_capacity", 1024,
		"The maximum number of keys to keep in each cache shard; 0 or negative disables the cache.")
	cacheShardCount = flag.Int("cache_shard_count", 1,
		"The number of cache shards; recency is tracked per shard. 0 or negative disables the cache.")
	cacheExpectedKeys = flag.Uint("cache_expected_keys", 100_000,
		"The number of distinct keys expected between two FLUSHALLs; sizes the cold miss bloom filter.")
)

// NewCacheBackend builds the cache served to clients according to the configured flags.
func NewCacheBackend() (cache.Layer[string, string], error) {
	if !*cacheEnabled || *cacheCapacity <= 0 || *cacheShardCount <= 0 {
		slog.Warn("Cache is disabled; every lookup will miss.", "enabled", *cacheEnabled,
			"capacity", *cacheCapacity, "shardCount", *cacheShardCount)
		noOp := cache.NewNoOp[string, string]()
		return cache.NewInstrumented[string, string](backendCacheName, noOp, *cacheExpectedKeys), nil
	}

	// newShard builds a single thread-safe LRU according to configured flags.
	newShard := func() (cache.Layer[string, string], error) {
		lru, err := cache.NewLRU[string, string](*cacheCapacity, nil /*onEvict*/)
		if err != nil {
			return nil, fmt.Errorf("failed to create lru cache: %w", err)
		}
		return cache.NewSynchronized[string, string](lru), nil
	}

	var layer cache.Layer[string, string]
	if *cacheShardCount == 1 { // Single shard cache.
		shard, err := newShard()
		if err != nil {
			return nil, err
		}
		layer = shard
	} else { // Sharded cache.
		var shardErr error
		layer = cache.NewSharded(func() cache.Layer[string, string] {
			shard, err := newShard()
			if err != nil {
				shardErr = err
				return cache.NewNoOp[string, string]()
			}
			return shard
		}, *cacheShardCount)
		if shardErr != nil {
			return nil, shardErr
		}
	}

	slog.Info("Cache configured.", "capacity", *cacheCapacity, "shardCount", *cacheShardCount)
	return cache.NewInstrumented[string, string](backendCacheName, layer, *cacheExpectedKeys), nil
}
