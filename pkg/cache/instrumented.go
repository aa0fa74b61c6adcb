// Instrumented caches export their effectiveness as prometheus metrics. Misses are split into two kinds:
//   - cold_miss: the key was never added to the cache (a compulsory miss, a bigger cache wouldn't help).
//   - miss:      the key was added before but is gone since, e.g. it got evicted (a capacity miss).
//
// Remembering every key ever added would grow without bounds, so seen keys are kept in a bloom filter instead. A
// bloom filter has no false negatives, thus cold misses are never over-counted; a small fraction of them may be
// reported as capacity misses instead.

package cache

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/nobletooth/lru/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// seenKeysFalsePositiveRate is the target false positive rate of the seen keys bloom filter.
const seenKeysFalsePositiveRate = 0.01

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lru_cache_lookups_total",
		Help: "Total number of cache lookups.",
	}, []string{"cache", "status" /* hit | miss | cold_miss */})
	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lru_cache_evictions_total",
		Help: "Total number of entries evicted to make room for new ones.",
	}, []string{"cache"})
	cacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lru_cache_entries",
		Help: "Number of entries currently held by the cache.",
	}, []string{"cache"})
)

// Instrumented is a Layer that records lookups, evictions and size of the underlying layer.
type Instrumented[K comparable, V any] struct {
	name  string
	layer Layer[K, V]
	hash  keyHasher[K]
	mux   sync.Mutex         // Protects seen; bloom filters aren't thread-safe.
	seen  *bloom.BloomFilter // Keys added since the last purge.
}

var _ Layer[int, int] = (*Instrumented[int, int])(nil)

// NewInstrumented wraps `layer` and reports its metrics under the `name` label. The `expectedKeys` is the number of
// distinct keys the cache is expected to see between two purges, used to size the bloom filter.
func NewInstrumented[K comparable, V any](name string, layer Layer[K, V], expectedKeys uint) *Instrumented[K, V] {
	if expectedKeys == 0 {
		utils.RaiseInvariant("instrumented", "zero_expected_keys",
			"Bloom filter of an instrumented cache needs a positive key estimate.", "cache", name)
		expectedKeys = 1
	}
	cacheEntries.WithLabelValues(name).Set(float64(layer.Len()))
	return &Instrumented[K, V]{
		name:  name,
		layer: layer,
		hash:  newKeyHasher[K](),
		seen:  bloom.NewWithEstimates(expectedKeys, seenKeysFalsePositiveRate),
	}
}

// bloomKey returns the bloom filter entry of `key`.
func (c *Instrumented[K, V]) bloomKey(key K) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], c.hash(key))
	return b[:]
}

// Get looks up the key in the underlying layer and counts the outcome.
func (c *Instrumented[K, V]) Get(key K) (V, bool /*found*/) {
	value, found := c.layer.Get(key)
	if found {
		cacheLookups.WithLabelValues(c.name, "hit").Inc()
		return value, true
	}

	c.mux.Lock()
	seenBefore := c.seen.Test(c.bloomKey(key))
	c.mux.Unlock()
	if seenBefore {
		cacheLookups.WithLabelValues(c.name, "miss").Inc()
	} else {
		cacheLookups.WithLabelValues(c.name, "cold_miss").Inc()
	}
	return value, false
}

// Add adds the key-value pair to the underlying layer, remembers the key and counts evictions.
func (c *Instrumented[K, V]) Add(key K, value V) /*evictionOccurred*/ bool {
	evicted := c.layer.Add(key, value)

	c.mux.Lock()
	c.seen.Add(c.bloomKey(key))
	c.mux.Unlock()

	if evicted {
		cacheEvictions.WithLabelValues(c.name).Inc()
	}
	cacheEntries.WithLabelValues(c.name).Set(float64(c.layer.Len()))
	return evicted
}

func (c *Instrumented[K, V]) Keys() []K {
	return c.layer.Keys()
}

func (c *Instrumented[K, V]) Len() int {
	return c.layer.Len()
}

// Purge clears the underlying layer and forgets all seen keys; lookups after a purge start cold again.
func (c *Instrumented[K, V]) Purge() {
	c.layer.Purge()

	c.mux.Lock()
	c.seen.ClearAll()
	c.mux.Unlock()

	cacheEntries.WithLabelValues(c.name).Set(0)
}
