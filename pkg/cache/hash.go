// Both the sharded cache and the instrumented cache need to turn arbitrary comparable keys into 64-bit hashes;
// the former to pick a shard and the latter to feed its bloom filter.

package cache

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// keyHasher hashes cache keys of type K.
type keyHasher[K comparable] func(key K) uint64

// newKeyHasher picks the hash function for K once, so the type switch isn't paid on every lookup.
func newKeyHasher[K comparable]() keyHasher[K] {
	switch any(*new(K)).(type) {
	case string:
		return func(key K) uint64 {
			return xxhash.Sum64String(any(key).(string))
		}
	case int:
		return func(key K) uint64 {
			// Since int's size is architecture-dependent, it's widened to a fixed-size type before hashing.
			return hashUint64(uint64(any(key).(int)))
		}
	case uint:
		return func(key K) uint64 {
			return hashUint64(uint64(any(key).(uint)))
		}
	case int32:
		return func(key K) uint64 {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(any(key).(int32)))
			return xxhash.Sum64(b[:])
		}
	case uint32:
		return func(key K) uint64 {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], any(key).(uint32))
			return xxhash.Sum64(b[:])
		}
	case int64:
		return func(key K) uint64 {
			return hashUint64(uint64(any(key).(int64)))
		}
	case uint64:
		return func(key K) uint64 {
			return hashUint64(any(key).(uint64))
		}
	case bool:
		return func(key K) uint64 {
			if any(key).(bool) {
				return xxhash.Sum64([]byte{1})
			}
			return xxhash.Sum64([]byte{0})
		}
	}
	return func(key K) uint64 {
		// As a fallback for other types (like structs), use fmt.Sprintf. This is less performant but works for any
		// type that can be printed.
		return xxhash.Sum64String(fmt.Sprintf("%#v", key))
	}
}

func hashUint64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxhash.Sum64(b[:])
}
