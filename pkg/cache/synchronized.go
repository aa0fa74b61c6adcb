package cache

import "sync"

// Synchronized makes a Layer safe for concurrent use by holding a single mutex for the whole of every call. An LRU
// mutates its index and recency list together, even on Get, so a read-write lock wouldn't help here.
type Synchronized[K comparable, V any] struct {
	mux   sync.Mutex
	layer Layer[K, V]
}

var _ Layer[int, int] = (*Synchronized[int, int])(nil)

// NewSynchronized wraps the given layer. The layer must not be used directly afterward.
func NewSynchronized[K comparable, V any](layer Layer[K, V]) *Synchronized[K, V] {
	return &Synchronized[K, V]{layer: layer}
}

func (s *Synchronized[K, V]) Get(key K) (V, bool /*found*/) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.layer.Get(key)
}

func (s *Synchronized[K, V]) Add(key K, value V) /*evictionOccurred*/ bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.layer.Add(key, value)
}

func (s *Synchronized[K, V]) Keys() []K {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.layer.Keys()
}

func (s *Synchronized[K, V]) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.layer.Len()
}

func (s *Synchronized[K, V]) Purge() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.layer.Purge()
}
