// The LRU keeps its recency order in a doubly linked list. Instead of heap allocated nodes pointing at each other,
// list entries live in one slice (the arena) and refer to their neighbours by slot index. The key index of the LRU
// maps keys to slots, so no entry is ever referenced from outside the list and released slots are reused.

package cache

// slot is the position of an entry inside recencyList.entries.
type slot int32

// noSlot is the "none" neighbour; the prev of the head and the next of the tail.
const noSlot slot = -1

// listEntry is a key-value pair together with its neighbours in recency order.
type listEntry[K comparable, V any] struct {
	key   K
	value V
	prev  slot // Towards the head (more recently used).
	next  slot // Towards the tail (less recently used).
}

// recencyList is a doubly linked list over an arena of entries, ordered from the most recently used entry (head) to
// the least recently used one (tail). It's not thread-safe.
type recencyList[K comparable, V any] struct {
	entries []listEntry[K, V]
	free    []slot // Released slots, reused by alloc before growing entries.
	head    slot
	tail    slot
	size    int // Number of linked entries.
}

// newRecencyList returns an empty list with room for `capacity` entries.
func newRecencyList[K comparable, V any](capacity int) *recencyList[K, V] {
	return &recencyList[K, V]{entries: make([]listEntry[K, V], 0, capacity), head: noSlot, tail: noSlot}
}

// Len returns the number of linked entries.
func (l *recencyList[K, V]) Len() int {
	return l.size
}

// Front returns the most recently used slot or noSlot if the list is empty.
func (l *recencyList[K, V]) Front() slot {
	return l.head
}

// Back returns the least recently used slot or noSlot if the list is empty.
func (l *recencyList[K, V]) Back() slot {
	return l.tail
}

// Next returns the neighbour of `s` towards the tail.
func (l *recencyList[K, V]) Next(s slot) slot {
	return l.entries[s].next
}

// Prev returns the neighbour of `s` towards the head.
func (l *recencyList[K, V]) Prev(s slot) slot {
	return l.entries[s].prev
}

// entry returns the entry stored in `s`. The pointer is only valid until the next alloc.
func (l *recencyList[K, V]) entry(s slot) *listEntry[K, V] {
	return &l.entries[s]
}

// alloc stores the key-value pair in a free slot without linking it.
func (l *recencyList[K, V]) alloc(key K, value V) slot {
	fresh := listEntry[K, V]{key: key, value: value, prev: noSlot, next: noSlot}
	if n := len(l.free); n > 0 {
		s := l.free[n-1]
		l.free = l.free[:n-1]
		l.entries[s] = fresh
		return s
	}
	l.entries = append(l.entries, fresh)
	return slot(len(l.entries) - 1)
}

// release hands an unlinked slot back for reuse. The stored key and value are dropped so they can be collected.
func (l *recencyList[K, V]) release(s slot) {
	l.entries[s] = listEntry[K, V]{prev: noSlot, next: noSlot}
	l.free = append(l.free, s)
}

// unlink splices `s` out of the list by connecting its neighbours to each other.
func (l *recencyList[K, V]) unlink(s slot) {
	e := &l.entries[s]
	if e.prev != noSlot {
		l.entries[e.prev].next = e.next
	} else {
		// Entry is the head.
		l.head = e.next
	}

	if e.next != noSlot {
		l.entries[e.next].prev = e.prev
	} else {
		// Entry is the tail.
		l.tail = e.prev
	}

	e.prev = noSlot
	e.next = noSlot
	l.size--
}

// pushFront links an unlinked `s` as the new head.
func (l *recencyList[K, V]) pushFront(s slot) {
	e := &l.entries[s]
	e.prev = noSlot
	e.next = l.head
	if l.head != noSlot {
		l.entries[l.head].prev = s
	} else { // List was empty.
		l.tail = s
	}
	l.head = s
	l.size++
}

// moveToFront marks `s` as the most recently used entry.
func (l *recencyList[K, V]) moveToFront(s slot) {
	if l.head == s {
		return
	}
	l.unlink(s)
	l.pushFront(s)
}

// reset drops every entry, keeping the allocated arena.
func (l *recencyList[K, V]) reset() {
	clear(l.entries)
	l.entries = l.entries[:0]
	l.free = l.free[:0]
	l.head = noSlot
	l.tail = noSlot
	l.size = 0
}
