package cache

import "bytes"

// handleTable is a chained hash index keyed by (hash, key), private to
// a single shard. Bucket count is always a power of two; average chain
// length is kept at or below 1 by doubling whenever elems exceeds the
// bucket count.
type handleTable[V any] struct {
	length uint32
	elems  uint32
	list   []*entry[V]
}

func newHandleTable[V any]() *handleTable[V] {
	t := &handleTable[V]{}
	t.resize()
	return t
}

// findSlot walks the chain for (key, hash) and returns the address of
// the *entry[V] that either holds the match or terminates the chain
// (a nil tail pointer, ready to receive an insert). Mirrors the
// pointer-to-pointer idiom of the reference HandleTable::FindPointer:
// splicing out the head of a chain needs no special case because the
// caller always has the address of whichever pointer referred to it.
func (t *handleTable[V]) findSlot(key []byte, hash uint32) **entry[V] {
	slot := &t.list[hash&(t.length-1)]
	for *slot != nil && !((*slot).hash == hash && bytes.Equal((*slot).key, key)) {
		slot = &(*slot).nextHash
	}
	return slot
}

// Lookup returns the entry matching (key, hash), or nil.
func (t *handleTable[V]) Lookup(key []byte, hash uint32) *entry[V] {
	return *t.findSlot(key, hash)
}

// Insert places h into the table. If an entry with the same (key, hash)
// was already present, it is unlinked and returned to the caller for
// post-unlock cleanup (see lruShard.finishErase) — the table never
// holds two entries for the same key. elems only increments on a true
// insert, not a displacement; growth is triggered once elems exceeds
// the current bucket count.
func (t *handleTable[V]) Insert(h *entry[V]) (old *entry[V]) {
	slot := t.findSlot(h.key, h.hash)
	old = *slot
	if old != nil {
		h.nextHash = old.nextHash
	} else {
		h.nextHash = nil
	}
	*slot = h
	if old == nil {
		t.elems++
		if t.elems > t.length {
			t.resize()
		}
	}
	return old
}

// Remove splices the entry matching (key, hash) out of its chain and
// returns it without freeing anything — ownership passes to the
// caller.
func (t *handleTable[V]) Remove(key []byte, hash uint32) *entry[V] {
	slot := t.findSlot(key, hash)
	result := *slot
	if result != nil {
		*slot = result.nextHash
		t.elems--
	}
	return result
}

// resize (re)builds the bucket array so length is the smallest power
// of two >= elems, starting at 4, and rehashes every resident entry in
// place by chasing nextHash — no entry is reallocated or copied.
func (t *handleTable[V]) resize() {
	newLength := uint32(4)
	for newLength < t.elems {
		newLength *= 2
	}
	newList := make([]*entry[V], newLength)
	var moved uint32
	for _, head := range t.list {
		e := head
		for e != nil {
			next := e.nextHash
			idx := e.hash & (newLength - 1)
			e.nextHash = newList[idx]
			newList[idx] = e
			e = next
			moved++
		}
	}
	if t.list != nil && moved != t.elems {
		panic("cache: handle table lost entries during resize")
	}
	t.list = newList
	t.length = newLength
}
