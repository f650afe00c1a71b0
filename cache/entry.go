package cache

// Deleter is invoked exactly once, outside any shard lock, when an
// entry's reference count drops to zero. It must not call back into
// the cache for the same key. The shard's mutex has already been
// released when a deleter runs (see runDeleters in shard.go).
type Deleter[V any] func(key []byte, value V)

// entry is the cache's fundamental unit: an immutable key/hash pair, an
// opaque value, the deleter that will consume it, its charge against
// the shard's usage budget, a reference count, and the intrusive links
// that let it move between the lru and inUse lists (prev/next) and
// chain inside the handle table (nextHash) without ever allocating.
//
// Fields below the links line are mutated only under the owning
// shard's mutex (see cache/shard.go); key, hash and charge are set once
// at construction and never change.
type entry[V any] struct {
	key     []byte
	hash    uint32
	value   V
	deleter Deleter[V]
	charge  uint64

	refs    uint32
	inCache bool

	prev, next *entry[V] // lru / inUse circular list links
	nextHash   *entry[V] // handle table chain link
}

// listRemove splices e out of whichever circular list it currently
// sits in. e's own links are left dangling; callers relink e elsewhere
// (listAppend) or discard it.
func listRemove[V any](e *entry[V]) {
	e.next.prev = e.prev
	e.prev.next = e.next
}

// listAppend inserts e as the newest member of list, i.e. just before
// the sentinel (list.prev). For the lru list this means list.next stays
// the oldest entry and therefore the next eviction candidate.
func listAppend[V any](list, e *entry[V]) {
	e.next = list
	e.prev = list.prev
	e.prev.next = e
	e.next.prev = e
}
