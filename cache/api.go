package cache

// Cache is a sharded, reference-counted LRU cache of opaque values
// under byte-string keys. All methods are safe for concurrent use by
// multiple goroutines; operations on the same shard are linearizable,
// operations on different shards have no ordering relative to each
// other.
type Cache[V any] interface {
	// Insert admits key/value under the given charge, returning a
	// pinned handle the caller must Release (Erase removes the entry
	// from the index but does not drop the handle's reference). deleter (may be
	// nil) runs exactly once, outside any lock, when the entry's last
	// reference is dropped. A duplicate key displaces the existing
	// entry from the index; any handle already held on the old entry
	// keeps working until released.
	Insert(key []byte, value V, charge uint64, deleter Deleter[V]) Handle[V]

	// Lookup returns a pinned handle to key's entry, or ok==false on a
	// miss. The caller must Release the handle.
	Lookup(key []byte) (h Handle[V], ok bool)

	// Release drops the reference a prior Insert or Lookup handed out.
	// Exactly one Release per returned handle.
	Release(h Handle[V])

	// Erase removes key from the cache if present; a no-op otherwise.
	// Handles already held on the erased entry remain valid until
	// released, but the entry is no longer reachable via Lookup.
	Erase(key []byte)

	// Value returns the payload behind a held handle.
	Value(h Handle[V]) V

	// NewId returns a process-unique, strictly increasing identifier,
	// useful for namespacing keys across logical sub-caches.
	NewId() uint64

	// Prune evicts every entry with no outstanding handle. Pinned
	// entries are unaffected.
	Prune()

	// TotalCharge sums each shard's usage under its own lock, without
	// a global lock across shards — the result is not a consistent
	// snapshot under concurrent mutation.
	TotalCharge() uint64

	// GetOrInsert returns a handle for key, computing and inserting it
	// on a miss. Concurrent misses for the same key share one compute
	// call; every caller still gets its own independently pinned
	// handle. If compute fails, its error is returned to every waiter
	// and nothing is inserted.
	GetOrInsert(key []byte, compute func() (value V, charge uint64, deleter Deleter[V], err error)) (Handle[V], error)
}
