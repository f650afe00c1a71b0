// Package cache implements a concurrent, sharded, reference-counted
// LRU cache of opaque values under byte-string keys — the block/table
// cache discipline of an embedded key-value storage engine.
//
// Design
//
//   - Entries (entry[V]) carry their own list links (lru/inUse) and
//     hash-chain link (nextHash): moving one between lists, or
//     rehashing it into a bigger bucket array, never allocates.
//   - Each shard (lruShard[V]) keeps two intrusive circular lists —
//     lru for entries with no outstanding handle, inUse for entries
//     with one or more — plus a private chained hash index
//     (handleTable[V]), all behind one mutex. refs == 1 while in_cache
//     means "on lru"; refs >= 2 means "on inUse"; the cache itself
//     always holds one of those references while an entry is a member.
//   - The façade (shardedCache[V]) hashes a key once and dispatches to
//     one of 16 shards (Options.Shards overrides this) selected by the
//     hash's high bits, since each shard's handle table already uses
//     the low bits for its own bucket selection.
//   - Deleters never run under a shard's mutex: every mutating shard
//     method stages (key, value, deleter) triples whose refcount hit
//     zero into a local slice, unlocks, then drains it.
//
// Basic usage
//
//	c := cache.NewCache[[]byte](cache.Options[[]byte]{Capacity: 1 << 20})
//	h := c.Insert([]byte("block-7"), blockBytes, uint64(len(blockBytes)), nil)
//	defer c.Release(h)
//	v := c.Value(h)
//
// Lookup/Release
//
//	if h, ok := c.Lookup([]byte("block-7")); ok {
//	    defer c.Release(h)
//	    use(c.Value(h))
//	}
//
// Get-or-compute
//
//	h, err := c.GetOrInsert([]byte("block-7"), func() ([]byte, uint64, cache.Deleter[[]byte], error) {
//	    b, err := readBlockFromDisk(7)
//	    return b, uint64(len(b)), nil, err
//	})
//
// Exporting metrics (see metrics/prom)
//
//	m := prom.New(nil, "blockcache", "demo", nil)
//	c := cache.NewCache[[]byte](cache.Options[[]byte]{Capacity: 1 << 20, Metrics: m})
//
// Thread-safety
//
// All Cache methods are safe for concurrent use. Operations on the
// same shard are linearizable; operations on different shards have no
// ordering relative to each other. A handle is usable from any
// goroutine without further synchronization, provided the final
// Release happens-before the value is considered freed.
package cache
