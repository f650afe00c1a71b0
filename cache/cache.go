package cache

import (
	"sync"

	"github.com/coroner4817/blockcache/fingerprint"
	"github.com/coroner4817/blockcache/internal/singleflight"
	"github.com/coroner4817/blockcache/internal/util"
)

// defaultShardBits fixes the façade at 16 shards unless Options.Shards
// overrides it. The high defaultShardBits of the key hash select the
// shard; each shard's own handle table uses the low bits of the same
// hash, so picking from the top keeps the two choices decorrelated.
const defaultShardBits = 4

// shardedCache presents a single Cache over N power-of-two shards,
// each an independent lruShard guarded by its own mutex.
type shardedCache[V any] struct {
	shards    []*lruShard[V]
	hash      func(key []byte) uint32
	shardBits int

	idMu   sync.Mutex
	lastID uint64

	sf *singleflight.Group[struct{}]
}

// NewCache constructs a cache per opt. Capacity 0 disables caching:
// Insert still allocates and returns a handle, but nothing becomes a
// cache member and Lookup always misses.
func NewCache[V any](opt Options[V]) Cache[V] {
	hash := opt.Hash
	if hash == nil {
		hash = fingerprint.Hash
	}
	metrics := opt.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	n := 1 << defaultShardBits
	bits := defaultShardBits
	if opt.Shards > 0 {
		n = int(util.NextPow2(uint64(opt.Shards)))
		bits = util.Log2Ceil(n)
		if !util.IsPowerOfTwo(uint64(n)) {
			panic("cache: shard count must be a power of two")
		}
	}

	perShard := (opt.Capacity + uint64(n) - 1) / uint64(n)
	shards := make([]*lruShard[V], n)
	for i := range shards {
		shards[i] = newLRUShard[V](perShard, metrics)
	}

	return &shardedCache[V]{
		shards:    shards,
		hash:      hash,
		shardBits: bits,
		sf:        &singleflight.Group[struct{}]{},
	}
}

func (c *shardedCache[V]) shardFor(hash uint32) *lruShard[V] {
	idx := util.ShardIndex(hash, c.shardBits)
	return c.shards[idx]
}

func (c *shardedCache[V]) Insert(key []byte, value V, charge uint64, deleter Deleter[V]) Handle[V] {
	h := c.hash(key)
	s := c.shardFor(h)
	return Handle[V]{e: s.Insert(key, h, value, charge, deleter), s: s}
}

func (c *shardedCache[V]) Lookup(key []byte) (Handle[V], bool) {
	h := c.hash(key)
	s := c.shardFor(h)
	e := s.Lookup(key, h)
	if e == nil {
		return Handle[V]{}, false
	}
	return Handle[V]{e: e, s: s}, true
}

// Release recovers the owning shard from the handle itself — the shard
// that created an entry stays responsible for its refcount even after
// Erase removes the entry from that shard's index.
func (c *shardedCache[V]) Release(h Handle[V]) {
	if !h.valid() {
		return
	}
	if c.shardFor(h.e.hash) != h.s {
		panic("cache: handle released to a cache that did not create it")
	}
	h.s.Release(h.e)
}

func (c *shardedCache[V]) Erase(key []byte) {
	h := c.hash(key)
	c.shardFor(h).Erase(key, h)
}

func (c *shardedCache[V]) Value(h Handle[V]) V {
	return h.e.value
}

func (c *shardedCache[V]) NewId() uint64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	c.lastID++
	return c.lastID
}

func (c *shardedCache[V]) Prune() {
	for _, s := range c.shards {
		s.Prune()
	}
}

// TotalCharge is deliberately not a consistent snapshot: each shard is
// read under its own lock, independently of the others.
func (c *shardedCache[V]) TotalCharge() uint64 {
	var total uint64
	for _, s := range c.shards {
		total += s.TotalCharge()
	}
	return total
}

// GetOrInsert composes Lookup/Insert with singleflight coalescing: the
// first caller to miss on key runs compute and Inserts its result,
// every other concurrent caller for the same key waits for that to
// finish and then performs its own Lookup, so each caller still ends
// up holding an independently pinned handle rather than sharing one.
func (c *shardedCache[V]) GetOrInsert(key []byte, compute func() (V, uint64, Deleter[V], error)) (Handle[V], error) {
	if h, ok := c.Lookup(key); ok {
		return h, nil
	}

	_, err := c.sf.Do(string(key), func() (struct{}, error) {
		if h, ok := c.Lookup(key); ok {
			c.Release(h)
			return struct{}{}, nil
		}
		value, charge, deleter, err := compute()
		if err != nil {
			return struct{}{}, err
		}
		c.Release(c.Insert(key, value, charge, deleter))
		return struct{}{}, nil
	})
	if err != nil {
		return Handle[V]{}, err
	}

	if h, ok := c.Lookup(key); ok {
		return h, nil
	}
	return Handle[V]{}, ErrNotRetained
}
