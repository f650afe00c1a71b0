package cache

import (
	"sync"

	"github.com/coroner4817/blockcache/internal/util"
)

// pendingDeleter stages a (key, value, deleter) triple whose refcount
// reached zero while a shard's mutex was held. No deleter ever runs
// under that mutex: every public lruShard method collects the
// deleters it triggers into a local slice, unlocks, then drains it.
type pendingDeleter[V any] struct {
	key     []byte
	value   V
	deleter Deleter[V]
}

func runDeleters[V any](pending []pendingDeleter[V]) {
	for _, p := range pending {
		if p.deleter != nil {
			p.deleter(p.key, p.value)
		}
	}
}

// lruShard is one partition of the sharded cache: its own mutex, its
// own handle table, and two intrusive circular lists — lru (refs==1,
// unpinned, ordered oldest-at-next/newest-at-prev) and inUse (refs>=2,
// pinned, unordered). An entry with inCache==true is always on exactly
// one of the two; an entry with inCache==false is on neither and lives
// only because an external handle still references it.
type lruShard[V any] struct {
	mu sync.Mutex

	capacity uint64
	usage    uint64
	count    int

	lru   entry[V] // sentinel; lru.next is the oldest (eviction candidate)
	inUse entry[V] // sentinel; unordered

	table *handleTable[V]

	metrics Metrics

	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

func newLRUShard[V any](capacity uint64, metrics Metrics) *lruShard[V] {
	s := &lruShard[V]{capacity: capacity, table: newHandleTable[V](), metrics: metrics}
	s.lru.next, s.lru.prev = &s.lru, &s.lru
	s.inUse.next, s.inUse.prev = &s.inUse, &s.inUse
	return s
}

// ref pins e: if it was sitting on lru with no external reference
// (refs==1), move it to inUse before bumping the count. Called on
// Lookup hits.
func (s *lruShard[V]) ref(e *entry[V]) {
	if e.refs == 1 && e.inCache {
		listRemove(e)
		listAppend(&s.inUse, e)
	}
	e.refs++
}

// unref drops e's reference count by one. If it reaches zero the entry
// is destroyed (deleter staged into pending, not run here); if it
// drops to exactly 1 while still a cache member, e moves from inUse to
// lru — it has no more external holders but the cache itself still
// references it.
func (s *lruShard[V]) unref(e *entry[V], pending *[]pendingDeleter[V]) {
	if e.refs == 0 {
		panic("cache: unref of entry with refs == 0")
	}
	e.refs--
	switch {
	case e.refs == 0:
		if e.inCache {
			panic("cache: entry reached refs == 0 while still in_cache")
		}
		*pending = append(*pending, pendingDeleter[V]{key: e.key, value: e.value, deleter: e.deleter})
	case e.inCache && e.refs == 1:
		listRemove(e)
		listAppend(&s.lru, e)
	}
}

// finishErase requires e to have just been removed from the handle
// table with e.inCache still true. It detaches e from its list, clears
// inCache, backs usage/count out, and unrefs the cache's own reference.
func (s *lruShard[V]) finishErase(e *entry[V], pending *[]pendingDeleter[V]) bool {
	if e == nil {
		return false
	}
	if !e.inCache {
		panic("cache: finishErase on entry not in cache")
	}
	listRemove(e)
	e.inCache = false
	s.usage -= e.charge
	s.count--
	s.unref(e, pending)
	return true
}

// Insert allocates a new entry, admits it (refs=2: one for the cache,
// one for the returned handle) unless capacity is 0, displaces any
// existing entry under the same key, then evicts from lru until usage
// is back at or under capacity. Pinned entries (on inUse) are never
// eviction candidates, so usage may exceed capacity indefinitely if
// everything is pinned — capacity is a soft ceiling in that case.
func (s *lruShard[V]) Insert(key []byte, hash uint32, value V, charge uint64, deleter Deleter[V]) *entry[V] {
	var pending []pendingDeleter[V]
	s.mu.Lock()

	e := &entry[V]{
		key:     append([]byte(nil), key...),
		hash:    hash,
		value:   value,
		deleter: deleter,
		charge:  charge,
		refs:    1, // for the handle this call returns
	}

	if s.capacity > 0 {
		e.refs++ // for the cache's own reference
		e.inCache = true
		listAppend(&s.inUse, e)
		s.usage += charge
		s.count++
		if old := s.table.Insert(e); old != nil {
			s.evicts.Add(1)
			s.metrics.Evict(EvictDisplaced)
			s.finishErase(old, &pending)
		}
	}

	for s.usage > s.capacity && s.lru.next != &s.lru {
		victim := s.lru.next
		if victim.refs != 1 {
			panic("cache: lru entry has refs != 1")
		}
		if removed := s.table.Remove(victim.key, victim.hash); removed != victim {
			panic("cache: handle table inconsistent with lru list")
		}
		s.evicts.Add(1)
		s.metrics.Evict(EvictCapacity)
		s.finishErase(victim, &pending)
	}

	s.metrics.Size(s.count, s.usage)
	s.mu.Unlock()

	runDeleters(pending)
	return e
}

// Lookup returns the matching entry with its reference count bumped
// (pinning it), or nil on a miss. A hit may migrate the entry from lru
// to inUse (see ref); a miss never destroys anything, so no deleter
// staging is needed here.
func (s *lruShard[V]) Lookup(key []byte, hash uint32) *entry[V] {
	s.mu.Lock()
	e := s.table.Lookup(key, hash)
	if e != nil {
		s.ref(e)
		s.hits.Add(1)
		s.metrics.Hit()
	} else {
		s.misses.Add(1)
		s.metrics.Miss()
	}
	s.mu.Unlock()
	return e
}

// Release drops the reference a Lookup or Insert handed out.
func (s *lruShard[V]) Release(e *entry[V]) {
	var pending []pendingDeleter[V]
	s.mu.Lock()
	s.unref(e, &pending)
	s.mu.Unlock()
	runDeleters(pending)
}

// Erase removes key from the index if present; a no-op if absent. A
// pinned entry becomes unfindable immediately but is only destroyed
// once its last handle is released.
func (s *lruShard[V]) Erase(key []byte, hash uint32) {
	var pending []pendingDeleter[V]
	s.mu.Lock()
	if removed := s.table.Remove(key, hash); removed != nil {
		s.evicts.Add(1)
		s.metrics.Evict(EvictErased)
		s.finishErase(removed, &pending)
		s.metrics.Size(s.count, s.usage)
	}
	s.mu.Unlock()
	runDeleters(pending)
}

// Prune removes every unpinned entry (everything currently on lru).
// Entries on inUse are untouched.
func (s *lruShard[V]) Prune() {
	var pending []pendingDeleter[V]
	s.mu.Lock()
	for s.lru.next != &s.lru {
		e := s.lru.next
		if e.refs != 1 {
			panic("cache: lru entry has refs != 1")
		}
		if removed := s.table.Remove(e.key, e.hash); removed != e {
			panic("cache: handle table inconsistent with lru list")
		}
		s.evicts.Add(1)
		s.metrics.Evict(EvictPruned)
		s.finishErase(e, &pending)
	}
	s.metrics.Size(s.count, s.usage)
	s.mu.Unlock()
	runDeleters(pending)
}

// TotalCharge returns the shard's current usage.
func (s *lruShard[V]) TotalCharge() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// lruLen and inUseLen are test-only invariant checks, the Go shape of
// the original LRUCache's Get_lru_size/Get_in_use_size debug
// accessors — used by _test.go files, never exported.
func (s *lruShard[V]) lruLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for e := s.lru.next; e != &s.lru; e = e.next {
		n++
	}
	return n
}

func (s *lruShard[V]) inUseLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for e := s.inUse.next; e != &s.inUse; e = e.next {
		n++
	}
	return n
}

// hitCount, missCount and evictCount read the shard's own lock-free
// counters, independent of whatever Metrics implementation Options
// supplied. Test-only.
func (s *lruShard[V]) hitCount() int64   { return s.hits.Load() }
func (s *lruShard[V]) missCount() int64  { return s.misses.Load() }
func (s *lruShard[V]) evictCount() uint64 { return s.evicts.Load() }
