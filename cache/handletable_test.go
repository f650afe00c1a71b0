package cache

import "testing"

func mkEntry(key string, hash uint32) *entry[int] {
	return &entry[int]{key: []byte(key), hash: hash}
}

func TestHandleTable_LookupMiss(t *testing.T) {
	t.Parallel()
	tbl := newHandleTable[int]()
	if got := tbl.Lookup([]byte("x"), 1); got != nil {
		t.Fatalf("expected miss, got %v", got)
	}
}

func TestHandleTable_InsertLookupRemove(t *testing.T) {
	t.Parallel()
	tbl := newHandleTable[int]()

	e := mkEntry("a", 42)
	if old := tbl.Insert(e); old != nil {
		t.Fatalf("expected no displacement, got %v", old)
	}
	if got := tbl.Lookup([]byte("a"), 42); got != e {
		t.Fatalf("lookup after insert: got %v want %v", got, e)
	}

	removed := tbl.Remove([]byte("a"), 42)
	if removed != e {
		t.Fatalf("remove: got %v want %v", removed, e)
	}
	if got := tbl.Lookup([]byte("a"), 42); got != nil {
		t.Fatalf("lookup after remove: want miss, got %v", got)
	}
}

func TestHandleTable_RemoveAbsentIsNoop(t *testing.T) {
	t.Parallel()
	tbl := newHandleTable[int]()
	if got := tbl.Remove([]byte("nope"), 7); got != nil {
		t.Fatalf("remove of absent key: want nil, got %v", got)
	}
}

func TestHandleTable_InsertDuplicateDisplaces(t *testing.T) {
	t.Parallel()
	tbl := newHandleTable[int]()

	e1 := mkEntry("k", 5)
	e2 := mkEntry("k", 5)

	if old := tbl.Insert(e1); old != nil {
		t.Fatalf("first insert must not displace, got %v", old)
	}
	old := tbl.Insert(e2)
	if old != e1 {
		t.Fatalf("second insert must displace e1, got %v", old)
	}
	if got := tbl.Lookup([]byte("k"), 5); got != e2 {
		t.Fatalf("lookup must return the newer entry, got %v", got)
	}
	if tbl.elems != 1 {
		t.Fatalf("displacement must not increment elems, got %d", tbl.elems)
	}
}

// Hash collisions (distinct keys, same hash) must be resolved by chaining
// and key equality, never conflated.
func TestHandleTable_HashCollisionChaining(t *testing.T) {
	t.Parallel()
	tbl := newHandleTable[int]()

	a := mkEntry("alpha", 99)
	b := mkEntry("beta", 99)
	tbl.Insert(a)
	tbl.Insert(b)

	if got := tbl.Lookup([]byte("alpha"), 99); got != a {
		t.Fatalf("lookup alpha: got %v want %v", got, a)
	}
	if got := tbl.Lookup([]byte("beta"), 99); got != b {
		t.Fatalf("lookup beta: got %v want %v", got, b)
	}
	if tbl.elems != 2 {
		t.Fatalf("expected 2 elems, got %d", tbl.elems)
	}

	removed := tbl.Remove([]byte("alpha"), 99)
	if removed != a {
		t.Fatalf("remove alpha: got %v", removed)
	}
	if got := tbl.Lookup([]byte("beta"), 99); got != b {
		t.Fatalf("beta must survive removal of alpha, got %v", got)
	}
}

// Growth must preserve every resident entry and keep them all reachable.
func TestHandleTable_GrowsAndPreservesEntries(t *testing.T) {
	t.Parallel()
	tbl := newHandleTable[int]()

	const n = 200
	entries := make([]*entry[int], n)
	for i := 0; i < n; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		h := uint32(i) * 2654435761 // arbitrary spread
		e := &entry[int]{key: key, hash: h}
		entries[i] = e
		if old := tbl.Insert(e); old != nil {
			t.Fatalf("unexpected displacement at i=%d", i)
		}
	}
	if tbl.elems != n {
		t.Fatalf("elems = %d, want %d", tbl.elems, n)
	}
	if tbl.length <= n/2 {
		t.Fatalf("table did not grow enough: length=%d elems=%d", tbl.length, n)
	}
	for i, e := range entries {
		if got := tbl.Lookup(e.key, e.hash); got != e {
			t.Fatalf("entry %d lost after growth: got %v want %v", i, got, e)
		}
	}
}
