//go:build go1.18

package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Insert/Lookup/Erase semantics under arbitrary string keys
// and values. Guards against panics and checks the handle-pinning
// contract holds regardless of input.
func FuzzCache_InsertLookupErase(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}
		key := []byte(k)

		c := newTestCache(16)

		h := c.Insert(key, v, 1, nil)
		if c.Value(h) != v {
			t.Fatalf("Value(Insert handle) = %q, want %q", c.Value(h), v)
		}

		got, ok := c.Lookup(key)
		if !ok || c.Value(got) != v {
			t.Fatalf("after Insert/Lookup: want %q, got %q ok=%v", v, c.Value(got), ok)
		}
		c.Release(got)

		// Duplicate insert displaces the old entry in the index; the
		// original handle remains valid and readable until released.
		h2 := c.Insert(key, v+"!", 1, nil)
		if c.Value(h) != v {
			t.Fatalf("displaced handle's value changed: got %q want %q", c.Value(h), v)
		}
		if got2, ok := c.Lookup(key); !ok || c.Value(got2) != v+"!" {
			t.Fatalf("after displacement: want %q, got %q ok=%v", v+"!", c.Value(got2), ok)
		} else {
			c.Release(got2)
		}
		c.Release(h)
		c.Release(h2)

		c.Erase(key)
		if _, ok := c.Lookup(key); ok {
			t.Fatalf("key must be absent after Erase")
		}

		c.Erase(key) // erase of absent key must not panic
	})
}
