package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkMix exercises a read/write mix against a warm cache. Each
// read Releases the handle it gets back, matching the real pinning
// contract rather than leaking refs into the benchmark loop.
func benchmarkMix(b *testing.B, readsPct int) {
	c := newTestCache(100_000)

	for i := 0; i < 50_000; i++ {
		k := []byte("k:" + strconv.Itoa(i))
		c.Release(c.Insert(k, "v", 1, nil))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := []byte("k:" + strconv.Itoa(i&keyMask))
			if r.Intn(100) < readsPct {
				if h, ok := c.Lookup(k); ok {
					c.Release(h)
				}
			} else {
				c.Release(c.Insert(k, "v", 1, nil))
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// benchmarkGetOrInsert measures the singleflight-coalesced convenience
// path against a small hot keyspace, where most calls are expected to
// land on the fast Lookup-hit branch.
func benchmarkGetOrInsert(b *testing.B, hotKeys int) {
	c := newTestCache(100_000)
	compute := func() (string, uint64, Deleter[string], error) {
		return "v", 1, nil, nil
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			k := []byte("k:" + strconv.Itoa(r.Intn(hotKeys)))
			h, err := c.GetOrInsert(k, compute)
			if err != nil {
				b.Fatal(err)
			}
			c.Release(h)
		}
	})
}

func BenchmarkCache_GetOrInsert_Hot100(b *testing.B)  { benchmarkGetOrInsert(b, 100) }
func BenchmarkCache_GetOrInsert_Hot10000(b *testing.B) { benchmarkGetOrInsert(b, 10_000) }
