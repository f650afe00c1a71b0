package cache

// Options configures a cache instance. Zero value is mostly usable:
// Capacity 0 disables caching (Insert still hands out pinned handles,
// but nothing is retained for Lookup — see the package doc), and nil
// Hash/Metrics fall back to fingerprint.Hash/NoopMetrics in NewCache.
type Options[V any] struct {
	// Capacity is the total charge budget, split evenly (ceil) across
	// shards.
	Capacity uint64

	// Shards overrides the fixed 16-way default. Rounded up to the
	// next power of two; zero keeps the default.
	Shards int

	// Hash overrides the default key fingerprint. The cache only
	// requires reasonable high-bit entropy; see the fingerprint
	// package for the contract shard selection and the handle table
	// both rely on.
	Hash func(key []byte) uint32

	// Metrics receives Hit/Miss/Evict/Size signals.
	Metrics Metrics
}
