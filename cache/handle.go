package cache

// Handle is an opaque, caller-held reference to an entry that pins it
// against eviction and destruction until Release is called. It is not
// comparable across Cache instances and must be released exactly once
// per Insert/Lookup/GetOrInsert call that produced it.
//
// A Handle carries the shard that created its entry (recovered from
// the entry's own hash) because Release must land on the shard that
// owns the entry even after Erase has made it unreachable by Lookup —
// handle lifetime is tied to shard identity, not to current index
// membership.
type Handle[V any] struct {
	e *entry[V]
	s *lruShard[V]
}

// valid reports whether h was actually produced by Insert/Lookup, as
// opposed to the zero Handle returned alongside a Lookup miss.
func (h Handle[V]) valid() bool { return h.e != nil }
