package cache

// strErr is a minimal error type for the handful of sentinel errors the
// cache exposes; there is no recoverable error taxonomy at the cache
// boundary (programming faults panic instead, see shard.go), so a
// third-party errors package has nothing to do here.
type strErr string

func (e strErr) Error() string { return string(e) }

// ErrNotRetained is returned by GetOrInsert when compute succeeded but
// the freshly inserted entry could not be looked back up. This always
// happens with Options.Capacity == 0 (caching disabled), where every
// Insert is immediately ineligible for Lookup; it also happens when a
// concurrent Insert evicts the entry, or an Erase removes it, before
// the caller's own Lookup.
var ErrNotRetained = strErr("cache: computed value was not retained (capacity disabled)")
