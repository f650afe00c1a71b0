// Package fingerprint supplies the cache's default key hash.
//
// The cache treats its hash function as an external collaborator: it
// requires a 32-bit value with reasonable high-bit entropy (the sharded
// façade uses the top bits for shard selection, the handle table uses
// the bottom bits for bucket selection) but does not care how that value
// is produced. Hash is the default; callers with stricter requirements
// can supply their own via cache.Options.Hash.
package fingerprint

import "github.com/cespare/xxhash/v2"

// Hash folds the 64-bit xxhash of key down to 32 bits by xoring its
// halves, which keeps entropy from both the high and low 32 bits of the
// wider digest instead of just truncating it.
func Hash(key []byte) uint32 {
	h := xxhash.Sum64(key)
	return uint32(h>>32) ^ uint32(h)
}
