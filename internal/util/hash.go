// Package util contains internal helpers (key hashing, segment mapping, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"encoding/binary"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// compositeSeed backs the maphash fallback for key types without a dedicated
// fast path. The seed is created once at init, so every key routes to the same
// segment for the whole process lifetime.
var compositeSeed = maphash.MakeSeed()

// HashKey hashes a routing key of any comparable type.
// Strings and the integer widths take an xxhash fast path; everything else
// (structs, arrays, pointers used as composite keys) goes through
// maphash.Comparable. Both are stable within a process and neither allocates.
func HashKey[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case int:
		return hashUint64(uint64(v))
	case int8:
		return hashUint64(uint64(uint8(v)))
	case int16:
		return hashUint64(uint64(uint16(v)))
	case int32:
		return hashUint64(uint64(uint32(v)))
	case int64:
		return hashUint64(uint64(v))
	case uint:
		return hashUint64(uint64(v))
	case uint8:
		return hashUint64(uint64(v))
	case uint16:
		return hashUint64(uint64(v))
	case uint32:
		return hashUint64(uint64(v))
	case uint64:
		return hashUint64(v)
	case uintptr:
		return hashUint64(uint64(v))
	default:
		return maphash.Comparable(compositeSeed, k)
	}
}

// hashUint64 hashes the 8 little-endian bytes of u. The scratch array stays
// on the stack; xxhash.Sum64 does not retain it.
func hashUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}
