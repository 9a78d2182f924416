package cache

import (
	"time"

	"github.com/dcachego/dcache/purge"
)

// Cache is a sharded, size-bounded, in-memory key/value cache with per-entry
// TTL. All methods are safe for concurrent use by multiple goroutines.
//
// Every operation hashes the key once, routes to one segment, and performs a
// point operation there; segments never coordinate on the hot path. Single-key
// operations on the same segment are linearizable with respect to each other.
//
// Any method called after Destroy panics.
type Cache[K comparable, V any] interface {
	// Get returns the live value for key. A present entry whose expiry has
	// passed is deleted and reported as a miss — the only way a specific
	// expired key leaves the cache without a capacity-triggered purge.
	Get(key K) (V, bool)

	// Entry returns the raw stored entry regardless of expiry, or nil when
	// absent. Never deletes.
	Entry(key K) *Entry[K, V]

	// TTL returns the remaining life of key's entry; negative once expired.
	// The second result is false when the key is absent. Never deletes.
	TTL(key K) (time.Duration, bool)

	// Put stores value under key for ttl (truncated to whole seconds).
	// Replacing an existing key never triggers a purge; inserting a new key
	// does when it pushes the segment past its bound.
	Put(key K, value V, ttl time.Duration)

	// Del removes key. Removing an absent key is a no-op.
	Del(key K)

	// Take atomically removes and returns key's raw entry (any expiry), or
	// nil when absent.
	Take(key K) *Entry[K, V]

	// Fetch returns the live value for key, or invokes producer to compute
	// it. See Producer for the four outcome shapes. Concurrent misses on the
	// same key each run the producer unless Options.CoalesceFetch is set.
	Fetch(key K, producer Producer[K, V], ttl time.Duration) (V, error)

	// MustFetch is Fetch with the error outcome promoted to a panic carrying
	// the producer's error.
	MustFetch(key K, producer Producer[K, V], ttl time.Duration) V

	// Size sums the entry counts of all segments. O(N) and not atomic across
	// segments; expired-but-unswept entries are counted.
	Size() int

	// Clear empties every segment in turn, holding each exclusively only for
	// its own sweep. The cache stays usable.
	Clear()

	// Destroy releases every segment and, for a cache built by Setup,
	// removes its name registration. Every subsequent operation panics.
	Destroy()

	// Stats sums the per-segment hit/miss/purge counters.
	Stats() Stats

	// EachSegment hands the raw segment handles to fn, in routing order.
	// An escape hatch for administrative code: the handles expose the purge
	// contract (Range, Remove, Clear, …) directly.
	EachSegment(fn func(seg purge.Segment[K, V]))

	// Segments returns the raw segment handles in routing order.
	Segments() []purge.Segment[K, V]
}

// Stats is a point-in-time sum of per-segment counters. The sum is not atomic
// across segments.
type Stats struct {
	Hits   int64
	Misses int64
	// Purges counts capacity-triggered purger invocations.
	Purges int64
}
