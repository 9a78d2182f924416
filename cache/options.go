package cache

import (
	"go.uber.org/zap"

	"github.com/dcachego/dcache/purge"
)

// Options configures a cache. MaxTotal is required; every other field has a
// usable zero value and New fills in the defaults:
//   - Segments <= 0 => tiered by MaxTotal (see Segments below)
//   - nil Purger    => spawning fast strategy
//   - nil Metrics   => NopMetrics
//   - nil Logger    => zap.NewNop()
//   - nil Clock     => process-wide monotonic seconds
type Options[K comparable, V any] struct {
	// Name identifies the cache. Segment names derive from it
	// ("<Name>0" … "<Name>N-1") and Setup registers the cache under it for
	// name-based resolution with Named.
	Name string

	// MaxTotal bounds the entry count across the whole cache. Required, > 0.
	// Each segment is bounded at MaxTotal/Segments (at least 1). The bound is soft: a
	// segment may briefly sit one entry over it between an insert and the
	// purge decision, and grows without limit under the None strategy.
	MaxTotal int

	// Segments is the partition count N. Every key deterministically routes
	// to one segment for the cache's lifetime. If 0, a tier is picked from
	// MaxTotal: >= 10_000 -> 100, >= 100 -> 10, >= 10 -> 3, else 1.
	Segments int

	// Purger is the eviction strategy run when an insert overflows a
	// segment. Nil selects purge.NewFast(true).
	Purger purge.Purger[K, V]

	// CoalesceFetch collapses concurrent Fetch misses on the same key into a
	// single producer call whose result all callers share. Off by default:
	// racing producers each run and the last Put wins.
	CoalesceFetch bool

	// Metrics receives hit/miss/expire/purge/size signals.
	Metrics Metrics

	// Logger receives construction, destroy, and purge events — never the
	// hot path.
	Logger *zap.Logger

	// Clock overrides the monotonic second source (tests).
	Clock Clock
}
