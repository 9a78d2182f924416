package cache

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dcachego/dcache/internal/util"
)

// shard is one independent partition of a cache: a key→entry map behind an
// RWMutex plus the purge flag that serializes eviction work. It implements
// purge.Segment, which is also the handle custom purgers and the segment
// iteration escape hatch receive.
type shard[K comparable, V any] struct {
	name       string
	maxEntries int

	// ---- guarded by mu ----
	mu sync.RWMutex
	m  map[K]*Entry[K, V]

	// purging is the purge lock: whoever flips it false→true owns the only
	// purge allowed on this shard until they release it. Unrelated point
	// operations are never blocked by it.
	purging atomic.Bool

	metrics Metrics
	logger  *zap.Logger
	clock   Clock

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	purges util.PaddedAtomicInt64
}

func newShard[K comparable, V any](name string, maxEntries int, metrics Metrics, logger *zap.Logger, clock Clock) *shard[K, V] {
	return &shard[K, V]{
		name:       name,
		maxEntries: maxEntries,
		m:          make(map[K]*Entry[K, V], maxEntries),
		metrics:    metrics,
		logger:     logger,
		clock:      clock,
	}
}

// get returns the live value for k. A present entry whose expiry has passed
// is deleted before reporting the miss.
func (s *shard[K, V]) get(k K, now int64) (V, bool) {
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()

	if !ok {
		s.misses.Add(1)
		s.metrics.Miss()
		var zero V
		return zero, false
	}
	if e.expiry <= now {
		// Upgrade to a write lock and re-check: a concurrent Put may have
		// replaced the entry with a fresh one in the meantime.
		s.mu.Lock()
		if cur, still := s.m[k]; still && cur == e {
			delete(s.m, k)
			s.metrics.Expire()
		}
		s.mu.Unlock()

		s.misses.Add(1)
		s.metrics.Miss()
		var zero V
		return zero, false
	}

	s.hits.Add(1)
	s.metrics.Hit()
	return e.value, true
}

// entry returns the raw entry regardless of expiry, or nil.
func (s *shard[K, V]) entry(k K) *Entry[K, V] {
	s.mu.RLock()
	e := s.m[k]
	s.mu.RUnlock()
	return e
}

// put stores e unconditionally and reports whether the key was new, along
// with the shard's entry count after the insert.
func (s *shard[K, V]) put(e *Entry[K, V]) (grew bool, n int) {
	s.mu.Lock()
	_, exists := s.m[e.key]
	s.m[e.key] = e
	n = len(s.m)
	s.mu.Unlock()
	return !exists, n
}

func (s *shard[K, V]) del(k K) {
	s.mu.Lock()
	delete(s.m, k)
	s.mu.Unlock()
}

// take removes and returns k's entry in one critical section.
func (s *shard[K, V]) take(k K) *Entry[K, V] {
	s.mu.Lock()
	e, ok := s.m[k]
	if ok {
		delete(s.m, k)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return e
}

// destroy drops the shard's storage. The owning cache guards against any
// further use.
func (s *shard[K, V]) destroy() {
	s.mu.Lock()
	s.m = nil
	s.mu.Unlock()
}

// ---- purge.Segment ----

// Name identifies the segment ("<cache name><index>").
func (s *shard[K, V]) Name() string { return s.name }

// Len returns the current entry count.
func (s *shard[K, V]) Len() int {
	s.mu.RLock()
	n := len(s.m)
	s.mu.RUnlock()
	return n
}

// MaxEntries returns the soft per-segment bound.
func (s *shard[K, V]) MaxEntries() int { return s.maxEntries }

// Now returns the cache's monotonic second counter.
func (s *shard[K, V]) Now() int64 { return s.clock.Now() }

// TryAcquire takes the purge lock; false means a purge is already running.
func (s *shard[K, V]) TryAcquire() bool { return s.purging.CompareAndSwap(false, true) }

// Release drops the purge lock.
func (s *shard[K, V]) Release() { s.purging.Store(false) }

// Range calls fn for each entry until fn returns false. It iterates a
// snapshot taken under the read lock, so fn may call Remove, Set, or Clear
// without deadlocking.
func (s *shard[K, V]) Range(fn func(key K, expiry int64) bool) {
	s.mu.RLock()
	snapshot := make([]*Entry[K, V], 0, len(s.m))
	for _, e := range s.m {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e.key, e.expiry) {
			return
		}
	}
}

// Remove deletes key and reports whether it was present.
func (s *shard[K, V]) Remove(key K) bool {
	s.mu.Lock()
	_, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	s.mu.Unlock()
	return ok
}

// RemoveBatch deletes up to limit entries in map iteration order.
// Deleting during range is safe for Go maps, so the sweep runs in one
// critical section without snapshotting.
func (s *shard[K, V]) RemoveBatch(limit int) int {
	removed := 0
	s.mu.Lock()
	for k := range s.m {
		if removed >= limit {
			break
		}
		delete(s.m, k)
		removed++
	}
	n := len(s.m)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.Size(n)
		s.logger.Debug("segment purged",
			zap.String("segment", s.name),
			zap.Int("removed", removed),
			zap.Int("remaining", n))
	}
	return removed
}

// RemoveExpired deletes every entry whose expiry precedes now.
func (s *shard[K, V]) RemoveExpired(now int64) int {
	removed := 0
	s.mu.Lock()
	for k, e := range s.m {
		if e.expiry < now {
			delete(s.m, k)
			removed++
		}
	}
	n := len(s.m)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.Size(n)
		s.logger.Debug("segment purged expired",
			zap.String("segment", s.name),
			zap.Int("removed", removed),
			zap.Int("remaining", n))
	}
	return removed
}

// Clear deletes every entry, holding the shard exclusively for the sweep.
func (s *shard[K, V]) Clear() {
	s.mu.Lock()
	s.m = make(map[K]*Entry[K, V], s.maxEntries)
	s.mu.Unlock()
	s.metrics.Size(0)
}

// Set stores an entry with an absolute expiry (purge.Segment contract; the
// blocking strategy reinstates its triggering entry through this).
func (s *shard[K, V]) Set(key K, value V, expiry int64) {
	s.mu.Lock()
	s.m[key] = &Entry[K, V]{key: key, value: value, expiry: expiry}
	s.mu.Unlock()
}
