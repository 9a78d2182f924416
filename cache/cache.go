package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dcachego/dcache/internal/singleflight"
	"github.com/dcachego/dcache/internal/util"
	"github.com/dcachego/dcache/purge"
)

// cache is the sharded cache implementation behind the Cache interface.
// Routing, segment count, per-segment bound, and purger are fixed at
// construction; every operation performs one routing hash and one segment
// operation.
type cache[K comparable, V any] struct {
	name      string
	shards    []*shard[K, V]
	purger    purge.Purger[K, V]
	coalesce  bool
	destroyed atomic.Bool

	metrics Metrics
	logger  *zap.Logger
	clock   Clock

	// singleflight group backing CoalesceFetch.
	sf singleflight.Group[K, V]
}

// New constructs a cache with the provided Options. It allocates all segments
// up front; their count and the key→segment mapping never change afterwards.
// Panics if MaxTotal is not positive.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.MaxTotal <= 0 {
		panic("dcache: MaxTotal must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Clock == nil {
		opt.Clock = processClock
	}
	if opt.Purger == nil {
		opt.Purger = purge.NewFast[K, V](true)
	}

	n := opt.Segments
	if n <= 0 {
		n = util.DefaultSegmentCount(opt.MaxTotal)
	}
	maxPer := opt.MaxTotal / n
	if maxPer < 1 {
		maxPer = 1
	}

	shards := make([]*shard[K, V], n)
	for i := range shards {
		shards[i] = newShard[K, V](fmt.Sprintf("%s%d", opt.Name, i), maxPer, opt.Metrics, opt.Logger, opt.Clock)
	}

	opt.Logger.Info("cache ready",
		zap.String("cache", opt.Name),
		zap.Int("segments", n),
		zap.Int("max_per_segment", maxPer))

	return &cache[K, V]{
		name:     opt.Name,
		shards:   shards,
		purger:   opt.Purger,
		coalesce: opt.CoalesceFetch,
		metrics:  opt.Metrics,
		logger:   opt.Logger,
		clock:    opt.Clock,
	}
}

// ---- Cache[K,V] implementation ----

func (c *cache[K, V]) Get(key K) (V, bool) {
	c.check()
	return c.route(key).get(key, c.clock.Now())
}

func (c *cache[K, V]) Entry(key K) *Entry[K, V] {
	c.check()
	return c.route(key).entry(key)
}

func (c *cache[K, V]) TTL(key K) (time.Duration, bool) {
	c.check()
	e := c.route(key).entry(key)
	if e == nil {
		return 0, false
	}
	return e.TTL(c.clock.Now()), true
}

// Put stores value under key for ttl. If the key was new and the segment is
// now over its bound, the configured purger runs; by the time it does, the
// insert is already complete, so a purger fault can never corrupt the Put.
func (c *cache[K, V]) Put(key K, value V, ttl time.Duration) {
	c.check()
	s := c.route(key)
	e := &Entry[K, V]{key: key, value: value, expiry: c.clock.Now() + int64(ttl/time.Second)}

	grew, n := s.put(e)
	c.metrics.Size(n)
	if grew && n > s.maxEntries {
		s.purges.Add(1)
		c.metrics.Purge()
		c.purger.Purge(s, key, value, e.expiry)
	}
}

func (c *cache[K, V]) Del(key K) {
	c.check()
	c.route(key).del(key)
}

func (c *cache[K, V]) Take(key K) *Entry[K, V] {
	c.check()
	return c.route(key).take(key)
}

func (c *cache[K, V]) Size() int {
	c.check()
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

func (c *cache[K, V]) Clear() {
	c.check()
	for _, s := range c.shards {
		s.Clear()
	}
}

// Destroy releases every segment and unregisters the cache's name. Exactly
// one caller wins; everyone else — including a second Destroy — panics.
func (c *cache[K, V]) Destroy() {
	if !c.destroyed.CompareAndSwap(false, true) {
		panic("dcache: use of destroyed cache")
	}
	for _, s := range c.shards {
		s.destroy()
	}
	if c.name != "" {
		unregister(c.name, Cache[K, V](c))
	}
	c.logger.Info("cache destroyed", zap.String("cache", c.name))
}

func (c *cache[K, V]) Stats() Stats {
	c.check()
	var st Stats
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Purges += s.purges.Load()
	}
	return st
}

func (c *cache[K, V]) EachSegment(fn func(seg purge.Segment[K, V])) {
	c.check()
	for _, s := range c.shards {
		fn(s)
	}
}

func (c *cache[K, V]) Segments() []purge.Segment[K, V] {
	c.check()
	segs := make([]purge.Segment[K, V], len(c.shards))
	for i, s := range c.shards {
		segs[i] = s
	}
	return segs
}

// ---- helpers ----

// route picks the segment for a key. Pure: the same key always lands on the
// same segment for the cache's lifetime.
func (c *cache[K, V]) route(k K) *shard[K, V] {
	return c.shards[util.SegmentIndex(util.HashKey(k), len(c.shards))]
}

// check panics when the cache has been destroyed. Operating on a destroyed
// cache is a lifecycle bug in the host, not a runtime condition to handle.
func (c *cache[K, V]) check() {
	if c.destroyed.Load() {
		panic("dcache: use of destroyed cache")
	}
}
