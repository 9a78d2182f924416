// Package cache provides a fast, generic, sharded in-memory key/value cache
// with per-entry TTL, a hard-but-soft entry bound enforced by pluggable purge
// strategies, a fetch-or-compute path with result-tagged producers, and both
// handle-based and name-based binding.
//
// # Design
//
//   - Concurrency: the cache is split into N segments, each an RWMutex-guarded
//     map. A stable non-cryptographic hash routes every key to one segment for
//     the cache's lifetime; segments never coordinate on the hot path. If not
//     set explicitly, N is tiered by MaxTotal (100 / 10 / 3 / 1).
//
//   - Bounding: each segment is bounded at MaxTotal/N entries. The bound is
//     enforced opportunistically — when an insert of a NEW key pushes a
//     segment over, the configured purge strategy runs. There is no strict
//     LRU ordering and no background sweeper; eviction is approximate by
//     design.
//
//   - Purge strategies (package purge): a fast bounded sweep in iteration
//     order, an expired-first sweep with a fast fallback, a blocking
//     clear-and-reinstate, a no-op, or a custom function. The scanning
//     strategies come in spawning and inline flavors and serialize through a
//     per-segment purge lock, so at most one purge runs per segment while
//     reads and writes continue.
//
//   - TTL: expiries are absolute instants on a process-local monotonic second
//     clock, immune to wall-clock adjustments. Expiry is lazy: a dead entry
//     lingers until Get touches its key or a purge sweeps its segment.
//
//   - Fetch: on miss, a caller-supplied producer computes the value and tags
//     its outcome — Ok, OkFor (own ttl), Skip (don't cache), or Fail.
//     Concurrent misses race by default; Options.CoalesceFetch collapses them
//     into one shared producer call.
//
//   - Binding: New returns a handle with everything baked in. Setup
//     additionally registers the cache under Options.Name so decoupled call
//     sites can resolve it with Named[K, V](name) at each call.
//
//   - Observability: Options.Metrics receives Hit/Miss/Expire/Purge/Size
//     signals (NopMetrics by default; a Prometheus adapter lives in
//     metrics/prom) and Options.Logger gets construction, destroy, and purge
//     events (zap.NewNop by default).
//
// # Basic usage
//
//	c := cache.New[string, string](cache.Options[string, string]{MaxTotal: 10_000})
//	c.Put("a", "1", time.Minute)
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Del("a")
//
// # Fetch-or-compute
//
//	v, err := c.Fetch("user:42", func(key string) cache.Result[string] {
//	    row, err := db.Load(key)
//	    if err != nil {
//	        return cache.Fail[string](err)
//	    }
//	    return cache.Ok(row)
//	}, 5*time.Minute)
//
// # Choosing a purge strategy
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    MaxTotal: 100_000,
//	    Purger:   purge.NewExpired[string, []byte](false), // inline, expired first
//	})
//
// # Name-based binding
//
//	cache.Setup[string, int](cache.Options[string, int]{Name: "sessions", MaxTotal: 50_000})
//	// elsewhere, without a handle:
//	cache.Named[string, int]("sessions").Put("sid", 1, time.Hour)
//
// A cache stays alive until Destroy; after Destroy every operation panics.
package cache
