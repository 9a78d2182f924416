package cache

import "time"

// Clock supplies the monotonic second counter used for all expiry arithmetic.
// Implementations must never move backward. Override in Options for
// deterministic tests.
type Clock interface {
	// Now returns elapsed seconds on a process-local monotonic timeline.
	Now() int64
}

// monotonicClock counts whole seconds since its epoch. time.Since subtracts
// the monotonic reading captured in epoch, so wall-clock adjustments
// (NTP steps, manual changes) never show up here. Expiries are meaningless
// across process restarts; the cache is purely in-memory.
type monotonicClock struct{ epoch time.Time }

func (c monotonicClock) Now() int64 { return int64(time.Since(c.epoch) / time.Second) }

var processClock Clock = monotonicClock{epoch: time.Now()}
