package cache

import "time"

// Producer computes the value for a key that missed. It must return one of
// four outcomes:
//
//	Ok(v)        — cache v under the Fetch call's ttl and return it
//	OkFor(v, d)  — cache v under the producer's own ttl d and return it
//	Skip(v)      — return v without caching anything
//	Fail(err)    — cache nothing; Fetch returns err
//
// The producer runs synchronously on the calling goroutine and may block.
type Producer[K comparable, V any] func(key K) Result[V]

type resultKind uint8

const (
	resultOk resultKind = iota
	resultOkFor
	resultSkip
	resultFail
)

// Result is a producer outcome. Construct with Ok, OkFor, Skip, or Fail;
// the zero Result behaves like Ok of the zero value.
type Result[V any] struct {
	kind  resultKind
	value V
	ttl   time.Duration
	err   error
}

// Ok caches v under the ttl the Fetch caller supplied.
func Ok[V any](v V) Result[V] { return Result[V]{kind: resultOk, value: v} }

// OkFor caches v under ttl, overriding the one the Fetch caller supplied.
func OkFor[V any](v V, ttl time.Duration) Result[V] {
	return Result[V]{kind: resultOkFor, value: v, ttl: ttl}
}

// Skip returns v to the Fetch caller without caching it.
func Skip[V any](v V) Result[V] { return Result[V]{kind: resultSkip, value: v} }

// Fail propagates err to the Fetch caller; nothing is cached.
func Fail[V any](err error) Result[V] { return Result[V]{kind: resultFail, err: err} }

func (c *cache[K, V]) Fetch(key K, producer Producer[K, V], ttl time.Duration) (V, error) {
	c.check()
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.coalesce {
		return c.sf.Do(key, func() (V, error) {
			// Re-check after winning or joining the flight: the leader that
			// just finished may have populated the key.
			if v, ok := c.Get(key); ok {
				return v, nil
			}
			return c.produce(key, producer, ttl)
		})
	}
	return c.produce(key, producer, ttl)
}

func (c *cache[K, V]) MustFetch(key K, producer Producer[K, V], ttl time.Duration) V {
	v, err := c.Fetch(key, producer, ttl)
	if err != nil {
		panic(err)
	}
	return v
}

// produce runs the producer for a missed key and applies its outcome.
func (c *cache[K, V]) produce(key K, producer Producer[K, V], ttl time.Duration) (V, error) {
	switch r := producer(key); r.kind {
	case resultOkFor:
		c.Put(key, r.value, r.ttl)
		return r.value, nil
	case resultSkip:
		return r.value, nil
	case resultFail:
		var zero V
		return zero, r.err
	default:
		c.Put(key, r.value, ttl)
		return r.value, nil
	}
}
