package cache

import (
	"fmt"
	"sync"
)

// The dynamic binding surface: caches registered under a name and resolved
// per call with Named. The registry is process-wide, read-mostly after
// construction, and written only by Setup and Destroy.
var (
	registryMu sync.RWMutex
	registry   = map[string]any{}
)

// Setup constructs the cache described by opt and registers it under
// opt.Name. Call sites that cannot hold a handle resolve it later with
// Named[K, V](name); everything after that lookup behaves identically to the
// handle form. Panics when Name is empty or already registered.
func Setup[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Name == "" {
		panic("dcache: Setup requires a Name")
	}
	c := New(opt)

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[opt.Name]; dup {
		panic(fmt.Sprintf("dcache: cache %q already registered", opt.Name))
	}
	registry[opt.Name] = c
	return c
}

// Named resolves a cache registered by Setup. Resolution costs one read-lock
// map lookup on every call; prefer holding the handle Setup returned when the
// call site allows it.
//
// Panics when nothing is registered under name — a destroyed cache falls
// under this, since Destroy unregisters — or when the registration has
// different key/value types.
func Named[K comparable, V any](name string) Cache[K, V] {
	registryMu.RLock()
	v, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("dcache: no cache registered as %q", name))
	}
	c, ok := v.(Cache[K, V])
	if !ok {
		panic(fmt.Sprintf("dcache: cache %q registered with different key/value types", name))
	}
	return c
}

// unregister drops the name→cache binding, but only when it still points at
// the destroyed cache: a handle built by New never displaces a Setup
// registration that happens to share its name.
func unregister(name string, c any) {
	registryMu.Lock()
	if registry[name] == c {
		delete(registry, name)
	}
	registryMu.Unlock()
}
