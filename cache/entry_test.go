package cache

import (
	"testing"
	"time"
)

// All four accessors tolerate a nil entry and return zero values, so chained
// calls like c.Take(k).Value() stay safe on a miss.
func TestEntry_NilAccessors(t *testing.T) {
	t.Parallel()

	var e *Entry[string, int]
	if e.Key() != "" {
		t.Fatalf("nil Key want zero, got %q", e.Key())
	}
	if e.Value() != 0 {
		t.Fatalf("nil Value want zero, got %d", e.Value())
	}
	if e.Expiry() != 0 {
		t.Fatalf("nil Expiry want zero, got %d", e.Expiry())
	}
	if e.TTL(42) != 0 {
		t.Fatalf("nil TTL want zero, got %v", e.TTL(42))
	}
}

func TestEntry_Accessors(t *testing.T) {
	t.Parallel()

	e := &Entry[string, int]{key: "k", value: 7, expiry: 30}
	if e.Key() != "k" || e.Value() != 7 || e.Expiry() != 30 {
		t.Fatalf("unexpected entry: %q %d %d", e.Key(), e.Value(), e.Expiry())
	}
	if e.TTL(20) != 10*time.Second {
		t.Fatalf("TTL want 10s, got %v", e.TTL(20))
	}
	if e.TTL(40) != -10*time.Second {
		t.Fatalf("TTL past expiry want -10s, got %v", e.TTL(40))
	}
}
