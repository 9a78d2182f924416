package cache

import (
	"strconv"
	"testing"
	"time"

	"github.com/dcachego/dcache/purge"
)

// Overflowing segments shed entries: after 1001 inserts into a 1000-entry
// cache, capacity-triggered purges have removed a visible chunk.
func TestPurge_FastTrimsOnOverflow(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		MaxTotal: 1000,
		Segments: 100,
		Purger:   purge.NewFast[string, int](false),
	})

	for i := 1; i <= 1001; i++ {
		c.Put(strconv.Itoa(i), i, 100*time.Second)
	}
	if got := c.Size(); got >= 950 {
		t.Fatalf("Size want < 950 after capacity purges, got %d", got)
	}
	if c.Stats().Purges == 0 {
		t.Fatal("at least one purge must have triggered")
	}
}

// The expired-first strategy never evicts live entries while dead ones exist.
func TestPurge_ExpiredSparesLiveEntries(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := New[int, int](Options[int, int]{
		MaxTotal: 1000,
		Segments: 5,
		Purger:   purge.NewExpired[int, int](false),
		Clock:    clk,
	})

	for i := 1; i <= 1001; i++ {
		ttl := 10 * time.Second
		if i%2 == 1 {
			ttl = -10 * time.Second
		}
		c.Put(i, i, ttl)
	}

	if got := c.Size(); got >= 900 {
		t.Fatalf("Size want < 900 after expired purges, got %d", got)
	}
	for i := 2; i <= 1001; i += 2 {
		if v, ok := c.Get(i); !ok || v != i {
			t.Fatalf("live entry %d evicted (got %v ok=%v)", i, v, ok)
		}
	}
}

// Under the None strategy the bound is advisory: nothing is ever evicted.
func TestPurge_NoneGrowsUnbounded(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options[int, int]{
		MaxTotal: 10,
		Segments: 2,
		Purger:   purge.NewNone[int, int](),
	})

	for i := 1; i <= 100; i++ {
		c.Put(i, i, 10*time.Second)
	}
	if got := c.Size(); got != 100 {
		t.Fatalf("Size want 100, got %d", got)
	}
	for i := 1; i <= 100; i++ {
		if v, ok := c.Get(i); !ok || v != i {
			t.Fatalf("entry %d missing (got %v ok=%v)", i, v, ok)
		}
	}
}

// A custom purger runs once per capacity trigger and receives the segment
// handle it can act on.
func TestPurge_CustomReceivesSegment(t *testing.T) {
	t.Parallel()

	counts := map[string]int{}
	c := New[string, int](Options[string, int]{
		Name:     "c",
		MaxTotal: 10,
		Segments: 2,
		Purger: purge.Func[string, int](func(seg purge.Segment[string, int]) {
			counts[seg.Name()]++ // single-goroutine test: no lock needed
		}),
	})

	for i := 1; i <= 100; i++ {
		c.Put(strconv.Itoa(i), i, 100*time.Second)
	}

	// The custom purger removes nothing, so every insert past a segment's
	// bound of 5 triggers it: 100 keys minus 2×5 resident.
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 90 {
		t.Fatalf("purge triggers want 90, got %d (%v)", total, counts)
	}
	if len(counts) != 2 || counts["c0"] == 0 || counts["c1"] == 0 {
		t.Fatalf("both segments must have triggered, got %v", counts)
	}
	if got := c.Stats().Purges; got != 90 {
		t.Fatalf("Stats().Purges want 90, got %d", got)
	}
}

// The blocking strategy clears the segment and reinstates the insert that
// overflowed it.
func TestPurge_BlockingClearsAndKeepsTrigger(t *testing.T) {
	t.Parallel()

	c := New[int, string](Options[int, string]{
		MaxTotal: 10,
		Segments: 1,
		Purger:   purge.NewBlocking[int, string](),
	})

	for i := 1; i <= 11; i++ {
		c.Put(i, "v"+strconv.Itoa(i), time.Minute)
	}

	if got := c.Size(); got != 1 {
		t.Fatalf("Size want 1 after blocking purge, got %d", got)
	}
	if v, ok := c.Get(11); !ok || v != "v11" {
		t.Fatalf("triggering entry must survive, got %q ok=%v", v, ok)
	}
	if ttl, ok := c.TTL(11); !ok || ttl <= 0 {
		t.Fatalf("reinstated entry must keep its expiry, got %v ok=%v", ttl, ok)
	}
}

// A spawning purger trims the segment shortly after the insert returns.
func TestPurge_SpawnTrimsEventually(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options[int, int]{
		MaxTotal: 200,
		Segments: 1,
		Purger:   purge.NewFast[int, int](true),
	})

	for i := 1; i <= 201; i++ {
		c.Put(i, i, time.Minute)
	}

	// target = clamp(200*0.05, 10, 1000) = 10 removals per purge run.
	deadline := time.Now().Add(2 * time.Second)
	for c.Size() > 200 {
		if time.Now().After(deadline) {
			t.Fatalf("spawned purge did not trim segment, Size=%d", c.Size())
		}
		time.Sleep(time.Millisecond)
	}
}

// The expired strategy clears tiny segments outright instead of scanning.
func TestPurge_ExpiredTinySegmentClears(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options[int, int]{
		MaxTotal: 10, // one segment bounded at 10 (< 100)
		Segments: 1,
		Purger:   purge.NewExpired[int, int](false),
	})

	for i := 1; i <= 11; i++ {
		c.Put(i, i, time.Minute)
	}
	// The 11th insert overflowed and the whole segment was cleared after it.
	if got := c.Size(); got != 0 {
		t.Fatalf("tiny segment must be cleared, Size=%d", got)
	}
}
