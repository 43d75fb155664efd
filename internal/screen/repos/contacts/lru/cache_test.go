package lru

import (
	"testing"

	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
)

func TestLookupCache_HitMissAndPut(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, ok := c.Get("15551234"); ok {
		t.Fatalf("expected miss before put")
	}

	c.Put("15551234", true)
	c.Put("999", false)

	found, ok := c.Get("15551234")
	if !ok || !found {
		t.Fatalf("unexpected get: ok=%v found=%v", ok, found)
	}
	// negative results are cached too
	found, ok = c.Get("999")
	if !ok || found {
		t.Fatalf("unexpected negative get: ok=%v found=%v", ok, found)
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 {
		t.Fatalf("stats hits=%d misses=%d; want 2/1", st.Hits, st.Misses)
	}
	if st.Capacity != 2 || st.Size != 2 {
		t.Fatalf("stats capacity=%d size=%d; want 2/2", st.Capacity, st.Size)
	}
}

func TestLookupCache_EvictionAndLen(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("1", true)
	c.Put("2", true)
	c.Put("3", true)
	if got := c.Len(); got != 2 {
		t.Fatalf("len=%d want=2 after eviction", got)
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Fatalf("evictions=%d want=1", ev)
	}
	if _, ok := c.Get("1"); ok {
		t.Fatalf("expected least recently used entry to be evicted")
	}
}

func TestLookupCache_PurgeCountsEvictions(t *testing.T) {
	c, err := New(3)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("1", true)
	c.Put("2", false)
	c.Put("3", true)

	c.Purge()
	if got := c.Len(); got != 0 {
		t.Fatalf("len=%d want=0 after purge", got)
	}
	if ev := c.Stats().Evictions; ev != 3 {
		t.Fatalf("evictions=%d want=3 after purge", ev)
	}
}

func TestLookupCache_Disabled(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("1", true)
	if _, ok := c.Get("1"); ok {
		t.Fatalf("expected miss in disabled cache")
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("len=%d want=0 for disabled", got)
	}
	c.Purge()
	if st := c.Stats(); st != (contacts.CacheStats{}) {
		t.Fatalf("expected zero stats for disabled cache, got %+v", st)
	}
}
