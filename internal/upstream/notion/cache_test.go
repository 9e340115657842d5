package notion

import (
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	c := NewCache[[]Page](5 * time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Get(); ok {
		t.Fatal("empty cache must miss")
	}

	pages := []Page{{ID: "p1", Title: "Inbox"}}
	c.Put(pages)

	now = now.Add(4 * time.Minute)
	got, ok := c.Get()
	if !ok || len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("expected hit with cached pages, got %v ok=%v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCacheInvalidateForcesMiss(t *testing.T) {
	c := NewCache[[]Page](5 * time.Minute)
	c.Put([]Page{{ID: "p1", Title: "Inbox"}})
	c.Invalidate()
	if _, ok := c.Get(); ok {
		t.Fatal("invalidate must force a miss")
	}
}

func TestCacheExpiryIsExact(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	c := NewCache[string](5 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put("value")
	now = now.Add(5 * time.Minute)
	if _, ok := c.Get(); ok {
		t.Fatal("entry is valid strictly before expires_at, not at it")
	}
}
