package ratelimit

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestFreshStateAllowsRequests(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)
	if !st.ShouldAllowRequest() {
		t.Fatal("fresh state should allow requests")
	}
	if d := st.RecommendedDelay(); d != 0 {
		t.Fatalf("expected zero delay, got %v", d)
	}
}

func TestRecordRateLimitBlocksUntilReset(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	st.RecordRateLimit(int64Ptr(30), intPtr(0), intPtr(3))

	if st.ShouldAllowRequest() {
		t.Fatal("expected admission denied after rate limit with remaining=0")
	}
	until, known := st.TimeUntilReset()
	if !known || until > 30*time.Second {
		t.Fatalf("time until reset = %v known=%v, want <=30s", until, known)
	}
	if d := st.RecommendedDelay(); d <= 0 || d > 30*time.Second {
		t.Fatalf("recommended delay = %v, want (0, 30s]", d)
	}

	clk.Advance(31 * time.Second)
	if !st.ShouldAllowRequest() {
		t.Fatal("expected admission allowed after reset time elapsed")
	}
}

func TestKnownRemainingOverridesBackoff(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	st.RecordRateLimit(nil, intPtr(2), intPtr(3))
	if !st.ShouldAllowRequest() {
		t.Fatal("remaining>0 should allow even while limited")
	}

	st.RecordRateLimit(nil, intPtr(0), intPtr(3))
	if st.ShouldAllowRequest() {
		t.Fatal("remaining=0 should deny")
	}
}

func TestBackoffFallbackWhenHeadersUnknown(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	// One 429 with no headers: backoff n=1 is 2s +/- 25%.
	st.RecordRateLimit(nil, nil, nil)
	if st.ShouldAllowRequest() {
		t.Fatal("expected denial right after header-less 429")
	}
	clk.Advance(3 * time.Second)
	if !st.ShouldAllowRequest() {
		t.Fatal("expected allowance once 3s (> max jittered 2.5s) elapsed")
	}
}

func TestBackoffDelayBoundsAndMonotonicity(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	prevMax := time.Duration(0)
	for n := 1; n <= 12; n++ {
		st.ConsecutiveRateLimits = n
		exp := n
		if exp > 10 {
			exp = 10
		}
		base := time.Second << uint(exp)
		if base > 5*time.Minute {
			base = 5 * time.Minute
		}
		min := time.Duration(float64(base) * 0.75)
		max := time.Duration(float64(base) * 1.25)

		for i := 0; i < 20; i++ {
			d := st.backoffDelay()
			if d < min || d > max {
				t.Fatalf("n=%d delay=%v outside [%v, %v]", n, d, min, max)
			}
		}
		if max < prevMax {
			t.Fatalf("n=%d backoff envelope shrank: %v < %v", n, max, prevMax)
		}
		prevMax = max
	}
}

func TestRecordSuccessResetsFromAnyState(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	for i := 0; i < 5; i++ {
		st.RecordRateLimit(int64Ptr(120), intPtr(0), intPtr(3))
	}
	if st.ConsecutiveRateLimits != 5 {
		t.Fatalf("consecutive = %d, want 5", st.ConsecutiveRateLimits)
	}

	st.RecordSuccess()
	if st.IsRateLimited {
		t.Fatal("success must clear the limited flag")
	}
	if st.ConsecutiveRateLimits != 0 {
		t.Fatalf("consecutive = %d, want 0", st.ConsecutiveRateLimits)
	}
	if !st.ShouldAllowRequest() {
		t.Fatal("expected allowance after success")
	}
}

func TestRecentSuccessHistoryIsBounded(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	for i := 0; i < 30; i++ {
		clk.Advance(time.Second)
		st.RecordSuccess()
	}
	if len(st.RecentSuccesses) != 20 {
		t.Fatalf("history length = %d, want 20", len(st.RecentSuccesses))
	}
	// Oldest entries evicted first: the first retained success is #11.
	want := time.Date(2024, 3, 5, 14, 0, 11, 0, time.UTC)
	if !st.RecentSuccesses[0].Equal(want) {
		t.Fatalf("oldest retained = %v, want %v", st.RecentSuccesses[0], want)
	}
}

func TestHeaderlessRateLimitKeepsPriorReset(t *testing.T) {
	clk := newFakeClock()
	st := newState(clk.Now)

	st.RecordRateLimit(int64Ptr(60), intPtr(0), intPtr(3))
	first := *st.ResetAt

	clk.Advance(5 * time.Second)
	st.RecordRateLimit(nil, nil, nil)

	if st.ResetAt == nil || !st.ResetAt.Equal(first) {
		t.Fatalf("reset_at changed on header-less 429: %v, want %v", st.ResetAt, first)
	}
	if st.Remaining != nil || st.Limit != nil {
		t.Fatal("remaining/limit must be overwritten to unknown")
	}
	if st.ConsecutiveRateLimits != 2 {
		t.Fatalf("consecutive = %d, want 2", st.ConsecutiveRateLimits)
	}
}
