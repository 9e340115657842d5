package ratelimit

import (
	"math/rand"
	"time"

	"quicknotes/internal/constants"
)

// State tracks quota and backoff knowledge for a single credential.
// Remaining, ResetAt and Limit are nil until the API tells us otherwise.
//
// State carries no lock of its own: the owning Manager serializes access.
type State struct {
	Remaining             *int
	ResetAt               *time.Time
	Limit                 *int
	LastUpdated           time.Time
	RecentSuccesses       []time.Time
	ConsecutiveRateLimits int
	IsRateLimited         bool

	now func() time.Time
}

func newState(now func() time.Time) *State {
	return &State{LastUpdated: now(), now: now}
}

// ShouldAllowRequest decides whether a request may be attempted right now.
// Header knowledge wins when present; backoff is the fallback heuristic.
func (s *State) ShouldAllowRequest() bool {
	if !s.IsRateLimited {
		return true
	}
	if s.ResetAt != nil && s.now().After(*s.ResetAt) {
		return true
	}
	if s.Remaining != nil {
		return *s.Remaining > 0
	}
	return s.backoffAllowsRequest()
}

func (s *State) backoffAllowsRequest() bool {
	if s.ConsecutiveRateLimits == 0 {
		return true
	}
	return s.now().Sub(s.LastUpdated) >= s.backoffDelay()
}

// backoffDelay computes the jittered exponential backoff for the current
// failure streak. The jitter keeps independent instances from retrying in
// lockstep, so the value is an estimate recomputed on every call.
func (s *State) backoffDelay() time.Duration {
	exp := s.ConsecutiveRateLimits
	if exp > constants.BackoffMaxExponent {
		exp = constants.BackoffMaxExponent
	}
	delay := constants.BackoffBase << uint(exp)
	if delay > constants.BackoffCap {
		delay = constants.BackoffCap
	}
	jitter := constants.JitterMin + rand.Float64()*(constants.JitterMax-constants.JitterMin)
	return time.Duration(float64(delay) * jitter)
}

// RecordSuccess clears the limited flag and failure streak, and appends
// the current time to the bounded success history.
func (s *State) RecordSuccess() {
	s.ConsecutiveRateLimits = 0
	s.IsRateLimited = false
	s.RecentSuccesses = append(s.RecentSuccesses, s.now())
	if len(s.RecentSuccesses) > constants.RecentSuccessCap {
		s.RecentSuccesses = s.RecentSuccesses[len(s.RecentSuccesses)-constants.RecentSuccessCap:]
	}
}

// RecordRateLimit registers a 429 observation. Remaining and limit are
// overwritten unconditionally, even back to unknown when the response
// omitted them; a previously-set reset time survives a header-less 429.
func (s *State) RecordRateLimit(resetSeconds *int64, remaining, limit *int) {
	s.ConsecutiveRateLimits++
	s.IsRateLimited = true
	s.LastUpdated = s.now()

	s.Remaining = remaining
	s.Limit = limit

	if resetSeconds != nil {
		at := s.now().Add(time.Duration(*resetSeconds) * time.Second)
		s.ResetAt = &at
	}
}

// TimeUntilReset reports how long until the quota window resets, when known.
func (s *State) TimeUntilReset() (time.Duration, bool) {
	if s.ResetAt == nil {
		return 0, false
	}
	d := s.ResetAt.Sub(s.now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// RecommendedDelay estimates how long a caller should wait before retrying.
// Zero when not limited; the header-derived reset wins over backoff.
func (s *State) RecommendedDelay() time.Duration {
	if !s.IsRateLimited {
		return 0
	}
	if s.ResetAt != nil {
		if d := s.ResetAt.Sub(s.now()); d > 0 {
			return d
		}
	}
	return s.backoffDelay()
}
