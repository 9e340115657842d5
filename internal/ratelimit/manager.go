package ratelimit

import (
	"sync"
	"time"
)

// Manager is a process-lifetime registry of per-credential rate limit
// state. A credential never observed is treated as allowed and unlimited.
//
// Every method is a short synchronous critical section; no network call
// or long computation ever runs while the registry lock is held.
type Manager struct {
	mu     sync.Mutex
	states map[string]*State
	now    func() time.Time
}

// NewManager creates an empty registry using the wall clock.
func NewManager() *Manager {
	return NewManagerWithClock(time.Now)
}

// NewManagerWithClock creates a registry with an injectable clock.
func NewManagerWithClock(now func() time.Time) *Manager {
	return &Manager{states: make(map[string]*State), now: now}
}

func (m *Manager) state(credential string) *State {
	st, ok := m.states[credential]
	if !ok {
		st = newState(m.now)
		m.states[credential] = st
	}
	return st
}

// ShouldAllowRequest is the admission check for the given credential.
func (m *Manager) ShouldAllowRequest(credential string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[credential]
	if !ok {
		return true
	}
	return st.ShouldAllowRequest()
}

// RecommendedDelay estimates how long to wait before the next attempt.
func (m *Manager) RecommendedDelay(credential string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[credential]
	if !ok {
		return 0
	}
	return st.RecommendedDelay()
}

// RecordSuccess registers a non-429 response for the credential.
func (m *Manager) RecordSuccess(credential string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(credential).RecordSuccess()
}

// RecordRateLimit registers a 429 response along with whatever header
// knowledge came with it.
func (m *Manager) RecordRateLimit(credential string, resetSeconds *int64, remaining, limit *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(credential).RecordRateLimit(resetSeconds, remaining, limit)
}

// Quota is the last-known limit and remaining count for the credential.
func (m *Manager) Quota(credential string) (limit, remaining *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[credential]
	if !ok {
		return nil, nil
	}
	return copyInt(st.Limit), copyInt(st.Remaining)
}

// Status is the read-only projection consumed by the presentation layer.
type Status struct {
	Limit      *int   `json:"limit"`
	Remaining  *int   `json:"remaining"`
	ResetAt    *int64 `json:"reset_at"` // epoch seconds
	IsLimited  bool   `json:"is_limited"`
	RetryAfter *int64 `json:"retry_after"` // seconds
}

// Status projects the credential's current state without mutating it.
// IsLimited reports whether admission would deny a request right now.
func (m *Manager) Status(credential string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[credential]
	if !ok {
		return Status{}
	}

	out := Status{
		Limit:     copyInt(st.Limit),
		Remaining: copyInt(st.Remaining),
		IsLimited: !st.ShouldAllowRequest(),
	}
	if until, known := st.TimeUntilReset(); known {
		at := m.now().Add(until).Unix()
		out.ResetAt = &at
	}
	if out.IsLimited {
		if delay := st.RecommendedDelay(); delay > 0 {
			secs := int64(delay / time.Second)
			out.RetryAfter = &secs
		}
	}
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
