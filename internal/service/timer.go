package service

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock func() time.Time

// Timer is a one-shot countdown bounding a recognition or actuation window.
// It never resets itself; a new Timer is created for every window.
type Timer struct {
	mu        sync.RWMutex
	duration  time.Duration
	startedAt time.Time
	now       Clock
}

func NewTimer(d time.Duration) *Timer {
	return NewTimerWithClock(d, time.Now)
}

func NewTimerWithClock(d time.Duration, clock Clock) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{duration: d, now: clock}
}

// Start records the current instant and returns the timer for chaining.
func (t *Timer) Start() *Timer {
	t.mu.Lock()
	t.startedAt = t.now()
	t.mu.Unlock()
	return t
}

func (t *Timer) Duration() time.Duration { return t.duration }

func (t *Timer) Started() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.startedAt.IsZero()
}

// Elapsed is zero for a timer that was never started.
func (t *Timer) Elapsed() time.Duration {
	t.mu.RLock()
	started := t.startedAt
	t.mu.RUnlock()
	if started.IsZero() {
		return 0
	}
	return t.now().Sub(started)
}

// Remaining is the full duration for an unstarted timer and never negative.
func (t *Timer) Remaining() time.Duration {
	if !t.Started() {
		return t.duration
	}
	left := t.duration - t.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// HasExpired is false until the timer has been started.
func (t *Timer) HasExpired() bool {
	if !t.Started() {
		return false
	}
	return t.Elapsed() >= t.duration
}
