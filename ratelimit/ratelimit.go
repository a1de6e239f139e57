// Package ratelimit implements the sliding-window-by-oldest admission
// limiter used to throttle per-user submissions.
package ratelimit

import (
	"errors"
	"time"
)

// ErrInvalidMax is returned by New when max is less than 1.
var ErrInvalidMax = errors.New("ratelimit: max must be >= 1")

// Limiter enforces "no more than max submissions whose timestamps all
// fall within any window of duration window", using O(max) memory. It is
// not safe for concurrent use; callers serialize access (the Game
// Registry holds one Limiter per user behind its own lock).
type Limiter struct {
	max     int
	window  time.Duration
	entries []time.Time
}

// New constructs a Limiter admitting up to max submissions per window.
func New(max int, window time.Duration) (*Limiter, error) {
	if max < 1 {
		return nil, ErrInvalidMax
	}
	return &Limiter{max: max, window: window, entries: make([]time.Time, 0, max)}, nil
}

// SetWindow reconfigures the window at runtime. Stored entries are
// retained as-is.
func (l *Limiter) SetWindow(window time.Duration) {
	l.window = window
}

// Submit attempts to admit a submission at the given time, returning
// true if admitted. If fewer than max entries are stored, the
// submission is always admitted. Otherwise the oldest stored entry must
// be strictly older than window for the new submission to displace it.
func (l *Limiter) Submit(at time.Time) bool {
	if len(l.entries) < l.max {
		l.entries = append(l.entries, at)
		return true
	}

	oldestIdx := 0
	for i := 1; i < len(l.entries); i++ {
		if l.entries[i].Before(l.entries[oldestIdx]) {
			oldestIdx = i
		}
	}

	if l.entries[oldestIdx].Add(l.window).Before(at) {
		l.entries[oldestIdx] = at
		return true
	}
	return false
}
