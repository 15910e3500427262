package testfixtures

import (
	"sort"
	"sync"
	"time"
)

// Timers is a manual replacement for time.AfterFunc driven by a Clock.
// Callbacks fire only when Advance moves the clock past their deadline.
type Timers struct {
	mu      sync.Mutex
	clock   *Clock
	seq     int
	pending []pendingTimer
}

type pendingTimer struct {
	due time.Time
	seq int
	fn  func()
}

// NewTimers returns timers bound to clock (a fresh clock when nil).
func NewTimers(clock *Clock) *Timers {
	if clock == nil {
		clock = NewClock(time.Time{})
	}
	return &Timers{clock: clock}
}

// Clock exposes the clock the timers are driven by.
func (t *Timers) Clock() *Clock {
	return t.clock
}

// AfterFunc schedules fn to run once the clock has advanced by d.
func (t *Timers) AfterFunc(d time.Duration, fn func()) {
	t.mu.Lock()
	t.seq++
	t.pending = append(t.pending, pendingTimer{due: t.clock.Now().Add(d), seq: t.seq, fn: fn})
	t.mu.Unlock()
}

// Pending reports how many callbacks have not fired yet.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Advance moves the clock forward by d, firing due callbacks in deadline
// order. Callbacks scheduled while advancing fire too when they fall due
// within the window.
func (t *Timers) Advance(d time.Duration) {
	target := t.clock.Now().Add(d)
	for {
		next, ok := t.popDue(target)
		if !ok {
			break
		}
		if next.due.After(t.clock.Now()) {
			t.clock.Set(next.due)
		}
		next.fn()
	}
	t.clock.Set(target)
}

func (t *Timers) popDue(target time.Time) (pendingTimer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return pendingTimer{}, false
	}
	sort.SliceStable(t.pending, func(i, j int) bool {
		if t.pending[i].due.Equal(t.pending[j].due) {
			return t.pending[i].seq < t.pending[j].seq
		}
		return t.pending[i].due.Before(t.pending[j].due)
	})
	next := t.pending[0]
	if next.due.After(target) {
		return pendingTimer{}, false
	}
	t.pending = t.pending[1:]
	return next, true
}
