// Package schedule provides repeating callbacks with hard cancellation.
//
// Two disciplines drive the dashboard:
//   - continuous: FrameInterval, used by the renderer to recompute the
//     countdown and stopwatch every frame
//   - discrete: TickInterval, used by the countdown timer
//
// The engines never schedule themselves. A Scheduler is injected so tests can
// swap the wall-clock Ticker for a Manual scheduler and step time by hand.
package schedule

import (
	"sync"
	"time"
)

const (
	// FrameInterval approximates a 60 Hz display refresh.
	FrameInterval = time.Second / 60

	// TickInterval is the period of the countdown timer.
	TickInterval = time.Second
)

// Handle controls one repeating schedule.
type Handle interface {
	// Cancel stops the schedule. It is idempotent and safe to call from
	// inside the callback. Once Cancel returns no new invocation starts.
	// An invocation already past its cancellation check on another
	// goroutine is allowed to finish; callers that mutate state from the
	// callback re-check ownership under their own lock.
	Cancel()
}

// Scheduler runs fn every interval until the returned handle is cancelled.
// Invocations of a single schedule never overlap.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Handle
}

// guard pairs a callback with its cancellation flag. calls serializes
// invocations so a slow callback never overlaps the next one.
type guard struct {
	calls sync.Mutex

	mu        sync.Mutex
	cancelled bool
	fn        func()
}

func newGuard(fn func()) *guard {
	return &guard{fn: fn}
}

// invoke runs fn unless cancelled and reports whether it ran.
func (g *guard) invoke() bool {
	g.calls.Lock()
	defer g.calls.Unlock()

	if g.isCancelled() {
		return false
	}
	g.fn()
	return true
}

// cancel marks the guard cancelled and reports whether this call did it.
func (g *guard) cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelled {
		return false
	}
	g.cancelled = true
	return true
}

func (g *guard) isCancelled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}
