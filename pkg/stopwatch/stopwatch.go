// Package stopwatch implements a start/pause/reset elapsed-time accumulator.
package stopwatch

import (
	"sync"
	"time"

	"github.com/BYTE-6D65/studyclock/pkg/clock"
	"github.com/BYTE-6D65/studyclock/pkg/format"
)

// DegreesPerSecond is the rotation of the seconds hand.
const DegreesPerSecond = 6.0

// Snapshot is the display state at one instant.
type Snapshot struct {
	Elapsed   time.Duration
	Display   string
	HandAngle float64
	Running   bool
}

// Stopwatch accumulates elapsed time across pause/resume cycles.
// runStart is non-zero exactly when running is true.
type Stopwatch struct {
	mu          sync.Mutex
	clock       clock.Clock
	accumulated time.Duration
	running     bool
	runStart    time.Time
}

// New creates a stopped stopwatch at zero.
func New(clk clock.Clock) *Stopwatch {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Stopwatch{clock: clk}
}

// Start begins timing. It is a no-op while running.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

// Pause folds the current run into the accumulated total. It is a no-op
// while stopped.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

// Toggle pauses a running stopwatch and starts a stopped one.
func (s *Stopwatch) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.pauseLocked()
	} else {
		s.startLocked()
	}
}

// Reset stops the stopwatch and clears the total.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.accumulated = 0
	s.runStart = time.Time{}
}

// Running reports whether the stopwatch is timing.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Elapsed returns the accumulated time as of now without changing state.
func (s *Stopwatch) Elapsed(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked(now)
}

// Snapshot returns the display state as of the clock's current instant.
func (s *Stopwatch) Snapshot() Snapshot {
	return s.SnapshotAt(s.clock.Now())
}

// SnapshotAt returns the display state as of now.
func (s *Stopwatch) SnapshotAt(now time.Time) Snapshot {
	s.mu.Lock()
	elapsed := s.elapsedLocked(now)
	running := s.running
	s.mu.Unlock()

	return Snapshot{
		Elapsed:   elapsed,
		Display:   format.Stopwatch(elapsed),
		HandAngle: HandAngle(elapsed),
		Running:   running,
	}
}

// HandAngle returns the seconds-hand rotation in degrees. It keeps growing
// past 360 so the hand turns continuously instead of snapping back.
func HandAngle(elapsed time.Duration) float64 {
	return elapsed.Seconds() * DegreesPerSecond
}

func (s *Stopwatch) startLocked() {
	if s.running {
		return
	}
	s.runStart = s.clock.Now()
	s.running = true
}

func (s *Stopwatch) pauseLocked() {
	if !s.running {
		return
	}
	s.accumulated += s.clock.Now().Sub(s.runStart)
	s.runStart = time.Time{}
	s.running = false
}

func (s *Stopwatch) elapsedLocked(now time.Time) time.Duration {
	if !s.running {
		return s.accumulated
	}
	run := now.Sub(s.runStart)
	if run < 0 {
		run = 0
	}
	return s.accumulated + run
}
