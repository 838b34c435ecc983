package clock

import (
	"sync"
	"time"
)

// ManualClock is a test clock that only moves when told to.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManualClock creates a clock positioned at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{current: start}
}

// Now returns the current instant.
func (m *ManualClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Since returns the duration from t to the current instant.
func (m *ManualClock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Add moves the clock forward by d. Negative values move it back.
func (m *ManualClock) Add(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set jumps to t.
func (m *ManualClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}
