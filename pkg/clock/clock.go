package clock

import "time"

// Clock supplies the current instant to the dashboard engines.
// Engines never call time.Now directly so tests can pin or step time.
type Clock interface {
	// Now returns the current wall-clock instant in local time
	Now() time.Time

	// Since returns the duration elapsed since t
	Since(t time.Time) time.Duration
}

// Midnight truncates t to 00:00 of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SystemClock reads the host clock.
type SystemClock struct{}

// NewSystemClock creates a live clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns time.Now in local time. The monotonic reading is kept so
// Since stays correct across wall-clock adjustments.
func (s *SystemClock) Now() time.Time {
	return time.Now()
}

// Since returns the duration elapsed since t.
func (s *SystemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// FixedClock always reports the same instant.
type FixedClock struct {
	at time.Time
}

// NewFixedClock creates a clock pinned to at.
func NewFixedClock(at time.Time) *FixedClock {
	return &FixedClock{at: at}
}

// Now returns the pinned instant.
func (f *FixedClock) Now() time.Time {
	return f.at
}

// Since returns the distance from t to the pinned instant.
func (f *FixedClock) Since(t time.Time) time.Duration {
	return f.at.Sub(t)
}
