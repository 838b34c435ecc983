// Package format renders durations as the fixed-width strings shown on the
// dashboard. Every function is total: out-of-domain input is clamped to zero.
package format

import (
	"fmt"
	"strconv"
	"time"
)

// ZeroUnified is what Unified returns for an expired or zero duration.
const ZeroUnified = "000:00:00:00:00"

// DefaultPercentPlaces is the precision used for the countdown progress text.
const DefaultPercentPlaces = 7

// Unified formats d as "DDD:HH:MM:SS:CC" (days, hours, minutes, seconds,
// centiseconds). Fields are truncated, never rounded.
func Unified(d time.Duration) string {
	ms := d.Milliseconds()
	if ms <= 0 {
		return ZeroUnified
	}

	days := ms / int64(24*time.Hour/time.Millisecond)
	hours := (ms / int64(time.Hour/time.Millisecond)) % 24
	minutes := (ms / int64(time.Minute/time.Millisecond)) % 60
	seconds := (ms / 1000) % 60
	centis := (ms % 1000) / 10

	return fmt.Sprintf("%03d:%02d:%02d:%02d:%02d", days, hours, minutes, seconds, centis)
}

// Clock formats a whole-second count as "H:MM:SS", or "MM:SS" when the hour
// field would be zero.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Stopwatch formats d as "HH:MM:SS.CC". The hour field is always present.
func Stopwatch(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	cs := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, cs)
}

// Percent formats a 0..100 progress value with a fixed number of decimals.
func Percent(p float64, places int) string {
	if places < 0 {
		places = 0
	}
	return strconv.FormatFloat(p, 'f', places, 64) + "%"
}

// DDay renders a day count as "D-n". Negative counts render as "D-0".
func DDay(days int) string {
	if days < 0 {
		days = 0
	}
	return "D-" + strconv.Itoa(days)
}
