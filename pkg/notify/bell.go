package notify

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/BYTE-6D65/studyclock/pkg/event"
	"github.com/BYTE-6D65/studyclock/pkg/schedule"
)

// DingInterval is the repeat period of the alarm.
const DingInterval = 800 * time.Millisecond

const bel = "\a"

// Bell rings the terminal bell when the timer is exhausted, once at once and
// then every DingInterval until stopped. Starting or resetting the timer
// stops it, as does disabling sound.
type Bell struct {
	mu      sync.Mutex
	out     io.Writer
	sched   schedule.Scheduler
	enabled bool
	ringing schedule.Handle
}

// NewBell creates a bell writing to out.
func NewBell(out io.Writer, sched schedule.Scheduler, enabled bool) *Bell {
	if sched == nil {
		sched = schedule.NewTicker()
	}
	return &Bell{out: out, sched: sched, enabled: enabled}
}

// ID implements Emitter.
func (b *Bell) ID() string { return "bell" }

// Emit implements Emitter.
func (b *Bell) Emit(_ context.Context, evt event.Event) error {
	switch evt.Type {
	case event.TypeTimerExhausted:
		b.Ring()
	case event.TypeTimerStarted, event.TypeTimerReset:
		b.Stop()
	default:
		return ErrUnsupportedEvent
	}
	return nil
}

// Ring starts the alarm. It does nothing while muted or already ringing.
func (b *Bell) Ring() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.ringing != nil {
		return
	}
	b.ding()
	b.ringing = b.sched.Every(DingInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.ringing != nil {
			b.ding()
		}
	})
}

// Stop silences the alarm.
func (b *Bell) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

// Ringing reports whether the alarm is sounding.
func (b *Bell) Ringing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ringing != nil
}

// SetEnabled toggles sound. Muting stops a ringing alarm.
func (b *Bell) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
	if !enabled {
		b.stopLocked()
	}
}

// Enabled reports whether sound is on.
func (b *Bell) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Close implements Emitter.
func (b *Bell) Close() error {
	b.Stop()
	return nil
}

func (b *Bell) stopLocked() {
	if b.ringing != nil {
		b.ringing.Cancel()
		b.ringing = nil
	}
}

func (b *Bell) ding() {
	if b.out != nil {
		io.WriteString(b.out, bel)
	}
}
