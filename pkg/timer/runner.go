package timer

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/event"
	"github.com/BYTE-6D65/studyclock/pkg/logs"
	"github.com/BYTE-6D65/studyclock/pkg/preset"
	"github.com/BYTE-6D65/studyclock/pkg/schedule"
	"github.com/BYTE-6D65/studyclock/pkg/statemachine"
)

// Source is the event source name used by the runner.
const Source = "timer"

// Runner drives an Engine from a Scheduler and publishes lifecycle events.
// It assumes it is the only caller of the engine's mutating methods: the
// engine's change listener publishes while the runner still holds r.mu.
//
// The discrete schedule exists only while the engine runs. Pause, Reset,
// LoadPreset and exhaustion cancel it, and a callback that races with one of
// them finds its handle replaced and leaves the engine alone, so no tick
// lands after those calls return.
type Runner struct {
	mu     sync.Mutex
	engine *Engine
	sched  schedule.Scheduler
	bus    event.Bus
	logger *log.Logger
	handle schedule.Handle
	label  string
}

// NewRunner wires engine to sched. bus may be nil.
func NewRunner(engine *Engine, sched schedule.Scheduler, bus event.Bus) *Runner {
	if sched == nil {
		sched = schedule.NewTicker()
	}
	r := &Runner{
		engine: engine,
		sched:  sched,
		bus:    bus,
		logger: logs.NewLogger("timer"),
	}
	engine.OnChange(r.changed)
	return r
}

// Engine returns the driven engine.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Label returns the name of the last loaded preset.
func (r *Runner) Label() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.label
}

// Start starts the engine and its one-second schedule.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked()
}

// Pause stops the schedule and the engine.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	r.engine.Pause()
}

// Toggle pauses a running timer and starts a stopped one.
func (r *Runner) Toggle() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine.Running() {
		r.cancelLocked()
		r.engine.Pause()
		return nil
	}
	return r.startLocked()
}

// Reset stops the schedule and restores the full duration.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	r.engine.Reset()
}

// Load stops the timer and loads seconds.
func (r *Runner) Load(seconds int) bool {
	return r.LoadPreset(preset.Preset{Seconds: seconds})
}

// LoadPreset stops the timer and loads p. It reports false for a
// non-positive duration, leaving the timer stopped.
func (r *Runner) LoadPreset(p preset.Preset) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	r.engine.Pause()
	if !r.engine.Load(p.Seconds) {
		return false
	}
	r.label = p.Label
	r.logger.Debugf("loaded %q (%ds)", p.Label, p.Seconds)
	return true
}

// Restart starts again from the re-armed duration, as after an exhaustion.
func (r *Runner) Restart() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	r.engine.Reset()
	return r.startLocked()
}

// Stop cancels the schedule without touching the engine. Used on shutdown.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

func (r *Runner) startLocked() error {
	if err := r.engine.Start(); err != nil {
		return err
	}
	if r.handle != nil {
		return nil
	}

	// h is written under r.mu and tick reads it under r.mu.
	var h schedule.Handle
	h = r.sched.Every(schedule.TickInterval, func() { r.tick(&h) })
	r.handle = h
	return nil
}

func (r *Runner) cancelLocked() {
	if r.handle != nil {
		r.handle.Cancel()
		r.handle = nil
	}
}

// tick runs on the scheduler. A tick whose handle is no longer current was
// cancelled while it waited for the lock.
func (r *Runner) tick(own *schedule.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if *own == nil || r.handle != *own {
		return
	}

	ex, ok := r.engine.Tick()
	if !ok {
		return
	}

	r.cancelLocked()
	r.logger.Infof("exhausted after %ds", ex.Total)
	r.publish(event.TypeTimerExhausted, r.engine.State())
}

// changed maps engine transitions to bus events. Expiry is published by
// tick once the schedule is cancelled.
func (r *Runner) changed(c Change) {
	switch {
	case c.To == Running:
		r.publish(event.TypeTimerStarted, c.To)
	case c.Event == evPause || c.Event == evHalt:
		r.publish(event.TypeTimerPaused, c.To)
	case c.Event == evReset && c.From != Expired:
		r.publish(event.TypeTimerReset, c.To)
	}
}

func (r *Runner) publish(typ string, state statemachine.State) {
	if r.bus == nil {
		return
	}

	snap := r.engine.Snapshot()
	evt, err := event.New(typ, Source, r.engine.clock.Now(), event.TimerPayload{
		Total:     snap.Total,
		Remaining: snap.Remaining,
		Label:     r.label,
	})
	if err != nil {
		r.logger.Warnf("encode %s: %v", typ, err)
		return
	}
	evt = evt.WithMetadata("state", string(state))
	if r.label != "" {
		evt = evt.WithMetadata("preset", r.label)
	}
	if err := r.bus.Publish(context.Background(), evt); err != nil {
		r.logger.Warnf("publish %s: %v", typ, err)
	}
}
