// Package timer implements the countdown timer: a whole-second counter that
// ticks once per second, re-arms itself when it runs out and reports each
// exhaustion exactly once.
package timer

import (
	"errors"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/clock"
	"github.com/BYTE-6D65/studyclock/pkg/format"
	"github.com/BYTE-6D65/studyclock/pkg/logs"
	"github.com/BYTE-6D65/studyclock/pkg/statemachine"
)

// Radius of the progress ring, in the renderer's units.
const Radius = 45

// Circumference of the progress ring.
var Circumference = 2 * math.Pi * Radius

// ErrNoDuration is returned by Start when nothing is loaded.
var ErrNoDuration = errors.New("timer: no duration loaded")

// States.
const (
	Idle    statemachine.State = "idle"
	Running statemachine.State = "running"
	Paused  statemachine.State = "paused"
	Expired statemachine.State = "expired"
)

const (
	evLoad   statemachine.Event = "load"
	evStart  statemachine.Event = "start"
	evPause  statemachine.Event = "pause"
	evHalt   statemachine.Event = "halt"
	evExpire statemachine.Event = "expire"
	evRearm  statemachine.Event = "rearm"
	evReset  statemachine.Event = "reset"
)

// table builds the timer lifecycle for e. Expired only exists between the
// expire and rearm events inside a single Tick. Paused always has some time
// spent: pausing a timer that has not ticked halts it back to Idle.
func (e *Engine) table() []statemachine.Transition {
	return []statemachine.Transition{
		{From: Idle, To: Idle, Event: evLoad},
		{From: Paused, To: Idle, Event: evLoad},

		{From: Idle, To: Running, Event: evStart, Guard: e.hasRemaining},
		{From: Paused, To: Running, Event: evStart, Guard: e.hasRemaining},

		{From: Running, To: Paused, Event: evPause, Guard: e.hasElapsed},
		{From: Running, To: Idle, Event: evHalt},

		{From: Running, To: Expired, Event: evExpire},
		{From: Expired, To: Idle, Event: evRearm, Action: e.restore},

		{From: Idle, To: Idle, Event: evReset, Action: e.restore},
		{From: Running, To: Idle, Event: evReset, Action: e.restore},
		{From: Paused, To: Idle, Event: evReset, Action: e.restore},
		{From: Expired, To: Idle, Event: evReset, Action: e.restore},
	}
}

// Guards and actions run inside Fire, which is only called with e.mu held.

func (e *Engine) hasRemaining(_, _ statemachine.State, _ statemachine.Event) bool {
	return e.remaining > 0
}

func (e *Engine) hasElapsed(_, _ statemachine.State, _ statemachine.Event) bool {
	return e.remaining < e.total
}

func (e *Engine) restore(_, _ statemachine.State, _ statemachine.Event) error {
	e.remaining = e.total
	return nil
}

// Exhausted is the one-shot signal raised when the timer runs out.
type Exhausted struct {
	Total int
	At    time.Time
}

// Change is one completed lifecycle transition.
type Change struct {
	From  statemachine.State
	To    statemachine.State
	Event statemachine.Event
}

// Snapshot is the display state of the timer.
type Snapshot struct {
	State         statemachine.State
	Total         int
	Remaining     int
	Running       bool
	Display       string
	Offset        float64
	Circumference float64
}

// Engine owns the timer state. All methods are safe for concurrent use;
// change and exhaustion listeners run after the engine lock is released.
type Engine struct {
	mu        sync.Mutex
	clock     clock.Clock
	machine   *statemachine.Machine
	logger    *log.Logger
	total     int
	remaining int
	pending   *Exhausted
	changes   []Change
	listeners []func(Exhausted)
	observers []func(Change)
}

// NewEngine creates an idle timer with nothing loaded.
func NewEngine(clk clock.Clock) *Engine {
	e := &Engine{}
	e.setup(clk, e.table())
	return e
}

func (e *Engine) setup(clk clock.Clock, table []statemachine.Transition) {
	if clk == nil {
		clk = clock.NewSystemClock()
	}

	m, err := statemachine.New(Idle, table...)
	if err != nil {
		// The table is static; a duplicate edge is a programming error.
		panic(err)
	}
	m.AddState(statemachine.StateConfig{
		Name: Expired,
		OnEnter: func(statemachine.State) error {
			e.pending = &Exhausted{Total: e.total, At: e.clock.Now()}
			return nil
		},
	})
	m.OnTransition(func(from, to statemachine.State, ev statemachine.Event) {
		e.changes = append(e.changes, Change{From: from, To: to, Event: ev})
	})

	e.clock = clk
	e.machine = m
	e.logger = logs.NewLogger("timer")
}

// OnExhausted registers fn to be called once per exhaustion.
func (e *Engine) OnExhausted(fn func(Exhausted)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// OnChange registers fn to be called after every lifecycle transition.
func (e *Engine) OnChange(fn func(Change)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// unlock releases e.mu and then delivers the changes and the exhaustion
// collected while it was held. It returns the exhaustion, if any.
func (e *Engine) unlock() *Exhausted {
	changes := e.changes
	e.changes = nil
	ex := e.pending
	e.pending = nil
	observers := append([]func(Change){}, e.observers...)
	listeners := append([]func(Exhausted){}, e.listeners...)
	e.mu.Unlock()

	for _, c := range changes {
		for _, fn := range observers {
			fn(c)
		}
	}
	if ex != nil {
		for _, fn := range listeners {
			fn(*ex)
		}
	}
	return ex
}

// Load sets both total and remaining to seconds. It is refused while running
// or for a non-positive duration.
func (e *Engine) Load(seconds int) bool {
	e.mu.Lock()
	defer e.unlock()

	if seconds <= 0 || !e.machine.Can(evLoad) {
		return false
	}
	if err := e.machine.Fire(evLoad); err != nil {
		return false
	}
	e.total = seconds
	e.remaining = seconds
	return true
}

// Start begins counting down. Starting a running timer is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.unlock()
	return e.startLocked()
}

// Pause stops counting and keeps the remaining time. It reports whether the
// timer was running.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.pauseLocked()
}

// Toggle pauses a running timer and starts any other.
func (e *Engine) Toggle() error {
	e.mu.Lock()
	defer e.unlock()

	if e.machine.Is(Running) {
		e.pauseLocked()
		return nil
	}
	return e.startLocked()
}

func (e *Engine) startLocked() error {
	if e.machine.Is(Running) {
		return nil
	}
	err := e.machine.Fire(evStart)
	if errors.Is(err, statemachine.ErrGuardRejected) {
		return ErrNoDuration
	}
	return err
}

// pauseLocked moves a running timer to Paused, or back to Idle when no
// second has been spent yet.
func (e *Engine) pauseLocked() bool {
	if !e.machine.Is(Running) {
		return false
	}
	err := e.machine.Fire(evPause)
	if errors.Is(err, statemachine.ErrGuardRejected) {
		err = e.machine.Fire(evHalt)
	}
	return err == nil
}

// Tick advances a running timer by one second. When the count reaches zero
// the timer stops, re-arms to its full duration and the exhaustion is
// returned and delivered to listeners. A tick while not running does
// nothing.
func (e *Engine) Tick() (Exhausted, bool) {
	e.mu.Lock()

	if !e.machine.Is(Running) {
		e.mu.Unlock()
		return Exhausted{}, false
	}

	e.remaining--
	if e.remaining > 0 {
		e.unlock()
		return Exhausted{}, false
	}

	// OnEnter(Expired) records the signal; rearm restores remaining.
	err := e.machine.Fire(evExpire)
	if err == nil {
		err = e.machine.Fire(evRearm)
	}
	if err != nil {
		e.logger.Warnf("rearm failed, resetting: %v", err)
		if err := e.machine.Fire(evReset); err != nil {
			e.logger.Errorf("reset after failed rearm: %v", err)
			e.remaining = e.total
		}
	}

	ex := e.unlock()
	if ex == nil {
		return Exhausted{}, false
	}
	return *ex, true
}

// Reset stops the timer and restores the full duration.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.unlock()

	if err := e.machine.Fire(evReset); err != nil {
		e.logger.Warnf("reset: %v", err)
		e.remaining = e.total
	}
}

// State returns the lifecycle state.
func (e *Engine) State() statemachine.State {
	return e.machine.Current()
}

// Running reports whether the timer is counting down.
func (e *Engine) Running() bool {
	return e.machine.Is(Running)
}

// Snapshot returns the display state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.machine.Current()
	return Snapshot{
		State:         state,
		Total:         e.total,
		Remaining:     e.remaining,
		Running:       state == Running,
		Display:       format.Clock(e.remaining),
		Offset:        Offset(e.remaining, e.total),
		Circumference: Circumference,
	}
}

// Offset is the stroke offset of the progress ring: zero when full, the
// whole circumference when empty. A zero total draws an empty ring.
func Offset(remaining, total int) float64 {
	if total <= 0 {
		return Circumference
	}
	return Circumference * (1 - float64(remaining)/float64(total))
}
