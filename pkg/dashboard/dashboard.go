// Package dashboard ties the engines together behind the renderer contract:
// each frame is a read-only snapshot of every widget, and user intents are
// plain method calls.
package dashboard

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/calendar"
	"github.com/BYTE-6D65/studyclock/pkg/clock"
	"github.com/BYTE-6D65/studyclock/pkg/countdown"
	"github.com/BYTE-6D65/studyclock/pkg/event"
	"github.com/BYTE-6D65/studyclock/pkg/logs"
	"github.com/BYTE-6D65/studyclock/pkg/preset"
	"github.com/BYTE-6D65/studyclock/pkg/schedule"
	"github.com/BYTE-6D65/studyclock/pkg/stopwatch"
	"github.com/BYTE-6D65/studyclock/pkg/timer"
)

// Renderer receives frames and the timer's exhaustion signal.
//
// TimerExhausted is called from the scheduler goroutine and must not block
// or call back into the dashboard.
type Renderer interface {
	RenderFrame(Frame)
	TimerExhausted(timer.Exhausted)
}

// RendererFuncs adapts plain functions to Renderer. Nil fields are skipped.
type RendererFuncs struct {
	Frame     func(Frame)
	Exhausted func(timer.Exhausted)
}

// RenderFrame calls r.Frame.
func (r RendererFuncs) RenderFrame(f Frame) {
	if r.Frame != nil {
		r.Frame(f)
	}
}

// TimerExhausted calls r.Exhausted.
func (r RendererFuncs) TimerExhausted(ex timer.Exhausted) {
	if r.Exhausted != nil {
		r.Exhausted(ex)
	}
}

// TimerView is the timer snapshot plus the loaded preset's label.
type TimerView struct {
	timer.Snapshot
	Label string
}

// CalendarView is the month strip around Center. Generation increases every
// time the months are rebuilt.
type CalendarView struct {
	Center     calendar.YearMonth
	Window     calendar.Window
	Months     []calendar.Month
	Generation uint64
}

// Frame is everything a renderer draws at one instant.
type Frame struct {
	Now       time.Time
	Countdown countdown.Snapshot
	Stopwatch stopwatch.Snapshot
	Timer     TimerView
	Calendar  CalendarView
}

// Options configures a Dashboard. Zero values select the live clock, the
// wall-clock scheduler, no bus, no renderer and the default calendar window.
//
// Clock drives the stopwatch and the timer. CountdownClock drives the
// countdowns, milestones and calendar and defaults to Clock; pinning it to a
// fixed date leaves the stopwatch and timer running in real time.
type Options struct {
	Clock          clock.Clock
	CountdownClock clock.Clock
	Scheduler      schedule.Scheduler
	Bus            event.Bus
	Renderer       Renderer
	Countdown      countdown.Config
	Window         *calendar.Window
}

// Dashboard owns one instance of every engine.
type Dashboard struct {
	display   clock.Clock
	countdown *countdown.Engine
	stopwatch *stopwatch.Stopwatch
	engine    *timer.Engine
	runner    *timer.Runner
	logger    *log.Logger

	mu       sync.Mutex
	renderer Renderer
	window   calendar.Window
	center   calendar.YearMonth
	months   []calendar.Month
	gen      uint64
	built    bool
	builtFor calendar.YearMonth
	builtWin calendar.Window
	rollover time.Time
}

// New creates a dashboard with the calendar centered on the current month.
func New(opts Options) *Dashboard {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	display := opts.CountdownClock
	if display == nil {
		display = clk
	}
	window := calendar.DefaultWindow
	if opts.Window != nil {
		window = clampWindow(*opts.Window)
	}

	engine := timer.NewEngine(clk)
	d := &Dashboard{
		display:   display,
		countdown: countdown.New(display, opts.Countdown),
		stopwatch: stopwatch.New(clk),
		engine:    engine,
		runner:    timer.NewRunner(engine, opts.Scheduler, opts.Bus),
		logger:    logs.NewLogger("dashboard"),
		renderer:  opts.Renderer,
		window:    window,
		center:    calendar.Of(display.Now()),
	}
	engine.OnExhausted(d.exhausted)
	return d
}

// SetRenderer attaches r. A nil renderer detaches.
func (d *Dashboard) SetRenderer(r Renderer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderer = r
}

// Frame recomputes every widget from the current instant and pushes the
// result to the renderer, if one is attached. Now is the countdown clock's
// instant.
func (d *Dashboard) Frame() Frame {
	now := d.display.Now()

	f := Frame{
		Now:       now,
		Countdown: d.countdown.SnapshotAt(now),
		Stopwatch: d.stopwatch.Snapshot(),
		Timer: TimerView{
			Snapshot: d.engine.Snapshot(),
			Label:    d.runner.Label(),
		},
	}

	d.mu.Lock()
	f.Calendar = d.calendarLocked(now)
	r := d.renderer
	d.mu.Unlock()

	if r != nil {
		r.RenderFrame(f)
	}
	return f
}

// calendarLocked rebuilds the months only when the window, the center or the
// calendar day has changed since the last build.
func (d *Dashboard) calendarLocked(now time.Time) CalendarView {
	stale := !d.built ||
		d.builtFor != d.center ||
		d.builtWin != d.window ||
		!now.Before(d.rollover)

	if stale {
		d.months = calendar.Build(now, d.center, d.window)
		d.builtFor = d.center
		d.builtWin = d.window
		d.rollover = calendar.NextRollover(now)
		d.built = true
		d.gen++
	}

	return CalendarView{
		Center:     d.center,
		Window:     d.window,
		Months:     d.months,
		Generation: d.gen,
	}
}

// StartStopwatch starts the stopwatch.
func (d *Dashboard) StartStopwatch() { d.stopwatch.Start() }

// PauseStopwatch pauses the stopwatch.
func (d *Dashboard) PauseStopwatch() { d.stopwatch.Pause() }

// ToggleStopwatch pauses a running stopwatch and starts a stopped one.
func (d *Dashboard) ToggleStopwatch() { d.stopwatch.Toggle() }

// ResetStopwatch stops the stopwatch and clears it.
func (d *Dashboard) ResetStopwatch() { d.stopwatch.Reset() }

// StartTimer starts the countdown timer. It returns timer.ErrNoDuration
// when nothing is loaded.
func (d *Dashboard) StartTimer() error { return d.runner.Start() }

// PauseTimer pauses the countdown timer.
func (d *Dashboard) PauseTimer() { d.runner.Pause() }

// ToggleTimer pauses a running timer and starts a stopped one.
func (d *Dashboard) ToggleTimer() error { return d.runner.Toggle() }

// ResetTimer stops the timer and restores the loaded duration.
func (d *Dashboard) ResetTimer() { d.runner.Reset() }

// RestartTimer runs the loaded duration again from the top.
func (d *Dashboard) RestartTimer() error { return d.runner.Restart() }

// LoadPreset stops the timer and loads p. It reports false for a preset
// without a positive duration.
func (d *Dashboard) LoadPreset(p preset.Preset) bool {
	ok := d.runner.LoadPreset(p)
	if !ok {
		d.logger.Warnf("refused preset %q (%ds)", p.Label, p.Seconds)
	}
	return ok
}

// LoadDuration stops the timer and loads seconds.
func (d *Dashboard) LoadDuration(seconds int) bool {
	return d.runner.Load(seconds)
}

// SetTargets replaces the countdown targets, roles, anchors and milestones.
func (d *Dashboard) SetTargets(cfg countdown.Config) {
	d.countdown.SetTargets(cfg)
	d.logger.Debugf("targets replaced (%d targets, %d milestones)", cfg.Targets.Len(), len(cfg.Milestones))
}

// SetWindow changes how many months are built around the center. Negative
// sizes are treated as zero.
func (d *Dashboard) SetWindow(before, after int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.window = clampWindow(calendar.Window{Before: before, After: after})
}

// ScrollCalendar moves the center by n months.
func (d *Dashboard) ScrollCalendar(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.center = d.center.Add(n)
}

// CenterToday moves the center back to the current month.
func (d *Dashboard) CenterToday() {
	now := d.display.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.center = calendar.Of(now)
}

// Window returns the calendar window.
func (d *Dashboard) Window() calendar.Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// Close stops the timer schedule.
func (d *Dashboard) Close() {
	d.runner.Stop()
}

func (d *Dashboard) exhausted(ex timer.Exhausted) {
	d.mu.Lock()
	r := d.renderer
	d.mu.Unlock()

	if r != nil {
		r.TimerExhausted(ex)
	}
}

func clampWindow(w calendar.Window) calendar.Window {
	if w.Before < 0 {
		w.Before = 0
	}
	if w.After < 0 {
		w.After = 0
	}
	return w
}
