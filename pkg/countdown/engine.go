// Package countdown derives the countdown slots, the progress bar and the
// milestone markers from a set of target instants and a clock.
package countdown

import (
	"math"
	"sync"
	"time"

	"github.com/BYTE-6D65/studyclock/pkg/clock"
	"github.com/BYTE-6D65/studyclock/pkg/format"
	"github.com/BYTE-6D65/studyclock/pkg/weekend"
)

// NotAvailable is the display string for a slot whose target is missing.
const NotAvailable = "not available"

const day = 24 * time.Hour

// Slot is one countdown line.
type Slot struct {
	Role      string
	Key       string
	Target    time.Time
	Available bool

	Remaining time.Duration
	Display   string
	Past      bool
	DaysAgo   int
	Weekends  int
}

// Placement is a milestone marker. Percent is unclamped; Placed reports
// whether it lies within the anchor interval and should be drawn.
type Placement struct {
	Index     int
	Label     string
	At        time.Time
	Percent   float64
	Placed    bool
	DDay      int
	DDayLabel string
}

// Snapshot is the read-only result of one recompute.
type Snapshot struct {
	Now               time.Time
	Slots             []Slot
	Progress          float64
	ProgressAvailable bool
	ProgressText      string
	Milestones        []Placement
}

// Slot returns the slot for role.
func (s Snapshot) Slot(role string) (Slot, bool) {
	for _, slot := range s.Slots {
		if slot.Role == role {
			return slot, true
		}
	}
	return Slot{}, false
}

// Placed returns the milestones that fall inside the anchor interval.
func (s Snapshot) Placed() []Placement {
	var out []Placement
	for _, p := range s.Milestones {
		if p.Placed {
			out = append(out, p)
		}
	}
	return out
}

// Engine recomputes countdown snapshots. Every call to Tick is a fresh
// derivation from the clock, so repeated calls never drift.
type Engine struct {
	mu    sync.Mutex
	clock clock.Clock
	cfg   Config
}

// New creates an engine.
func New(clk clock.Clock, cfg Config) *Engine {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Engine{clock: clk, cfg: cfg.clone()}
}

// SetTargets replaces the whole configuration.
func (e *Engine) SetTargets(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg.clone()
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.clone()
}

// Tick recomputes against the clock's current instant.
func (e *Engine) Tick() Snapshot {
	return e.SnapshotAt(e.clock.Now())
}

// SnapshotAt recomputes against an explicit instant.
func (e *Engine) SnapshotAt(now time.Time) Snapshot {
	e.mu.Lock()
	cfg := e.cfg
	e.mu.Unlock()

	snap := Snapshot{Now: now}

	roles := []struct{ role, key string }{
		{RolePast, cfg.Roles.Past},
		{RoleUpcoming, cfg.Roles.Upcoming},
		{RoleNext, cfg.Roles.Next},
	}
	for _, r := range roles {
		snap.Slots = append(snap.Slots, slotFor(cfg.Targets, r.role, r.key, now))
	}

	from, okFrom := cfg.Targets.Lookup(cfg.Anchors.From)
	to, okTo := cfg.Targets.Lookup(cfg.Anchors.To)
	snap.ProgressAvailable = okFrom && okTo
	if snap.ProgressAvailable {
		snap.Progress = Progress(from, to, now)
		snap.ProgressText = format.Percent(snap.Progress, format.DefaultPercentPlaces)
	} else {
		snap.ProgressText = NotAvailable
	}

	for i, m := range cfg.Milestones {
		p := Placement{
			Index: i,
			Label: m.Label,
			At:    m.At,
			DDay:  DaysUntil(now, m.At),
		}
		p.DDayLabel = format.DDay(p.DDay)
		if snap.ProgressAvailable {
			p.Percent = Ratio(from, to, m.At)
			p.Placed = p.Percent >= 0 && p.Percent <= 100
		}
		snap.Milestones = append(snap.Milestones, p)
	}

	return snap
}

func slotFor(targets TargetSet, role, key string, now time.Time) Slot {
	slot := Slot{Role: role, Key: key}
	at, ok := targets.Lookup(key)
	if !ok {
		slot.Display = NotAvailable
		return slot
	}

	slot.Available = true
	slot.Target = at
	slot.Remaining = at.Sub(now)
	slot.Display = format.Unified(slot.Remaining)
	slot.Past = slot.Remaining <= 0
	if slot.Past {
		slot.DaysAgo = int(-slot.Remaining / day)
	} else {
		slot.Weekends = weekend.Count(now, at)
	}
	return slot
}

// Ratio returns where at sits between a and b as an unclamped percentage.
// A zero-length interval yields 0.
func Ratio(a, b, at time.Time) float64 {
	total := b.Sub(a)
	if total == 0 {
		return 0
	}
	return float64(at.Sub(a)) / float64(total) * 100
}

// Progress returns the share of the a..b interval that has elapsed at now,
// clamped to [0, 100]. A zero-length interval yields 0.
func Progress(a, b, now time.Time) float64 {
	return math.Min(100, math.Max(0, Ratio(a, b, now)))
}

// DaysUntil returns the number of calendar days from now's date to target's
// date, never negative.
func DaysUntil(now, target time.Time) int {
	n := calendarDays(now, target.In(now.Location()))
	if n < 0 {
		return 0
	}
	return n
}

// calendarDays counts date boundaries between a and b. The dates are moved to
// UTC so a daylight-saving shift cannot stretch a day.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / day)
}
