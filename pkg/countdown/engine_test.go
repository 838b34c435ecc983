package countdown

import (
	"testing"
	"time"

	"github.com/BYTE-6D65/studyclock/pkg/clock"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func examConfig() Config {
	return Config{
		Targets: NewTargetSet(
			Target{Key: "2026", At: date(2025, time.November, 13)},
			Target{Key: "2027", At: date(2026, time.November, 19)},
			Target{Key: "2028", At: date(2027, time.November, 18)},
		),
		Roles:   Roles{Past: "2026", Upcoming: "2027", Next: "2028"},
		Anchors: Anchors{From: "2026", To: "2027"},
		Milestones: []Milestone{
			{Label: "3월 학평", At: date(2026, time.March, 24)},
			{Label: "6월 모평", At: date(2026, time.June, 4)},
			{Label: "9월 모평", At: date(2026, time.September, 2)},
			{Label: "next year", At: date(2027, time.March, 23)},
		},
	}
}

func TestProgress(t *testing.T) {
	a := date(2025, time.November, 13)
	b := date(2026, time.November, 19)
	mid := a.Add(b.Sub(a) / 2)

	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"at start", a, 0},
		{"at end", b, 100},
		{"midway", mid, 50},
		{"before start", a.Add(-time.Hour), 0},
		{"after end", b.Add(time.Hour), 100},
	}

	for _, tt := range tests {
		if got := Progress(a, b, tt.now); got != tt.want {
			t.Errorf("%s: Progress = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := Progress(a, a, a.Add(time.Hour)); got != 0 {
		t.Errorf("degenerate interval: Progress = %v, want 0", got)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.October, 19, 23, 30, 0, 0, time.Local)

	tests := []struct {
		target time.Time
		want   int
	}{
		{date(2026, time.October, 19), 0},
		{date(2026, time.October, 20), 1},
		{time.Date(2026, time.October, 20, 23, 0, 0, 0, time.Local), 1},
		{date(2026, time.November, 19), 31},
		{date(2026, time.March, 24), 0},
		// spans the end of daylight saving time in zones that observe it
		{date(2027, time.March, 23), 155},
	}

	for _, tt := range tests {
		if got := DaysUntil(now, tt.target); got != tt.want {
			t.Errorf("DaysUntil(%v) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestEngine_Tick(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)
	eng := New(clock.NewFixedClock(now), examConfig())

	snap := eng.Tick()

	if len(snap.Slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(snap.Slots))
	}

	past, ok := snap.Slot(RolePast)
	if !ok || !past.Available {
		t.Fatal("past slot missing")
	}
	if !past.Past {
		t.Error("past slot should be in the past")
	}
	if past.Display != "000:00:00:00:00" {
		t.Errorf("past display = %q", past.Display)
	}
	wantAgo := int(now.Sub(date(2025, time.November, 13)) / (24 * time.Hour))
	if past.DaysAgo != wantAgo {
		t.Errorf("DaysAgo = %d, want %d", past.DaysAgo, wantAgo)
	}

	upcoming, _ := snap.Slot(RoleUpcoming)
	if upcoming.Past {
		t.Error("upcoming slot should not be past")
	}
	if upcoming.Remaining != date(2026, time.November, 19).Sub(now) {
		t.Errorf("Remaining = %v", upcoming.Remaining)
	}
	if upcoming.Weekends != 4 {
		t.Errorf("Weekends = %d, want 4", upcoming.Weekends)
	}

	if !snap.ProgressAvailable {
		t.Fatal("progress should be available")
	}
	if snap.Progress <= 0 || snap.Progress >= 100 {
		t.Errorf("Progress = %v, want strictly between 0 and 100", snap.Progress)
	}
	if len(snap.ProgressText) != len("91.5000000%") {
		t.Errorf("ProgressText = %q, want 7 decimal places", snap.ProgressText)
	}
}

func TestEngine_TickIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)
	eng := New(clock.NewFixedClock(now), examConfig())

	first := eng.Tick()
	second := eng.Tick()

	if first.ProgressText != second.ProgressText {
		t.Errorf("progress changed between ticks: %s vs %s", first.ProgressText, second.ProgressText)
	}
	for i := range first.Slots {
		if first.Slots[i] != second.Slots[i] {
			t.Errorf("slot %d changed between ticks", i)
		}
	}
}

func TestEngine_RemainingMonotonic(t *testing.T) {
	clk := clock.NewManualClock(time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local))
	eng := New(clk, examConfig())

	prev := eng.Tick()
	for i := 0; i < 100; i++ {
		clk.Add(17 * time.Millisecond)
		cur := eng.Tick()
		a, _ := prev.Slot(RoleUpcoming)
		b, _ := cur.Slot(RoleUpcoming)
		if b.Remaining >= a.Remaining {
			t.Fatalf("remaining did not decrease: %v -> %v", a.Remaining, b.Remaining)
		}
		if cur.Progress < prev.Progress {
			t.Fatalf("progress went backwards: %v -> %v", prev.Progress, cur.Progress)
		}
		prev = cur
	}
}

func TestEngine_Milestones(t *testing.T) {
	now := time.Date(2026, time.January, 10, 15, 0, 0, 0, time.Local)
	eng := New(clock.NewFixedClock(now), examConfig())

	snap := eng.Tick()
	if len(snap.Milestones) != 4 {
		t.Fatalf("Expected 4 milestones, got %d", len(snap.Milestones))
	}

	placed := snap.Placed()
	if len(placed) != 3 {
		t.Fatalf("Expected 3 placed milestones, got %d", len(placed))
	}
	for i := 1; i < len(placed); i++ {
		if placed[i].Percent <= placed[i-1].Percent {
			t.Errorf("placements out of order: %v", placed)
		}
	}

	march := snap.Milestones[0]
	if march.DDay != 73 || march.DDayLabel != "D-73" {
		t.Errorf("March D-day = %d (%s), want 73", march.DDay, march.DDayLabel)
	}

	outside := snap.Milestones[3]
	if outside.Placed {
		t.Error("milestone after the anchor interval should not be placed")
	}
	if outside.Percent <= 100 {
		t.Errorf("outside percent = %v, want > 100", outside.Percent)
	}
	if outside.DDay != DaysUntil(now, outside.At) || outside.DDay == 0 {
		t.Errorf("outside D-day = %d, want it computed", outside.DDay)
	}
}

func TestEngine_PassedMilestoneIsDZero(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.Local)
	eng := New(clock.NewFixedClock(now), examConfig())

	for _, m := range eng.Tick().Milestones[:3] {
		if m.DDay != 0 || m.DDayLabel != "D-0" {
			t.Errorf("%s: D-day = %d, want 0", m.Label, m.DDay)
		}
	}
}

func TestEngine_MissingTargets(t *testing.T) {
	cfg := examConfig()
	cfg.Roles.Next = "2099"
	cfg.Anchors.To = "missing"

	eng := New(clock.NewFixedClock(date(2026, time.May, 1)), cfg)
	snap := eng.Tick()

	next, _ := snap.Slot(RoleNext)
	if next.Available {
		t.Error("slot with unknown key should be unavailable")
	}
	if next.Display != NotAvailable {
		t.Errorf("Display = %q, want %q", next.Display, NotAvailable)
	}

	if snap.ProgressAvailable {
		t.Error("progress should be unavailable without both anchors")
	}
	if snap.ProgressText != NotAvailable {
		t.Errorf("ProgressText = %q", snap.ProgressText)
	}
	if len(snap.Placed()) != 0 {
		t.Error("no milestone can be placed without anchors")
	}
	if snap.Milestones[1].DDay != 34 {
		t.Errorf("D-day should still be computed, got %d", snap.Milestones[1].DDay)
	}
}

func TestEngine_ZeroConfig(t *testing.T) {
	eng := New(clock.NewFixedClock(date(2026, time.May, 1)), Config{})
	snap := eng.Tick()

	for _, s := range snap.Slots {
		if s.Available {
			t.Errorf("slot %s should be unavailable", s.Role)
		}
	}
}

func TestEngine_SetTargets(t *testing.T) {
	now := date(2026, time.May, 1)
	eng := New(clock.NewFixedClock(now), Config{})

	eng.SetTargets(examConfig())
	snap := eng.Tick()

	if s, _ := snap.Slot(RoleUpcoming); !s.Available {
		t.Error("SetTargets should make the upcoming slot available")
	}
	if eng.Config().Targets.Len() != 3 {
		t.Errorf("Config().Targets.Len() = %d", eng.Config().Targets.Len())
	}
}

func TestTargetSet(t *testing.T) {
	set := NewTargetSet(
		Target{Key: "b", At: date(2026, time.January, 2)},
		Target{Key: "a", At: date(2026, time.January, 1)},
		Target{Key: "", At: date(2026, time.January, 3)},
		Target{Key: "b", At: date(2026, time.January, 4)},
	)

	keys := set.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", keys)
	}

	at, ok := set.Lookup("b")
	if !ok || !at.Equal(date(2026, time.January, 4)) {
		t.Errorf("Lookup(b) = %v, %v", at, ok)
	}

	keys[0] = "mutated"
	if set.Keys()[0] != "b" {
		t.Error("Keys() must return a copy")
	}

	var zero TargetSet
	if _, ok := zero.Lookup("x"); ok {
		t.Error("zero set should be empty")
	}
}
