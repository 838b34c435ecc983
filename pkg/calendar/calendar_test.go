package calendar

import (
	"testing"
	"time"
)

func TestYearMonth_Add(t *testing.T) {
	tests := []struct {
		from YearMonth
		n    int
		want YearMonth
	}{
		{YearMonth{2026, time.January}, 0, YearMonth{2026, time.January}},
		{YearMonth{2026, time.January}, -1, YearMonth{2025, time.December}},
		{YearMonth{2026, time.December}, 1, YearMonth{2027, time.January}},
		{YearMonth{2026, time.October}, -12, YearMonth{2025, time.October}},
		{YearMonth{2026, time.October}, 36, YearMonth{2029, time.October}},
		{YearMonth{2026, time.March}, -27, YearMonth{2023, time.December}},
	}

	for _, tt := range tests {
		if got := tt.from.Add(tt.n); got != tt.want {
			t.Errorf("%v.Add(%d) = %v, want %v", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestYearMonth_Days(t *testing.T) {
	tests := []struct {
		ym   YearMonth
		want int
	}{
		{YearMonth{2026, time.January}, 31},
		{YearMonth{2026, time.February}, 28},
		{YearMonth{2028, time.February}, 29},
		{YearMonth{2026, time.April}, 30},
		{YearMonth{2026, time.December}, 31},
	}

	for _, tt := range tests {
		if got := tt.ym.Days(); got != tt.want {
			t.Errorf("%v.Days() = %d, want %d", tt.ym, got, tt.want)
		}
	}
}

func TestBuild_SingleMonth(t *testing.T) {
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.Local)
	months := Build(now, YearMonth{2026, time.January}, Window{})

	if len(months) != 1 {
		t.Fatalf("Expected 1 month, got %d", len(months))
	}

	m := months[0]
	if m.Title != "2026년 1월" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Headers[0] != "일" || m.Headers[6] != "토" {
		t.Errorf("Headers = %v", m.Headers)
	}
	// 2026-01-01 is a Thursday.
	if m.Leading != 4 {
		t.Errorf("Leading = %d, want 4", m.Leading)
	}
	if len(m.Days()) != 31 {
		t.Errorf("Expected 31 day cells, got %d", len(m.Days()))
	}
	for i := 0; i < m.Leading; i++ {
		if !m.Cells[i].Empty {
			t.Errorf("cell %d should be empty", i)
		}
	}
	if _, ok := m.TodayCell(); ok {
		t.Error("January should have no today cell when now is in October")
	}

	first := m.Days()[0]
	if first.Day != 1 || first.Weekday != time.Thursday {
		t.Errorf("first day = %+v", first)
	}
	sat := m.Days()[2]
	if !sat.Saturday() || sat.Day != 3 {
		t.Errorf("Jan 3 should be a Saturday: %+v", sat)
	}
	if !m.Days()[3].Sunday() {
		t.Error("Jan 4 should be a Sunday")
	}
}

func TestBuild_Today(t *testing.T) {
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.Local)
	months := Build(now, Of(now), Window{Before: 1, After: 1})

	if len(months) != 3 {
		t.Fatalf("Expected 3 months, got %d", len(months))
	}

	todays := 0
	for _, m := range months {
		for _, c := range m.Cells {
			if c.Today {
				todays++
				if m.Offset != 0 || c.Day != 19 || c.Month != time.October {
					t.Errorf("unexpected today cell %+v in offset %d", c, m.Offset)
				}
			}
		}
	}
	if todays != 1 {
		t.Errorf("Expected exactly one today cell, got %d", todays)
	}
}

func TestBuild_TodayOnlyInCenter(t *testing.T) {
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.Local)
	// Center one month later: October is at offset -1 and must not be flagged.
	months := Build(now, YearMonth{2026, time.November}, Window{Before: 1, After: 0})

	for _, m := range months {
		if _, ok := m.TodayCell(); ok {
			t.Errorf("offset %d should not carry the today flag", m.Offset)
		}
	}
}

func TestBuild_WindowAcrossYears(t *testing.T) {
	now := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.Local)
	months := Build(now, Of(now), DefaultWindow)

	if len(months) != 49 {
		t.Fatalf("Expected 49 months, got %d", len(months))
	}

	first := months[0]
	if first.Year != 2025 || first.Month != time.January || first.Offset != -12 {
		t.Errorf("first month = %v offset %d", first.YearMonth, first.Offset)
	}
	last := months[len(months)-1]
	if last.Year != 2029 || last.Month != time.January || last.Offset != 36 {
		t.Errorf("last month = %v offset %d", last.YearMonth, last.Offset)
	}

	for i := 1; i < len(months); i++ {
		if months[i].YearMonth != months[i-1].Add(1) {
			t.Fatalf("months not contiguous at %d: %v after %v", i, months[i].YearMonth, months[i-1].YearMonth)
		}
	}
}

func TestBuild_NegativeWindow(t *testing.T) {
	months := Build(time.Now(), YearMonth{2026, time.May}, Window{Before: -3, After: -1})
	if len(months) != 1 {
		t.Errorf("Expected negative window to clamp to one month, got %d", len(months))
	}
}

func TestMonth_Weeks(t *testing.T) {
	m := BuildMonth(time.Now(), YearMonth{2026, time.February}, 5)

	weeks := m.Weeks()
	// Feb 2026 starts on Sunday and has 28 days: exactly four rows.
	if len(weeks) != 4 {
		t.Fatalf("Expected 4 weeks, got %d", len(weeks))
	}
	for _, w := range weeks {
		if len(w) != 7 {
			t.Errorf("week length = %d", len(w))
		}
	}
}

func TestNextRollover(t *testing.T) {
	now := time.Date(2026, time.October, 19, 23, 59, 30, 0, time.Local)
	want := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.Local)

	if got := NextRollover(now); !got.Equal(want) {
		t.Errorf("NextRollover = %v, want %v", got, want)
	}

	if got := NextRollover(want); !got.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("NextRollover at midnight = %v, want the following midnight", got)
	}
}
