// Package calendar builds the month grids shown in the scrolling calendar.
package calendar

import (
	"fmt"
	"time"
)

// Weekdays are the column headers, Sunday first.
var Weekdays = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// Window is the number of months rendered before and after the center month.
type Window struct {
	Before int
	After  int
}

// DefaultWindow is one year back and three years ahead.
var DefaultWindow = Window{Before: 12, After: 36}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Of returns the month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Add returns the month n months away, carrying across year boundaries in
// either direction.
func (ym YearMonth) Add(n int) YearMonth {
	idx := ym.Year*12 + int(ym.Month-1) + n
	year := idx / 12
	month := idx % 12
	if month < 0 {
		month += 12
		year--
	}
	return YearMonth{Year: year, Month: time.Month(month + 1)}
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the 1st.
func (ym YearMonth) FirstWeekday() time.Weekday {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// Title renders the month heading, e.g. "2026년 1월".
func (ym YearMonth) Title() string {
	return fmt.Sprintf("%d년 %d월", ym.Year, int(ym.Month))
}

// Cell is one square of a month grid. Leading cells before the 1st are Empty
// and carry only their column weekday.
type Cell struct {
	Year    int
	Month   time.Month
	Empty   bool
	Day     int
	Weekday time.Weekday
	Today   bool
}

// Sunday reports whether the cell is in the Sunday column.
func (c Cell) Sunday() bool { return c.Weekday == time.Sunday }

// Saturday reports whether the cell is in the Saturday column.
func (c Cell) Saturday() bool { return c.Weekday == time.Saturday }

// Month is a fully laid out month.
type Month struct {
	YearMonth
	Offset  int
	Title   string
	Headers [7]string
	Leading int
	Cells   []Cell
}

// Days returns only the non-empty cells.
func (m Month) Days() []Cell {
	return m.Cells[m.Leading:]
}

// Weeks splits the cells into rows of seven. The last row may be short.
func (m Month) Weeks() [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(m.Cells); i += 7 {
		end := i + 7
		if end > len(m.Cells) {
			end = len(m.Cells)
		}
		rows = append(rows, m.Cells[i:end])
	}
	return rows
}

// TodayCell returns the cell flagged as today, if any.
func (m Month) TodayCell() (Cell, bool) {
	for _, c := range m.Days() {
		if c.Today {
			return c, true
		}
	}
	return Cell{}, false
}

// Build lays out every month in [center-Before, center+After]. The today
// flag is only set inside the center month, and only when now falls in it.
// Negative window sizes are treated as zero.
func Build(now time.Time, center YearMonth, w Window) []Month {
	if w.Before < 0 {
		w.Before = 0
	}
	if w.After < 0 {
		w.After = 0
	}

	months := make([]Month, 0, w.Before+w.After+1)
	for offset := -w.Before; offset <= w.After; offset++ {
		months = append(months, BuildMonth(now, center.Add(offset), offset))
	}
	return months
}

// BuildMonth lays out a single month at the given offset from the center.
func BuildMonth(now time.Time, ym YearMonth, offset int) Month {
	first := ym.FirstWeekday()
	days := ym.Days()

	m := Month{
		YearMonth: ym,
		Offset:    offset,
		Title:     ym.Title(),
		Headers:   Weekdays,
		Leading:   int(first),
		Cells:     make([]Cell, 0, int(first)+days),
	}

	for i := 0; i < m.Leading; i++ {
		m.Cells = append(m.Cells, Cell{
			Year:    ym.Year,
			Month:   ym.Month,
			Empty:   true,
			Weekday: time.Weekday(i),
		})
	}

	ty, tm, td := now.Date()
	isCurrent := offset == 0 && ty == ym.Year && tm == ym.Month
	for d := 1; d <= days; d++ {
		m.Cells = append(m.Cells, Cell{
			Year:    ym.Year,
			Month:   ym.Month,
			Day:     d,
			Weekday: time.Weekday((int(first) + d - 1) % 7),
			Today:   isCurrent && d == td,
		})
	}

	return m
}
