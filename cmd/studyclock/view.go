package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/BYTE-6D65/studyclock/pkg/calendar"
	"github.com/BYTE-6D65/studyclock/pkg/countdown"
	"github.com/BYTE-6D65/studyclock/pkg/dashboard"
	"github.com/BYTE-6D65/studyclock/pkg/format"
	"github.com/BYTE-6D65/studyclock/pkg/preset"
	"github.com/BYTE-6D65/studyclock/pkg/timer"
)

const (
	progressWidth = 48
	ringWidth     = 24
)

// theme holds every style the views use. The zero-color theme (name "")
// renders plain text for the CLI subcommands.
type theme struct {
	name string

	title    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	dim      lipgloss.Style
	accent   lipgloss.Style
	sunday   lipgloss.Style
	saturday lipgloss.Style
	today    lipgloss.Style
	box      lipgloss.Style
	help     lipgloss.Style
	alert    lipgloss.Style
}

func newTheme(name string) theme {
	plain := lipgloss.NewStyle()
	t := theme{
		name:     name,
		title:    plain,
		label:    plain,
		value:    plain,
		dim:      plain,
		accent:   plain,
		sunday:   plain,
		saturday: plain,
		today:    plain,
		box:      plain,
		help:     plain,
		alert:    plain,
	}

	var fg, dim, accent, sun, sat, warn lipgloss.Color
	switch name {
	case preset.ThemeDark:
		fg, dim, accent = "#F8F8F2", "#626262", "#7D56F4"
		sun, sat, warn = "#FF5555", "#00A9E0", "#FFB800"
	case preset.ThemeLight:
		fg, dim, accent = "#1F1F1F", "#8A8A8A", "#5A3FD1"
		sun, sat, warn = "#C62828", "#0277BD", "#B26A00"
	default:
		return t
	}

	t.title = lipgloss.NewStyle().Bold(true).Foreground(accent).PaddingLeft(2)
	t.label = lipgloss.NewStyle().Foreground(dim)
	t.value = lipgloss.NewStyle().Bold(true).Foreground(fg)
	t.dim = lipgloss.NewStyle().Foreground(dim)
	t.accent = lipgloss.NewStyle().Foreground(accent)
	t.sunday = lipgloss.NewStyle().Foreground(sun)
	t.saturday = lipgloss.NewStyle().Foreground(sat)
	t.today = lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(accent)
	t.box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	t.help = lipgloss.NewStyle().Foreground(dim).PaddingTop(1).PaddingLeft(2)
	t.alert = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(warn).
		Foreground(warn).
		Bold(true).
		Padding(1, 4)
	return t
}

// renderCountdown draws the three countdown slots, the progress bar and the
// milestone markers.
func renderCountdown(th theme, snap countdown.Snapshot) string {
	var b strings.Builder

	for _, slot := range snap.Slots {
		fmt.Fprintf(&b, "%s  %s\n",
			th.label.Render(fmt.Sprintf("%-4s", slot.Key)),
			th.value.Render(slot.Display))
		if caption := slotCaption(slot, snap.Now); caption != "" {
			fmt.Fprintf(&b, "      %s\n", th.dim.Render(caption))
		}
	}

	b.WriteString("\n")
	if !snap.ProgressAvailable {
		b.WriteString(th.dim.Render("progress " + snap.ProgressText))
		return b.String()
	}

	placed := snap.Placed()
	markers, bar := progressBar(progressWidth, snap.Progress, placed)
	b.WriteString(th.accent.Render(markers) + "\n")
	b.WriteString(th.accent.Render(bar) + " " + th.value.Render(snap.ProgressText) + "\n")
	for _, p := range placed {
		fmt.Fprintf(&b, "%s %s  ", th.label.Render(p.Label), th.value.Render(p.DDayLabel))
	}
	return strings.TrimRight(b.String(), " ")
}

// progressBar returns a marker row with one ▼ per placed milestone and a
// bar filled to p percent, both width cells wide.
func progressBar(width int, p float64, placed []countdown.Placement) (markers, bar string) {
	if width <= 0 {
		return "", ""
	}

	filled := int(math.Round(p / 100 * float64(width)))
	filled = max(0, min(width, filled))
	bar = strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	row := []rune(strings.Repeat(" ", width))
	for _, m := range placed {
		pos := int(math.Round(m.Percent / 100 * float64(width-1)))
		row[max(0, min(width-1, pos))] = '▼'
	}
	return string(row), bar
}

// handArrows are the eight directions of the stopwatch hand, clockwise from
// twelve o'clock.
var handArrows = [8]string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// handGlyph picks the arrow closest to angle degrees.
func handGlyph(angle float64) string {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return handArrows[int(math.Round(a/45))%8]
}

func renderStopwatch(th theme, f dashboard.Frame) string {
	state := "stopped"
	if f.Stopwatch.Running {
		state = "running"
	}
	return fmt.Sprintf("%s %s\n%s",
		th.accent.Render(handGlyph(f.Stopwatch.HandAngle)),
		th.value.Render(f.Stopwatch.Display),
		th.dim.Render(state))
}

// ring draws the timer's remaining share as a bar: full when the stroke
// offset is zero, empty when it is the whole circumference.
func ring(width int, offset, circumference float64) string {
	if width <= 0 {
		return ""
	}
	share := 0.0
	if circumference > 0 {
		share = 1 - offset/circumference
	}
	filled := int(math.Round(share * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func renderTimer(th theme, tv dashboard.TimerView, presets []preset.Preset, cursor int, sound bool, done int) string {
	var b strings.Builder

	label := tv.Label
	if label == "" {
		label = "timer"
	}
	fmt.Fprintf(&b, "%s  %s\n", th.label.Render(label), th.value.Render(tv.Display))
	b.WriteString(th.accent.Render(ring(ringWidth, tv.Offset, tv.Circumference)) + "\n")

	state := string(tv.State)
	if tv.State == timer.Idle && tv.Total == 0 {
		state = "pick a preset"
	}
	soundText := "sound off"
	if sound {
		soundText = "sound on"
	}
	fmt.Fprintf(&b, "%s\n", th.dim.Render(fmt.Sprintf("%s · %s · done today %d", state, soundText, done)))

	for i, p := range presets {
		item := fmt.Sprintf("%s %s", p.Label, format.Clock(p.Seconds))
		if i == cursor {
			item = th.accent.Render("▶ " + item)
		} else {
			item = th.dim.Render("  " + item)
		}
		b.WriteString(item)
		if i < len(presets)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderMonth draws one month grid with Sunday and Saturday columns styled
// and today highlighted.
func renderMonth(th theme, m calendar.Month) string {
	var b strings.Builder

	b.WriteString(th.value.Render(m.Title) + "\n")
	for i, h := range m.Headers {
		b.WriteString(dayStyle(th, calendar.Cell{Weekday: time.Weekday(i)}).Render(padCell(h)))
	}

	for _, week := range m.Weeks() {
		b.WriteString("\n")
		for _, c := range week {
			if c.Empty {
				b.WriteString(padCell(""))
				continue
			}
			style := dayStyle(th, c)
			if c.Today {
				style = th.today
			}
			b.WriteString(style.Render(padCell(fmt.Sprintf("%d", c.Day))))
		}
	}
	return b.String()
}

func dayStyle(th theme, c calendar.Cell) lipgloss.Style {
	switch {
	case c.Sunday():
		return th.sunday
	case c.Saturday():
		return th.saturday
	default:
		return th.label
	}
}

// padCell right-aligns s in a three-cell column. Hangul headers are two
// cells wide.
func padCell(s string) string {
	w := lipgloss.Width(s)
	if w >= 3 {
		return s
	}
	return strings.Repeat(" ", 3-w) + s
}

// visibleMonths picks the center month and the one after it from the built
// window, falling back to whatever is there.
func visibleMonths(cv dashboard.CalendarView) []calendar.Month {
	var out []calendar.Month
	for _, m := range cv.Months {
		if m.Offset == 0 || m.Offset == 1 {
			out = append(out, m)
		}
	}
	if len(out) == 0 && len(cv.Months) > 0 {
		out = cv.Months[:1]
	}
	return out
}

func renderCalendar(th theme, cv dashboard.CalendarView) string {
	var cols []string
	for _, m := range visibleMonths(cv) {
		cols = append(cols, renderMonth(th, m))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(cols, "   ")...)
}

func joinWithGap(cols []string, gap string) []string {
	out := make([]string, 0, 2*len(cols))
	for i, c := range cols {
		if i > 0 {
			out = append(out, gap)
		}
		out = append(out, c)
	}
	return out
}
