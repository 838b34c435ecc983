package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/BYTE-6D65/studyclock/pkg/calendar"
	"github.com/BYTE-6D65/studyclock/pkg/countdown"
	"github.com/BYTE-6D65/studyclock/pkg/dashboard"
	"github.com/BYTE-6D65/studyclock/pkg/format"
	"github.com/BYTE-6D65/studyclock/pkg/preset"
	"github.com/BYTE-6D65/studyclock/pkg/schedule"
)

var (
	calendarBefore int
	calendarAfter  int
)

func init() {
	countdownCmd := &cobra.Command{
		Use:   "countdown",
		Short: "Print the countdowns, progress and milestones once",
		Args:  cobra.NoArgs,
		RunE:  runCountdown,
	}
	rootCmd.AddCommand(countdownCmd)

	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the months around the current one",
		Args:  cobra.NoArgs,
		RunE:  runCalendar,
	}
	calendarCmd.Flags().IntVar(&calendarBefore, "before", 0, "months before the current one")
	calendarCmd.Flags().IntVar(&calendarAfter, "after", 0, "months after the current one")
	rootCmd.AddCommand(calendarCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage timer presets",
		Args:  cobra.NoArgs,
		RunE:  runPresetsList,
	}
	presetsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List presets",
			Args:  cobra.NoArgs,
			RunE:  runPresetsList,
		},
		&cobra.Command{
			Use:   "add LABEL HOURS MINUTES SECONDS",
			Short: "Add a preset (minutes and seconds are capped at 59)",
			Args:  cobra.ExactArgs(4),
			RunE:  runPresetsAdd,
		},
		&cobra.Command{
			Use:   "remove INDEX",
			Short: "Remove the preset at INDEX (as shown by list)",
			Args:  cobra.ExactArgs(1),
			RunE:  runPresetsRemove,
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default presets",
			Args:  cobra.NoArgs,
			RunE:  runPresetsReset,
		},
	)
	rootCmd.AddCommand(presetsCmd)

	soundCmd := &cobra.Command{
		Use:       "sound [on|off]",
		Short:     "Show or set the timer sound",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE:      runSound,
	}
	rootCmd.AddCommand(soundCmd)

	themeCmd := &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the dashboard theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{preset.ThemeDark, preset.ThemeLight},
		RunE:      runTheme,
	}
	rootCmd.AddCommand(themeCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and platform information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "studyclock v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func runCountdown(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	d := dashboard.New(dashboard.Options{
		CountdownClock: a.cfg.Clock(),
		Scheduler:      schedule.NewManual(),
		Countdown:      a.cfg.EngineConfig(),
	})
	defer d.Close()

	f := d.Frame()
	fmt.Fprint(cmd.OutOrStdout(), countdownReport(f.Countdown))
	return nil
}

// countdownReport renders a countdown snapshot as plain text.
func countdownReport(snap countdown.Snapshot) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	for _, slot := range snap.Slots {
		fmt.Fprintf(w, "%s\t%s\t%s\n", slot.Key, slot.Display, slotCaption(slot, snap.Now))
	}
	fmt.Fprintf(w, "progress\t%s\t\n", snap.ProgressText)
	for _, p := range snap.Milestones {
		placed := "outside"
		if p.Placed {
			placed = format.Percent(p.Percent, 2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Label, p.DDayLabel, placed)
	}
	w.Flush()
	return b.String()
}

// slotCaption is the short line under a countdown: how long ago a past
// target was, or how many weekends are left before an upcoming one.
func slotCaption(slot countdown.Slot, now time.Time) string {
	switch {
	case !slot.Available:
		return ""
	case slot.Past:
		return fmt.Sprintf("%s days ago", humanize.Comma(int64(slot.DaysAgo)))
	default:
		return fmt.Sprintf("%s weekends left, %s",
			humanize.Comma(int64(slot.Weekends)),
			humanize.RelTime(slot.Target, now, "ago", "from now"))
	}
}

func runCalendar(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	now := a.cfg.Clock().Now()
	months := calendar.Build(now, calendar.Of(now), calendar.Window{Before: calendarBefore, After: calendarAfter})

	th := newTheme("")
	for i, m := range months {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderMonth(th, m))
	}
	return nil
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	presets, err := preset.Load(a.store)
	if err != nil {
		return err
	}
	printPresets(cmd, presets)
	return nil
}

func runPresetsAdd(cmd *cobra.Command, args []string) error {
	var hms [3]int
	for i, s := range args[1:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		hms[i] = n
	}

	p, err := preset.Parse(args[0], hms[0], hms[1], hms[2])
	if err != nil {
		return err
	}

	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	presets, err := preset.Add(a.store, p)
	if err != nil {
		return err
	}
	printPresets(cmd, presets)
	return nil
}

func runPresetsRemove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}

	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	presets, err := preset.Remove(a.store, index-1)
	if err != nil {
		return err
	}
	printPresets(cmd, presets)
	return nil
}

func runPresetsReset(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	presets, err := preset.ResetDefaults(a.store)
	if err != nil {
		return err
	}
	printPresets(cmd, presets)
	return nil
}

func printPresets(cmd *cobra.Command, presets []preset.Preset) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLABEL\tDURATION")
	for i, p := range presets {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, p.Label, format.Clock(p.Seconds))
	}
	w.Flush()
}

func runSound(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		if err := preset.SaveSound(a.store, args[0] == "on"); err != nil {
			return err
		}
	}

	state := "off"
	if preset.LoadSound(a.store) {
		state = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sound %s\n", state)
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		if err := preset.SaveTheme(a.store, args[0]); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "theme %s\n", preset.LoadTheme(a.store))
	return nil
}
