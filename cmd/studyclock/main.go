package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "studyclock",
		Short: "Exam countdown study desk for the terminal",
		Long: `studyclock shows countdowns to the exam dates, a progress bar with the
mock-exam milestones, a scrolling month calendar, a stopwatch and a countdown
timer with presets.

Run without a subcommand to open the dashboard.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/studyclock/config.toml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
