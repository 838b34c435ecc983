// Package config loads studyclock's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/BYTE-6D65/studyclock/pkg/calendar"
	"github.com/BYTE-6D65/studyclock/pkg/clock"
	"github.com/BYTE-6D65/studyclock/pkg/countdown"
	"github.com/BYTE-6D65/studyclock/pkg/kvstore"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Accepted instant layouts, interpreted in local time.
var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Config holds all application configuration
type Config struct {
	LogLevel  string          `toml:"log_level"`
	LogFile   string          `toml:"log_file"`
	DebugNow  string          `toml:"debug_now"`
	Countdown CountdownConfig `toml:"countdown"`
	Calendar  CalendarConfig  `toml:"calendar"`
	Store     StoreConfig     `toml:"store"`
}

// CountdownConfig holds the exam targets and how the dashboard uses them
type CountdownConfig struct {
	Targets    []TargetConfig    `toml:"targets"`
	Past       string            `toml:"past"`
	Upcoming   string            `toml:"upcoming"`
	Next       string            `toml:"next"`
	AnchorFrom string            `toml:"anchor_from"`
	AnchorTo   string            `toml:"anchor_to"`
	Milestones []MilestoneConfig `toml:"milestones"`
}

// TargetConfig is one cohort's exam date
type TargetConfig struct {
	Key string `toml:"key"`
	At  string `toml:"at"`
}

// MilestoneConfig is one mock exam
type MilestoneConfig struct {
	Label string `toml:"label"`
	At    string `toml:"at"`
}

// CalendarConfig holds the scrolling window
type CalendarConfig struct {
	Before int `toml:"before"`
	After  int `toml:"after"`
}

// StoreConfig selects the preference store
type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  defaultLogFile(),
		Countdown: CountdownConfig{
			Targets: []TargetConfig{
				{Key: "2026", At: "2025-11-13"},
				{Key: "2027", At: "2026-11-19"},
				{Key: "2028", At: "2027-11-18"},
			},
			Past:       "2026",
			Upcoming:   "2027",
			Next:       "2028",
			AnchorFrom: "2026",
			AnchorTo:   "2027",
			Milestones: []MilestoneConfig{
				{Label: "3월 학평", At: "2026-03-24"},
				{Label: "6월 모평", At: "2026-06-04"},
				{Label: "9월 모평", At: "2026-09-02"},
			},
		},
		Calendar: CalendarConfig{
			Before: calendar.DefaultWindow.Before,
			After:  calendar.DefaultWindow.After,
		},
		Store: StoreConfig{
			Backend: kvstore.BackendYAML,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults for a
// missing file. Keys absent from the file keep their defaults; a file that
// lists targets or milestones replaces the whole list.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	// Decode once on its own to see which lists the file sets, so a list
	// in the file replaces the default instead of extending it.
	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if file.Countdown.Targets != nil {
		cfg.Countdown.Targets = file.Countdown.Targets
	}
	if file.Countdown.Milestones != nil {
		cfg.Countdown.Milestones = file.Countdown.Milestones
	}
	cfg.LogFile = ExpandPath(cfg.LogFile)
	cfg.Store.Path = ExpandPath(cfg.Store.Path)
	return cfg.Validate()
}

// Save writes cfg as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks dates and the calendar window. Role keys that match no
// target are allowed; the dashboard shows them as not available.
func (c *Config) Validate() error {
	for _, t := range c.Countdown.Targets {
		if strings.TrimSpace(t.Key) == "" {
			return fmt.Errorf("%w: target with empty key", ErrInvalid)
		}
		if _, err := ParseInstant(t.At); err != nil {
			return fmt.Errorf("%w: target %s: %v", ErrInvalid, t.Key, err)
		}
	}
	for _, m := range c.Countdown.Milestones {
		if _, err := ParseInstant(m.At); err != nil {
			return fmt.Errorf("%w: milestone %s: %v", ErrInvalid, m.Label, err)
		}
	}
	if c.Calendar.Before < 0 || c.Calendar.After < 0 {
		return fmt.Errorf("%w: calendar window must not be negative", ErrInvalid)
	}
	if c.DebugNow != "" {
		if _, err := ParseInstant(c.DebugNow); err != nil {
			return fmt.Errorf("%w: debug_now: %v", ErrInvalid, err)
		}
	}
	return nil
}

// EngineConfig converts the file form into the engine's configuration.
// Call Validate first; unparsable dates are skipped here.
func (c *Config) EngineConfig() countdown.Config {
	targets := make([]countdown.Target, 0, len(c.Countdown.Targets))
	for _, t := range c.Countdown.Targets {
		at, err := ParseInstant(t.At)
		if err != nil {
			continue
		}
		targets = append(targets, countdown.Target{Key: t.Key, At: at})
	}

	milestones := make([]countdown.Milestone, 0, len(c.Countdown.Milestones))
	for _, m := range c.Countdown.Milestones {
		at, err := ParseInstant(m.At)
		if err != nil {
			continue
		}
		milestones = append(milestones, countdown.Milestone{Label: m.Label, At: at})
	}

	return countdown.Config{
		Targets: countdown.NewTargetSet(targets...),
		Roles: countdown.Roles{
			Past:     c.Countdown.Past,
			Upcoming: c.Countdown.Upcoming,
			Next:     c.Countdown.Next,
		},
		Anchors: countdown.Anchors{
			From: c.Countdown.AnchorFrom,
			To:   c.Countdown.AnchorTo,
		},
		Milestones: milestones,
	}
}

// Window returns the calendar window.
func (c *Config) Window() calendar.Window {
	return calendar.Window{Before: c.Calendar.Before, After: c.Calendar.After}
}

// Clock returns a fixed clock when debug_now is set and the system clock
// otherwise.
func (c *Config) Clock() clock.Clock {
	if c.DebugNow != "" {
		if at, err := ParseInstant(c.DebugNow); err == nil {
			return clock.NewFixedClock(at)
		}
	}
	return clock.NewSystemClock()
}

// ParseInstant parses a local date or date-time.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD[ HH:MM])", s)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "studyclock", "config.toml")
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "studyclock", "studyclock.log")
}
