// Package preset manages the timer's quick-start durations and the small
// user preferences stored next to them.
package preset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/BYTE-6D65/studyclock/pkg/kvstore"
)

// Storage keys.
const (
	KeyPresets = "timerPresets"
	KeySound   = "timerSoundEnabled"
	KeyTheme   = "theme"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// NewLabel and NewSeconds seed a freshly added preset.
const (
	NewLabel   = "새 프리셋"
	NewSeconds = 300
)

var (
	// ErrEmptyLabel rejects a preset without a label.
	ErrEmptyLabel = errors.New("preset: empty label")

	// ErrNoDuration rejects a preset that adds up to zero seconds.
	ErrNoDuration = errors.New("preset: duration must be positive")

	// ErrIndex is returned for an out-of-range preset position.
	ErrIndex = errors.New("preset: index out of range")
)

// Preset is a named timer duration.
type Preset struct {
	Label   string `json:"label"`
	Seconds int    `json:"seconds"`
}

// Valid reports whether p can seed the timer.
func (p Preset) Valid() bool {
	return strings.TrimSpace(p.Label) != "" && p.Seconds > 0
}

// Split breaks the duration into hours, minutes and seconds.
func (p Preset) Split() (h, m, s int) {
	return p.Seconds / 3600, (p.Seconds % 3600) / 60, p.Seconds % 60
}

// Defaults returns a fresh copy of the built-in presets.
func Defaults() []Preset {
	return []Preset{
		{Label: "1분", Seconds: 60},
		{Label: "10분", Seconds: 600},
		{Label: "30분", Seconds: 1800},
		{Label: "1시간", Seconds: 3600},
	}
}

// Parse builds a preset from clock fields. Minutes and seconds are capped at
// 59 and negative fields count as zero.
func Parse(label string, h, m, s int) (Preset, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Preset{}, ErrEmptyLabel
	}

	h = max(h, 0)
	m = min(max(m, 0), 59)
	s = min(max(s, 0), 59)

	total := h*3600 + m*60 + s
	if total <= 0 {
		return Preset{}, ErrNoDuration
	}
	return Preset{Label: label, Seconds: total}, nil
}

// Load reads the preset list. A missing or malformed entry yields the
// defaults; individual invalid records are dropped. Only a store failure is
// returned as an error, together with the defaults.
func Load(store kvstore.Store) ([]Preset, error) {
	raw, ok, err := store.Get(KeyPresets)
	if err != nil {
		return Defaults(), fmt.Errorf("preset: load: %w", err)
	}
	if !ok {
		return Defaults(), nil
	}

	var stored []Preset
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Defaults(), nil
	}
	if stored == nil {
		return Defaults(), nil
	}

	out := make([]Preset, 0, len(stored))
	for _, p := range stored {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out, nil
}

// Save writes the list, dropping invalid records.
func Save(store kvstore.Store, presets []Preset) error {
	valid := make([]Preset, 0, len(presets))
	for _, p := range presets {
		if p.Valid() {
			valid = append(valid, p)
		}
	}

	data, err := json.Marshal(valid)
	if err != nil {
		return fmt.Errorf("preset: encode: %w", err)
	}
	if err := store.Set(KeyPresets, string(data)); err != nil {
		return fmt.Errorf("preset: save: %w", err)
	}
	return nil
}

// Add appends p and saves the list.
func Add(store kvstore.Store, p Preset) ([]Preset, error) {
	if !p.Valid() {
		if strings.TrimSpace(p.Label) == "" {
			return nil, ErrEmptyLabel
		}
		return nil, ErrNoDuration
	}

	presets, err := Load(store)
	if err != nil {
		return nil, err
	}
	presets = append(presets, p)
	return presets, Save(store, presets)
}

// Remove deletes the preset at index and saves the list.
func Remove(store kvstore.Store, index int) ([]Preset, error) {
	presets, err := Load(store)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(presets) {
		return presets, fmt.Errorf("%w: %d", ErrIndex, index)
	}

	presets = append(presets[:index], presets[index+1:]...)
	return presets, Save(store, presets)
}

// ResetDefaults replaces the stored list with the defaults.
func ResetDefaults(store kvstore.Store) ([]Preset, error) {
	d := Defaults()
	return d, Save(store, d)
}

// LoadSound reads the sound flag. Anything but "false" means enabled.
func LoadSound(store kvstore.Store) bool {
	v, ok, err := store.Get(KeySound)
	if err != nil || !ok {
		return true
	}
	return v != "false"
}

// SaveSound stores the sound flag as "true" or "false".
func SaveSound(store kvstore.Store, enabled bool) error {
	v := "false"
	if enabled {
		v = "true"
	}
	return store.Set(KeySound, v)
}

// LoadTheme returns the stored theme, defaulting to dark.
func LoadTheme(store kvstore.Store) string {
	v, ok, err := store.Get(KeyTheme)
	if err != nil || !ok || v != ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// SaveTheme stores theme. Unknown names are saved as dark.
func SaveTheme(store kvstore.Store, theme string) error {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	return store.Set(KeyTheme, theme)
}
