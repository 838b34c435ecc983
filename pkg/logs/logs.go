// Package logs builds the per-component loggers used across studyclock.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
	"weak"

	log "github.com/sirupsen/logrus"
)

// formatter prefixes each message with the owning component.
type formatter struct {
	owner string
	lf    log.Formatter
}

// Format satisfies the log.Formatter interface.
func (f *formatter) Format(e *log.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.owner, e.Message)
	return f.lf.Format(e)
}

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	level             = log.InfoLevel
	colors            = true
	loggers []tracked
)

// tracked is a logger Configure updates. The weak pointer lets loggers of
// discarded components be collected.
type tracked struct {
	owner  string
	logger weak.Pointer[log.Logger]
}

func newFormatter(owner string, colors bool) *formatter {
	return &formatter{
		owner: owner,
		lf: &log.TextFormatter{
			ForceColors:     colors,
			DisableColors:   !colors,
			FullTimestamp:   true,
			TimestampFormat: time.StampMilli,
		},
	}
}

// NewLogger returns a logger that tags every line with owner. It follows
// later calls to Configure for as long as it is reachable.
func NewLogger(owner string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	logger := log.New()
	logger.SetFormatter(newFormatter(owner, colors))
	logger.SetOutput(out)
	logger.SetLevel(level)
	loggers = append(pruneLocked(), tracked{owner: owner, logger: weak.Make(logger)})
	return logger
}

// Configure sets the level and destination for every logger, existing and
// future. Colors are only emitted on stderr.
func Configure(lvl string, w io.Writer) error {
	parsed, err := log.ParseLevel(lvl)
	if err != nil {
		return fmt.Errorf("logs: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}

	mu.Lock()
	defer mu.Unlock()

	out = w
	level = parsed
	colors = w == os.Stderr
	loggers = pruneLocked()
	for _, t := range loggers {
		l := t.logger.Value()
		if l == nil {
			continue
		}
		// SetFormatter swaps under the logger's lock; a line being
		// formatted keeps the old formatter.
		l.SetFormatter(newFormatter(t.owner, colors))
		l.SetOutput(w)
		l.SetLevel(parsed)
	}
	return nil
}

// pruneLocked drops loggers that have been garbage collected.
func pruneLocked() []tracked {
	live := loggers[:0]
	for _, t := range loggers {
		if t.logger.Value() != nil {
			live = append(live, t)
		}
	}
	return live
}

// OpenFile opens path for appending, creating parent directories. The TUI
// owns the terminal, so its logs go here instead of stderr.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logs: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logs: open %s: %w", path, err)
	}
	return f, nil
}
