// Package notify reacts to dashboard events: it rings the terminal bell when
// the timer runs out, logs events and keeps a short history for the UI.
package notify

import (
	"context"
	"errors"

	"github.com/BYTE-6D65/studyclock/pkg/event"
)

// ErrUnsupportedEvent is returned by an emitter for an event it ignores.
var ErrUnsupportedEvent = errors.New("notify: unsupported event type")

// Emitter is an event sink. The Dispatcher owns subscription and routing.
type Emitter interface {
	// ID identifies the emitter, e.g. "bell" or "log".
	ID() string

	// Emit handles one event.
	Emit(ctx context.Context, evt event.Event) error

	// Close releases resources. It is idempotent.
	Close() error
}
