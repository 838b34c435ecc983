package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/event"
	"github.com/BYTE-6D65/studyclock/pkg/logs"
)

// LogEmitter writes every event to a logger.
type LogEmitter struct {
	logger *log.Logger
}

// NewLogEmitter creates a log emitter. A nil logger gets the "events" owner.
func NewLogEmitter(logger *log.Logger) *LogEmitter {
	if logger == nil {
		logger = logs.NewLogger("events")
	}
	return &LogEmitter{logger: logger}
}

// ID implements Emitter.
func (l *LogEmitter) ID() string { return "log" }

// Emit implements Emitter.
func (l *LogEmitter) Emit(_ context.Context, evt event.Event) error {
	entry := l.logger.WithFields(log.Fields{
		"id":     evt.ID,
		"source": evt.Source,
	})
	for k, v := range evt.Metadata {
		entry = entry.WithField(k, v)
	}

	var p event.TimerPayload
	if evt.Decode(&p) == nil && p.Total > 0 {
		entry = entry.WithFields(log.Fields{"total": p.Total, "remaining": p.Remaining})
	}

	entry.Info(evt.Type)
	return nil
}

// Close implements Emitter.
func (l *LogEmitter) Close() error { return nil }

// HistoryEmitter records events into a History.
type HistoryEmitter struct {
	history *event.History
}

// NewHistoryEmitter wraps h.
func NewHistoryEmitter(h *event.History) *HistoryEmitter {
	return &HistoryEmitter{history: h}
}

// ID implements Emitter.
func (h *HistoryEmitter) ID() string { return "history" }

// Emit implements Emitter.
func (h *HistoryEmitter) Emit(_ context.Context, evt event.Event) error {
	h.history.Append(evt)
	return nil
}

// Close implements Emitter.
func (h *HistoryEmitter) Close() error { return nil }
