// Package event carries the dashboard's side signals (timer exhaustion,
// timer lifecycle changes, configuration reloads) from the engines to
// whoever reacts to them: the renderer, the bell, the log.
package event

import (
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// Event types published on the bus.
const (
	TypeTimerExhausted = "timer.exhausted"
	TypeTimerStarted   = "timer.started"
	TypeTimerPaused    = "timer.paused"
	TypeTimerReset     = "timer.reset"
	TypeConfigReloaded = "config.reloaded"

	// TypeTimerAll matches every timer event.
	TypeTimerAll = "timer.*"
)

// Event is the envelope published on the bus.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Source    string            `json:"source"`
	Timestamp time.Time         `json:"timestamp"`
	Data      []byte            `json:"data,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// TimerPayload describes the timer at the moment of the event.
type TimerPayload struct {
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
	Label     string `json:"label,omitempty"`
}

// ConfigPayload describes a configuration reload.
type ConfigPayload struct {
	Path    string `json:"path"`
	Targets int    `json:"targets"`
}

// Codec serializes event payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec encodes payloads with go-json-experiment.
type JSONCodec struct{}

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// New creates an event with a fresh ID stamped at at. A nil payload leaves
// Data empty.
func New(eventType, source string, at time.Time, payload any) (Event, error) {
	evt := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: at,
	}
	if payload == nil {
		return evt, nil
	}

	data, err := JSONCodec{}.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	evt.Data = data
	return evt, nil
}

// WithMetadata returns a copy of the event with key set.
func (e Event) WithMetadata(key, value string) Event {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return JSONCodec{}.Unmarshal(e.Data, v)
}
