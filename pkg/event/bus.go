package event

import (
	"context"
	"errors"
	"path"
	"sync"

	"github.com/google/uuid"
)

// ErrBusClosed is returned by operations on a closed bus.
var ErrBusClosed = errors.New("event: bus closed")

// Bus is a publish/subscribe channel for events.
type Bus interface {
	Publish(ctx context.Context, evt Event) error
	Subscribe(filter Filter) (Subscription, error)
	Close() error
}

// Filter selects events for a subscription. Empty fields match everything.
// Types and Sources accept path.Match wildcards, e.g. "timer.*".
type Filter struct {
	Types    []string
	Sources  []string
	Metadata map[string]string
}

// Subscription delivers matching events until closed.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// InMemoryBus fans events out to buffered subscriber channels.
type InMemoryBus struct {
	mu         sync.RWMutex
	subs       map[string]*subscription
	closed     bool
	bufferSize int
}

// BusOption configures an InMemoryBus.
type BusOption func(*InMemoryBus)

// WithBufferSize sets each subscriber's channel capacity.
func WithBufferSize(size int) BusOption {
	return func(b *InMemoryBus) {
		if size > 0 {
			b.bufferSize = size
		}
	}
}

// NewInMemoryBus creates a bus. A full subscriber drops the event so the
// timer tick that published it is never held up by the UI.
func NewInMemoryBus(opts ...BusOption) *InMemoryBus {
	b := &InMemoryBus{
		subs:       make(map[string]*subscription),
		bufferSize: 16,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers evt to every matching subscriber. A done context
// publishes nothing.
func (b *InMemoryBus) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	matching := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.filter.matches(evt) {
			matching = append(matching, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matching {
		s.send(evt)
	}
	return nil
}

// Subscribe registers a new subscription.
func (b *InMemoryBus) Subscribe(filter Filter) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	s := &subscription{
		id:     uuid.NewString(),
		bus:    b,
		filter: filter,
		ch:     make(chan Event, b.bufferSize),
	}
	b.subs[s.id] = s
	return s, nil
}

// Close closes every subscription. Further publishes fail with ErrBusClosed.
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, s := range subs {
		s.closeChannel()
	}
	return nil
}

type subscription struct {
	id     string
	bus    *InMemoryBus
	filter Filter

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (s *subscription) Events() <-chan Event {
	return s.ch
}

func (s *subscription) Close() error {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()

	s.closeChannel()
	return nil
}

func (s *subscription) closeChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *subscription) send(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- evt:
	default:
	}
}

func (f Filter) matches(evt Event) bool {
	if len(f.Types) > 0 && !matchesAny(evt.Type, f.Types) {
		return false
	}
	if len(f.Sources) > 0 && !matchesAny(evt.Source, f.Sources) {
		return false
	}
	for k, v := range f.Metadata {
		if evt.Metadata[k] != v {
			return false
		}
	}
	return true
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, s); err == nil && ok {
			return true
		}
	}
	return false
}
