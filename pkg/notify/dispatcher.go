package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/event"
	"github.com/BYTE-6D65/studyclock/pkg/logs"
)

// Dispatcher subscribes each registered emitter to the bus with its own
// filter and feeds it on a dedicated goroutine.
type Dispatcher struct {
	bus    event.Bus
	logger *log.Logger

	mu       sync.Mutex
	emitters map[string]Emitter
	filters  map[string]event.Filter
	subs     map[string]event.Subscription
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher for bus.
func NewDispatcher(bus event.Bus) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		bus:      bus,
		logger:   logs.NewLogger("notify"),
		emitters: make(map[string]Emitter),
		filters:  make(map[string]event.Filter),
		subs:     make(map[string]event.Subscription),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds an emitter. An empty filter routes every event to it.
// Emitters registered after Start are subscribed immediately.
func (d *Dispatcher) Register(e Emitter, filter event.Filter) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := e.ID()
	if _, exists := d.emitters[id]; exists {
		return fmt.Errorf("notify: emitter %s already registered", id)
	}
	d.emitters[id] = e
	d.filters[id] = filter

	if d.started {
		return d.subscribeLocked(id, e, filter)
	}
	return nil
}

// Start subscribes every registered emitter.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}
	d.started = true

	var errs []error
	for id, e := range d.emitters {
		if err := d.subscribeLocked(id, e, d.filters[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IDs returns the registered emitter IDs.
func (d *Dispatcher) IDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.emitters))
	for id := range d.emitters {
		ids = append(ids, id)
	}
	return ids
}

// Stop closes subscriptions, waits for in-flight events and closes every
// emitter.
func (d *Dispatcher) Stop() error {
	d.cancel()

	d.mu.Lock()
	for id, sub := range d.subs {
		sub.Close()
		delete(d.subs, id)
	}
	emitters := make([]Emitter, 0, len(d.emitters))
	for _, e := range d.emitters {
		emitters = append(emitters, e)
	}
	d.mu.Unlock()

	d.wg.Wait()

	var errs []error
	for _, e := range emitters {
		if err := e.Close(); err != nil {
			errs = append(errs, fmt.Errorf("emitter %s: %w", e.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) subscribeLocked(id string, e Emitter, filter event.Filter) error {
	sub, err := d.bus.Subscribe(filter)
	if err != nil {
		return fmt.Errorf("notify: subscribe %s: %w", id, err)
	}
	d.subs[id] = sub

	d.wg.Add(1)
	go d.process(e, sub)
	return nil
}

func (d *Dispatcher) process(e Emitter, sub event.Subscription) {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := e.Emit(d.ctx, evt); err != nil && !errors.Is(err, ErrUnsupportedEvent) {
				d.logger.Warnf("%s: emit %s: %v", e.ID(), evt.Type, err)
			}
		}
	}
}
