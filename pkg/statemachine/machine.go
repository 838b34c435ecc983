// Package statemachine is a small table-driven finite state machine. The
// timer engine keeps its lifecycle here so illegal moves are rejected in one
// place instead of being scattered across boolean flags.
package statemachine

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoTransition is returned when the current state has no transition
	// for the fired event.
	ErrNoTransition = errors.New("statemachine: no transition")

	// ErrGuardRejected is returned when a guard vetoes a transition.
	ErrGuardRejected = errors.New("statemachine: guard rejected transition")

	// ErrDuplicateTransition is returned when a (from, event) pair is
	// registered twice.
	ErrDuplicateTransition = errors.New("statemachine: duplicate transition")
)

// State is a named state.
type State string

// Event is a named trigger.
type Event string

// GuardFunc decides whether a transition may proceed.
type GuardFunc func(from, to State, event Event) bool

// ActionFunc runs between leaving one state and entering the next.
type ActionFunc func(from, to State, event Event) error

// HookFunc runs when a state is entered.
type HookFunc func(state State) error

// StateConfig attaches an enter hook to a state.
type StateConfig struct {
	Name    State
	OnEnter HookFunc
}

// Transition is one edge of the table.
type Transition struct {
	From   State
	To     State
	Event  Event
	Guard  GuardFunc
	Action ActionFunc
}

// TransitionHook observes every completed transition.
type TransitionHook func(from, to State, event Event)

// Machine holds the current state and the transition table.
//
// Fire is serialized. Hooks and actions may read the machine (Current, Can)
// but must not call Fire on the same machine.
type Machine struct {
	fire sync.Mutex

	mu          sync.RWMutex
	current     State
	states      map[State]StateConfig
	transitions map[State]map[Event]Transition
	hooks       []TransitionHook
}

// New creates a machine in the initial state with the given transitions.
func New(initial State, transitions ...Transition) (*Machine, error) {
	m := &Machine{
		current:     initial,
		states:      make(map[State]StateConfig),
		transitions: make(map[State]map[Event]Transition),
	}
	for _, t := range transitions {
		if err := m.AddTransition(t); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddState registers hooks for a state, replacing any earlier config.
func (m *Machine) AddState(cfg StateConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[cfg.Name] = cfg
}

// AddTransition registers an edge.
func (m *Machine) AddTransition(t Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transitions[t.From] == nil {
		m.transitions[t.From] = make(map[Event]Transition)
	}
	if _, exists := m.transitions[t.From][t.Event]; exists {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateTransition, t.From, t.Event)
	}
	m.transitions[t.From][t.Event] = t
	return nil
}

// Fire moves the machine along the edge for event. Guard, action, state
// change, enter hook and transition hooks run in that order. If the
// enter hook fails the state has already changed.
func (m *Machine) Fire(event Event) error {
	m.fire.Lock()
	defer m.fire.Unlock()

	m.mu.RLock()
	from := m.current
	t, ok := m.transitions[from][event]
	toCfg, hasTo := m.states[t.To]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrNoTransition, from, event)
	}
	if t.Guard != nil && !t.Guard(t.From, t.To, event) {
		return fmt.Errorf("%w: %s -> %s on %s", ErrGuardRejected, t.From, t.To, event)
	}

	if t.Action != nil {
		if err := t.Action(t.From, t.To, event); err != nil {
			return fmt.Errorf("action %s -> %s: %w", t.From, t.To, err)
		}
	}

	m.mu.Lock()
	m.current = t.To
	hooks := m.hooks
	m.mu.Unlock()

	if hasTo && toCfg.OnEnter != nil {
		if err := toCfg.OnEnter(t.To); err != nil {
			return fmt.Errorf("enter %s: %w", t.To, err)
		}
	}

	for _, hook := range hooks {
		hook(t.From, t.To, event)
	}
	return nil
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in s.
func (m *Machine) Is(s State) bool {
	return m.Current() == s
}

// Can reports whether event has an edge from the current state. Guards are
// not evaluated.
func (m *Machine) Can(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.transitions[m.current][event]
	return ok
}

// OnTransition registers a hook called after every transition.
func (m *Machine) OnTransition(hook TransitionHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}
