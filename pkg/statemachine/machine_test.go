package statemachine

import (
	"errors"
	"sync"
	"testing"
)

const (
	idle    State = "idle"
	running State = "running"
	paused  State = "paused"

	start Event = "start"
	pause Event = "pause"
	reset Event = "reset"
)

func newLifecycle(t *testing.T) *Machine {
	t.Helper()
	m, err := New(idle,
		Transition{From: idle, To: running, Event: start},
		Transition{From: paused, To: running, Event: start},
		Transition{From: running, To: paused, Event: pause},
		Transition{From: running, To: idle, Event: reset},
		Transition{From: paused, To: idle, Event: reset},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestNew(t *testing.T) {
	m := newLifecycle(t)
	if m.Current() != idle {
		t.Errorf("Expected initial state idle, got %s", m.Current())
	}
	if !m.Is(idle) {
		t.Error("Is(idle) should be true")
	}
}

func TestNew_Duplicate(t *testing.T) {
	_, err := New(idle,
		Transition{From: idle, To: running, Event: start},
		Transition{From: idle, To: paused, Event: start},
	)
	if !errors.Is(err, ErrDuplicateTransition) {
		t.Errorf("Expected ErrDuplicateTransition, got %v", err)
	}
}

func TestMachine_Fire(t *testing.T) {
	m := newLifecycle(t)

	steps := []struct {
		event Event
		want  State
	}{
		{start, running},
		{pause, paused},
		{start, running},
		{reset, idle},
	}
	for _, s := range steps {
		if err := m.Fire(s.event); err != nil {
			t.Fatalf("Fire(%s) failed: %v", s.event, err)
		}
		if m.Current() != s.want {
			t.Fatalf("after %s: state = %s, want %s", s.event, m.Current(), s.want)
		}
	}
}

func TestMachine_Fire_NoTransition(t *testing.T) {
	m := newLifecycle(t)

	err := m.Fire(pause)
	if !errors.Is(err, ErrNoTransition) {
		t.Errorf("Expected ErrNoTransition, got %v", err)
	}
	if m.Current() != idle {
		t.Error("state must not change on a missing edge")
	}
}

func TestMachine_Guard(t *testing.T) {
	allow := false
	m, _ := New(idle, Transition{
		From:  idle,
		To:    running,
		Event: start,
		Guard: func(from, to State, event Event) bool { return allow },
	})

	if err := m.Fire(start); !errors.Is(err, ErrGuardRejected) {
		t.Fatalf("Expected ErrGuardRejected, got %v", err)
	}
	if m.Current() != idle {
		t.Error("Expected state to remain idle when guard rejects")
	}

	allow = true
	if err := m.Fire(start); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}
	if m.Current() != running {
		t.Error("Expected transition once guard allows it")
	}
}

func TestMachine_ExecutionOrder(t *testing.T) {
	var order []string

	m, _ := New(idle, Transition{
		From:  idle,
		To:    running,
		Event: start,
		Guard: func(from, to State, event Event) bool {
			order = append(order, "guard")
			return true
		},
		Action: func(from, to State, event Event) error {
			order = append(order, "action")
			return nil
		},
	})
	m.AddState(StateConfig{
		Name: running,
		OnEnter: func(State) error {
			order = append(order, "enter-running")
			return nil
		},
	})
	m.OnTransition(func(from, to State, event Event) {
		order = append(order, "hook")
	})

	if err := m.Fire(start); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}

	want := []string{"guard", "action", "enter-running", "hook"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestMachine_HooksMayReadState(t *testing.T) {
	m := newLifecycle(t)

	var seen State
	m.AddState(StateConfig{
		Name: running,
		OnEnter: func(State) error {
			seen = m.Current()
			return nil
		},
	})

	if err := m.Fire(start); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}
	if seen != running {
		t.Errorf("OnEnter saw %s, want running", seen)
	}
}

func TestMachine_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("action error keeps state", func(t *testing.T) {
		m, _ := New(idle, Transition{
			From:   idle,
			To:     running,
			Event:  start,
			Action: func(from, to State, event Event) error { return boom },
		})

		if err := m.Fire(start); !errors.Is(err, boom) {
			t.Errorf("Expected wrapped action error, got %v", err)
		}
		if m.Current() != idle {
			t.Error("state must not change after Action error")
		}
	})

	t.Run("enter error after state change", func(t *testing.T) {
		m := newLifecycle(t)
		m.AddState(StateConfig{Name: running, OnEnter: func(State) error { return boom }})

		if err := m.Fire(start); !errors.Is(err, boom) {
			t.Errorf("Expected wrapped enter error, got %v", err)
		}
		if m.Current() != running {
			t.Error("state changes before OnEnter runs")
		}
	})
}

func TestMachine_Can(t *testing.T) {
	m := newLifecycle(t)
	if !m.Can(start) || m.Can(pause) {
		t.Error("idle should allow start only")
	}

	m.Fire(start)
	if !m.Can(pause) || !m.Can(reset) || m.Can(start) {
		t.Error("running should allow pause and reset")
	}
}

func TestMachine_OnTransition(t *testing.T) {
	m := newLifecycle(t)

	type edge struct {
		from, to State
		event    Event
	}
	var seen []edge
	m.OnTransition(func(from, to State, event Event) {
		seen = append(seen, edge{from, to, event})
	})

	m.Fire(start)
	m.Fire(start) // no edge, no hook
	m.Fire(pause)

	want := []edge{{idle, running, start}, {running, paused, pause}}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("hook %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestMachine_ConcurrentAccess(t *testing.T) {
	m := newLifecycle(t)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers * 2)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Current()
				_ = m.Can(start)
			}
		}()
	}

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				// Races between Current and Fire are expected; Fire rejects
				// stale events with ErrNoTransition.
				switch m.Current() {
				case idle, paused:
					m.Fire(start)
				case running:
					m.Fire(pause)
				}
			}
		}()
	}

	wg.Wait()

	if s := m.Current(); s != running && s != paused && s != idle {
		t.Errorf("unexpected final state %s", s)
	}
}
