package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func mustEvent(t *testing.T, typ, source string) Event {
	t.Helper()
	evt, err := New(typ, source, time.Now(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return evt
}

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case evt := <-sub.Events():
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func expectNone(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case evt := <-sub.Events():
		t.Errorf("unexpected event %s", evt.Type)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_PublishAndReceive(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	sub, err := bus.Subscribe(Filter{})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sent := mustEvent(t, TypeTimerExhausted, "timer")
	if err := bus.Publish(context.Background(), sent); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if got := receive(t, sub); got.ID != sent.ID {
		t.Errorf("received %s, want %s", got.ID, sent.ID)
	}
}

func TestBus_FanOut(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	subs := make([]Subscription, 3)
	for i := range subs {
		subs[i], _ = bus.Subscribe(Filter{})
	}

	bus.Publish(context.Background(), mustEvent(t, TypeTimerStarted, "timer"))

	for _, s := range subs {
		if got := receive(t, s); got.Type != TypeTimerStarted {
			t.Errorf("got %s", got.Type)
		}
	}
}

func TestBus_Filters(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	timers, _ := bus.Subscribe(Filter{Types: []string{TypeTimerAll}})
	exhausted, _ := bus.Subscribe(Filter{Types: []string{TypeTimerExhausted}})
	fromConfig, _ := bus.Subscribe(Filter{Sources: []string{"config"}})
	tagged, _ := bus.Subscribe(Filter{Metadata: map[string]string{"preset": "10분"}})

	ctx := context.Background()
	bus.Publish(ctx, mustEvent(t, TypeTimerStarted, "timer"))
	bus.Publish(ctx, mustEvent(t, TypeConfigReloaded, "config"))
	bus.Publish(ctx, mustEvent(t, TypeTimerExhausted, "timer").WithMetadata("preset", "10분"))

	if got := receive(t, timers); got.Type != TypeTimerStarted {
		t.Errorf("timers got %s first", got.Type)
	}
	if got := receive(t, timers); got.Type != TypeTimerExhausted {
		t.Errorf("timers got %s second", got.Type)
	}
	expectNone(t, timers)

	if got := receive(t, exhausted); got.Type != TypeTimerExhausted {
		t.Errorf("exhausted got %s", got.Type)
	}
	expectNone(t, exhausted)

	if got := receive(t, fromConfig); got.Type != TypeConfigReloaded {
		t.Errorf("config got %s", got.Type)
	}
	expectNone(t, fromConfig)

	if got := receive(t, tagged); got.Metadata["preset"] != "10분" {
		t.Errorf("tagged got %+v", got)
	}
	expectNone(t, tagged)
}

func TestBus_DropsForSlowSubscriber(t *testing.T) {
	bus := NewInMemoryBus(WithBufferSize(2))
	defer bus.Close()

	sub, _ := bus.Subscribe(Filter{})
	for i := 0; i < 5; i++ {
		if err := bus.Publish(context.Background(), mustEvent(t, TypeTimerStarted, "timer")); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}

	if n := len(sub.Events()); n != 2 {
		t.Errorf("Expected buffer to hold 2 events, got %d", n)
	}
}

func TestBus_PublishWithDoneContext(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	sub, _ := bus.Subscribe(Filter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := bus.Publish(ctx, mustEvent(t, TypeTimerStarted, "timer")); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if n := len(sub.Events()); n != 0 {
		t.Errorf("Expected nothing delivered, got %d", n)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryBus()
	defer bus.Close()

	sub, _ := bus.Subscribe(Filter{})
	sub.Close()

	bus.Publish(context.Background(), mustEvent(t, TypeTimerStarted, "timer"))

	if _, ok := <-sub.Events(); ok {
		t.Error("Expected closed channel after unsubscribe")
	}
}

func TestBus_Close(t *testing.T) {
	bus := NewInMemoryBus()
	sub, _ := bus.Subscribe(Filter{})

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, ok := <-sub.Events(); ok {
		t.Error("subscription channel should be closed")
	}
	if err := bus.Publish(context.Background(), mustEvent(t, TypeTimerStarted, "timer")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish after close = %v", err)
	}
	if _, err := bus.Subscribe(Filter{}); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Subscribe after close = %v", err)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewInMemoryBus(WithBufferSize(1000))
	defer bus.Close()

	sub, _ := bus.Subscribe(Filter{})

	const publishers, each = 10, 50
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				bus.Publish(context.Background(), mustEvent(t, TypeTimerStarted, "timer"))
			}
		}()
	}
	wg.Wait()

	if n := len(sub.Events()); n != publishers*each {
		t.Errorf("Expected %d events, got %d", publishers*each, n)
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		s        string
		patterns []string
		want     bool
	}{
		{"timer.exhausted", []string{"timer.*"}, true},
		{"timer.exhausted", []string{"timer.exhausted"}, true},
		{"config.reloaded", []string{"timer.*"}, false},
		{"config.reloaded", []string{"timer.*", "config.*"}, true},
		{"timer.exhausted", []string{"*"}, true},
		{"timer", []string{"timer.*"}, false},
		{"timer.exhausted", []string{"["}, false},
	}

	for _, tt := range tests {
		if got := matchesAny(tt.s, tt.patterns); got != tt.want {
			t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.s, tt.patterns, got, tt.want)
		}
	}
}
