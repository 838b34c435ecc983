package event

import (
	"sort"
	"sync"
	"time"
)

// DefaultHistoryLimit bounds a History created with a non-positive limit.
const DefaultHistoryLimit = 256

// History keeps recent events in timestamp order. When full, the oldest
// event is dropped.
type History struct {
	mu     sync.RWMutex
	limit  int
	events []Event
}

// NewHistory creates a history holding at most limit events.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, events: make([]Event, 0, limit)}
}

// Append records evt. Events mostly arrive in order, so the common case is a
// plain append; late arrivals are inserted by binary search.
func (h *History) Append(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.events)
	if n == 0 || !evt.Timestamp.Before(h.events[n-1].Timestamp) {
		h.events = append(h.events, evt)
	} else {
		idx := sort.Search(n, func(i int) bool {
			return h.events[i].Timestamp.After(evt.Timestamp)
		})
		h.events = append(h.events, Event{})
		copy(h.events[idx+1:], h.events[idx:])
		h.events[idx] = evt
	}

	if over := len(h.events) - h.limit; over > 0 {
		copy(h.events, h.events[over:])
		h.events = h.events[:h.limit]
	}
}

// Range returns the events with start <= Timestamp < end.
func (h *History) Range(start, end time.Time) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	lo := sort.Search(len(h.events), func(i int) bool {
		return !h.events[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(h.events), func(i int) bool {
		return !h.events[i].Timestamp.Before(end)
	})
	if hi <= lo {
		return nil
	}

	out := make([]Event, hi-lo)
	copy(out, h.events[lo:hi])
	return out
}

// Count returns how many events of eventType fall in [start, end).
// eventType accepts the same wildcards as Filter.
func (h *History) Count(eventType string, start, end time.Time) int {
	n := 0
	for _, evt := range h.Range(start, end) {
		if matchesAny(evt.Type, []string{eventType}) {
			n++
		}
	}
	return n
}

// Last returns up to n of the most recent events, oldest first.
func (h *History) Last(n int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || len(h.events) == 0 {
		return nil
	}
	if n > len(h.events) {
		n = len(h.events)
	}
	out := make([]Event, n)
	copy(out, h.events[len(h.events)-n:])
	return out
}

// Latest returns the most recent event of eventType.
func (h *History) Latest(eventType string) (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.events) - 1; i >= 0; i-- {
		if matchesAny(h.events[i].Type, []string{eventType}) {
			return h.events[i], true
		}
	}
	return Event{}, false
}

// Len returns the number of recorded events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// Clear drops everything.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = h.events[:0]
}
