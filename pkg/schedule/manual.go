package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic scheduler for tests. Nothing fires until Advance
// moves its virtual time forward.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	entries []*manualHandle
}

// NewManual returns a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualHandle struct {
	*guard
	owner    *Manual
	seq      int
	interval time.Duration
	next     time.Duration
}

// Cancel removes the schedule. Safe to call while Advance is running.
func (h *manualHandle) Cancel() {
	if !h.cancel() {
		return
	}
	h.owner.remove(h)
}

// Every registers fn to fire every interval of virtual time, first at
// now+interval. A non-positive interval falls back to TickInterval.
func (m *Manual) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = TickInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	h := &manualHandle{
		guard:    newGuard(fn),
		owner:    m,
		seq:      m.seq,
		interval: interval,
		next:     m.now + interval,
	}
	m.entries = append(m.entries, h)
	return h
}

// Advance moves virtual time forward by d, firing every due callback
// synchronously in due-time order. Ties fire in registration order.
// Callbacks may schedule or cancel; a schedule cancelled mid-advance does not
// fire again.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		h := m.nextDue(target)
		if h == nil {
			break
		}
		h.invoke()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of live schedules.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Elapsed returns the virtual time advanced so far.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// nextDue pops the earliest entry due at or before target, moving virtual
// time to its due instant and rescheduling it.
func (m *Manual) nextDue(target time.Duration) *manualHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == 0 {
		return nil
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		if a.next != b.next {
			return a.next < b.next
		}
		return a.seq < b.seq
	})

	h := m.entries[0]
	if h.next > target {
		return nil
	}
	m.now = h.next
	h.next += h.interval
	return h
}

func (m *Manual) remove(h *manualHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e == h {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}
