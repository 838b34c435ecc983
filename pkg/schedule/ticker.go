package schedule

import (
	"time"
)

// Ticker schedules callbacks on wall-clock time.Tickers, one goroutine per
// schedule.
type Ticker struct{}

// NewTicker returns the wall-clock scheduler.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Every starts a goroutine that invokes fn each interval. A non-positive
// interval falls back to TickInterval.
func (t *Ticker) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = TickInterval
	}

	h := &tickerHandle{
		guard: newGuard(fn),
		stop:  make(chan struct{}),
	}
	go h.run(interval)
	return h
}

type tickerHandle struct {
	*guard
	stop chan struct{}
}

func (h *tickerHandle) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			if !h.invoke() {
				return
			}
		}
	}
}

// Cancel stops the ticker goroutine.
func (h *tickerHandle) Cancel() {
	if h.cancel() {
		close(h.stop)
	}
}
