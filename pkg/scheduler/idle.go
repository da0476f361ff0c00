package scheduler

import "time"

// Clock provides time for idle deadlines. Tests inject a fake clock to
// control budgets deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ManualIdle is an IdleSource driven by the host event loop. Requests are
// parked until the host calls Pump with the length of its idle slice.
type ManualIdle struct {
	clock   Clock
	pending []func(Deadline)
}

// NewManualIdle creates a ManualIdle. A nil clock uses system time.
func NewManualIdle(clock Clock) *ManualIdle {
	if clock == nil {
		clock = realClock{}
	}
	return &ManualIdle{clock: clock}
}

// RequestIdle parks cb until the next Pump.
func (m *ManualIdle) RequestIdle(cb func(Deadline)) {
	if cb == nil {
		return
	}
	m.pending = append(m.pending, cb)
}

// Pending returns the number of parked requests.
func (m *ManualIdle) Pending() int {
	return len(m.pending)
}

// Pump grants one idle slice of the given budget to every request parked
// before the call. Requests made during the slice wait for the next Pump.
// It returns the number of callbacks invoked.
func (m *ManualIdle) Pump(budget time.Duration) int {
	requests := m.pending
	m.pending = nil
	d := &deadline{clock: m.clock, end: m.clock.Now().Add(budget)}
	for _, cb := range requests {
		cb(d)
	}
	return len(requests)
}

type deadline struct {
	clock Clock
	end   time.Time
}

func (d *deadline) TimeRemaining() time.Duration {
	remaining := d.end.Sub(d.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
