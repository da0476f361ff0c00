// Package scheduler provides the cooperative work queue that defers view
// updates to idle time.
//
// A Worker is owned by the application root and passed to everything that
// needs to enqueue work. Units run strictly in FIFO order, either inside idle
// slices granted by an IdleSource or, when there is none, synchronously.
package scheduler

import (
	stderrors "errors"
	"time"

	"github.com/go-drift/vdom/pkg/errors"
)

// Unit is a deferred piece of work.
type Unit func() error

// Deadline reports how much of the current idle slice remains.
type Deadline interface {
	TimeRemaining() time.Duration
}

// IdleSource grants idle slices. RequestIdle must invoke cb at a later
// point on the UI thread, never from within RequestIdle itself.
type IdleSource interface {
	RequestIdle(cb func(Deadline))
}

// Worker is a FIFO queue of units drained during idle slices.
//
// Worker is NOT thread-safe. It must only be used from the UI thread.
type Worker struct {
	idle      IdleSource
	queue     []Unit
	scheduled bool
	draining  bool

	// OnError receives the failure that aborted a drain cycle. When nil the
	// failure is sent to errors.Report or errors.ReportPanic.
	OnError func(err error)
}

// NewWorker creates a Worker. A nil idle source drains synchronously.
func NewWorker(idle IdleSource) *Worker {
	return &Worker{idle: idle}
}

// AddUnitOfWork appends fn to the queue and requests a drain cycle if none
// is pending. Units added while draining join the same queue.
func (w *Worker) AddUnitOfWork(fn Unit) {
	if fn == nil {
		return
	}
	w.queue = append(w.queue, fn)
	if w.scheduled || w.draining {
		return
	}
	if w.idle == nil {
		w.drainSync()
		return
	}
	w.scheduled = true
	w.idle.RequestIdle(w.cycle)
}

// Pending returns the number of queued units.
func (w *Worker) Pending() int {
	return len(w.queue)
}

// Flush drains every queued unit without regard to budget. It stops at the
// first failure, reports it, and returns it; the remaining units stay queued.
func (w *Worker) Flush() error {
	if w.draining {
		return nil
	}
	return w.drain(unlimited{})
}

func (w *Worker) cycle(d Deadline) {
	w.scheduled = false
	_ = w.drain(d)
	if len(w.queue) > 0 && !w.scheduled && w.idle != nil {
		w.scheduled = true
		w.idle.RequestIdle(w.cycle)
	}
}

// drainSync loops zero-budget cycles. Each runs exactly one unit, which
// degrades to synchronous draining in queue order.
func (w *Worker) drainSync() {
	for len(w.queue) > 0 {
		_ = w.drain(expired{})
	}
}

// drain runs units while budget remains, always at least one.
func (w *Worker) drain(d Deadline) error {
	w.draining = true
	defer func() { w.draining = false }()

	ran := false
	for len(w.queue) > 0 && (!ran || d.TimeRemaining() > 0) {
		unit := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		ran = true
		if err := w.run(unit); err != nil {
			w.report(err)
			return err
		}
	}
	return nil
}

func (w *Worker) run(unit Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.PanicError{
				Op:         "scheduler.Worker",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
		}
	}()
	if err := unit(); err != nil {
		return errors.New("scheduler.Worker", errors.KindSchedule, err)
	}
	return nil
}

// report routes err to OnError, or else to the global handler by the most
// specific error type in its chain.
func (w *Worker) report(err error) {
	if w.OnError != nil {
		w.OnError(err)
		return
	}
	var (
		panicErr *errors.PanicError
		buildErr *errors.BuildError
		vdomErr  *errors.VDOMError
	)
	switch {
	case stderrors.As(err, &panicErr):
		errors.ReportPanic(panicErr)
	case stderrors.As(err, &buildErr):
		errors.ReportBuildError(buildErr)
	case stderrors.As(err, &vdomErr):
		errors.Report(vdomErr)
	default:
		errors.Report(errors.New("scheduler.Worker", errors.KindSchedule, err))
	}
}

type expired struct{}

func (expired) TimeRemaining() time.Duration { return 0 }

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return time.Duration(1<<63 - 1) }
