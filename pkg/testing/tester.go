package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/dom/htmldom"
	"github.com/go-drift/vdom/pkg/scheduler"
)

// DefaultBudget is the idle slice granted by each Pump.
const DefaultBudget = 16 * time.Millisecond

// maxSettlePumps bounds PumpAndSettle when updates keep scheduling more work.
const maxSettlePumps = 1000

// ErrSettleTimeout is returned when PumpAndSettle still has work queued
// after its pump limit.
var ErrSettleTimeout = errors.New("PumpAndSettle gave up: work is still queued")

// ErrNotMounted is returned by operations that need a mounted view.
var ErrNotMounted = errors.New("no view mounted")

// Tester mounts views into a fresh htmldom document and drives the
// scheduler by hand. Idle deadlines are measured against a FakeClock.
type Tester struct {
	doc    *htmldom.Document
	clock  *FakeClock
	idle   *scheduler.ManualIdle
	worker *scheduler.Worker
	owner  *core.BuildOwner
	root   *core.Root
	budget time.Duration
	errs   []error
}

// NewTester creates a tester with an empty document. Call Cleanup when
// done, or use NewTesterWithT instead.
func NewTester() *Tester {
	clk := NewFakeClock()
	doc := htmldom.New()
	idle := scheduler.NewManualIdle(clk)
	t := &Tester{
		doc:    doc,
		clock:  clk,
		idle:   idle,
		worker: scheduler.NewWorker(idle),
		budget: DefaultBudget,
	}
	t.worker.OnError = func(err error) { t.errs = append(t.errs, err) }
	t.owner = core.NewBuildOwner(doc, t.worker)
	return t
}

// NewTesterWithT creates a tester that unmounts itself via t.Cleanup.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the current view, firing its disappear hooks.
func (t *Tester) Cleanup() {
	if t.root != nil {
		_ = t.root.Unmount()
		t.root = nil
	}
}

// SetBudget sets the idle slice granted by Pump.
func (t *Tester) SetBudget(d time.Duration) {
	t.budget = d
}

// Clock returns the fake clock the idle deadlines read.
func (t *Tester) Clock() *FakeClock { return t.clock }

// Document returns the live document.
func (t *Tester) Document() *htmldom.Document { return t.doc }

// Owner returns the build owner views are mounted with.
func (t *Tester) Owner() *core.BuildOwner { return t.owner }

// Root returns the mounted root, or nil.
func (t *Tester) Root() *core.Root { return t.root }

// Mount unmounts any previous view, mounts v into the body, and clears the
// mutation log so later assertions only see updates.
func (t *Tester) Mount(v core.View) error {
	t.Cleanup()
	root, err := t.owner.Mount(v, t.doc.Body())
	if err != nil {
		return err
	}
	t.root = root
	t.doc.ResetMutations()
	return nil
}

// Update rebuilds the mounted root and reconciles it in place.
func (t *Tester) Update() error {
	if t.root == nil {
		return ErrNotMounted
	}
	return t.root.Update()
}

// Pump grants one idle slice to every parked drain request and returns
// how many ran.
func (t *Tester) Pump() int {
	return t.idle.Pump(t.budget)
}

// PumpAndSettle pumps until neither the worker nor the idle source has
// anything queued.
func (t *Tester) PumpAndSettle() error {
	for i := 0; i < maxSettlePumps; i++ {
		if t.worker.Pending() == 0 && t.idle.Pending() == 0 {
			return nil
		}
		t.Pump()
	}
	return ErrSettleTimeout
}

// Pending returns the number of queued units of work.
func (t *Tester) Pending() int { return t.worker.Pending() }

// Errors returns the failures reported by drain cycles.
func (t *Tester) Errors() []error { return t.errs }

// Mutations returns the live-tree mutations since the last reset.
func (t *Tester) Mutations() []htmldom.Mutation { return t.doc.Mutations() }

// ResetMutations clears the mutation log.
func (t *Tester) ResetMutations() { t.doc.ResetMutations() }

// HTML renders the mounted root's live subtree.
func (t *Tester) HTML() string {
	if t.root == nil {
		return ""
	}
	n := t.root.Node()
	if n == nil || n.Live() == nil {
		return ""
	}
	return htmldom.OuterHTML(n.Live())
}

// Find evaluates finder against the body.
func (t *Tester) Find(finder Finder) Result {
	body := t.doc.Body()
	if body == nil {
		return Result{finder: finder}
	}
	return Result{finder: finder, elements: finder.Evaluate(body)}
}
