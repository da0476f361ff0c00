package core

import (
	"github.com/go-drift/vdom/pkg/scheduler"
	"github.com/go-drift/vdom/pkg/state"
)

// Stateful gives a view a Controller and a reducer-driven store. Embed it in
// a struct used through a pointer.
//
// The initial value comes from the view's InitialState() S method when
// present, and actions are reduced by the view's Reduce(S, state.Action) S
// method when present; otherwise only Set changes the value. Both are looked
// up at the first build. A store touched before that holds the zero value
// and no reducer until then; if it was never dispatched to, the build
// replaces its value with InitialState.
//
// Stateful is NOT thread-safe. It must only be used from the UI thread.
type Stateful[S any] struct {
	ViewBase
	store    *state.Store[S]
	resolved bool

	worker      *scheduler.Worker
	unsubscribe func()
}

type stateBinder interface {
	bindState(self View, worker *scheduler.Worker, ctrl *Controller, save bool)
}

// bindState resolves the store against the outer view and routes its
// notifications to worker. Mounting through another owner moves the
// subscription to that owner's worker.
func (s *Stateful[S]) bindState(self View, worker *scheduler.Worker, ctrl *Controller, save bool) {
	s.ensureStore(self)
	if !save || worker == nil || worker == s.worker {
		return
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.worker = worker
	s.unsubscribe = s.store.Subscribe(func() {
		worker.AddUnitOfWork(ctrl.UpdateView)
	})
}

func (s *Stateful[S]) ensureStore(self View) {
	if s.store == nil {
		s.store = state.NewStore[S](*new(S), nil)
	}
	if s.resolved || self == nil {
		return
	}
	s.resolved = true
	var reducer state.Reducer[S]
	if r, ok := self.(interface{ Reduce(S, state.Action) S }); ok {
		reducer = r.Reduce
	}
	value := s.store.Current()
	if init, ok := self.(interface{ InitialState() S }); ok && s.store.Version() == 0 {
		value = init.InitialState()
	}
	s.store.Reset(value, reducer)
}

// Store returns the view's store.
func (s *Stateful[S]) Store() *state.Store[S] {
	s.ensureStore(nil)
	return s.store
}

// State returns the current state.
func (s *Stateful[S]) State() S {
	return s.Store().Current()
}

// Dispatch sends action to the store. The re-render is deferred to the
// owner's scheduler.
func (s *Stateful[S]) Dispatch(action state.Action) {
	s.Store().Dispatch(action)
}

// Set replaces the state with transform(current).
func (s *Stateful[S]) Set(transform func(S) S) {
	s.Store().Set(transform)
}
