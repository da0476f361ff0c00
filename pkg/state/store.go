// Package state provides the reducer-driven state container owned by views.
//
// A Store holds a current value and a pure reducer. Dispatch computes the
// next value, assigns it, and notifies subscribers synchronously before
// returning:
//
//	store := state.NewStore(0, func(n int, a state.Action) int {
//	    if a.Type == "increment" {
//	        return n + 1
//	    }
//	    return n
//	})
//	unsub := store.Subscribe(func() { fmt.Println(store.Current()) })
//	store.Dispatch(state.Action{Type: "increment"})
//	unsub()
//
// Store is NOT thread-safe. It must only be used from the UI thread.
package state

// SetActionType is the action type produced by Store.Set.
const SetActionType = "vdom/set"

// Action is a message passed to a reducer.
type Action struct {
	Type    string
	Payload any
}

// Reducer computes the next state from the current state and an action.
// It must be pure and must return the unchanged state for actions it does
// not recognize.
type Reducer[S any] func(current S, action Action) S

// Store holds a value that only changes through Dispatch.
type Store[S any] struct {
	current   S
	reducer   Reducer[S]
	version   uint64
	listeners []*listener
}

type listener struct {
	fn func()
}

// NewStore creates a store holding initial. A nil reducer treats every
// action other than SetActionType as a no-op.
func NewStore[S any](initial S, reducer Reducer[S]) *Store[S] {
	return &Store[S]{
		current: initial,
		reducer: reducer,
	}
}

// Current returns the current value.
func (s *Store[S]) Current() S {
	return s.current
}

// Dispatch reduces action into a new current value and notifies every
// subscriber in subscription order. A panicking reducer leaves the current
// value untouched.
func (s *Store[S]) Dispatch(action Action) {
	next := s.reduce(s.current, action)
	s.current = next
	s.version++

	// Snapshot so listeners may unsubscribe during notification.
	listeners := make([]*listener, len(s.listeners))
	copy(listeners, s.listeners)
	for _, l := range listeners {
		if l.fn != nil {
			l.fn()
		}
	}
}

func (s *Store[S]) reduce(current S, action Action) S {
	if action.Type == SetActionType {
		if fn, ok := action.Payload.(func(S) S); ok {
			return fn(current)
		}
	}
	if s.reducer == nil {
		return current
	}
	return s.reducer(current, action)
}

// Set dispatches a SetActionType action whose payload transforms the
// current value.
func (s *Store[S]) Set(transform func(S) S) {
	s.Dispatch(Action{Type: SetActionType, Payload: transform})
}

// Version counts completed dispatches. A store that was never dispatched
// to reports zero.
func (s *Store[S]) Version() uint64 {
	return s.version
}

// Reset replaces the value and the reducer without notifying subscribers.
// It is meant for owners that learn their initial state after creating the
// store.
func (s *Store[S]) Reset(value S, reducer Reducer[S]) {
	s.current = value
	s.reducer = reducer
}

// Subscribe registers fn and returns a function that removes it.
// Subscribing the same function twice yields two independent entries.
func (s *Store[S]) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	entry := &listener{fn: fn}
	s.listeners = append(s.listeners, entry)
	return func() {
		for i, l := range s.listeners {
			if l == entry {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				entry.fn = nil
				return
			}
		}
	}
}

// ListenerCount returns the number of active subscriptions.
func (s *Store[S]) ListenerCount() int {
	return len(s.listeners)
}
