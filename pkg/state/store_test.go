package state

import "testing"

type counter struct {
	count int
}

func counterReducer(s *counter, a Action) *counter {
	switch a.Type {
	case "increment":
		return &counter{count: s.count + 1}
	case "explode":
		panic("reducer failure")
	}
	return s
}

func TestDispatchReducesAndNotifies(t *testing.T) {
	store := NewStore(&counter{}, counterReducer)
	calls := 0
	store.Subscribe(func() {
		calls++
		if store.Current().count != 1 {
			t.Errorf("listener saw count %d, want 1", store.Current().count)
		}
	})

	store.Dispatch(Action{Type: "increment"})

	if store.Current().count != 1 {
		t.Errorf("count = %d, want 1", store.Current().count)
	}
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
}

func TestDispatchUnknownActionKeepsReference(t *testing.T) {
	initial := &counter{count: 7}
	store := NewStore(initial, counterReducer)
	notified := false
	store.Subscribe(func() { notified = true })

	store.Dispatch(Action{Type: "unknown"})

	if store.Current() != initial {
		t.Error("unknown action should leave current reference-equal to prior value")
	}
	if !notified {
		t.Error("subscribers should still be notified for unknown actions")
	}
}

func TestDispatchPanicLeavesCurrentUnchanged(t *testing.T) {
	initial := &counter{count: 3}
	store := NewStore(initial, counterReducer)
	notified := false
	store.Subscribe(func() { notified = true })

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected reducer panic to propagate")
			}
		}()
		store.Dispatch(Action{Type: "explode"})
	}()

	if store.Current() != initial {
		t.Error("current should be unchanged after a panicking reducer")
	}
	if notified {
		t.Error("subscribers should not be notified when the reducer panics")
	}
}

func TestSubscribersRunInOrderAndDuplicatesAreIndependent(t *testing.T) {
	store := NewStore(0, nil)
	var order []string
	a := func() { order = append(order, "a") }
	store.Subscribe(a)
	store.Subscribe(func() { order = append(order, "b") })
	unsubSecondA := store.Subscribe(a)

	store.Dispatch(Action{Type: "noop"})
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "a" {
		t.Fatalf("order = %v, want [a b a]", order)
	}

	unsubSecondA()
	unsubSecondA()
	order = nil
	store.Dispatch(Action{Type: "noop"})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order after unsubscribe = %v, want [a b]", order)
	}
	if store.ListenerCount() != 2 {
		t.Errorf("ListenerCount() = %d, want 2", store.ListenerCount())
	}
}

func TestUnsubscribeDuringNotification(t *testing.T) {
	store := NewStore(0, nil)
	calls := 0
	var unsub func()
	unsub = store.Subscribe(func() {
		calls++
		unsub()
	})
	store.Subscribe(func() { calls++ })

	store.Dispatch(Action{Type: "noop"})
	store.Dispatch(Action{Type: "noop"})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSetTransformsCurrent(t *testing.T) {
	store := NewStore(1, nil)
	store.Set(func(n int) int { return n * 10 })
	if store.Current() != 10 {
		t.Errorf("Current() = %d, want 10", store.Current())
	}

	// A set action with a payload of the wrong type falls through to the reducer.
	store.Dispatch(Action{Type: SetActionType, Payload: "not a func"})
	if store.Current() != 10 {
		t.Errorf("Current() = %d, want 10", store.Current())
	}
}

func TestVersionCountsDispatches(t *testing.T) {
	store := NewStore(&counter{}, counterReducer)
	if store.Version() != 0 {
		t.Fatalf("new store version = %d, want 0", store.Version())
	}
	store.Dispatch(Action{Type: "increment"})
	store.Dispatch(Action{Type: "unknown"})
	func() {
		defer func() { _ = recover() }()
		store.Dispatch(Action{Type: "explode"})
	}()
	if store.Version() != 2 {
		t.Errorf("version = %d, want 2", store.Version())
	}
}

func TestResetReplacesValueAndReducerSilently(t *testing.T) {
	store := NewStore[int](0, nil)
	calls := 0
	store.Subscribe(func() { calls++ })

	store.Reset(10, func(n int, a Action) int {
		if a.Type == "increment" {
			return n + 1
		}
		return n
	})
	if calls != 0 {
		t.Errorf("Reset notified %d listeners, want 0", calls)
	}
	store.Dispatch(Action{Type: "increment"})
	if store.Current() != 11 {
		t.Errorf("Current() = %d, want 11", store.Current())
	}
}
