package testing

import (
	"fmt"

	"github.com/go-drift/vdom/pkg/dom"
)

// Click dispatches a click to the first element finder matches.
func (t *Tester) Click(finder Finder) error {
	_, err := t.Dispatch(finder, "click", nil)
	return err
}

// Input dispatches an input event carrying value to the first match.
func (t *Tester) Input(finder Finder, value string) error {
	_, err := t.Dispatch(finder, "input", value)
	return err
}

// Dispatch delivers an event of the given type to the first element finder
// matches, bubbling through its ancestors. It returns the number of
// handlers run. Handlers usually schedule work; call Pump to apply it.
func (t *Tester) Dispatch(finder Finder, event string, data any) (int, error) {
	target := t.Find(finder).FirstOrNil()
	if target == nil {
		return 0, fmt.Errorf("dispatch %q: no element found for %s", event, finder.Description())
	}
	return t.doc.Dispatch(target, dom.Event{Type: event, Data: data}), nil
}
