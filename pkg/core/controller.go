package core

import (
	"fmt"
	"reflect"

	"github.com/go-drift/vdom/pkg/errors"
)

// Hook is a lifecycle callback. It receives the view it was registered on.
type Hook func(View)

type hookKind int

const (
	willAppear hookKind = iota
	didAppear
	willUpdate
	didUpdate
	willDisappear
	didDisappear
	hookKinds
)

// Controller pairs a view with its last render and lifecycle hooks.
// There is one Controller per view instance, created by ViewBase.
type Controller struct {
	view    View
	owner   *BuildOwner
	last    Node
	mounted bool
	hooks   [hookKinds][]Hook
}

// View returns the owning view, or nil before the view is first built.
func (c *Controller) View() View { return c.view }

// LastRender returns the node produced by the last saved build, or nil when
// the view is not mounted.
func (c *Controller) LastRender() Node { return c.last }

// Mounted reports whether the view's render is part of the live tree.
func (c *Controller) Mounted() bool { return c.mounted && c.last != nil }

// OnWillAppear registers a hook run before the view's live subtree is inserted.
func (c *Controller) OnWillAppear(h Hook) func() { return c.addHook(willAppear, h) }

// OnDidAppear registers a hook run after the view's live subtree is inserted.
func (c *Controller) OnDidAppear(h Hook) func() { return c.addHook(didAppear, h) }

// OnWillUpdate registers a hook run before UpdateView rebuilds.
func (c *Controller) OnWillUpdate(h Hook) func() { return c.addHook(willUpdate, h) }

// OnDidUpdate registers a hook run after UpdateView has patched the live tree.
func (c *Controller) OnDidUpdate(h Hook) func() { return c.addHook(didUpdate, h) }

// OnWillDisappear registers a hook run before the view's live subtree is removed.
func (c *Controller) OnWillDisappear(h Hook) func() { return c.addHook(willDisappear, h) }

// OnDidDisappear registers a hook run after the view's live subtree is removed.
func (c *Controller) OnDidDisappear(h Hook) func() { return c.addHook(didDisappear, h) }

// addHook appends h and returns a function that unregisters it.
func (c *Controller) addHook(kind hookKind, h Hook) func() {
	if h == nil {
		return func() {}
	}
	index := len(c.hooks[kind])
	c.hooks[kind] = append(c.hooks[kind], h)
	return func() {
		if index < len(c.hooks[kind]) {
			c.hooks[kind][index] = nil
		}
	}
}

func (c *Controller) fire(kind hookKind) {
	// Hooks registered while firing run on the next transition.
	hooks := c.hooks[kind]
	for i := 0; i < len(hooks); i++ {
		if hooks[i] != nil {
			hooks[i](c.view)
		}
	}
}

func (c *Controller) bind(v View, owner *BuildOwner) {
	c.view = v
	c.owner = owner
}

// UpdateView rebuilds the view and patches the live tree. It is a no-op when
// the view is not mounted, so an update queued before the view was removed
// never touches stale nodes.
func (c *Controller) UpdateView() error {
	if !c.Mounted() || c.owner == nil {
		return nil
	}
	old := c.last
	live := old.Live()
	if live == nil {
		return errors.New("core.UpdateView", errors.KindReconcile,
			fmt.Errorf("%w: %s", ErrNotMaterialized, typeName(c.view)))
	}

	c.fire(willUpdate)

	next, err := c.owner.Build(c.view, true)
	if err != nil {
		return err
	}

	// Views above this one whose render was the same node keep pointing at it.
	ob := old.base()
	nb := next.base()
	for i, v := range ob.views {
		if controllerOf(v) == c {
			outer := append([]View(nil), ob.views[:i]...)
			nb.views = append(outer, nb.views...)
			for _, ov := range outer {
				if oc := controllerOf(ov); oc != nil {
					oc.last = next
				}
			}
			break
		}
	}

	if err := c.owner.Reconcile(old, next, live); err != nil {
		return err
	}
	if parent := ob.parent; parent != nil {
		parent.replaceKid(old, next)
	}

	c.owner.logger().Debug("view updated", "view", typeName(c.view))
	c.fire(didUpdate)
	return nil
}

func (e *Element) replaceKid(old, next Node) {
	for i, kid := range e.kids {
		if kid == old {
			e.kids[i] = next
			next.base().parent = e
			return
		}
	}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
