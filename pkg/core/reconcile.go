package core

import (
	"fmt"

	"github.com/go-drift/vdom/pkg/dom"
	"github.com/go-drift/vdom/pkg/errors"
)

// Reconcile patches live, the materialization of old, so that it matches
// next. Matching live nodes are reused; next takes over their references,
// event listeners, and view controllers. Identical trees produce no
// mutations.
//
// Each element attaches one live listener per handler slot and event name;
// the listener calls into a table of the current handlers. An event whose
// handler count is unchanged only swaps the table, so the dom sees no
// RemoveEventListener/AddEventListener pair. When the count changes, every
// listener for that event is detached and attached again, and events that
// lose all handlers are detached.
func (o *BuildOwner) Reconcile(old, next Node, live dom.Node) error {
	if isNil(old) || isNil(next) {
		return errors.New("core.Reconcile", errors.KindInvalidValue, fmt.Errorf("nil node"))
	}
	if isNil(live) {
		return errors.New("core.Reconcile", errors.KindReconcile, ErrNotMaterialized)
	}
	return o.reconcile(old, next, live)
}

func (o *BuildOwner) reconcile(old, next Node, live dom.Node) error {
	if old == next {
		return nil
	}
	if !sameShape(old, next) {
		return o.replace(old, next, live)
	}
	switch n := next.(type) {
	case *Text:
		t, ok := live.(dom.Text)
		if !ok {
			return liveMismatch(next, live)
		}
		if old.(*Text).Content != n.Content {
			t.SetTextContent(n.Content)
		}
		n.live = t
	case *Element:
		el, ok := live.(dom.Element)
		if !ok {
			return liveMismatch(next, live)
		}
		prev := old.(*Element)
		patchValues(prev.Attrs, n.Attrs, el.SetAttribute, el.RemoveAttribute)
		patchValues(prev.Styles, n.Styles, el.SetStyle, el.RemoveStyle)
		n.events = prev.events
		if n.events == nil {
			n.events = newEventBinding()
		}
		n.events.update(el, n.Handlers)
		n.live = el
		if err := o.reconcileChildren(prev, n, el); err != nil {
			return err
		}
	}
	handOver(old, next)
	return nil
}

func sameShape(a, b Node) bool {
	switch x := a.(type) {
	case *Text:
		_, ok := b.(*Text)
		return ok
	case *Element:
		y, ok := b.(*Element)
		return ok && x.Tag == y.Tag
	}
	return false
}

func liveMismatch(n Node, live dom.Node) error {
	return errors.New("core.Reconcile", errors.KindReconcile,
		fmt.Errorf("%w: %T paired with %T", ErrLiveMismatch, n, live))
}

// patchValues applies the difference between two attribute or style maps.
// Values compare by their string form; nil is absent.
func patchValues(old, next map[string]any, set func(string, string), remove func(string)) {
	for _, name := range sortedKeys(old) {
		if _, ok := formatValue(old[name]); !ok {
			continue
		}
		if _, ok := formatValue(next[name]); !ok {
			remove(name)
		}
	}
	for _, name := range sortedKeys(next) {
		value, ok := formatValue(next[name])
		if !ok {
			continue
		}
		if prev, had := formatValue(old[name]); had && prev == value {
			continue
		}
		set(name, value)
	}
}

func (o *BuildOwner) reconcileChildren(old, next *Element, el dom.Element) error {
	if len(old.kids) == len(next.kids) && sameKeys(old.kids, next.kids) {
		for i, kid := range next.kids {
			live := old.kids[i].Live()
			if live == nil {
				return errors.New("core.Reconcile", errors.KindReconcile, ErrNotMaterialized)
			}
			if err := o.reconcile(old.kids[i], kid, live); err != nil {
				return err
			}
		}
		return nil
	}
	return o.reconcileKeyed(old.kids, next.kids, el)
}

func sameKeys(a, b []Node) bool {
	for i := range a {
		if keyOf(a[i]) != keyOf(b[i]) {
			return false
		}
	}
	return true
}

// reconcileKeyed pairs a keyed old child with the first unused new child of
// the same key, and an unkeyed old child with the unkeyed new child at its
// index. Unpaired old children are removed, unpaired new children are
// created, and the live children are then put in the new order.
func (o *BuildOwner) reconcileKeyed(oldKids, newKids []Node, el dom.Element) error {
	paired := make([]Node, len(newKids))
	var dropped []Node
	for i, kid := range oldKids {
		j := -1
		if key := keyOf(kid); key != "" {
			for k, candidate := range newKids {
				if paired[k] == nil && keyOf(candidate) == key {
					j = k
					break
				}
			}
		} else if i < len(newKids) && paired[i] == nil && keyOf(newKids[i]) == "" {
			j = i
		}
		if j < 0 {
			dropped = append(dropped, kid)
			continue
		}
		paired[j] = kid
	}

	for _, kid := range dropped {
		live := kid.Live()
		if live == nil {
			return errors.New("core.Reconcile", errors.KindReconcile, ErrNotMaterialized)
		}
		o.disappear(kid, func() { el.RemoveChild(live) })
	}

	for j, kid := range newKids {
		if paired[j] == nil {
			continue
		}
		live := paired[j].Live()
		if live == nil {
			return errors.New("core.Reconcile", errors.KindReconcile, ErrNotMaterialized)
		}
		if err := o.reconcile(paired[j], kid, live); err != nil {
			return err
		}
	}

	var prev dom.Node
	for j, kid := range newKids {
		var ref dom.Node
		if prev == nil {
			ref = el.FirstChild()
		} else {
			ref = prev.NextSibling()
		}
		if paired[j] != nil {
			live := kid.Live()
			if ref != live {
				el.InsertBefore(live, ref)
			}
		} else {
			live, err := o.materialize(kid)
			if err != nil {
				return err
			}
			o.appear(kid, func() { el.InsertBefore(live, ref) })
		}
		prev = kid.Live()
	}
	return nil
}

// replace swaps the live subtree of old for a fresh materialization of next.
func (o *BuildOwner) replace(old, next Node, live dom.Node) error {
	parent := live.Parent()
	if parent == nil {
		return errors.New("core.Reconcile", errors.KindReconcile,
			fmt.Errorf("%w: replacing %T", ErrDetached, old))
	}
	fresh, err := o.materialize(next)
	if err != nil {
		return err
	}
	gone := collectBindings(old)
	coming := collectBindings(next)
	fireBindings(gone, willDisappear)
	fireBindings(coming, willAppear)
	parent.ReplaceChild(fresh, live)
	retire(gone)
	fireBindings(gone, didDisappear)
	mount(coming)
	fireBindings(coming, didAppear)
	return nil
}

// materialize creates the live subtree for n.
func (o *BuildOwner) materialize(n Node) (dom.Node, error) {
	if o.doc == nil {
		return nil, errors.New("core.Materialize", errors.KindInvalidValue, ErrNoDocument)
	}
	switch v := n.(type) {
	case *Text:
		t := o.doc.CreateTextNode(v.Content)
		v.live = t
		return t, nil
	case *Element:
		el := o.doc.CreateElement(v.Tag)
		patchValues(nil, v.Attrs, el.SetAttribute, el.RemoveAttribute)
		patchValues(nil, v.Styles, el.SetStyle, el.RemoveStyle)
		v.events = newEventBinding()
		v.events.update(el, v.Handlers)
		for _, kid := range v.kids {
			live, err := o.materialize(kid)
			if err != nil {
				return nil, err
			}
			el.AppendChild(live)
		}
		v.live = el
		return el, nil
	}
	return nil, errors.New("core.Materialize", errors.KindNotImplemented, fmt.Errorf("node type %T", n))
}

// eventBinding owns the live listeners of one element. Listeners call
// through the handler table, so new handlers for the same event only swap
// the table.
type eventBinding struct {
	handlers map[string][]dom.Handler
	ids      map[string][]dom.ListenerID
}

func newEventBinding() *eventBinding {
	return &eventBinding{
		handlers: make(map[string][]dom.Handler),
		ids:      make(map[string][]dom.ListenerID),
	}
}

// update installs handlers. Listeners for an event are re-attached only when
// its handler count changes.
func (b *eventBinding) update(el dom.Element, handlers map[string][]dom.Handler) {
	for _, event := range sortedKeys(b.ids) {
		if _, ok := handlers[event]; ok {
			continue
		}
		for _, id := range b.ids[event] {
			el.RemoveEventListener(event, id)
		}
		delete(b.ids, event)
		delete(b.handlers, event)
	}
	for _, event := range sortedKeys(handlers) {
		list := append([]dom.Handler(nil), handlers[event]...)
		b.handlers[event] = list
		if len(b.ids[event]) == len(list) {
			continue
		}
		for _, id := range b.ids[event] {
			el.RemoveEventListener(event, id)
		}
		ids := make([]dom.ListenerID, len(list))
		for i := range list {
			ids[i] = el.AddEventListener(event, b.listener(event, i))
		}
		b.ids[event] = ids
	}
}

func (b *eventBinding) listener(event string, i int) dom.Handler {
	return func(ev dom.Event) {
		if hs := b.handlers[event]; i < len(hs) && hs[i] != nil {
			hs[i](ev)
		}
	}
}
