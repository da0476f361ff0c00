package core

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-drift/vdom/pkg/dom"
	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/scheduler"
)

// DefaultMaxDepth bounds Body resolution chains and node nesting.
const DefaultMaxDepth = 256

// BuildOwner resolves views into nodes and reconciles them against the live
// tree of its document. State changes are deferred through its Worker.
//
// BuildOwner is NOT thread-safe. It must only be used from the UI thread.
type BuildOwner struct {
	doc    dom.Document
	worker *scheduler.Worker
	pass   uint64

	// MaxDepth bounds how many Body calls a single view may chain through
	// and how deeply nodes may nest. Zero means DefaultMaxDepth.
	MaxDepth int
	// Logger receives debug records for mounts and updates. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// NewBuildOwner creates a BuildOwner for doc. A nil worker drains
// synchronously; a nil doc only supports builds and serialization.
func NewBuildOwner(doc dom.Document, worker *scheduler.Worker) *BuildOwner {
	if worker == nil {
		worker = scheduler.NewWorker(nil)
	}
	return &BuildOwner{
		doc:      doc,
		worker:   worker,
		MaxDepth: DefaultMaxDepth,
	}
}

// Document returns the live tree the owner materializes into.
func (o *BuildOwner) Document() dom.Document { return o.doc }

// Worker returns the scheduler that runs deferred updates.
func (o *BuildOwner) Worker() *scheduler.Worker { return o.worker }

func (o *BuildOwner) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *BuildOwner) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Build resolves v to a node tree. With save set, every resolved view's
// controller records its render as LastRender and stateful views subscribe
// their store to the owner's worker; speculative builds pass false.
func (o *BuildOwner) Build(v View, save bool) (Node, error) {
	o.pass++
	return o.build(v, save, 0)
}

func (o *BuildOwner) build(v View, save bool, depth int) (Node, error) {
	if isNil(v) {
		return nil, errors.New("core.Build", errors.KindInvalidValue, fmt.Errorf("%w: nil view", ErrUnexpectedChild))
	}
	if depth > o.maxDepth() {
		return nil, &errors.BuildError{View: typeName(v), Depth: depth, Err: ErrTooDeep}
	}

	var chain []View
	current := v
	for {
		if n, ok := current.(Node); ok {
			if err := o.buildNode(n, save, depth); err != nil {
				return nil, err
			}
			return o.applyModifiers(n, chain, save, depth)
		}
		if len(chain) >= o.maxDepth() {
			return nil, &errors.BuildError{View: typeName(v), Depth: len(chain), Err: ErrTooDeep}
		}
		if ctrl := controllerOf(current); ctrl != nil {
			ctrl.bind(current, o)
			if binder, ok := current.(stateBinder); ok {
				binder.bindState(current, o.worker, ctrl, save)
			}
		}
		chain = append(chain, current)
		next := current.Body()
		if isNil(next) {
			return nil, &errors.BuildError{View: typeName(current), Depth: len(chain), Err: ErrInvalidBody}
		}
		current = next
	}
}

// applyModifiers runs each view's modifiers, innermost view first. A view's
// render is the node left after its own modifiers ran.
func (o *BuildOwner) applyModifiers(n Node, chain []View, save bool, depth int) (Node, error) {
	stage := n
	var pending []View
	for i := len(chain) - 1; i >= 0; i-- {
		view := chain[i]
		m, ok := view.(modified)
		if !ok {
			pending = append(pending, view)
			continue
		}
		for _, mod := range m.Modifiers() {
			if mod == nil {
				continue
			}
			out := mod(stage)
			if isNil(out) {
				return nil, errors.New("core.Build", errors.KindInvalidValue,
					fmt.Errorf("%w: on %s", ErrInvalidModifier, typeName(view)))
			}
			if out == stage {
				if e, ok := stage.(*Element); ok {
					if err := e.prepare(); err != nil {
						return nil, err
					}
				}
				continue
			}
			o.attach(stage, pending, save)
			pending = nil
			if err := o.buildNode(out, save, depth); err != nil {
				return nil, err
			}
			stage = out
		}
		pending = append(pending, view)
	}
	o.attach(stage, pending, save)
	return stage, nil
}

// attach records n as the render of views, given innermost first.
func (o *BuildOwner) attach(n Node, views []View, save bool) {
	if len(views) == 0 {
		return
	}
	b := n.base()
	outermostFirst := make([]View, 0, len(views)+len(b.views))
	for i := len(views) - 1; i >= 0; i-- {
		outermostFirst = append(outermostFirst, views[i])
	}
	b.views = append(outermostFirst, b.views...)
	if !save {
		return
	}
	for _, v := range views {
		if ctrl := controllerOf(v); ctrl != nil {
			ctrl.last = n
		}
	}
}

// buildNode resolves an element's children in place. Nodes already built in
// this pass are left alone.
func (o *BuildOwner) buildNode(n Node, save bool, depth int) error {
	b := n.base()
	if b.pass == o.pass {
		return nil
	}
	b.pass = o.pass
	b.views = nil

	e, ok := n.(*Element)
	if !ok {
		return nil
	}
	if err := e.prepare(); err != nil {
		return err
	}
	kids := make([]Node, 0, len(e.Children))
	for i, child := range e.Children {
		var kid Node
		switch c := child.(type) {
		case nil:
			continue
		case string:
			kid = Txt(c)
			kid.base().pass = o.pass
		case View:
			if isNil(c) {
				continue
			}
			built, err := o.build(c, save, depth+1)
			if err != nil {
				return err
			}
			kid = built
		default:
			return errors.New("core.Build", errors.KindInvalidValue,
				fmt.Errorf("%w: %T at <%s> child %d", ErrUnexpectedChild, child, e.Tag, i))
		}
		kid.base().parent = e
		kids = append(kids, kid)
	}
	e.kids = kids
	return nil
}

// prepare validates the element's key, attribute and style values, and
// handlers.
func (e *Element) prepare() error {
	keyID, ok := normalizeKey(e.Key)
	if !ok {
		return errors.New("core.Build", errors.KindInvalidValue,
			fmt.Errorf("%w: %T on <%s>", ErrInvalidKey, e.Key, e.Tag))
	}
	e.keyID = keyID
	for name, value := range e.Attrs {
		if !isPrimitive(value) {
			return errors.New("core.Build", errors.KindInvalidValue,
				fmt.Errorf("%w: attribute %q of <%s> is %T", ErrInvalidValue, name, e.Tag, value))
		}
	}
	for name, value := range e.Styles {
		if !isPrimitive(value) {
			return errors.New("core.Build", errors.KindInvalidValue,
				fmt.Errorf("%w: style %q of <%s> is %T", ErrInvalidValue, name, e.Tag, value))
		}
	}
	for event, handlers := range e.Handlers {
		for _, h := range handlers {
			if h == nil {
				return errors.New("core.Build", errors.KindInvalidValue,
					fmt.Errorf("%w: nil %q handler on <%s>", ErrInvalidValue, event, e.Tag))
			}
		}
	}
	return nil
}

// Root is a view mounted into a container.
type Root struct {
	owner     *BuildOwner
	view      View
	node      Node
	container dom.Element
}

// Mount builds v, materializes it, and appends it to container, firing
// appear hooks around the insertion.
func (o *BuildOwner) Mount(v View, container dom.Element) (*Root, error) {
	if container == nil {
		return nil, errors.New("core.Mount", errors.KindInvalidValue, fmt.Errorf("nil container"))
	}
	n, err := o.Build(v, true)
	if err != nil {
		return nil, err
	}
	live, err := o.materialize(n)
	if err != nil {
		return nil, err
	}
	o.appear(n, func() { container.AppendChild(live) })
	o.logger().Debug("view mounted", "view", typeName(v), "tag", container.Tag())
	return &Root{owner: o, view: v, node: n, container: container}, nil
}

// Node returns the root's current render.
func (r *Root) Node() Node {
	if r.node == nil {
		return nil
	}
	// A controller in the chain may have re-rendered since the last call.
	for _, v := range r.node.Views() {
		if ctrl := controllerOf(v); ctrl != nil && ctrl.last != nil {
			r.node = ctrl.last
			break
		}
	}
	return r.node
}

// Update rebuilds the whole root and reconciles it. Views without a
// Controller use this to re-render.
func (r *Root) Update() error {
	old := r.Node()
	if old == nil {
		return nil
	}
	next, err := r.owner.Build(r.view, true)
	if err != nil {
		return err
	}
	if err := r.owner.Reconcile(old, next, old.Live()); err != nil {
		return err
	}
	r.node = next
	return nil
}

// Unmount removes the root's live subtree, firing disappear hooks.
func (r *Root) Unmount() error {
	n := r.Node()
	if n == nil {
		return nil
	}
	live := n.Live()
	if live == nil {
		return errors.New("core.Unmount", errors.KindReconcile, ErrNotMaterialized)
	}
	r.owner.disappear(n, func() { r.container.RemoveChild(live) })
	r.node = nil
	r.owner.logger().Debug("view unmounted", "view", typeName(r.view))
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
