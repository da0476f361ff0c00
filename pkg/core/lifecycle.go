package core

// binding pairs a controller with the node it was collected from.
type binding struct {
	ctrl *Controller
	node Node
}

// collectBindings walks the subtree of n in pre-order, outer views before
// inner ones.
func collectBindings(n Node) []binding {
	var out []binding
	var walk func(Node)
	walk = func(n Node) {
		for _, v := range n.Views() {
			if ctrl := controllerOf(v); ctrl != nil {
				out = append(out, binding{ctrl: ctrl, node: n})
			}
		}
		if e, ok := n.(*Element); ok {
			for _, kid := range e.kids {
				walk(kid)
			}
		}
	}
	walk(n)
	return out
}

func fireBindings(bs []binding, kind hookKind) {
	for _, b := range bs {
		b.ctrl.fire(kind)
	}
}

func mount(bs []binding) {
	for _, b := range bs {
		b.ctrl.mounted = true
	}
}

// retire unmounts controllers whose last render is the collected node.
// A controller that already rendered elsewhere keeps its state.
func retire(bs []binding) {
	for _, b := range bs {
		if b.ctrl.last == b.node || b.ctrl.last == nil {
			b.ctrl.mounted = false
			b.ctrl.last = nil
		}
	}
}

// appear inserts the live subtree of n, firing appear hooks around insert.
func (o *BuildOwner) appear(n Node, insert func()) {
	bs := collectBindings(n)
	fireBindings(bs, willAppear)
	insert()
	mount(bs)
	fireBindings(bs, didAppear)
}

// disappear removes the live subtree of n, firing disappear hooks around
// remove.
func (o *BuildOwner) disappear(n Node, remove func()) {
	bs := collectBindings(n)
	fireBindings(bs, willDisappear)
	remove()
	retire(bs)
	fireBindings(bs, didDisappear)
}

// handOver moves view ownership from a reconciled node to its successor.
// Controllers of views that dropped out of the chain are retired without
// hooks; their subtree stays in the live tree under the new views.
func handOver(old, next Node) {
	for _, v := range old.Views() {
		if ctrl := controllerOf(v); ctrl != nil && ctrl.last == old {
			ctrl.mounted = false
			ctrl.last = nil
		}
	}
	for _, v := range next.Views() {
		if ctrl := controllerOf(v); ctrl != nil {
			ctrl.mounted = true
		}
	}
}
