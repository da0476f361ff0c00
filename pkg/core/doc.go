// Package core provides the view, node, and reconciliation engine.
//
// Applications describe UI as a tree of Views. A View's Body returns another
// View or a Node; the BuildOwner resolves the tree down to Nodes, materializes
// them into a live dom tree, and on every later update reconciles a freshly
// built Node tree against the previous one, touching only what changed.
//
// # Core Types
//
// View is anything with a Body. Views are cheap descriptions that may be
// recreated on every render.
//
// Node is the intermediate representation: an *Element (tag, attributes,
// styles, event handlers, children, optional key) or a *Text. Nodes are built
// fresh on every pass; the live reference moves from the old node to the new
// one during reconciliation.
//
// Controller pairs a view with its last render and its lifecycle hooks.
//
// # Stateful Views
//
// Embed Stateful in a pointer-receiver view to own a reducer-driven store:
//
//	type Counter struct {
//	    core.Stateful[int]
//	}
//
//	func (c *Counter) Reduce(n int, a state.Action) int {
//	    if a.Type == "increment" {
//	        return n + 1
//	    }
//	    return n
//	}
//
//	func (c *Counter) Body() core.View {
//	    return core.El("button", core.Textf("%d", c.State())).
//	        On("click", func(dom.Event) { c.Dispatch(state.Action{Type: "increment"}) })
//	}
//
// Dispatch notifies the store's subscribers synchronously; the re-render
// itself is queued on the owner's scheduler.Worker and runs in a later drain
// cycle.
//
// # Lifecycle
//
// Hooks registered on a view's Controller fire in registration order:
//
//	c.Controller().OnDidUpdate(func(core.View) { log.Println("updated") })
//
// Appear and disappear hooks fire only when a live subtree is created or
// discarded. Reusing a live node for a structurally matching node fires no
// hooks.
package core
