package core

// View is a composable unit of UI. Body must be a pure function of the
// view's state and construction options and return another View or a Node.
type View interface {
	Body() View
}

// ViewFunc adapts a function to a View. Function views have no Controller
// and therefore no lifecycle hooks or state.
type ViewFunc func() View

// Body calls f.
func (f ViewFunc) Body() View { return f() }

// Modifier transforms a produced node. It may return the node unchanged,
// mutate it, or wrap it in a new container.
type Modifier func(Node) Node

// ViewBase gives a view its Controller. Embed it in a struct used through a
// pointer:
//
//	type Page struct {
//	    core.ViewBase
//	    Title string
//	}
//
//	func (p *Page) Body() core.View { return core.El("h1", p.Title) }
type ViewBase struct {
	controller *Controller
}

// Controller returns the view's controller, creating it on first use.
func (b *ViewBase) Controller() *Controller {
	if b.controller == nil {
		b.controller = &Controller{}
	}
	return b.controller
}

type controlled interface {
	Controller() *Controller
}

type modified interface {
	Modifiers() []Modifier
}

func controllerOf(v View) *Controller {
	if c, ok := v.(controlled); ok {
		return c.Controller()
	}
	return nil
}

// ModifiedView attaches modifiers to a view without changing it.
type ModifiedView struct {
	view View
	mods []Modifier
}

// Modify returns a view that renders v and then applies mods in order.
// Modifying a ModifiedView returns a new wrapper with the combined list;
// neither list is shared.
func Modify(v View, mods ...Modifier) *ModifiedView {
	if inner, ok := v.(*ModifiedView); ok {
		combined := make([]Modifier, 0, len(inner.mods)+len(mods))
		combined = append(combined, inner.mods...)
		combined = append(combined, mods...)
		return &ModifiedView{view: inner.view, mods: combined}
	}
	return &ModifiedView{view: v, mods: append([]Modifier(nil), mods...)}
}

// Body returns the wrapped view.
func (m *ModifiedView) Body() View { return m.view }

// Modifiers returns a copy of the modifier list.
func (m *ModifiedView) Modifiers() []Modifier {
	return append([]Modifier(nil), m.mods...)
}
