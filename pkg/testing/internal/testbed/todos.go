package testbed

import (
	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/dom"
	"github.com/go-drift/vdom/pkg/state"
)

// Todos is a keyed list. An input event on #new adds its payload; a click
// on an item removes it.
type Todos struct {
	core.Stateful[[]string]
	Items []string
}

func (t *Todos) InitialState() []string { return append([]string(nil), t.Items...) }

func (t *Todos) Reduce(items []string, a state.Action) []string {
	name, _ := a.Payload.(string)
	switch a.Type {
	case "add":
		if name == "" {
			return items
		}
		return append(append([]string(nil), items...), name)
	case "remove":
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it != name {
				out = append(out, it)
			}
		}
		return out
	}
	return items
}

func (t *Todos) Body() core.View {
	list := core.El("ul").Attr("id", "items")
	for _, it := range t.State() {
		name := it
		list.Append(core.El("li", name).
			WithKey(name).
			On("click", func(dom.Event) { t.Dispatch(state.Action{Type: "remove", Payload: name}) }))
	}
	return core.El("section",
		core.El("input").
			Attr("id", "new").
			On("input", func(ev dom.Event) { t.Dispatch(state.Action{Type: "add", Payload: ev.Data}) }),
		list,
	)
}
