package testbed

import (
	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/dom"
	"github.com/go-drift/vdom/pkg/state"
)

// Counter shows a count and increments it on click of #increment.
type Counter struct {
	core.Stateful[int]
	Initial int
}

func (c *Counter) InitialState() int { return c.Initial }

func (c *Counter) Reduce(count int, a state.Action) int {
	switch a.Type {
	case "increment":
		return count + 1
	case "reset":
		return 0
	}
	return count
}

func (c *Counter) Body() core.View {
	return core.El("div",
		core.El("span", core.Textf("%d", c.State())).Attr("id", "count"),
		core.El("button", "+").
			Attr("id", "increment").
			On("click", func(dom.Event) { c.Dispatch(state.Action{Type: "increment"}) }),
		core.El("button", "reset").
			Attr("id", "reset").
			On("click", func(dom.Event) { c.Dispatch(state.Action{Type: "reset"}) }),
	).Attr("class", "counter")
}
