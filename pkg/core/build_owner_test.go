package core

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/vdom/pkg/dom"
	"github.com/go-drift/vdom/pkg/dom/htmldom"
	"github.com/go-drift/vdom/pkg/errors"
)

type page struct {
	ViewBase
	title string
}

func (p *page) Body() View {
	return El("section", El("h1", p.title), &paragraph{text: "body"}).Attr("class", "page")
}

type paragraph struct {
	ViewBase
	text string
}

func (p *paragraph) Body() View { return El("p", p.text) }

type nilBody struct{ ViewBase }

func (*nilBody) Body() View { return nil }

type typedNilBody struct{}

func (typedNilBody) Body() View {
	var e *Element
	return e
}

type cycle struct{ ViewBase }

func (c *cycle) Body() View { return c }

type nested struct{ depth int }

func (n nested) Body() View {
	if n.depth == 0 {
		return Txt("leaf")
	}
	return El("div", nested{depth: n.depth - 1})
}

func TestRenderToString(t *testing.T) {
	tests := []struct {
		name string
		view View
		want string
	}{
		{"text", Txt("Hi!"), "Hi!"},
		{"element", El("p", "Hi!"), "<p>Hi!</p>"},
		{"escaped text", Txt("a < b"), "a &lt; b"},
		{
			"attributes sorted then style",
			El("a", "x").Attr("href", "/y").Attr("class", "link").Style("color", "red").Style("margin", 0),
			`<a class="link" href="/y" style="color: red; margin: 0;">x</a>`,
		},
		{"nil attribute absent", El("div").Attr("hidden", nil), "<div></div>"},
		{"nil children skipped", El("ul", nil, El("li", "a"), nil), "<ul><li>a</li></ul>"},
		{"composed views", &page{title: "Home"}, `<section class="page"><h1>Home</h1><p>body</p></section>`},
		{"view func", ViewFunc(func() View { return El("b", "bold") }), "<b>bold</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderToString(tt.view)
			if err != nil {
				t.Fatalf("RenderToString: %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderToString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestElementStringBeforeBuild(t *testing.T) {
	e := El("div", "a", &paragraph{text: "b"}, Txt("c"))
	if got, want := e.String(), "<div>a<p>b</p>c</div>"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		view View
		want error
		kind errors.ErrorKind
	}{
		{"nil body", &nilBody{}, ErrInvalidBody, errors.KindBuild},
		{"typed nil body", typedNilBody{}, ErrInvalidBody, errors.KindBuild},
		{"cycle", &cycle{}, ErrTooDeep, errors.KindBuild},
		{"unexpected child", El("div", 42), ErrUnexpectedChild, errors.KindInvalidValue},
		{"invalid key", El("div", El("span").WithKey(1.5)), ErrInvalidKey, errors.KindInvalidValue},
		{"non-primitive attribute", El("div").Attr("data", []int{1}), ErrInvalidValue, errors.KindInvalidValue},
		{"non-primitive style", El("div").Style("width", map[string]int{}), ErrInvalidValue, errors.KindInvalidValue},
		{"nil handler", El("div").On("click", nil), ErrInvalidValue, errors.KindInvalidValue},
		{
			"modifier returning nil",
			Modify(El("div"), func(Node) Node { return nil }),
			ErrInvalidModifier, errors.KindInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := NewBuildOwner(nil, nil)
			_, err := owner.Build(tt.view, false)
			if !stderrors.Is(err, tt.want) {
				t.Fatalf("Build error = %v, want %v", err, tt.want)
			}
			if got := errors.KindOf(err); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestBuildErrorNamesView(t *testing.T) {
	_, err := NewBuildOwner(nil, nil).Build(&nilBody{}, false)
	var buildErr *errors.BuildError
	if !stderrors.As(err, &buildErr) {
		t.Fatalf("expected *errors.BuildError, got %T", err)
	}
	if buildErr.View != "*core.nilBody" {
		t.Errorf("View = %q, want *core.nilBody", buildErr.View)
	}
}

func TestBuildNestingDepth(t *testing.T) {
	owner := NewBuildOwner(nil, nil)
	owner.MaxDepth = 8

	if _, err := owner.Build(nested{depth: 4}, false); err != nil {
		t.Fatalf("shallow tree: %v", err)
	}
	_, err := owner.Build(nested{depth: 20}, false)
	if !stderrors.Is(err, ErrTooDeep) {
		t.Fatalf("deep tree error = %v, want ErrTooDeep", err)
	}
}

func TestBuildAttachesViewChain(t *testing.T) {
	inner := &paragraph{text: "x"}
	outer := ViewFunc(func() View { return inner })

	n, err := NewBuildOwner(nil, nil).Build(outer, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	views := n.Views()
	if len(views) != 2 {
		t.Fatalf("len(Views) = %d, want 2", len(views))
	}
	if _, ok := views[0].(ViewFunc); !ok {
		t.Errorf("Views[0] = %T, want ViewFunc", views[0])
	}
	if views[1] != View(inner) {
		t.Errorf("Views[1] = %v, want inner view", views[1])
	}
	if inner.Controller().LastRender() != n {
		t.Error("saved build should record LastRender")
	}
}

func TestSpeculativeBuildDoesNotSave(t *testing.T) {
	p := &paragraph{text: "x"}
	if _, err := NewBuildOwner(nil, nil).Build(p, false); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Controller().LastRender() != nil {
		t.Error("speculative build should not record LastRender")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	owner := NewBuildOwner(nil, nil)
	view := &page{title: "Same"}
	first, err := owner.Build(view, false)
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := owner.Build(view, false)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if first == second {
		t.Fatal("each build should produce a fresh node tree")
	}
	if diff := cmp.Diff(shape(first), shape(second)); diff != "" {
		t.Errorf("builds differ (-first +second):\n%s", diff)
	}
}

func TestModifiers(t *testing.T) {
	wrap := func(n Node) Node { return El("div", n).Attr("class", "wrapper") }
	mark := func(n Node) Node {
		if e, ok := n.(*Element); ok {
			e.Attr("data-marked", true)
		}
		return n
	}

	t.Run("applied in order", func(t *testing.T) {
		got, err := RenderToString(Modify(El("p", "Hi!"), mark, wrap))
		if err != nil {
			t.Fatalf("RenderToString: %v", err)
		}
		want := `<div class="wrapper"><p data-marked="true">Hi!</p></div>`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("nested wrappers flatten", func(t *testing.T) {
		inner := Modify(El("p"), mark)
		outer := Modify(inner, wrap)
		if len(inner.Modifiers()) != 1 {
			t.Errorf("inner modifiers changed: %d", len(inner.Modifiers()))
		}
		if len(outer.Modifiers()) != 2 {
			t.Errorf("outer modifiers = %d, want 2", len(outer.Modifiers()))
		}
	})

	t.Run("render of a modified view is the wrapper", func(t *testing.T) {
		p := &paragraph{text: "x"}
		m := Modify(p, wrap)
		n, err := NewBuildOwner(nil, nil).Build(m, true)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if n.(*Element).Tag != "div" {
			t.Fatalf("root tag = %q, want div", n.(*Element).Tag)
		}
		inner := p.Controller().LastRender()
		if inner == nil || inner.(*Element).Tag != "p" {
			t.Fatalf("inner LastRender = %v, want the p element", inner)
		}
		if inner.base().parent != n {
			t.Error("wrapped node should be a child of the wrapper")
		}
	})
}

func TestMountAndUnmount(t *testing.T) {
	doc := htmldom.New()
	owner := NewBuildOwner(doc, nil)
	p := &paragraph{text: "hello"}
	var events []string
	record := func(name string) Hook { return func(View) { events = append(events, name) } }
	ctrl := p.Controller()
	ctrl.OnWillAppear(record("willAppear"))
	ctrl.OnDidAppear(record("didAppear"))
	ctrl.OnWillDisappear(record("willDisappear"))
	ctrl.OnDidDisappear(record("didDisappear"))

	root, err := owner.Mount(p, doc.Body())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got := htmldom.OuterHTML(doc.Body()); got != "<body><p>hello</p></body>" {
		t.Errorf("body = %q", got)
	}
	if !ctrl.Mounted() {
		t.Error("view should be mounted")
	}

	if err := root.Unmount(); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if got := htmldom.OuterHTML(doc.Body()); got != "<body></body>" {
		t.Errorf("body after unmount = %q", got)
	}
	if ctrl.Mounted() || ctrl.LastRender() != nil {
		t.Error("view should be unmounted with no last render")
	}
	want := []string{"willAppear", "didAppear", "willDisappear", "didDisappear"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("hooks (-want +got):\n%s", diff)
	}
}

func TestMountWithoutDocument(t *testing.T) {
	doc := htmldom.New()
	_, err := NewBuildOwner(nil, nil).Mount(El("p"), doc.Body())
	if !stderrors.Is(err, ErrNoDocument) {
		t.Errorf("Mount error = %v, want ErrNoDocument", err)
	}
}

func TestHookUnregister(t *testing.T) {
	doc := htmldom.New()
	p := &paragraph{text: "x"}
	calls := 0
	unregister := p.Controller().OnDidAppear(func(View) { calls++ })
	unregister()
	unregister()
	if _, err := NewBuildOwner(doc, nil).Mount(p, doc.Body()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if calls != 0 {
		t.Errorf("unregistered hook ran %d times", calls)
	}
}

// nodeShape is the comparable part of a node tree.
type nodeShape struct {
	Tag      string
	Text     string
	Attrs    map[string]string
	Styles   string
	Key      string
	Handlers map[string]int
	Children []nodeShape
}

func shape(n Node) nodeShape {
	switch v := n.(type) {
	case *Text:
		return nodeShape{Text: v.Content}
	case *Element:
		s := nodeShape{Tag: v.Tag, Styles: inlineStyle(v.Styles), Key: v.keyID}
		for name, value := range v.Attrs {
			if str, ok := formatValue(value); ok {
				if s.Attrs == nil {
					s.Attrs = make(map[string]string)
				}
				s.Attrs[name] = str
			}
		}
		for event, hs := range v.Handlers {
			if s.Handlers == nil {
				s.Handlers = make(map[string]int)
			}
			s.Handlers[event] = len(hs)
		}
		for _, kid := range v.kids {
			s.Children = append(s.Children, shape(kid))
		}
		return s
	}
	return nodeShape{}
}

func mutationStrings(doc *htmldom.Document) []string {
	var out []string
	for _, m := range doc.Mutations() {
		out = append(out, m.String())
	}
	return out
}

func liveChildren(t *testing.T, n Node) []dom.Node {
	t.Helper()
	el, ok := n.Live().(*htmldom.Element)
	if !ok {
		t.Fatalf("live node is %T, want *htmldom.Element", n.Live())
	}
	return el.Children()
}

func markup(n Node) string {
	return strings.TrimSpace(htmldom.OuterHTML(n.Live()))
}
