package htmldom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/vdom/pkg/dom"
)

func TestNewDocumentSkeleton(t *testing.T) {
	doc := New()
	require.NotNil(t, doc.Body())
	require.NotNil(t, doc.Head())

	var sb strings.Builder
	require.NoError(t, doc.Render(&sb))
	assert.Equal(t, "<html><head></head><body></body></html>", sb.String())
}

func TestAttributesAndStyles(t *testing.T) {
	doc := New()
	el := doc.CreateElement("div").(*Element)

	el.SetAttribute("id", "root")
	el.SetAttribute("id", "main")
	el.SetStyle("color", "red")
	el.SetStyle("margin", "0")
	el.SetStyle("color", "blue")

	assert.Equal(t, `<div id="main" style="color: blue; margin: 0;"></div>`, OuterHTML(el))

	el.RemoveStyle("color")
	el.RemoveStyle("margin")
	el.RemoveAttribute("id")
	assert.Equal(t, `<div></div>`, OuterHTML(el))

	_, ok := el.Style("color")
	assert.False(t, ok)
}

func TestChildOperations(t *testing.T) {
	doc := New()
	body := doc.Body()
	a := doc.CreateElement("a")
	b := doc.CreateElement("b")
	c := doc.CreateTextNode("c")

	body.AppendChild(a)
	body.InsertBefore(b, a)
	body.InsertBefore(c, nil)
	assert.Equal(t, "<body><b></b><a></a>c</body>", OuterHTML(body))

	// Moving an attached node detaches it first.
	body.InsertBefore(a, b)
	assert.Equal(t, "<body><a></a><b></b>c</body>", OuterHTML(body))

	i := doc.CreateElement("i")
	body.ReplaceChild(i, b)
	assert.Equal(t, "<body><a></a><i></i>c</body>", OuterHTML(body))
	assert.Nil(t, b.Parent())

	body.RemoveChild(c)
	assert.Equal(t, "<body><a></a><i></i></body>", OuterHTML(body))

	assert.Same(t, a, body.FirstChild())
	assert.Same(t, i, a.NextSibling())
	assert.Nil(t, i.NextSibling())
	assert.Same(t, body, a.Parent())
	assert.Len(t, body.Children(), 2)
}

func TestTextContentIsEscapedOnRender(t *testing.T) {
	doc := New()
	txt := doc.CreateTextNode("a")
	doc.Body().AppendChild(txt)
	txt.SetTextContent("<b>&")

	assert.Equal(t, "<b>&", txt.TextContent())
	assert.Equal(t, "<body>&lt;b&gt;&amp;</body>", OuterHTML(doc.Body()))
}

func TestMutationLog(t *testing.T) {
	doc := New()
	el := doc.CreateElement("p")
	doc.ResetMutations()

	el.SetAttribute("class", "x")
	doc.Body().AppendChild(el)

	muts := doc.Mutations()
	require.Len(t, muts, 2)
	assert.Equal(t, OpSetAttribute, muts[0].Op)
	assert.Equal(t, `set-attribute class="x"`, muts[0].String())
	assert.Equal(t, OpAppendChild, muts[1].Op)

	doc.SetRecording(false)
	el.SetAttribute("class", "y")
	assert.Len(t, doc.Mutations(), 2)

	doc.ResetMutations()
	assert.Empty(t, doc.Mutations())
}

func TestEventListenersAndDispatch(t *testing.T) {
	doc := New()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("button")
	outer.AppendChild(inner)
	doc.Body().AppendChild(outer)

	var got []string
	id := inner.AddEventListener("click", func(ev dom.Event) {
		got = append(got, "inner:"+ev.Type)
		assert.Same(t, inner, ev.Target)
	})
	outer.AddEventListener("click", func(ev dom.Event) { got = append(got, "outer") })

	n := doc.Dispatch(inner, dom.Event{Type: "click"})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"inner:click", "outer"}, got)

	inner.RemoveEventListener("click", id)
	assert.Equal(t, 0, inner.(*Element).ListenerCount("click"))
	got = nil
	doc.Dispatch(inner, dom.Event{Type: "click"})
	assert.Equal(t, []string{"outer"}, got)
}

func TestParseAndElementByID(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<html><head><title>x</title></head><body><main id="app" style="color: red"></main></body></html>`))
	require.NoError(t, err)

	app := doc.ElementByID("app")
	require.NotNil(t, app)
	v, ok := app.Style("color")
	assert.True(t, ok)
	assert.Equal(t, "red", v)
	assert.Nil(t, doc.ElementByID("missing"))

	doc.SetTitle("Counter")
	var sb strings.Builder
	require.NoError(t, doc.Render(&sb))
	assert.Contains(t, sb.String(), "<title>Counter</title>")
}

func TestForeignNodePanics(t *testing.T) {
	a := New()
	b := New()
	el := b.CreateElement("div")
	assert.Panics(t, func() { a.Body().AppendChild(el) })
}
