package htmldom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/go-drift/vdom/pkg/dom"
)

type listener struct {
	id      dom.ListenerID
	handler dom.Handler
}

type style struct {
	name, value string
}

// Element wraps an html element node.
type Element struct {
	doc       *Document
	n         *html.Node
	styles    []style
	listeners map[string][]listener
}

// Text wraps an html text node.
type Text struct {
	doc *Document
	n   *html.Node
}

func parent(d *Document, n *html.Node) dom.Element {
	if n.Parent == nil {
		return nil
	}
	if el, ok := d.wrap(n.Parent).(*Element); ok {
		return el
	}
	return nil
}

func next(d *Document, n *html.Node) dom.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if w := d.wrap(s); w != nil {
			return w
		}
	}
	return nil
}

func (e *Element) Parent() dom.Element { return parent(e.doc, e.n) }

func (e *Element) NextSibling() dom.Node { return next(e.doc, e.n) }

func (e *Element) Tag() string { return e.n.Data }

// Attribute returns the value of the named attribute and whether it is set.
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Style returns the value of the named inline style property.
func (e *Element) Style(name string) (string, bool) {
	for _, s := range e.styles {
		if s.name == name {
			return s.value, true
		}
	}
	return "", false
}

// ListenerCount returns the number of listeners attached for event.
func (e *Element) ListenerCount(event string) int {
	return len(e.listeners[event])
}

func (e *Element) SetAttribute(name, value string) {
	e.setAttr(name, value)
	e.doc.record(Mutation{Op: OpSetAttribute, Target: e, Name: name, Value: value})
}

func (e *Element) setAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) RemoveAttribute(name string) {
	e.removeAttr(name)
	e.doc.record(Mutation{Op: OpRemoveAttr, Target: e, Name: name})
}

func (e *Element) removeAttr(name string) {
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

func (e *Element) SetStyle(name, value string) {
	found := false
	for i, s := range e.styles {
		if s.name == name {
			e.styles[i].value = value
			found = true
			break
		}
	}
	if !found {
		e.styles = append(e.styles, style{name: name, value: value})
	}
	e.syncStyle()
	e.doc.record(Mutation{Op: OpSetStyle, Target: e, Name: name, Value: value})
}

func (e *Element) RemoveStyle(name string) {
	for i, s := range e.styles {
		if s.name == name {
			e.styles = append(e.styles[:i], e.styles[i+1:]...)
			break
		}
	}
	e.syncStyle()
	e.doc.record(Mutation{Op: OpRemoveStyle, Target: e, Name: name})
}

// syncStyle mirrors the style list into the style attribute.
func (e *Element) syncStyle() {
	if len(e.styles) == 0 {
		e.removeAttr("style")
		return
	}
	e.setAttr("style", formatStyle(e.styles))
}

func (e *Element) AddEventListener(event string, h dom.Handler) dom.ListenerID {
	e.doc.nextID++
	id := e.doc.nextID
	if e.listeners == nil {
		e.listeners = make(map[string][]listener)
	}
	e.listeners[event] = append(e.listeners[event], listener{id: id, handler: h})
	e.doc.record(Mutation{Op: OpAddListener, Target: e, Name: event})
	return id
}

func (e *Element) RemoveEventListener(event string, id dom.ListenerID) {
	list := e.listeners[event]
	for i, l := range list {
		if l.id == id {
			e.listeners[event] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(e.listeners[event]) == 0 {
		delete(e.listeners, event)
	}
	e.doc.record(Mutation{Op: OpRemoveListener, Target: e, Name: event})
}

func (e *Element) FirstChild() dom.Node {
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if w := e.doc.wrap(c); w != nil {
			return w
		}
	}
	return nil
}

// Children returns the element and text children in order.
func (e *Element) Children() []dom.Node {
	var out []dom.Node
	for c := e.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

func (e *Element) AppendChild(child dom.Node) {
	c := e.doc.unwrap(child)
	detach(c)
	e.n.AppendChild(c)
	e.doc.record(Mutation{Op: OpAppendChild, Target: e})
}

func (e *Element) InsertBefore(child, ref dom.Node) {
	if ref == nil {
		e.AppendChild(child)
		return
	}
	c := e.doc.unwrap(child)
	r := e.doc.unwrap(ref)
	if c == r {
		return
	}
	detach(c)
	e.n.InsertBefore(c, r)
	e.doc.record(Mutation{Op: OpInsertBefore, Target: e})
}

func (e *Element) ReplaceChild(newChild, oldChild dom.Node) {
	nc := e.doc.unwrap(newChild)
	oc := e.doc.unwrap(oldChild)
	detach(nc)
	e.n.InsertBefore(nc, oc)
	e.n.RemoveChild(oc)
	e.doc.record(Mutation{Op: OpReplaceChild, Target: e})
}

func (e *Element) RemoveChild(child dom.Node) {
	c := e.doc.unwrap(child)
	if c.Parent != e.n {
		return
	}
	e.n.RemoveChild(c)
	e.doc.record(Mutation{Op: OpRemoveChild, Target: e})
}

func (t *Text) Parent() dom.Element { return parent(t.doc, t.n) }

func (t *Text) NextSibling() dom.Node { return next(t.doc, t.n) }

func (t *Text) TextContent() string { return t.n.Data }

func (t *Text) SetTextContent(text string) {
	t.n.Data = text
	t.doc.record(Mutation{Op: OpSetText, Target: t, Value: text})
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func formatStyle(styles []style) string {
	parts := make([]string, len(styles))
	for i, s := range styles {
		parts[i] = s.name + ": " + s.value + ";"
	}
	return strings.Join(parts, " ")
}

func parseStyle(s string) []style {
	var out []style
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, style{name: name, value: strings.TrimSpace(value)})
	}
	return out
}
