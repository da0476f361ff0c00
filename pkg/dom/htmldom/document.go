// Package htmldom implements the dom interfaces on top of golang.org/x/net/html
// node trees.
//
// It serves as the live tree for static output (mount, then Render) and for
// tests, where the mutation log makes the reconciler's work observable:
//
//	doc := htmldom.New()
//	owner := core.NewBuildOwner(doc, nil)
//	owner.Mount(app, doc.Body())
//	doc.Render(os.Stdout)
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/vdom/pkg/dom"
)

// MutationOp names a live-tree mutation.
type MutationOp string

const (
	OpSetAttribute   MutationOp = "set-attribute"
	OpRemoveAttr     MutationOp = "remove-attribute"
	OpSetStyle       MutationOp = "set-style"
	OpRemoveStyle    MutationOp = "remove-style"
	OpAddListener    MutationOp = "add-listener"
	OpRemoveListener MutationOp = "remove-listener"
	OpAppendChild    MutationOp = "append-child"
	OpInsertBefore   MutationOp = "insert-before"
	OpReplaceChild   MutationOp = "replace-child"
	OpRemoveChild    MutationOp = "remove-child"
	OpSetText        MutationOp = "set-text"
)

// Mutation records one change applied to a node.
type Mutation struct {
	Op     MutationOp
	Target dom.Node
	Name   string
	Value  string
}

func (m Mutation) String() string {
	if m.Name == "" {
		return string(m.Op)
	}
	return fmt.Sprintf("%s %s=%q", m.Op, m.Name, m.Value)
}

// Document is a live tree backed by an html.Node document.
type Document struct {
	root      *html.Node
	nodes     map[*html.Node]dom.Node
	nextID    dom.ListenerID
	mutations []Mutation
	recording bool
}

// New creates an empty document with html, head, and body elements.
func New() *Document {
	d := &Document{
		root:      &html.Node{Type: html.DocumentNode},
		nodes:     make(map[*html.Node]dom.Node),
		recording: true,
	}
	htmlEl := newElementNode("html")
	htmlEl.AppendChild(newElementNode("head"))
	htmlEl.AppendChild(newElementNode("body"))
	d.root.AppendChild(htmlEl)
	return d
}

// Parse reads an HTML page to use as the live tree.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{
		root:      root,
		nodes:     make(map[*html.Node]dom.Node),
		recording: true,
	}, nil
}

func newElementNode(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) dom.Element {
	return d.wrap(newElementNode(tag)).(*Element)
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) dom.Text {
	return d.wrap(&html.Node{Type: html.TextNode, Data: text}).(*Text)
}

// Body returns the body element.
func (d *Document) Body() *Element {
	return d.findTag(atom.Body)
}

// Head returns the head element.
func (d *Document) Head() *Element {
	return d.findTag(atom.Head)
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *Element {
	n := find(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return true
			}
		}
		return false
	})
	if n == nil {
		return nil
	}
	return d.wrap(n).(*Element)
}

// SetTitle sets the text of the head's title element, creating it if needed.
// It is not recorded as a mutation.
func (d *Document) SetTitle(title string) {
	head := d.Head()
	if head == nil {
		return
	}
	t := find(head.n, func(n *html.Node) bool { return n.Type == html.ElementNode && n.DataAtom == atom.Title })
	if t == nil {
		t = newElementNode("title")
		head.n.AppendChild(t)
	}
	for c := t.FirstChild; c != nil; c = t.FirstChild {
		t.RemoveChild(c)
	}
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// OuterHTML renders a single node.
func OuterHTML(n dom.Node) string {
	var sb strings.Builder
	switch v := n.(type) {
	case *Element:
		_ = html.Render(&sb, v.n)
	case *Text:
		_ = html.Render(&sb, v.n)
	}
	return sb.String()
}

// Mutations returns the mutations recorded since the last reset.
func (d *Document) Mutations() []Mutation {
	return d.mutations
}

// ResetMutations clears the mutation log.
func (d *Document) ResetMutations() {
	d.mutations = nil
}

// SetRecording enables or disables the mutation log.
func (d *Document) SetRecording(on bool) {
	d.recording = on
}

// Dispatch delivers ev to target's listeners for ev.Type, then to each
// ancestor's, in attachment order. It returns the number of handlers run.
func (d *Document) Dispatch(target dom.Element, ev dom.Event) int {
	ev.Target = target
	count := 0
	for el, _ := target.(*Element); el != nil; {
		for _, l := range el.listeners[ev.Type] {
			l.handler(ev)
			count++
		}
		parent, ok := el.Parent().(*Element)
		if !ok {
			break
		}
		el = parent
	}
	return count
}

func (d *Document) record(m Mutation) {
	if d.recording {
		d.mutations = append(d.mutations, m)
	}
}

func (d *Document) findTag(a atom.Atom) *Element {
	n := find(d.root, func(n *html.Node) bool { return n.Type == html.ElementNode && n.DataAtom == a })
	if n == nil {
		return nil
	}
	return d.wrap(n).(*Element)
}

// wrap returns the unique wrapper for n.
func (d *Document) wrap(n *html.Node) dom.Node {
	if n == nil {
		return nil
	}
	if w, ok := d.nodes[n]; ok {
		return w
	}
	var w dom.Node
	switch n.Type {
	case html.ElementNode:
		w = &Element{doc: d, n: n, styles: parseStyle(attr(n, "style"))}
	case html.TextNode:
		w = &Text{doc: d, n: n}
	default:
		return nil
	}
	d.nodes[n] = w
	return w
}

func (d *Document) unwrap(n dom.Node) *html.Node {
	switch v := n.(type) {
	case *Element:
		if v.doc == d {
			return v.n
		}
	case *Text:
		if v.doc == d {
			return v.n
		}
	}
	panic(fmt.Sprintf("htmldom: node %T does not belong to this document", n))
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := find(c, match); n != nil {
			return n
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
