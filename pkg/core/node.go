package core

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/go-drift/vdom/pkg/dom"
)

// Node is the intermediate representation of one render step: an *Element
// or a *Text. A Node is itself a View whose Body is the node.
type Node interface {
	View

	// Live returns the materialized live node, or nil before materialization.
	Live() dom.Node
	// Views returns the views this node is the render of, outermost first.
	Views() []View
	// String serializes the node tree as markup.
	String() string

	base() *nodeBase
}

type nodeBase struct {
	views  []View
	parent *Element
	pass   uint64
}

func (b *nodeBase) Views() []View { return b.views }

func (b *nodeBase) base() *nodeBase { return b }

// Element is a container node.
type Element struct {
	nodeBase

	// Tag is the component or tag name.
	Tag string
	// Attrs maps attribute names to primitive values. Nil values are absent.
	Attrs map[string]any
	// Styles maps style properties to primitive values. Nil values are absent.
	Styles map[string]any
	// Handlers maps event names to handlers, in attachment order.
	Handlers map[string][]dom.Handler
	// Children holds Nodes, Views, and strings (shorthand for Text).
	// Nil entries are skipped.
	Children []any
	// Key identifies the node among its siblings. It must be a string or an
	// integer.
	Key any

	kids   []Node
	keyID  string
	live   dom.Element
	events *eventBinding
}

// El creates an element with the given children.
func El(tag string, children ...any) *Element {
	return &Element{Tag: tag, Children: children}
}

// Attr sets an attribute and returns e.
func (e *Element) Attr(name string, value any) *Element {
	if e.Attrs == nil {
		e.Attrs = make(map[string]any)
	}
	e.Attrs[name] = value
	return e
}

// Style sets a style property and returns e.
func (e *Element) Style(name string, value any) *Element {
	if e.Styles == nil {
		e.Styles = make(map[string]any)
	}
	e.Styles[name] = value
	return e
}

// On appends an event handler and returns e.
func (e *Element) On(event string, h dom.Handler) *Element {
	if e.Handlers == nil {
		e.Handlers = make(map[string][]dom.Handler)
	}
	e.Handlers[event] = append(e.Handlers[event], h)
	return e
}

// WithKey sets the sibling key and returns e.
func (e *Element) WithKey(key any) *Element {
	e.Key = key
	return e
}

// Append adds children and returns e.
func (e *Element) Append(children ...any) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Body returns e.
func (e *Element) Body() View { return e }

// Live returns the live element, or nil.
func (e *Element) Live() dom.Node {
	if e.live == nil {
		return nil
	}
	return e.live
}

// ChildNodes returns the resolved children. It is empty until the element
// has been built.
func (e *Element) ChildNodes() []Node { return e.kids }

// String serializes the element: the tag's attributes, then the inline style
// string, then the children.
func (e *Element) String() string {
	var sb strings.Builder
	e.writeMarkup(&sb)
	return sb.String()
}

func (e *Element) writeMarkup(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Tag)
	for _, name := range sortedKeys(e.Attrs) {
		value, ok := formatValue(e.Attrs[name])
		if !ok {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(name)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(value))
		sb.WriteByte('"')
	}
	if style := inlineStyle(e.Styles); style != "" {
		sb.WriteString(` style="`)
		sb.WriteString(html.EscapeString(style))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if e.pass != 0 {
		for _, kid := range e.kids {
			writeNode(sb, kid)
		}
	} else {
		for _, child := range e.Children {
			writeChild(sb, child)
		}
	}
	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteByte('>')
}

// Text is a text node.
type Text struct {
	nodeBase

	Content string

	live dom.Text
}

// Txt creates a text node.
func Txt(content string) *Text {
	return &Text{Content: content}
}

// Textf creates a text node from a format string.
func Textf(format string, args ...any) *Text {
	return &Text{Content: fmt.Sprintf(format, args...)}
}

// Body returns t.
func (t *Text) Body() View { return t }

// Live returns the live text node, or nil.
func (t *Text) Live() dom.Node {
	if t.live == nil {
		return nil
	}
	return t.live
}

// String returns the escaped content with no surrounding markup.
func (t *Text) String() string {
	return html.EscapeString(t.Content)
}

func writeNode(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Element:
		v.writeMarkup(sb)
	default:
		sb.WriteString(n.String())
	}
}

// writeChild serializes an unbuilt child, resolving views speculatively.
func writeChild(sb *strings.Builder, child any) {
	switch v := child.(type) {
	case nil:
	case string:
		sb.WriteString(html.EscapeString(v))
	case Node:
		writeNode(sb, v)
	case View:
		n, err := NewBuildOwner(nil, nil).Build(v, false)
		if err != nil {
			sb.WriteString("<!-- ")
			sb.WriteString(html.EscapeString(err.Error()))
			sb.WriteString(" -->")
			return
		}
		writeNode(sb, n)
	}
}

// RenderToString builds v without saving renders and serializes the result.
func RenderToString(v View) (string, error) {
	n, err := NewBuildOwner(nil, nil).Build(v, false)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// formatValue converts a primitive to its attribute string. The second
// result is false for nil, which means absent.
func formatValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	}
	return fmt.Sprint(v), true
}

// isPrimitive reports whether v is allowed as an attribute or style value.
func isPrimitive(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(fmt.Stringer); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// normalizeKey maps a key to a comparable identity. Integers of any kind
// with the same value are equal; a string never equals an integer.
func normalizeKey(key any) (string, bool) {
	if key == nil {
		return "", true
	}
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.String:
		return "s:" + rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i:" + strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return "u:" + strconv.FormatUint(u, 10), true
		}
		return "i:" + strconv.FormatInt(int64(u), 10), true
	}
	return "", false
}

func keyOf(n Node) string {
	if e, ok := n.(*Element); ok {
		return e.keyID
	}
	return ""
}

func inlineStyle(styles map[string]any) string {
	var parts []string
	for _, name := range sortedKeys(styles) {
		value, ok := formatValue(styles[name])
		if !ok {
			continue
		}
		parts = append(parts, name+": "+value+";")
	}
	return strings.Join(parts, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
