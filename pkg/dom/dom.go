// Package dom defines the live platform tree the reconciler patches.
//
// Implementations wrap a concrete mutable tree (a browser document, an
// in-memory HTML tree, a terminal buffer). The engine only touches the tree
// through these interfaces, strictly in tree order, from the UI thread.
package dom

// Event is delivered to listeners.
type Event struct {
	// Type is the event name (e.g., "click").
	Type string
	// Target is the element the event was dispatched to.
	Target Element
	// Data carries implementation-specific payload.
	Data any
}

// Handler receives events.
type Handler func(Event)

// ListenerID identifies an attached listener for removal.
type ListenerID uint64

// Node is any node of the live tree.
type Node interface {
	// Parent returns the containing element, or nil when detached.
	Parent() Element
	// NextSibling returns the following sibling, or nil.
	NextSibling() Node
}

// Element is a tagged container node.
type Element interface {
	Node

	Tag() string
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	SetStyle(name, value string)
	RemoveStyle(name string)
	AddEventListener(event string, h Handler) ListenerID
	RemoveEventListener(event string, id ListenerID)

	FirstChild() Node
	AppendChild(child Node)
	// InsertBefore inserts child before ref. A nil ref appends.
	InsertBefore(child, ref Node)
	ReplaceChild(newChild, oldChild Node)
	RemoveChild(child Node)
}

// Text is a text node.
type Text interface {
	Node

	TextContent() string
	SetTextContent(text string)
}

// Document creates live nodes.
type Document interface {
	CreateElement(tag string) Element
	CreateTextNode(text string) Text
}
