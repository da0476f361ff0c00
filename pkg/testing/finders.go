package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/vdom/pkg/dom/htmldom"
)

// Finder selects elements of the live tree.
type Finder interface {
	// Evaluate returns matching elements below root in document order.
	// Root itself is never a match.
	Evaluate(root *htmldom.Element) []*htmldom.Element
	// Description names the finder in failure messages.
	Description() string
}

// Result holds the elements a Finder matched.
type Result struct {
	finder   Finder
	elements []*htmldom.Element
}

// First returns the first match. It panics if there is none.
func (r Result) First() *htmldom.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("no element found for %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil.
func (r Result) FirstOrNil() *htmldom.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. It panics when out of range.
func (r Result) At(index int) *htmldom.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("index %d out of range for %s (%d matches)", index, r.describe(), len(r.elements)))
	}
	return r.elements[index]
}

func (r Result) All() []*htmldom.Element { return r.elements }

func (r Result) Count() int { return len(r.elements) }

func (r Result) Exists() bool { return len(r.elements) > 0 }

// Text returns the text content of the first match, or "".
func (r Result) Text() string {
	if len(r.elements) == 0 {
		return ""
	}
	return textContent(r.elements[0])
}

func (r Result) describe() string {
	if r.finder == nil {
		return "<nil finder>"
	}
	return r.finder.Description()
}

type predicateFinder struct {
	match func(*htmldom.Element) bool
	desc  string
}

func (f *predicateFinder) Evaluate(root *htmldom.Element) []*htmldom.Element {
	return collectMatches(root, f.match)
}

func (f *predicateFinder) Description() string { return f.desc }

// ByTag finds elements with the given tag name.
func ByTag(tag string) Finder {
	return &predicateFinder{
		match: func(e *htmldom.Element) bool { return e.Tag() == tag },
		desc:  fmt.Sprintf("ByTag(%q)", tag),
	}
}

// ByID finds elements whose id attribute equals id.
func ByID(id string) Finder {
	return ByAttr("id", id)
}

// ByAttr finds elements whose attribute name equals value.
func ByAttr(name, value string) Finder {
	return &predicateFinder{
		match: func(e *htmldom.Element) bool {
			v, ok := e.Attribute(name)
			return ok && v == value
		},
		desc: fmt.Sprintf("ByAttr(%q, %q)", name, value),
	}
}

// ByText finds elements whose own text children join to exactly text.
// Text inside nested elements does not count.
func ByText(text string) Finder {
	return &predicateFinder{
		match: func(e *htmldom.Element) bool {
			own, ok := ownText(e)
			return ok && own == text
		},
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining finds elements whose own text contains substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		match: func(e *htmldom.Element) bool {
			own, ok := ownText(e)
			return ok && strings.Contains(own, substring)
		},
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// ByPredicate finds elements matching fn.
func ByPredicate(fn func(*htmldom.Element) bool) Finder {
	return &predicateFinder{match: fn, desc: "ByPredicate(...)"}
}

type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *htmldom.Element) []*htmldom.Element {
	var results []*htmldom.Element
	seen := make(map[*htmldom.Element]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, e := range f.matching.Evaluate(ancestor) {
			if !seen[e] {
				seen[e] = true
				results = append(results, e)
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant finds elements matching matching below any element matching of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

func collectMatches(root *htmldom.Element, match func(*htmldom.Element) bool) []*htmldom.Element {
	var results []*htmldom.Element
	walkTree(root, func(e *htmldom.Element) {
		if match(e) {
			results = append(results, e)
		}
	})
	return results
}

func walkTree(root *htmldom.Element, visit func(*htmldom.Element)) {
	for _, child := range root.Children() {
		if e, ok := child.(*htmldom.Element); ok {
			visit(e)
			walkTree(e, visit)
		}
	}
}

// ownText joins e's direct text children. ok is false when there are none.
func ownText(e *htmldom.Element) (string, bool) {
	var sb strings.Builder
	found := false
	for _, child := range e.Children() {
		if t, ok := child.(*htmldom.Text); ok {
			sb.WriteString(t.TextContent())
			found = true
		}
	}
	return sb.String(), found
}

func textContent(e *htmldom.Element) string {
	var sb strings.Builder
	var walk func(*htmldom.Element)
	walk = func(e *htmldom.Element) {
		for _, child := range e.Children() {
			switch c := child.(type) {
			case *htmldom.Text:
				sb.WriteString(c.TextContent())
			case *htmldom.Element:
				walk(c)
			}
		}
	}
	walk(e)
	return sb.String()
}
