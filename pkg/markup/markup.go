// Package markup decodes YAML node documents into core nodes.
//
// A document is a mapping with either a tag or a text field:
//
//	tag: ul
//	attrs: {class: list}
//	style: {margin: 0}
//	children:
//	  - tag: li
//	    key: first
//	    children: [one]
//	  - text: two
//
// A plain scalar in a children list is shorthand for a text node.
package markup

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/vdom/pkg/core"
)

var (
	// ErrEmpty is returned for a document with no content.
	ErrEmpty = errors.New("empty document")
	// ErrAliasCycle is returned when an alias refers to a node that contains it.
	ErrAliasCycle = errors.New("alias refers to an enclosing node")
	// ErrTooDeep is returned when elements nest deeper than MaxDepth.
	ErrTooDeep = errors.New("document nests too deeply")
	// ErrTooLarge is returned when alias expansion yields more than MaxNodes nodes.
	ErrTooLarge = errors.New("document expands to too many nodes")
)

// Limits on the decoded tree. Aliases may repeat a subtree many times, so
// the node count is checked after expansion.
const (
	MaxDepth = core.DefaultMaxDepth
	MaxNodes = 1 << 16
)

// PathError reports a decoding failure at a location in the document.
type PathError struct {
	Path string
	Line int
	Err  error
}

func (e *PathError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

var fields = map[string]bool{
	"tag":      true,
	"key":      true,
	"attrs":    true,
	"style":    true,
	"text":     true,
	"children": true,
}

// Decode reads one YAML document from r.
func Decode(r io.Reader) (core.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmpty
	}
	d := &decoder{active: make(map[*yaml.Node]bool)}
	n, err := d.node(doc.Content[0], "$", 0)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrEmpty
	}
	return n, nil
}

// DecodeString decodes a document held in s.
func DecodeString(s string) (core.Node, error) {
	return Decode(strings.NewReader(s))
}

// decoder walks the yaml.Node graph. Aliases share nodes, so active holds
// the mappings on the current path.
type decoder struct {
	active map[*yaml.Node]bool
	count  int
}

func (d *decoder) node(n *yaml.Node, path string, depth int) (core.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return d.text(n, path, n.Value)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fail(n, path, fmt.Errorf("unresolved alias %q", n.Value))
		}
		if d.active[n.Alias] {
			return nil, fail(n, path, fmt.Errorf("%w: *%s", ErrAliasCycle, n.Value))
		}
		return d.node(n.Alias, path, depth)
	case yaml.MappingNode:
	default:
		return nil, fail(n, path, fmt.Errorf("expected a mapping or a string"))
	}

	if depth >= MaxDepth {
		return nil, fail(n, path, ErrTooDeep)
	}
	if d.count++; d.count > MaxNodes {
		return nil, fail(n, path, ErrTooLarge)
	}
	d.active[n] = true
	defer delete(d.active, n)

	var children *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !fields[key] {
			return nil, fail(n.Content[i], path, fmt.Errorf("unknown field %q", key))
		}
		if key == "children" {
			children = n.Content[i+1]
		}
	}
	kids, err := d.list(children, path+".children")
	if err != nil {
		return nil, err
	}

	var raw struct {
		Tag   string         `yaml:"tag"`
		Key   any            `yaml:"key"`
		Attrs map[string]any `yaml:"attrs"`
		Style map[string]any `yaml:"style"`
		Text  *string        `yaml:"text"`
	}
	if err := n.Decode(&raw); err != nil {
		return nil, fail(n, path, err)
	}

	if raw.Text != nil {
		if raw.Tag != "" || raw.Key != nil || len(raw.Attrs) > 0 || len(raw.Style) > 0 || len(kids) > 0 {
			return nil, fail(n, path, fmt.Errorf("text nodes take no other fields"))
		}
		return core.Txt(*raw.Text), nil
	}
	if raw.Tag == "" {
		return nil, fail(n, path, fmt.Errorf("missing tag"))
	}

	el := core.El(raw.Tag)
	switch k := raw.Key.(type) {
	case nil:
	case string, int:
		el.WithKey(k)
	default:
		return nil, fail(n, path+".key", fmt.Errorf("key must be a string or an integer, got %T", raw.Key))
	}
	for _, name := range sortedNames(raw.Attrs) {
		value := raw.Attrs[name]
		if !scalar(value) {
			return nil, fail(n, path+".attrs."+name, fmt.Errorf("value must be a scalar, got %T", value))
		}
		el.Attr(name, value)
	}
	for _, name := range sortedNames(raw.Style) {
		value := raw.Style[name]
		if !scalar(value) {
			return nil, fail(n, path+".style."+name, fmt.Errorf("value must be a scalar, got %T", value))
		}
		el.Style(name, value)
	}
	for i, kid := range kids {
		child, err := d.node(kid, fmt.Sprintf("%s.children[%d]", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		if child != nil {
			el.Append(child)
		}
	}
	return el, nil
}

func (d *decoder) text(n *yaml.Node, path, content string) (core.Node, error) {
	if d.count++; d.count > MaxNodes {
		return nil, fail(n, path, ErrTooLarge)
	}
	return core.Txt(content), nil
}

// list returns the items of a children value, following one alias.
func (d *decoder) list(n *yaml.Node, path string) ([]*yaml.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return nil, nil
	case n.Kind == yaml.SequenceNode:
		return n.Content, nil
	}
	return nil, fail(n, path, fmt.Errorf("children must be a list"))
}

func fail(n *yaml.Node, path string, err error) error {
	return &PathError{Path: path, Line: n.Line, Err: err}
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return true
	}
	return false
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
