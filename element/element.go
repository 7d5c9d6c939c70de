// Package element defines the declarative description of an infographic:
// a tree of primitive nodes (directly renderable SVG shapes, text and
// groups) and composite nodes (pure functions expanding to more nodes).
//
// The model is plain data, without rendering side effects. See the render
// package to commit a tree into an SVG document, and the measure package
// to compute the size of a subtree before committing it.
package element

import (
	"errors"
	"fmt"
	"strings"
)

// Tag identifies the kind of a primitive node.
type Tag string

// Supported primitive tags. Icon and Illustration carry a resource
// reference in their "href" attribute; the tag name is the resource scene.
const (
	Group        Tag = "g"
	Rect         Tag = "rect"
	Circle       Tag = "circle"
	Ellipse      Tag = "ellipse"
	Line         Tag = "line"
	Path         Tag = "path"
	Polygon      Tag = "polygon"
	Polyline     Tag = "polyline"
	Text         Tag = "text"
	Image        Tag = "image"
	Icon         Tag = "icon"
	Illustration Tag = "illustration"
)

// Valid reports whether t is one of the supported tags.
func (t Tag) Valid() bool {
	switch t {
	case Group, Rect, Circle, Ellipse, Line, Path, Polygon, Polyline, Text, Image, Icon, Illustration:
		return true
	default:
		return false
	}
}

// IsResource reports whether the node references an external resource,
// resolved asynchronously after commit.
func (t Tag) IsResource() bool { return t == Icon || t == Illustration }

// Scene returns the resource scene of the tag, or an empty string.
func (t Tag) Scene() string {
	if t.IsResource() {
		return string(t)
	}
	return ""
}

// Attrs maps attribute names to literal values (string, numbers, bool)
// or to dynamic attributes (see package attrs).
type Attrs map[string]any

// Props are the input of a Component.
type Props map[string]any

// Component expands props into a tree of nodes. It must be a pure
// function and must eventually produce primitive nodes.
type Component func(props Props) Node

// Node is either a *Primitive or a *Composite.
type Node interface {
	isNode()
}

// Primitive is a directly renderable node.
type Primitive struct {
	Tag      Tag
	Attrs    Attrs
	Children []Node
}

// Composite is expanded by calling Component with Props.
type Composite struct {
	Name      string // used in error messages
	Component Component
	Props     Props
}

func (*Primitive) isNode() {}
func (*Composite) isNode() {}

// ID returns the "id" attribute of the node, if any.
func (p *Primitive) ID() string {
	id, _ := p.Attrs["id"].(string)
	return id
}

// TextContent returns the content of a text node.
func (p *Primitive) TextContent() string {
	switch s := p.Attrs["text"].(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// New returns a primitive node.
func New(tag Tag, attrs Attrs, children ...Node) *Primitive {
	return &Primitive{Tag: tag, Attrs: attrs, Children: children}
}

// G returns a group node.
func G(attrs Attrs, children ...Node) *Primitive { return New(Group, attrs, children...) }

// T returns a text node with the given content.
func T(content string, attrs Attrs) *Primitive {
	out := make(Attrs, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	out["text"] = content
	return New(Text, out)
}

// Compose returns a composite node.
func Compose(name string, c Component, props Props) *Composite {
	return &Composite{Name: name, Component: c, Props: props}
}

// MaxExpansionDepth bounds the nesting of composites returning composites.
// Exceeding it indicates a cycle in the templates.
const MaxExpansionDepth = 64

var (
	// ErrExpansion is returned when a composite does not terminate in
	// primitive nodes. It always indicates a broken template.
	ErrExpansion = errors.New("element: invalid composite expansion")
	// ErrUnknownTag is returned for primitives with an unsupported tag.
	ErrUnknownTag = errors.New("element: unknown tag")
)

// Expand returns the fully expanded, primitive-only copy of n.
// Attribute maps are copied, so the result may be modified freely.
func Expand(n Node) (*Primitive, error) {
	return expand(n, nil)
}

func expand(n Node, stack []string) (*Primitive, error) {
	for {
		if len(stack) > MaxExpansionDepth {
			return nil, fmt.Errorf("%w: nesting deeper than %d at %s", ErrExpansion, MaxExpansionDepth, strings.Join(stack, " > "))
		}
		switch node := n.(type) {
		case *Primitive:
			if node == nil {
				return nil, fmt.Errorf("%w: nil primitive at %s", ErrExpansion, pathString(stack))
			}
			return expandPrimitive(node, stack)
		case *Composite:
			if node == nil || node.Component == nil {
				return nil, fmt.Errorf("%w: composite without component at %s", ErrExpansion, pathString(stack))
			}
			stack = append(stack[:len(stack):len(stack)], node.label())
			n = node.Component(node.Props)
			if n == nil {
				return nil, fmt.Errorf("%w: %s returned no node", ErrExpansion, pathString(stack))
			}
		default:
			return nil, fmt.Errorf("%w: unexpected node %T at %s", ErrExpansion, n, pathString(stack))
		}
	}
}

func expandPrimitive(p *Primitive, stack []string) (*Primitive, error) {
	if !p.Tag.Valid() {
		return nil, fmt.Errorf("%w %q at %s", ErrUnknownTag, p.Tag, pathString(stack))
	}
	out := &Primitive{Tag: p.Tag, Attrs: make(Attrs, len(p.Attrs))}
	for k, v := range p.Attrs {
		out.Attrs[k] = v
	}
	for _, child := range p.Children {
		if child == nil {
			continue
		}
		c, err := expand(child, stack)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, c)
	}
	return out, nil
}

func (c *Composite) label() string {
	if c.Name != "" {
		return c.Name
	}
	return "<anonymous>"
}

func pathString(stack []string) string {
	if len(stack) == 0 {
		return "<root>"
	}
	return strings.Join(stack, " > ")
}

// Walk calls fn for p and every primitive below it, depth first, in
// declared order. It stops descending into a node when fn returns false.
func Walk(p *Primitive, fn func(*Primitive) bool) {
	if p == nil || !fn(p) {
		return
	}
	for _, c := range p.Children {
		if cp, ok := c.(*Primitive); ok {
			Walk(cp, fn)
		}
	}
}
