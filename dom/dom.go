// Package dom implements the mutable SVG tree produced by the render
// pipeline and patched in place when resources resolve.
//
// Elements are not safe for concurrent use; a Document serializes access
// to its tree with Update and View.
package dom

import (
	"strings"
)

// Node is an *Element or a CharData.
type Node interface {
	isNode()
}

// CharData is a text child.
type CharData string

func (CharData) isNode() {}

// Attr is a single attribute. Attributes keep their insertion order,
// so that the output is deterministic.
type Attr struct {
	Name, Value string
}

// Element is an SVG element.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node

	parent *Element
}

func (*Element) isNode() {}

// NewElement returns a detached element.
func NewElement(tag string, attrs ...Attr) *Element {
	return &Element{Tag: tag, Attrs: attrs}
}

// Parent returns the parent element, or nil for a detached or root element.
func (e *Element) Parent() *Element { return e.parent }

// Get returns the value of the attribute called name.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the value of the attribute, or an empty string.
func (e *Element) Value(name string) string {
	v, _ := e.Get(name)
	return v
}

// Set adds or replaces an attribute.
func (e *Element) Set(name, value string) {
	for i, a := range e.Attrs {
		if a.Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Del removes an attribute.
func (e *Element) Del(name string) {
	for i, a := range e.Attrs {
		if a.Name == name {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// AttrMap returns a copy of the attributes as a map.
func (e *Element) AttrMap() map[string]any {
	out := make(map[string]any, len(e.Attrs))
	for _, a := range e.Attrs {
		out[a.Name] = a.Value
	}
	return out
}

// Append adds children at the end, in order. Elements already attached
// elsewhere are moved.
func (e *Element) Append(children ...Node) {
	for _, c := range children {
		if el, ok := c.(*Element); ok {
			el.Detach()
			el.parent = e
		}
		e.Children = append(e.Children, c)
	}
}

// Prepend inserts child as the first child.
func (e *Element) Prepend(child Node) {
	if el, ok := child.(*Element); ok {
		el.Detach()
		el.parent = e
	}
	e.Children = append([]Node{child}, e.Children...)
}

// Detach removes e from its parent. It is a no-op for detached elements.
func (e *Element) Detach() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == Node(e) {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Clear removes all children.
func (e *Element) Clear() {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			el.parent = nil
		}
	}
	e.Children = nil
}

// Elements returns the element children.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Text returns the concatenated character data of e and its descendants.
func (e *Element) Text() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	for _, c := range e.Children {
		switch c := c.(type) {
		case CharData:
			b.WriteString(string(c))
		case *Element:
			c.writeText(b)
		}
	}
}

// SetText replaces the children of e by a single text node.
func (e *Element) SetText(s string) {
	e.Clear()
	e.Children = []Node{CharData(s)}
}

// Walk calls fn on e and its descendants, depth first.
// Returning false skips the descendants of the current element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			el.Walk(fn)
		}
	}
}

// Find returns the first element (depth first) matching pred.
func (e *Element) Find(pred func(*Element) bool) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if pred(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

// FindAll returns every element matching pred, in document order.
func (e *Element) FindAll(pred func(*Element) bool) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if pred(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// ByID returns the element with the given id attribute.
func (e *Element) ByID(id string) *Element {
	return e.Find(func(el *Element) bool {
		v, ok := el.Get("id")
		return ok && v == id
	})
}

// Clone returns a deep, detached copy of e.
func (e *Element) Clone() *Element {
	out := &Element{Tag: e.Tag, Attrs: append([]Attr(nil), e.Attrs...)}
	for _, c := range e.Children {
		switch c := c.(type) {
		case *Element:
			cl := c.Clone()
			cl.parent = out
			out.Children = append(out.Children, cl)
		default:
			out.Children = append(out.Children, c)
		}
	}
	return out
}
