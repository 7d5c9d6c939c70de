package dom

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"sync"
)

// Namespace is the SVG namespace written on the root element.
const Namespace = "http://www.w3.org/2000/svg"

// Document owns a root <svg> element and guards it with a mutex, since
// resources patch the tree from other goroutines after commit.
type Document struct {
	mu     sync.Mutex
	root   *Element
	closed bool

	marksMu sync.Mutex
	marks   map[string]struct{}
}

// NewDocument returns a document whose root is an empty <svg> of the given size.
// A zero size omits the width, height and viewBox attributes.
func NewDocument(width, height float64) *Document {
	root := NewElement("svg", Attr{Name: "xmlns", Value: Namespace})
	if width > 0 && height > 0 {
		w, h := formatFloat(width), formatFloat(height)
		root.Set("width", w)
		root.Set("height", h)
		root.Set("viewBox", "0 0 "+w+" "+h)
	}
	return &Document{root: root, marks: make(map[string]struct{})}
}

// NewDetached returns a document for throw-away renders, such as measurement.
func NewDetached() *Document { return NewDocument(0, 0) }

// Update runs fn with exclusive access to the tree.
func (d *Document) Update(fn func(root *Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// View runs fn with exclusive access to the tree. fn must not mutate it.
func (d *Document) View(fn func(root *Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// Patch runs fn with exclusive access to the tree, unless the document
// has been closed. It returns false for closed documents, and the
// result of fn otherwise.
func (d *Document) Patch(fn func(root *Element) bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	return fn(d.root)
}

// Close marks the document as no longer displayed: later patches are
// ignored. The tree is still readable.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// Closed reports whether Close has been called.
func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Mark records key on the document and reports whether it was new.
// It is used for per-document bookkeeping, such as loaded fonts.
func (d *Document) Mark(key string) bool {
	d.marksMu.Lock()
	defer d.marksMu.Unlock()
	if _, ok := d.marks[key]; ok {
		return false
	}
	d.marks[key] = struct{}{}
	return true
}

// Defs returns the <defs> child of root, creating it as first child
// when missing. It must be called with access to the tree.
func Defs(root *Element) *Element {
	for _, el := range root.Elements() {
		if el.Tag == "defs" {
			return el
		}
	}
	defs := NewElement("defs")
	root.Prepend(defs)
	return defs
}

// WriteTo serializes the document as XML.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	var err error
	d.View(func(root *Element) { err = Encode(&buf, root) })
	if err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// String returns the serialized document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.String()
}

// Encode writes e and its descendants as XML.
func Encode(w io.Writer, e *Element) error {
	enc := xml.NewEncoder(w)
	if err := encode(enc, e); err != nil {
		return err
	}
	return enc.Flush()
}

func encode(enc *xml.Encoder, e *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Tag}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range e.Children {
		switch c := c.(type) {
		case CharData:
			if err := enc.EncodeToken(xml.CharData(c)); err != nil {
				return err
			}
		case *Element:
			if err := encode(enc, c); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(start.End())
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
