// Package measure computes the bounding box of element trees before
// they are committed, so that layout components may adapt to the size
// of their content.
//
// A measurement commits the tree into a detached document, exactly as
// the render package would, and computes the geometry of the result.
// Each call is a full commit: callers should measure sparingly.
package measure

import (
	"context"
	"math"
	"strings"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/font"
	"github.com/benoitkugler/infosvg/render"
	"github.com/benoitkugler/infosvg/svgpath"
)

// Bounds is the bounding box of a tree, in user units.
// Width and Height are never negative.
type Bounds struct {
	X, Y, Width, Height float64
}

// Theme holds the typography used for text without explicit font.
type Theme struct {
	FontFamily string  // default to sans-serif
	FontSize   float64 // default to font.DefaultSize
}

// Measurer computes bounds. Its zero value is usable, and uses the
// builtin fonts only.
type Measurer struct {
	Fonts *font.Registry
	Theme Theme
}

var defaultFonts = font.NewRegistry()

// Measure returns the bounds of n. Nodes without content, such as
// empty groups and empty texts, measure to zero bounds.
// Only expansion errors are returned.
func (m *Measurer) Measure(n element.Node) (Bounds, error) {
	doc := dom.NewDetached()
	var (
		committed *render.Committed
		err       error
	)
	doc.Update(func(root *dom.Element) {
		committed, err = render.Commit(context.Background(), n, root, render.Options{})
	})
	if err != nil {
		return Bounds{}, err
	}

	r, ok := m.bounds(committed.Root, m.rootStyle())
	if !ok {
		return Bounds{}, nil
	}
	return Bounds{X: r.MinX, Y: r.MinY, Width: math.Max(r.Width(), 0), Height: math.Max(r.Height(), 0)}, nil
}

// textStyle is inherited from the ancestors
type textStyle struct {
	family string
	size   float64
	anchor string
}

func (m *Measurer) rootStyle() textStyle {
	st := textStyle{family: m.Theme.FontFamily, size: m.Theme.FontSize, anchor: "start"}
	if st.family == "" {
		st.family = "sans-serif"
	}
	if st.size <= 0 {
		st.size = font.DefaultSize
	}
	return st
}

func (m *Measurer) fonts() *font.Registry {
	if m.Fonts != nil {
		return m.Fonts
	}
	return defaultFonts
}

// bounds returns the box of el in the coordinates of its parent
func (m *Measurer) bounds(el *dom.Element, st textStyle) (svgpath.Rect, bool) {
	st = inherit(el, st)
	var (
		r  svgpath.Rect
		ok bool
	)
	switch el.Tag {
	case "g":
		for _, child := range el.Elements() {
			cr, cok := m.bounds(child, st)
			if !cok {
				continue
			}
			if ok {
				r = r.Union(cr)
			} else {
				r, ok = cr, true
			}
		}
	case "text":
		r, ok = m.text(el, st)
	default:
		r, ok = shape(el)
	}
	if !ok {
		return r, false
	}
	if tr, has := el.Get("transform"); has {
		if mat, err := svgpath.ParseTransform(tr); err == nil {
			r = r.Transform(mat)
		}
	}
	return r, true
}

func inherit(el *dom.Element, st textStyle) textStyle {
	if f := el.Value("font-family"); f != "" {
		first, _, _ := strings.Cut(f, ",")
		st.family = strings.Trim(strings.TrimSpace(first), `"'`)
	}
	if s, ok := length(el, "font-size"); ok && s > 0 {
		st.size = s
	}
	if a := el.Value("text-anchor"); a != "" {
		st.anchor = a
	}
	return st
}

// text measures each line of the content: x, y is the baseline
// of the first line
func (m *Measurer) text(el *dom.Element, st textStyle) (svgpath.Rect, bool) {
	content := el.Text()
	if strings.TrimSpace(content) == "" {
		return svgpath.Rect{}, false
	}
	x, _ := length(el, "x")
	y, _ := length(el, "y")
	lines := strings.Split(content, "\n")
	var width, ascent, lineHeight float64
	for _, line := range lines {
		metrics, err := m.fonts().Measure(st.family, st.size, line)
		if err != nil {
			return svgpath.Rect{}, false
		}
		width = math.Max(width, metrics.Advance)
		ascent, lineHeight = metrics.Ascent, metrics.Ascent+metrics.Descent
	}
	switch st.anchor {
	case "middle":
		x -= width / 2
	case "end":
		x -= width
	}
	top := y - ascent
	return svgpath.Rect{MinX: x, MinY: top, MaxX: x + width, MaxY: top + float64(len(lines))*lineHeight}, true
}

// shape returns the geometric box of a basic shape, ignoring strokes
func shape(el *dom.Element) (svgpath.Rect, bool) {
	var p svgpath.Path
	switch el.Tag {
	case "rect", "image", "use":
		x, _ := length(el, "x")
		y, _ := length(el, "y")
		w, _ := length(el, "width")
		h, _ := length(el, "height")
		if w <= 0 || h <= 0 {
			return svgpath.Rect{}, false
		}
		return svgpath.Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}, true
	case "circle":
		cx, _ := length(el, "cx")
		cy, _ := length(el, "cy")
		r, _ := length(el, "r")
		if r <= 0 {
			return svgpath.Rect{}, false
		}
		return svgpath.Rect{MinX: cx - r, MinY: cy - r, MaxX: cx + r, MaxY: cy + r}, true
	case "ellipse":
		cx, _ := length(el, "cx")
		cy, _ := length(el, "cy")
		rx, _ := length(el, "rx")
		ry, _ := length(el, "ry")
		if rx <= 0 || ry <= 0 {
			return svgpath.Rect{}, false
		}
		return svgpath.Rect{MinX: cx - rx, MinY: cy - ry, MaxX: cx + rx, MaxY: cy + ry}, true
	case "line":
		x1, _ := length(el, "x1")
		y1, _ := length(el, "y1")
		x2, _ := length(el, "x2")
		y2, _ := length(el, "y2")
		return svgpath.Rect{
			MinX: math.Min(x1, x2), MinY: math.Min(y1, y2),
			MaxX: math.Max(x1, x2), MaxY: math.Max(y1, y2),
		}, true
	case "polygon", "polyline":
		coords, err := svgpath.ParseNumbers(el.Value("points"))
		if err != nil || len(coords) < 2 {
			return svgpath.Rect{}, false
		}
		p.AddPolyline(coords, el.Tag == "polygon")
	case "path":
		var err error
		if p, err = svgpath.Parse(el.Value("d")); err != nil {
			return svgpath.Rect{}, false
		}
	default:
		return svgpath.Rect{}, false
	}
	return p.Bounds()
}

func length(el *dom.Element, name string) (float64, bool) {
	v, ok := el.Get(name)
	if !ok {
		return 0, false
	}
	f, err := svgpath.ParseLength(v)
	return f, err == nil
}
