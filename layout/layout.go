// Package layout provides composites positioning their children
// according to their measured size.
//
// Each composite receives a *measure.Measurer in the "measurer" prop.
// Measuring is a full detached commit, so composites measure each
// child once.
package layout

import (
	"fmt"
	"math"

	"github.com/benoitkugler/infosvg/attrs"
	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/measure"
)

// Prop names shared by the composites.
const (
	PropMeasurer = "measurer"
	PropChildren = "children"
	PropGap      = "gap"
	PropWidth    = "width"
)

func measurer(props element.Props) *measure.Measurer {
	if m, ok := props[PropMeasurer].(*measure.Measurer); ok && m != nil {
		return m
	}
	return new(measure.Measurer)
}

func number(props element.Props, key string, def float64) float64 {
	if f, ok := attrs.Float(props[key]); ok {
		return f
	}
	return def
}

func children(props element.Props) []element.Node {
	nodes, _ := props[PropChildren].([]element.Node)
	return nodes
}

func translate(x, y float64) string {
	return fmt.Sprintf("translate(%s, %s)", attrs.Format(x), attrs.Format(y))
}

// Stack places its children from top to bottom, separated by "gap".
func Stack(props element.Props) element.Node {
	m := measurer(props)
	gap := number(props, PropGap, 0)
	out := element.G(nil)
	y := 0.
	for _, child := range children(props) {
		b, err := m.Measure(child)
		if err != nil || b == (measure.Bounds{}) {
			continue // broken or empty children take no room
		}
		if len(out.Children) > 0 {
			y += gap
		}
		out.Children = append(out.Children, element.G(element.Attrs{"transform": translate(-b.X, y-b.Y)}, child))
		y += b.Height
	}
	return out
}

// NewStack returns a Stack composite.
func NewStack(m *measure.Measurer, gap float64, children ...element.Node) *element.Composite {
	return element.Compose("Stack", Stack, element.Props{PropMeasurer: m, PropGap: gap, PropChildren: children})
}

// Columns lays its children out in a grid, with as many columns as
// fit in "width". All cells have the width of the widest child.
func Columns(props element.Props) element.Node {
	m := measurer(props)
	gap := number(props, PropGap, 0)
	width := number(props, PropWidth, 0)
	items := children(props)

	bounds := make([]measure.Bounds, len(items))
	cell := 0.
	for i, item := range items {
		bounds[i], _ = m.Measure(item)
		cell = math.Max(cell, bounds[i].Width)
	}
	cols := ColumnCount(width, cell, gap, len(items))

	out := element.G(nil)
	y, rowHeight := 0., 0.
	for i, item := range items {
		col := i % cols
		if col == 0 && i > 0 {
			y += rowHeight + gap
			rowHeight = 0
		}
		b := bounds[i]
		x := float64(col) * (cell + gap)
		out.Children = append(out.Children, element.G(element.Attrs{"transform": translate(x-b.X, y-b.Y)}, item))
		rowHeight = math.Max(rowHeight, b.Height)
	}
	return out
}

// ColumnCount returns the number of cells of width cell fitting in
// width, between 1 and n.
func ColumnCount(width, cell, gap float64, n int) int {
	if n <= 1 || cell <= 0 {
		return max(n, 1)
	}
	cols := int(math.Floor((width + gap) / (cell + gap)))
	return min(max(cols, 1), n)
}

// NewColumns returns a Columns composite.
func NewColumns(m *measure.Measurer, width, gap float64, items ...element.Node) *element.Composite {
	return element.Compose("Columns", Columns, element.Props{PropMeasurer: m, PropWidth: width, PropGap: gap, PropChildren: items})
}

// LabeledIcon draws the icon "href" in a square of side "size", with
// the text "label" centered under it. The "id" prop, if any, is given
// to the icon, so that it is colored by the palette.
func LabeledIcon(props element.Props) element.Node {
	m := measurer(props)
	size := number(props, "size", 48)
	gap := number(props, PropGap, 8)
	label, _ := props["label"].(string)

	icon := element.Attrs{"href": props["href"], "width": size, "height": size}
	if id, ok := props["id"].(string); ok {
		icon["id"] = id
	}
	out := element.G(nil, element.New(element.Icon, icon))
	if label == "" {
		return out
	}
	text := element.T(label, nil)
	b, err := m.Measure(text)
	if err != nil {
		return out
	}
	text.Attrs["x"] = (size-b.Width)/2 - b.X
	text.Attrs["y"] = size + gap - b.Y
	out.Children = append(out.Children, text)
	return out
}

// NewLabeledIcon returns a LabeledIcon composite.
func NewLabeledIcon(m *measure.Measurer, href any, label string, size float64) *element.Composite {
	return element.Compose("LabeledIcon", LabeledIcon, element.Props{PropMeasurer: m, "href": href, "label": label, "size": size})
}
