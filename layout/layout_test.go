package layout

import (
	"math"
	"testing"

	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/measure"
	"github.com/google/go-cmp/cmp"
)

func rect(w, h float64) element.Node {
	return element.New(element.Rect, element.Attrs{"width": w, "height": h})
}

func TestStack(t *testing.T) {
	m := new(measure.Measurer)
	stack := NewStack(m, 5,
		rect(40, 10),
		element.G(nil), // empty, skipped
		element.New(element.Circle, element.Attrs{"cx": 0, "cy": 0, "r": 10}),
	)
	got, err := m.Measure(stack)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(measure.Bounds{X: 0, Y: 0, Width: 40, Height: 35}, got); diff != "" {
		t.Errorf("unexpected bounds (-want +got):\n%s", diff)
	}
}

func TestColumnCount(t *testing.T) {
	for _, test := range []struct {
		width, cell, gap float64
		n, expected      int
	}{
		{100, 30, 5, 10, 3},
		{10, 30, 0, 4, 1},
		{1000, 10, 0, 3, 3},
		{100, 0, 0, 5, 5},
		{100, 30, 0, 0, 1},
		{100, 30, 0, 1, 1},
	} {
		if got := ColumnCount(test.width, test.cell, test.gap, test.n); got != test.expected {
			t.Errorf("ColumnCount(%v, %v, %v, %d) = %d, want %d", test.width, test.cell, test.gap, test.n, got, test.expected)
		}
	}
}

func TestColumns(t *testing.T) {
	m := new(measure.Measurer)
	var items []element.Node
	for range 5 {
		items = append(items, rect(30, 10))
	}
	got, err := m.Measure(NewColumns(m, 100, 5, items...))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(measure.Bounds{X: 0, Y: 0, Width: 100, Height: 25}, got); diff != "" {
		t.Errorf("unexpected bounds (-want +got):\n%s", diff)
	}

	narrow, _ := m.Measure(NewColumns(m, 10, 5, items...))
	if narrow.Width != 30 || narrow.Height != 5*10+4*5 {
		t.Errorf("a too narrow width should give a single column, got %v", narrow)
	}
}

func TestLabeledIcon(t *testing.T) {
	m := new(measure.Measurer)
	n := NewLabeledIcon(m, "mdi:star", "Stars", 48)
	p, err := element.Expand(n)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Children) != 2 {
		t.Fatalf("expected icon and label, got %d children", len(p.Children))
	}
	label := p.Children[1].(*element.Primitive)
	b, err := m.Measure(label)
	if err != nil {
		t.Fatal(err)
	}
	if center := b.X + b.Width/2; math.Abs(center-24) > 1e-9 {
		t.Errorf("label should be centered under the icon, got center %v", center)
	}
	if b.Y < 48 {
		t.Errorf("label should be under the icon, got %v", b)
	}

	bare, _ := element.Expand(NewLabeledIcon(m, "mdi:star", "", 24))
	if len(bare.Children) != 1 {
		t.Errorf("expected only the icon, got %d children", len(bare.Children))
	}
}
