package palette

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColorsModulo(t *testing.T) {
	r := NewRegistry()
	c, ok := r.Color(Colors{"#a", "#b", "#c"}, "item-5", 0)
	if !ok || c != "#c" {
		t.Fatalf("expected #c, got %q %v", c, ok)
	}
	if _, ok := r.Color(Colors{}, "item-1", 0); ok {
		t.Fatal("empty palette has no color")
	}
}

func TestGenerator(t *testing.T) {
	r := NewRegistry()
	var gotRatio float64
	var gotIndex, gotTotal int
	gen := Generator(func(ratio float64, index, total int) string {
		gotRatio, gotIndex, gotTotal = ratio, index, total
		return "x"
	})
	if c, ok := r.Color(gen, "item-1-3", 4); !ok || c != "x" {
		t.Fatalf("unexpected %q %v", c, ok)
	}
	if gotRatio != 0.25 || gotIndex != 1 || gotTotal != 4 {
		t.Fatalf("unexpected arguments %v %d %d", gotRatio, gotIndex, gotTotal)
	}

	r.Color(gen, "item-2", 0)
	if gotRatio != 0 {
		t.Fatalf("ratio must be 0 without total, got %v", gotRatio)
	}
}

func TestNamed(t *testing.T) {
	r := NewRegistry()
	r.Register("warm", Colors{"red", "orange"})
	if c, ok := r.Color(Named("warm"), "3", 0); !ok || c != "orange" {
		t.Fatalf("unexpected %q %v", c, ok)
	}
	if _, ok := r.Color(Named("cold"), "3", 0); ok {
		t.Fatal("unknown palette yields no color")
	}

	// last registration wins
	r.Register("warm", Colors{"yellow"})
	if c, _ := r.Color(Named("warm"), "3", 0); c != "yellow" {
		t.Fatalf("expected override, got %q", c)
	}

	r.Register("a", Named("b"))
	r.Register("b", Named("a"))
	if _, ok := r.Color(Named("a"), "0", 0); ok {
		t.Fatal("alias loops yield no color")
	}
}

func TestIndexes(t *testing.T) {
	for id, want := range map[string][]int{
		"item-2-1": {2, 1},
		"5":        {5},
		"title":    nil,
		"":         nil,
	} {
		if diff := cmp.Diff(want, Indexes(id)); diff != "" {
			t.Errorf("Indexes(%q) (-want +got):\n%s", id, diff)
		}
	}
	if s := FormatIndexes([]int{2, 1}); s != "2,1" {
		t.Errorf("unexpected %q", s)
	}
}
