// Package palette maps nodes to colors, from a fixed list of colors,
// a generator function, or a palette registered by name.
package palette

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Palette is one of Colors, Generator or Named.
type Palette interface {
	isPalette()
}

// Colors cycles through a finite list of colors.
type Colors []string

// Generator computes a color from the relative position of a node:
// ratio is index/total (0 when total is unknown).
type Generator func(ratio float64, index, total int) string

// Named refers to a palette of a Registry.
type Named string

func (Colors) isPalette()    {}
func (Generator) isPalette() {}
func (Named) isPalette()     {}

// Registry stores named palettes. It is populated at start-up and read
// afterwards; registering an existing name replaces the previous palette.
type Registry struct {
	mu       sync.RWMutex
	palettes map[string]Palette
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{palettes: make(map[string]Palette)}
}

// Register adds or replaces the palette called name.
func (r *Registry) Register(name string, p Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palettes[name] = p
}

// Lookup returns the palette called name.
func (r *Registry) Lookup(name string) (Palette, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.palettes[name]
	return p, ok
}

// Names returns the registered names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.palettes))
	for name := range r.palettes {
		out = append(out, name)
	}
	return out
}

// Color returns the color of the node identified by nodeID.
// The index used is the first position of the hierarchical id (see Indexes).
// total is the number of sibling items, used by generators.
// No color is found for empty lists, unknown names and nil palettes.
func (r *Registry) Color(p Palette, nodeID string, total int) (string, bool) {
	index := 0
	if idx := Indexes(nodeID); len(idx) > 0 {
		index = idx[0]
	}
	return r.colorAt(p, index, total, 0)
}

// maxAliasDepth stops named palettes referring to each other in a loop.
const maxAliasDepth = 8

func (r *Registry) colorAt(p Palette, index, total, depth int) (string, bool) {
	switch p := p.(type) {
	case Colors:
		if len(p) == 0 {
			return "", false
		}
		return p[index%len(p)], true
	case Generator:
		if p == nil {
			return "", false
		}
		ratio := 0.
		if total > 0 {
			ratio = float64(index) / float64(total)
		}
		c := p(ratio, index, total)
		return c, c != ""
	case Named:
		if depth >= maxAliasDepth {
			return "", false
		}
		target, ok := r.Lookup(string(p))
		if !ok {
			return "", false
		}
		return r.colorAt(target, index, total, depth+1)
	default:
		return "", false
	}
}

// Indexes parses the hierarchical position encoded in a node id:
// "item-2-1" gives [2 1], "3" gives [3]. Segments which are not
// non-negative integers are ignored.
func Indexes(id string) []int {
	var out []int
	for _, seg := range strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r) }) {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// FormatIndexes is the inverse of Indexes, used for data attributes.
func FormatIndexes(idx []int) string {
	chunks := make([]string, len(idx))
	for i, n := range idx {
		chunks[i] = strconv.Itoa(n)
	}
	return strings.Join(chunks, ",")
}
