// Package font resolves the type faces used by text nodes:
// families declared with a stylesheet URL for the rendered document,
// and the opentype faces used to measure and rasterise text.
package font

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Family is a type family available to the documents.
// URL, when not empty, points to a stylesheet declaring the
// family, imported by the rendered documents (see Loader).
type Family struct {
	Name   string
	URL    string
	Weight string // CSS weight, such as "bold" or "600"
}

// bold reports whether the weight selects a bold face
func (f Family) bold() bool {
	if f.Weight == "bold" || f.Weight == "bolder" {
		return true
	}
	w, err := strconv.Atoi(f.Weight)
	return err == nil && w >= 600
}

// Metrics are the dimensions of a text run, in user units.
type Metrics struct {
	Advance float64 // horizontal extent
	Ascent  float64 // above the baseline, positive
	Descent float64 // below the baseline, positive
}

// builtin fonts, parsed once
var (
	builtinOnce sync.Once
	builtins    map[string]*opentype.Font
	builtinErr  error
)

func loadBuiltins() (map[string]*opentype.Font, error) {
	builtinOnce.Do(func() {
		builtins = make(map[string]*opentype.Font)
		for name, data := range map[string][]byte{
			"regular":   goregular.TTF,
			"bold":      gobold.TTF,
			"italic":    goitalic.TTF,
			"mono":      gomono.TTF,
			"mono-bold": gomonobold.TTF,
		} {
			f, err := opentype.Parse(data)
			if err != nil {
				builtinErr = fmt.Errorf("font: parsing builtin %s: %w", name, err)
				return
			}
			builtins[name] = f
		}
	})
	return builtins, builtinErr
}

type faceKey struct {
	family string
	size   float64
}

// cachedFace serializes the access to an opentype face,
// which is not safe for concurrent use.
type cachedFace struct {
	mu   sync.Mutex
	face xfont.Face
}

// Registry stores the families known to the engine and
// the custom TTF fonts providing their metrics.
// Unknown families fall back to the Go fonts.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]Family
	ttf      map[string]*opentype.Font

	facesMu sync.Mutex
	faces   map[faceKey]*cachedFace
}

// NewRegistry returns an empty registry. Without registered TTF data,
// "monospace" (and names containing "mono") map to Go Mono, "bold"
// and bold weights to Go Bold, "italic" to Go Italic, and everything
// else to Go Regular.
func NewRegistry() *Registry {
	return &Registry{
		families: make(map[string]Family),
		ttf:      make(map[string]*opentype.Font),
		faces:    make(map[faceKey]*cachedFace),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
}

// Register adds or replaces a family. The last registration wins.
func (r *Registry) Register(f Family) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[normalize(f.Name)] = f
	r.dropFaces(normalize(f.Name))
}

// Lookup returns the family registered under name.
func (r *Registry) Lookup(name string) (Family, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[normalize(name)]
	return f, ok
}

// RegisterTTF parses data as a TrueType or OpenType font
// providing the metrics of the given family.
func (r *Registry) RegisterTTF(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("font: parsing %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttf[normalize(name)] = f
	r.dropFaces(normalize(name))
	return nil
}

// dropFaces removes the cached faces of a family, since
// its definition changed.
func (r *Registry) dropFaces(family string) {
	r.facesMu.Lock()
	defer r.facesMu.Unlock()
	for k := range r.faces {
		if k.family == family {
			delete(r.faces, k)
		}
	}
}

// resolve returns the font used for the family
func (r *Registry) resolve(family string) (*opentype.Font, error) {
	name := normalize(family)
	r.mu.RLock()
	custom, hasCustom := r.ttf[name]
	fam, hasFamily := r.families[name]
	r.mu.RUnlock()
	if hasCustom {
		return custom, nil
	}

	fonts, err := loadBuiltins()
	if err != nil {
		return nil, err
	}
	bold := hasFamily && fam.bold()
	switch {
	case name == "monospace" || strings.Contains(name, "mono"):
		if bold {
			return fonts["mono-bold"], nil
		}
		return fonts["mono"], nil
	case name == "bold" || bold:
		return fonts["bold"], nil
	case name == "italic":
		return fonts["italic"], nil
	default:
		return fonts["regular"], nil
	}
}

// Face returns a new face for the family at the given size (in pixels).
// The caller owns the face and should close it.
func (r *Registry) Face(family string, size float64) (xfont.Face, error) {
	f, err := r.resolve(family)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultSize
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // so that one point is one pixel
		Hinting: xfont.HintingNone,
	})
}

// DefaultSize is the font size used when none is given.
const DefaultSize = 16

// Measure returns the metrics of text, set in the family at
// the given size. Faces are cached by family and size.
func (r *Registry) Measure(family string, size float64, text string) (Metrics, error) {
	if size <= 0 {
		size = DefaultSize
	}
	key := faceKey{family: normalize(family), size: size}
	r.facesMu.Lock()
	cf, ok := r.faces[key]
	if !ok {
		cf = new(cachedFace)
		r.faces[key] = cf
	}
	r.facesMu.Unlock()

	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.face == nil {
		face, err := r.Face(family, size)
		if err != nil {
			return Metrics{}, err
		}
		cf.face = face
	}
	m := cf.face.Metrics()
	return Metrics{
		Advance: fixedToFloat(xfont.MeasureString(cf.face, text)),
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
