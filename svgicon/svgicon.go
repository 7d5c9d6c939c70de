// Provides parsing of SVG content into an abstract representation
// (styled paths and text runs), which can then be consumed by
// painting drivers or inspected to validate untrusted markup.
// See svgraster for a raster driver.
package svgicon

import (
	"context"
	"encoding/xml"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/benoitkugler/infosvg/ctxlog"
	"github.com/benoitkugler/infosvg/svgpath"
	"golang.org/x/net/html/charset"
)

// ErrorMode determines how unsupported elements are handled
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unsupported elements silently
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode skips unsupported elements, logging a warning
	WarnErrorMode
	// StrictErrorMode aborts the parsing on the first unsupported element
	StrictErrorMode
)

var errNoRoot = errors.New("svgicon: invalid svg xml icon")

// PathStyle holds the state of the SVG style
type PathStyle struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64
	UseNonZeroWinding        bool

	Join                    JoinOptions
	Dash                    DashOptions
	FillerColor, LinerColor color.Color // nil disables filling or stroking

	// FillerGradient and LinerGradient are set when the paint is a
	// gradient; the color is then its first stop.
	FillerGradient, LinerGradient *svgpath.Gradient

	FontFamily string
	FontSize   float64
	TextAnchor string // start, middle or end

	current   color.Color // value of the color property, for currentColor
	transform svgpath.Matrix2D
}

// Transform returns the user space transform of the styled element.
func (s PathStyle) Transform() svgpath.Matrix2D { return s.transform }

// SvgPath binds a style to a path
type SvgPath struct {
	Path  svgpath.Path
	Style PathStyle
}

// SvgText is a text run, positioned by the baseline
// of its first character.
type SvgText struct {
	X, Y    float64
	Content string
	Style   PathStyle
}

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// SvgIcon holds data from parsed SVGs.
// See the `Draw` methods to use it.
type SvgIcon struct {
	ViewBox      Bounds
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	SVGPaths     []SvgPath
	Texts        []SvgText
	Transform    svgpath.Matrix2D

	Width, Height float64 // top level width and height attributes, 0 if missing

	defs map[string][]xml.Token // recorded definitions, by id
}

// ReadIconStream reads the Icon from the given io.Reader.
// This only supports a sub-set of SVG, but
// is enough to draw many icons. errMode determines if the icon ignores, errors out, or logs a warning
// (through slog.Default) if it does not handle an element found in the icon file.
func ReadIconStream(stream io.Reader, errMode ErrorMode) (*SvgIcon, error) {
	ctx := ctxlog.WithLogger(context.Background(), slog.Default())
	return ReadIconContext(ctx, stream, errMode)
}

// ReadIconContext is like ReadIconStream, but warnings are logged
// through the logger carried by ctx.
func ReadIconContext(ctx context.Context, stream io.Reader, errMode ErrorMode) (*SvgIcon, error) {
	icon := &SvgIcon{defs: make(map[string][]xml.Token), Transform: svgpath.Identity}
	cursor := &iconCursor{
		styleStack: []PathStyle{DefaultStyle},
		icon:       icon,
		errorMode:  errMode,
		logger:     ctxlog.FromContext(ctx),
	}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return icon, err
		}
		if err = cursor.handleToken(t); err != nil {
			return icon, err
		}
	}
	if !cursor.seenRoot {
		return nil, errNoRoot
	}
	return icon, nil
}

// ReadIcon reads the Icon from the named file
// This only supports a sub-set of SVG, but
// is enough to draw many icons. errMode determines if the icon ignores, errors out, or logs a warning
// if it does not handle an element found in the icon file.
func ReadIcon(iconFile string, errMode ErrorMode) (*SvgIcon, error) {
	fin, errf := os.Open(iconFile)
	if errf != nil {
		return nil, errf
	}
	defer fin.Close()
	return ReadIconStream(fin, errMode)
}

// Definition returns true if an element with the given id
// has been recorded in a <defs> section or as a <symbol>.
func (s *SvgIcon) Definition(id string) bool {
	_, ok := s.defs[id]
	return ok
}

// PathBounds returns the union of the path extents,
// in the coordinates given by the Transform field.
func (s *SvgIcon) PathBounds() (svgpath.Rect, bool) {
	var (
		out  svgpath.Rect
		seen bool
	)
	for _, p := range s.SVGPaths {
		m := s.Transform.Mult(p.Style.transform)
		box, ok := p.Path.Transform(m).Bounds()
		if !ok {
			continue
		}
		if seen {
			out = out.Union(box)
		} else {
			out, seen = box, true
		}
	}
	return out, seen
}
