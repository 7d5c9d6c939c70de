// Implements a raster backend to render SVG documents,
// by wrapping rasterx for the shapes and x/image/font for the text.
package svgraster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/font"
	"github.com/benoitkugler/infosvg/svgicon"
	"github.com/benoitkugler/infosvg/svgpath"
	"github.com/srwiley/rasterx"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var _ svgicon.Driver = (*Renderer)(nil) // assert interface conformance

// ErrEmptyDocument is returned for documents without size.
var ErrEmptyDocument = errors.New("svgraster: document has no size")

// Renderer is a svgicon.Driver painting on an image.
type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{dasher: rasterx.NewDasher(width, height, scanner), filler: rasterx.NewFiller(width, height, scanner)}
}

// SetupDrawers implements svgicon.Driver.
func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (svgicon.Filler, svgicon.Stroker) {
	var (
		f svgicon.Filler
		s svgicon.Stroker
	)
	if willFill {
		f = filler{rd.filler}
	}
	if willStroke {
		s = stroker{rd.dasher}
	}
	return f, s
}

type filler struct{ *rasterx.Filler }

func (f filler) SetColor(c color.Color, opacity float64) {
	f.Filler.SetColor(rasterx.ApplyOpacity(c, opacity))
}

func (f filler) SetGradient(grad svgpath.Gradient, opacity float64) {
	setGradient(f.Filler.Scanner, grad, opacity)
}

type stroker struct{ *rasterx.Dasher }

func (s stroker) SetColor(c color.Color, opacity float64) {
	s.Dasher.SetColor(rasterx.ApplyOpacity(c, opacity))
}

func (s stroker) SetGradient(grad svgpath.Gradient, opacity float64) {
	setGradient(s.Dasher.Scanner, grad, opacity)
}

// setGradient resolves the bounding box of the outline
// accumulated in scanner, then sets the gradient color function.
func setGradient(scanner rasterx.Scanner, grad svgpath.Gradient, opacity float64) {
	if grad.Units == svgpath.ObjectBoundingBox {
		fRect := scanner.GetPathExtent()
		mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
		mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
		grad.Bounds.X, grad.Bounds.Y = mnx, mny
		grad.Bounds.W, grad.Bounds.H = mxx-mnx, mxy-mny
	}
	rg := toRasterxGradient(grad)
	scanner.SetColor(rg.GetColorFunction(opacity))
}

func toRasterxGradient(grad svgpath.Gradient) rasterx.Gradient {
	var points [5]float64
	switch dir := grad.Direction.(type) {
	case svgpath.Linear:
		copy(points[:], dir[:])
	case svgpath.Radial:
		copy(points[:], dir[:5]) // fr is not supported by rasterx
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i, stop := range grad.Stops {
		stops[i] = rasterx.GradStop(stop)
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Bounds:   grad.Bounds,
		Matrix:   rasterx.Matrix2D(grad.Matrix),
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: grad.IsRadial(),
	}
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgicon.Round:     rasterx.Round,
		svgicon.Bevel:     rasterx.Bevel,
		svgicon.Miter:     rasterx.Miter,
		svgicon.MiterClip: rasterx.MiterClip,
		svgicon.Arc:       rasterx.Arc,
		svgicon.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgicon.ButtCap:      rasterx.ButtCap,
		svgicon.SquareCap:    rasterx.SquareCap,
		svgicon.RoundCap:     rasterx.RoundCap,
		svgicon.CubicCap:     rasterx.CubicCap,
		svgicon.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgicon.FlatGap:      rasterx.FlatGap,
		svgicon.RoundGap:     rasterx.RoundGap,
		svgicon.CubicGap:     rasterx.CubicGap,
		svgicon.QuadraticGap: rasterx.QuadraticGap,
	}
)

func (s stroker) SetStrokeOptions(options svgicon.StrokeOptions) {
	s.Dasher.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

// Rasterize paints doc on a new image, sized by the width and height
// of the document (or its view box).
// Text is set with the faces of fonts, which may be nil to use the
// builtin fonts only.
func Rasterize(doc *dom.Document, fonts *font.Registry) (*image.RGBA, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	icon, err := svgicon.ReadIconStream(&buf, svgicon.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	return RasterizeIcon(icon, fonts)
}

// RasterizeIcon paints a parsed SVG on a new image.
func RasterizeIcon(icon *svgicon.SvgIcon, fonts *font.Registry) (*image.RGBA, error) {
	w, h := icon.Width, icon.Height
	if w <= 0 || h <= 0 {
		w, h = icon.ViewBox.W, icon.ViewBox.H
	}
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyDocument
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox = svgicon.Bounds{W: w, H: h}
	}
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	img := image.NewRGBA(image.Rect(0, 0, iw, ih))

	icon.SetTarget(0, 0, w, h)
	scanner := rasterx.NewScannerGV(iw, ih, img, img.Bounds())
	icon.Draw(NewRenderer(iw, ih, scanner), 1)

	if fonts == nil {
		fonts = font.NewRegistry()
	}
	for _, text := range icon.Texts {
		if err := drawText(img, icon, text, fonts); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// drawText sets text with its fill color. Rotations and skews
// are ignored: only the position and the scale are applied.
func drawText(dst draw.Image, icon *svgicon.SvgIcon, text svgicon.SvgText, fonts *font.Registry) error {
	fill := text.Style.FillerColor
	if fill == nil {
		return nil
	}
	t := icon.Transform.Mult(text.Style.Transform())
	size := text.Style.FontSize * t.Scaling()
	if size <= 0 {
		return nil
	}
	face, err := fonts.Face(text.Style.FontFamily, size)
	if err != nil {
		return err
	}
	defer face.Close()

	x, y := t.Transform(text.X, text.Y)
	width := float64(xfont.MeasureString(face, text.Content)) / 64
	switch text.Style.TextAnchor {
	case "middle":
		x -= width / 2
	case "end":
		x -= width
	}
	d := xfont.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(rasterx.ApplyOpacity(fill, text.Style.FillOpacity)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text.Content)
	return nil
}
