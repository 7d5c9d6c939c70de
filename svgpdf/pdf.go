// Implements a PDF backend to render SVG documents,
// by wrapping github.com/jung-kurt/gofpdf.
//
// Text is set with the PDF core fonts (Helvetica, or Courier for
// monospace families), which only cover the Windows-1252 charset.
package svgpdf

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"strings"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/svgicon"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

// assert interface conformance
var (
	_ svgicon.Driver  = Renderer{}
	_ svgicon.Filler  = (*filler)(nil)
	_ svgicon.Stroker = stroker{}
)

// ErrEmptyDocument is returned for documents without size.
var ErrEmptyDocument = errors.New("svgpdf: document has no size")

// Renderer draws on the current page of a PDF.
type Renderer struct {
	pdf *gofpdf.Fpdf
}

// NewRenderer return a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) Renderer {
	return Renderer{pdf: pdf}
}

// SetupDrawers implements svgicon.Driver.
func (r Renderer) SetupDrawers(willFill, willStroke bool) (svgicon.Filler, svgicon.Stroker) {
	var (
		f svgicon.Filler
		s svgicon.Stroker
	)
	if willFill {
		f = &filler{pather: pather{r.pdf}, useNonZeroWinding: true}
	}
	if willStroke {
		s = stroker{pather{r.pdf}}
	}
	return f, s
}

// implements the common path commands,
// shared by the filler and the stroker
type pather struct {
	pdf *gofpdf.Fpdf
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// Clear is a no-op: the path is consumed by Draw.
func (p pather) Clear() {}

func (p pather) Start(a fixed.Point26_6) { p.pdf.MoveTo(fixedTof(a)) }

func (p pather) Line(b fixed.Point26_6) { p.pdf.LineTo(fixedTof(b)) }

func (p pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveTo(cx, cy, x, y)
}

func (p pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

// rgb returns the 8 bits components of c, and its alpha in [0, 1]
func rgb(c color.Color) (r, g, b int, alpha float64) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return int(nc.R), int(nc.G), int(nc.B), float64(nc.A) / 255
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
}

func (f *filler) SetColor(c color.Color, opacity float64) {
	r, g, b, a := rgb(c)
	f.pdf.SetFillColor(r, g, b)
	f.pdf.SetAlpha(opacity*a, "Normal")
}

func (f *filler) Draw() {
	styleStr := "F*"
	if f.useNonZeroWinding {
		styleStr = "F"
	}
	f.pdf.DrawPath(styleStr)
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

// implements the stroking operation
type stroker struct {
	pather
}

func (s stroker) SetColor(c color.Color, opacity float64) {
	r, g, b, a := rgb(c)
	s.pdf.SetDrawColor(r, g, b)
	s.pdf.SetAlpha(opacity*a, "Normal")
}

func (s stroker) Draw() { s.pdf.DrawPath("D") }

func (s stroker) SetStrokeOptions(options svgicon.StrokeOptions) {
	s.pdf.SetLineWidth(float64(options.LineWidth) / 64)
	switch options.Join.TrailLineCap {
	case svgicon.RoundCap, svgicon.CubicCap, svgicon.QuadraticCap:
		s.pdf.SetLineCapStyle("round")
	case svgicon.SquareCap:
		s.pdf.SetLineCapStyle("square")
	default:
		s.pdf.SetLineCapStyle("butt")
	}
	switch options.Join.LineJoin {
	case svgicon.Round, svgicon.Arc, svgicon.ArcClip:
		s.pdf.SetLineJoinStyle("round")
	case svgicon.Bevel:
		s.pdf.SetLineJoinStyle("bevel")
	default:
		s.pdf.SetLineJoinStyle("miter")
	}
	s.pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
}

// Write renders doc as a single page PDF, sized by the width and
// height of the document (or its view box), in points.
func Write(w io.Writer, doc *dom.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	icon, err := svgicon.ReadIconStream(&buf, svgicon.IgnoreErrorMode)
	if err != nil {
		return err
	}
	return WriteIcon(w, icon)
}

// WriteIcon renders a parsed SVG as a single page PDF.
func WriteIcon(w io.Writer, icon *svgicon.SvgIcon) error {
	width, height := icon.Width, icon.Height
	if width <= 0 || height <= 0 {
		width, height = icon.ViewBox.W, icon.ViewBox.H
	}
	if width <= 0 || height <= 0 {
		return ErrEmptyDocument
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox = svgicon.Bounds{W: width, H: height}
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	icon.SetTarget(0, 0, width, height)
	icon.Draw(NewRenderer(pdf), 1)
	for _, text := range icon.Texts {
		drawText(pdf, icon, text)
	}
	return pdf.Output(w)
}

// coreFont maps a font family to a PDF core font
func coreFont(family string) string {
	switch f := strings.ToLower(family); {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"):
		return "Courier"
	case strings.Contains(f, "serif") && !strings.Contains(f, "sans"), strings.Contains(f, "times"):
		return "Times"
	default:
		return "Helvetica"
	}
}

// drawText sets text with its fill color. Rotations and skews
// are ignored: only the position and the scale are applied.
func drawText(pdf *gofpdf.Fpdf, icon *svgicon.SvgIcon, text svgicon.SvgText) {
	if text.Style.FillerColor == nil {
		return
	}
	t := icon.Transform.Mult(text.Style.Transform())
	size := text.Style.FontSize * t.Scaling()
	if size <= 0 {
		return
	}
	pdf.SetFont(coreFont(text.Style.FontFamily), "", 0)
	pdf.SetFontUnitSize(size)
	r, g, b, a := rgb(text.Style.FillerColor)
	pdf.SetTextColor(r, g, b)
	pdf.SetAlpha(text.Style.FillOpacity*a, "Normal")

	x, y := t.Transform(text.X, text.Y)
	switch text.Style.TextAnchor {
	case "middle":
		x -= pdf.GetStringWidth(text.Content) / 2
	case "end":
		x -= pdf.GetStringWidth(text.Content)
	}
	pdf.Text(x, y, text.Content)
}
