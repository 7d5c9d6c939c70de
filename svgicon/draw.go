package svgicon

import (
	"image/color"

	"github.com/benoitkugler/infosvg/svgpath"
	"golang.org/x/image/math/fixed"
)

// Drawing a parsed icon goes through a Driver, which provides the
// backend painters: svgraster rasterizes to an image, svgpdf writes
// PDF path operators.

// Drawer receives the outline of one path, already transformed to
// device space.
type Drawer interface {
	// Clear resets the accumulated outline.
	Clear()
	// Start opens a sub-path at a.
	Start(a fixed.Point26_6)
	// Line adds a segment from the current point to b.
	Line(b fixed.Point26_6)
	// QuadBezier adds a quadratic curve with control point b, ending at c.
	QuadBezier(b, c fixed.Point26_6)
	// CubeBezier adds a cubic curve with control points b and c, ending at d.
	CubeBezier(b, c, d fixed.Point26_6)
	// Stop ends the sub-path, closing it when closeLoop is true.
	Stop(closeLoop bool)
	// SetColor sets the paint of the outline.
	SetColor(color color.Color, opacity float64)
	// Draw paints the outline.
	Draw()
}

// Filler paints the interior of outlines.
type Filler interface {
	Drawer
	SetWinding(useNonZeroWinding bool)
}

// Stroker paints the contour of outlines.
type Stroker interface {
	Drawer
	SetStrokeOptions(options StrokeOptions)
}

// GradientSetter is implemented by the painters supporting gradients.
// The others are given the first stop color.
type GradientSetter interface {
	// SetGradient is called instead of SetColor, once the outline is
	// complete. The gradient geometry is in device space.
	SetGradient(grad svgpath.Gradient, opacity float64)
}

// Driver is called once per path. A nil painter is returned for the
// operations not requested. When both are requested, the filler
// receives the outline first, then the stroker receives the same one.
type Driver interface {
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)
}

type DashOptions struct {
	Dash       []float64 // dash pattern, empty for a solid line
	DashOffset float64
}

// JoinMode is the shape of the junction between two stroked segments.
// Arc and MiterClip come from SVG2; ArcClip is an extension.
type JoinMode uint8

const (
	Arc JoinMode = iota
	Round
	Bevel
	Miter
	MiterClip
	ArcClip
)

// CapMode is the shape of the ends of open sub-paths.
// CubicCap and QuadraticCap are extensions.
type CapMode uint8

const (
	NilCap CapMode = iota
	ButtCap
	SquareCap
	RoundCap
	CubicCap
	QuadraticCap
)

// GapMode bridges the convex side of a join exceeding the miter limit.
// It is an extension, NilGap meaning FlatGap.
type GapMode uint8

const (
	NilGap GapMode = iota
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

type JoinOptions struct {
	MiterLimit   fixed.Int26_6 // for the miter, arc, miterclip and arcclip joins
	LineJoin     JoinMode
	TrailLineCap CapMode // also used for the leading end when LeadLineCap is NilCap
	LeadLineCap  CapMode
	LineGap      GapMode
}

type StrokeOptions struct {
	LineWidth fixed.Int26_6
	Join      JoinOptions
	Dash      DashOptions
}

// SetTarget maps the view box of the icon onto the rectangle x, y, w, h.
func (s *SvgIcon) SetTarget(x, y, w, h float64) {
	scaleW := w / s.ViewBox.W
	scaleH := h / s.ViewBox.H
	s.Transform = svgpath.Identity.Translate(x, y).Scale(scaleW, scaleH).Translate(-s.ViewBox.X, -s.ViewBox.Y)
}

// Draw the compiled SVG icon into the driver `d`.
// All elements should be contained by the Bounds rectangle of the SvgIcon.
// Text runs are not drawn: see the Texts field.
func (s *SvgIcon) Draw(d Driver, opacity float64) {
	for _, svgp := range s.SVGPaths {
		svgp.drawTransformed(d, opacity, s.Transform)
	}
}

// drawPath sends the operations of p to d
func drawPath(d Drawer, p svgpath.Path) {
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			d.Stop(false) // implicit close if currently in path.
			d.Start(fixed.Point26_6(op))
		case svgpath.LineTo:
			d.Line(fixed.Point26_6(op))
		case svgpath.QuadTo:
			d.QuadBezier(op[0], op[1])
		case svgpath.CubicTo:
			d.CubeBezier(op[0], op[1], op[2])
		case svgpath.Close:
			d.Stop(true)
		}
	}
}

// drawTransformed draws the compiled SvgPath into the driver while applying transform t.
func (svgp *SvgPath) drawTransformed(d Driver, opacity float64, t svgpath.Matrix2D) {
	m := t.Mult(svgp.Style.transform)
	path := svgp.Path.Transform(m)

	filler, stroker := d.SetupDrawers(svgp.Style.FillerColor != nil, svgp.Style.LinerColor != nil)
	if filler != nil { // nil color disable filling
		filler.Clear()
		filler.SetWinding(svgp.Style.UseNonZeroWinding)

		drawPath(filler, path)
		filler.Stop(false)

		setPaint(filler, svgp.Style.FillerColor, svgp.Style.FillerGradient, svgp.Style.FillOpacity*opacity, m)
		filler.Draw()
		filler.SetWinding(true) // default is true
	}

	if stroker != nil { // nil color disable lining
		stroker.Clear()

		lineGap := svgp.Style.Join.LineGap
		if lineGap == NilGap {
			lineGap = FlatGap
		}
		lineCap := svgp.Style.Join.TrailLineCap
		if lineCap == NilCap {
			lineCap = DefaultStyle.Join.TrailLineCap
		}
		leadLineCap := lineCap
		if svgp.Style.Join.LeadLineCap != NilCap {
			leadLineCap = svgp.Style.Join.LeadLineCap
		}
		// stroke width follows the average scaling of the transform
		scale := m.Scaling()
		stroker.SetStrokeOptions(StrokeOptions{
			LineWidth: fixed.Int26_6(svgp.Style.LineWidth * scale * 64),
			Join: JoinOptions{
				MiterLimit:   svgp.Style.Join.MiterLimit,
				LineJoin:     svgp.Style.Join.LineJoin,
				LeadLineCap:  leadLineCap,
				TrailLineCap: lineCap,
				LineGap:      lineGap,
			},
			Dash: svgp.Style.Dash,
		})

		drawPath(stroker, path)
		stroker.Stop(false)

		setPaint(stroker, svgp.Style.LinerColor, svgp.Style.LinerGradient, svgp.Style.LineOpacity*opacity, m)
		stroker.Draw()
	}
}

// setPaint uses the gradient when supported by d, the plain color otherwise.
// m maps the user space of the path to the device space.
func setPaint(d Drawer, col color.Color, grad *svgpath.Gradient, opacity float64, m svgpath.Matrix2D) {
	gs, ok := d.(GradientSetter)
	if grad == nil || !ok {
		d.SetColor(col, opacity)
		return
	}
	g := *grad
	if g.Units == svgpath.UserSpaceOnUse {
		g.Matrix = m.Mult(g.Matrix)
	}
	gs.SetGradient(g, opacity)
}
