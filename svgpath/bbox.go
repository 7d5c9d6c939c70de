package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Bounding boxes of paths are exact: each curve segment is
// sampled at its ends and at the zeros of its derivative.

// Rect is an axis aligned rectangle in user units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX - MinX
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns MaxY - MinY
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX), MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX), MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Transform returns the bounding box of r mapped by m
func (r Rect) Transform(m Matrix2D) Rect {
	out := emptyRect()
	for _, c := range [4][2]float64{{r.MinX, r.MinY}, {r.MaxX, r.MinY}, {r.MaxX, r.MaxY}, {r.MinX, r.MaxY}} {
		x, y := m.Transform(c[0], c[1])
		out.add(x, y)
	}
	return out
}

func emptyRect() Rect {
	return Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (r *Rect) add(x, y float64) {
	r.MinX = math.Min(x, r.MinX)
	r.MinY = math.Min(y, r.MinY)
	r.MaxX = math.Max(x, r.MaxX)
	r.MaxY = math.Max(y, r.MaxY)
}

// Bounds returns the bounding box of the path, or false for an empty path.
func (p Path) Bounds() (Rect, bool) {
	box := emptyRect()
	var current, start fixed.Point26_6
	seen := false
	for _, op := range p {
		var curve bezier
		switch op := op.(type) {
		case MoveTo:
			current = fixed.Point26_6(op)
			start = current
			box.add(fixedTof(current))
			seen = true
			continue
		case LineTo:
			curve = line{current, fixed.Point26_6(op)}
			current = fixed.Point26_6(op)
		case QuadTo:
			curve = quadBezier{current, op[0], op[1]}
			current = op[1]
		case CubicTo:
			curve = cubicBezier{current, op[0], op[1], op[2]}
			current = op[2]
		case Close:
			current = start
			continue
		}
		extendBox(&box, curve)
		seen = true
	}
	return box, seen
}

type bezier interface {
	// criticalPoints returns the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// evaluateCurve returns the point at time t
	evaluateCurve(t float64) (x, y float64)
}

func extendBox(box *Rect, curve bezier) {
	tX, tY := curve.criticalPoints()
	ts := append(append(tX, 0, 1), tY...)
	for _, t := range ts {
		if !(0 <= t && t <= 1) {
			continue
		}
		box.add(curve.evaluateCurve(t))
	}
}

type line [2]fixed.Point26_6

func (l line) criticalPoints() (tX, tY []float64) { return nil, nil }

func (l line) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(l[0])
	p1x, p1y := fixedTof(l[1])
	return (p1x-p0x)*t + p0x, (p1y-p0y)*t + p0y
}

type quadBezier [3]fixed.Point26_6

// x = (p0 + p2 - 2p1)t^2 + 2(p1 - p0)t + p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative written as a*t + b
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - 2*p1 + p0), 2 * (p1 - p0)
}

func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	aX, bX := quadraticDerivative(p0x, p1x, p2x)
	aY, bY := quadraticDerivative(p0y, p1y, p2y)
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	return bezierQuad(p0x, p1x, p2x, t), bezierQuad(p0y, p1y, p2y, t)
}

type cubicBezier [4]fixed.Point26_6

// x = (p3-3p2+3p1-p0)t^3 + (3p2-6p1+3p0)t^2 + (3p1-3p0)t + p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		p0
}

// derivative written as a*t^2 + b*t + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	switch {
	case d < 0:
		return nil
	case d == 0:
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	p3x, p3y := fixedTof(cu[3])
	aX, bX, cX := cubicDerivative(p0x, p1x, p2x, p3x)
	aY, bY, cY := cubicDerivative(p0y, p1y, p2y, p3y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	p3x, p3y := fixedTof(cu[3])
	return bezierSpline(p0x, p1x, p2x, p3x, t), bezierSpline(p0y, p1y, p2y, p3y, t)
}
