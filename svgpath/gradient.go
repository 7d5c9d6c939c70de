package svgpath

import (
	"image/color"
)

// GradientUnits is the coordinate system of the gradient geometry.
type GradientUnits byte

const (
	// ObjectBoundingBox expresses the gradient geometry as fractions
	// of the bounding box of the painted path.
	ObjectBoundingBox GradientUnits = iota
	// UserSpaceOnUse expresses the gradient geometry in user units.
	UserSpaceOnUse
)

// SpreadMethod defines how a gradient is painted outside its vector.
type SpreadMethod byte

const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop is a color stop of a gradient.
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient is a linear or radial paint server.
type Gradient struct {
	Direction Direction
	Stops     []GradStop
	Bounds    struct{ X, Y, W, H float64 } // of the painted area, for ObjectBoundingBox
	Matrix    Matrix2D                     // gradientTransform
	Spread    SpreadMethod
	Units     GradientUnits
}

// Direction is either Linear or Radial.
type Direction interface {
	isRadial() bool
}

// Linear holds x1, y1, x2, y2.
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// Radial holds cx, cy, fx, fy, r, fr.
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// IsRadial reports whether the gradient is radial.
func (g Gradient) IsRadial() bool { return g.Direction != nil && g.Direction.isRadial() }

// Fallback returns the color used by painters without gradient
// support: the first stop, or nil for a gradient without stops.
func (g Gradient) Fallback() color.Color {
	if len(g.Stops) == 0 {
		return nil
	}
	return g.Stops[0].StopColor
}
