// Package geometry holds the pure math shared by the drawing and transform
// engines: angle conversion, rotated bounds and local-frame projection.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pt builds a point.
func Pt(x, y float64) r2.Vec {
	return r2.Vec{X: x, Y: y}
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// RotatedBoundingSize returns the axis-aligned bounding box of a
// width x height rectangle rotated about its center.
func RotatedBoundingSize(width, height, angleDegrees float64) (float64, float64) {
	rad := Radians(angleDegrees)
	absCos := math.Abs(math.Cos(rad))
	absSin := math.Abs(math.Sin(rad))
	return width*absCos + height*absSin, width*absSin + height*absCos
}

// AngleOf returns atan2(dy, dx) in degrees.
func AngleOf(dx, dy float64) float64 {
	return Degrees(math.Atan2(dy, dx))
}

// Localize projects a screen-space delta into the local frame of an object
// rotated by angleDegrees.
func Localize(dx, dy, angleDegrees float64) (float64, float64) {
	return RotateDegrees(-angleDegrees).TransformVector(dx, dy)
}

// Unlocalize maps a local-frame delta back into screen space.
func Unlocalize(lx, ly, angleDegrees float64) (float64, float64) {
	return RotateDegrees(angleDegrees).TransformVector(lx, ly)
}
