package geometry

import "math"

// Matrix2D is an affine map stored column-major as [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix2D [6]float64

// Rotate turns by radians about the origin. Positive angles are clockwise
// on screen, where y grows downward.
func Rotate(radians float64) Matrix2D {
	sin, cos := math.Sincos(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

func RotateDegrees(degrees float64) Matrix2D {
	return Rotate(Radians(degrees))
}

// FromTransform places an object: its anchor (ax, ay) lands on (x, y),
// scaled by (sx, sy) and rotated by rDegrees about that anchor.
func FromTransform(x, y, sx, sy, rDegrees, ax, ay float64) Matrix2D {
	sin, cos := math.Sincos(Radians(rDegrees))
	return Matrix2D{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		x - cos*sx*ax + sin*sy*ay,
		y - sin*sx*ax - cos*sy*ay,
	}
}

func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformVector maps a delta, ignoring translation.
func (m Matrix2D) TransformVector(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y, m[1]*x + m[3]*y
}

// TransformRect returns the axis-aligned box around r after mapping.
func (m Matrix2D) TransformRect(r Rect) Rect {
	xs, ys := [4]float64{}, [4]float64{}
	xs[0], ys[0] = m.TransformPoint(r.X, r.Y)
	xs[1], ys[1] = m.TransformPoint(r.X+r.Width, r.Y)
	xs[2], ys[2] = m.TransformPoint(r.X+r.Width, r.Y+r.Height)
	xs[3], ys[3] = m.TransformPoint(r.X, r.Y+r.Height)

	minX, maxX := min(xs[0], xs[1], xs[2], xs[3]), max(xs[0], xs[1], xs[2], xs[3])
	minY, maxY := min(ys[0], ys[1], ys[2], ys[3]), max(ys[0], ys[1], ys[2], ys[3])
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Invert returns the inverse map. It reports false when m collapses the
// plane, as a zero scale does.
func (m Matrix2D) Invert() (Matrix2D, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Matrix2D{}, false
	}
	k := 1 / det
	return Matrix2D{
		m[3] * k,
		-m[1] * k,
		-m[2] * k,
		m[0] * k,
		(m[2]*m[5] - m[3]*m[4]) * k,
		(m[1]*m[4] - m[0]*m[5]) * k,
	}, true
}
