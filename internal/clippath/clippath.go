// Package clippath accumulates pointer points into closed polygons that
// restrict where later painting is visible.
package clippath

import "gonum.org/v1/gonum/spatial/r2"

// MinPoints is the fewest vertices a closed path may have.
const MinPoints = 3

// Path is a closed polygon. A nil Path means no clip region is active.
type Path []r2.Vec

// Valid reports whether the path has enough vertices to enclose an area.
func (p Path) Valid() bool {
	return len(p) >= MinPoints
}

func closeOver(points []r2.Vec) Path {
	out := make(Path, len(points))
	copy(out, points)
	return out
}
