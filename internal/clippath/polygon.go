package clippath

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

// ClickResult says what a polygon click did.
type ClickResult int

const (
	// Appended means the click added a vertex.
	Appended ClickResult = iota
	// Closed means the click landed near the first vertex and closed the path.
	Closed
	// Ignored means the click was near the first vertex but too few
	// vertices exist to close; nothing changed.
	Ignored
)

func (r ClickResult) String() string {
	switch r {
	case Appended:
		return "appended"
	case Closed:
		return "closed"
	case Ignored:
		return "ignored"
	}
	return "unknown"
}

// Polygon builds a path one click at a time.
type Polygon struct {
	radius float64
	points []r2.Vec
}

func NewPolygon(closeRadius float64) *Polygon {
	return &Polygon{radius: closeRadius}
}

// Click handles a click at pt. A click strictly within the close radius of
// the first vertex closes the path from the existing vertices; the closing
// click is not itself added. The builder is empty after a close.
func (p *Polygon) Click(pt r2.Vec) (ClickResult, Path) {
	if len(p.points) > 1 && geometry.Distance(pt, p.points[0]) < p.radius {
		if len(p.points) < MinPoints {
			return Ignored, nil
		}
		path := closeOver(p.points)
		p.points = nil
		return Closed, path
	}
	p.points = append(p.points, pt)
	return Appended, nil
}

// Points returns the vertices placed so far.
func (p *Polygon) Points() []r2.Vec {
	return p.points
}

// Last returns the most recent vertex.
func (p *Polygon) Last() (r2.Vec, bool) {
	if len(p.points) == 0 {
		return r2.Vec{}, false
	}
	return p.points[len(p.points)-1], true
}

func (p *Polygon) InProgress() bool {
	return len(p.points) > 0
}

func (p *Polygon) Reset() {
	p.points = nil
}
