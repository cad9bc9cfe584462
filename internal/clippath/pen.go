package clippath

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

// Pen records a freehand stroke and closes it on release when the stroke
// ends near where it began.
type Pen struct {
	closeDistance float64
	points        []r2.Vec
}

func NewPen(closeDistance float64) *Pen {
	return &Pen{closeDistance: closeDistance}
}

// Begin starts a new stroke at pt, discarding any previous one.
func (p *Pen) Begin(pt r2.Vec) {
	p.points = append(p.points[:0], pt)
}

func (p *Pen) Add(pt r2.Vec) {
	p.points = append(p.points, pt)
}

func (p *Pen) Points() []r2.Vec {
	return p.points
}

// Finish ends the stroke. With more than two points and an end strictly
// closer than the close distance to the start, every recorded point becomes
// the closed path. Otherwise the stroke is not closable.
func (p *Pen) Finish() (Path, bool) {
	points := p.points
	p.points = nil
	if len(points) < MinPoints {
		return nil, false
	}
	if geometry.Distance(points[len(points)-1], points[0]) >= p.closeDistance {
		return nil, false
	}
	return closeOver(points), true
}

func (p *Pen) Reset() {
	p.points = nil
}
