package transform

import (
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

// Session is the state of one pointer-down to pointer-up gesture. It is a
// value: Step returns the next session instead of mutating this one.
type Session struct {
	ID     uuid.UUID
	Kind   Kind
	Handle Handle

	// Start is the pointer position at pointer-down.
	Start r2.Vec
	// Origin is the frame at pointer-down.
	Origin Frame
	// Center is the frame's visual center at pointer-down; rotation pivots on it.
	Center r2.Vec

	// Rotation tracking. Turned accumulates the unwrapped pointer angle
	// change so rotation is not limited to one revolution.
	StartAngle float64
	LastAngle  float64
	Turned     float64
}

// NewSession anchors a gesture at pointer on the given frame.
func NewSession(kind Kind, handle Handle, pointer r2.Vec, origin Frame) Session {
	center := origin.Center()
	angle := geometry.AngleOf(pointer.X-center.X, pointer.Y-center.Y)
	return Session{
		ID:         uuid.New(),
		Kind:       kind,
		Handle:     handle,
		Start:      pointer,
		Origin:     origin,
		Center:     center,
		StartAngle: angle,
		LastAngle:  angle,
	}
}

// Step applies a pointer position to the session and returns the advanced
// session together with the frame it produces.
func Step(s Session, pointer r2.Vec, opts Options) (Session, Frame) {
	switch s.Kind {
	case Rotate:
		angle := geometry.AngleOf(pointer.X-s.Center.X, pointer.Y-s.Center.Y)
		s.Turned += unwrap(angle - s.LastAngle)
		s.LastAngle = angle
		f := s.Origin
		f.Rotation = s.Origin.Rotation + s.Turned
		return s, f
	case Resize:
		return s, resize(s.Origin, s.Handle, pointer.X-s.Start.X, pointer.Y-s.Start.Y, opts.MinSize)
	default:
		f := s.Origin
		f.X += pointer.X - s.Start.X
		f.Y += pointer.Y - s.Start.Y
		return s, f
	}
}

// resize projects the screen delta onto the frame's own axes, moves the
// dragged edges, clamps to minSize, and shifts the center so the opposite
// edges stay where they were.
func resize(origin Frame, h Handle, dx, dy, minSize float64) Frame {
	lx, ly := geometry.Localize(dx, dy, origin.Rotation)

	w, ht := origin.Width, origin.Height
	switch {
	case h.Right():
		w += lx
	case h.Left():
		w -= lx
	}
	switch {
	case h.Bottom():
		ht += ly
	case h.Top():
		ht -= ly
	}
	w = math.Max(w, minSize)
	ht = math.Max(ht, minSize)

	var shiftX, shiftY float64
	switch {
	case h.Right():
		shiftX = (w - origin.Width) / 2
	case h.Left():
		shiftX = -(w - origin.Width) / 2
	}
	switch {
	case h.Bottom():
		shiftY = (ht - origin.Height) / 2
	case h.Top():
		shiftY = -(ht - origin.Height) / 2
	}
	sx, sy := geometry.Unlocalize(shiftX, shiftY, origin.Rotation)

	c := origin.Center()
	return FrameAt(r2.Vec{X: c.X + sx, Y: c.Y + sy}, geometry.Size{Width: w, Height: ht}, origin.Rotation)
}

// unwrap maps an angle difference into (-180, 180].
func unwrap(d float64) float64 {
	d = math.Mod(d, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}
