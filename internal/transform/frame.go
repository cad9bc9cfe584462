// Package transform manipulates rotated rectangles under direct pointer
// input: move, rotate about the center, and resize along local axes.
package transform

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

// Frame is a rectangle rotated about its center, in screen pixels.
type Frame struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// FrameAt builds a frame of the given size centered on c.
func FrameAt(c r2.Vec, size geometry.Size, rotation float64) Frame {
	return Frame{
		X:        c.X - size.Width/2,
		Y:        c.Y - size.Height/2,
		Width:    size.Width,
		Height:   size.Height,
		Rotation: rotation,
	}
}

func (f Frame) Center() r2.Vec {
	return r2.Vec{X: f.X + f.Width/2, Y: f.Y + f.Height/2}
}

func (f Frame) Size() geometry.Size {
	return geometry.Size{Width: f.Width, Height: f.Height}
}

// Matrix maps frame-local pixels, origin at the unrotated top-left corner,
// to screen space.
func (f Frame) Matrix() geometry.Matrix2D {
	c := f.Center()
	return geometry.FromTransform(c.X, c.Y, 1, 1, f.Rotation, f.Width/2, f.Height/2)
}

// ToLocal maps a screen point into frame-local pixels.
func (f Frame) ToLocal(p r2.Vec) r2.Vec {
	// Rotation and translation only, so the inverse always exists.
	inv, _ := f.Matrix().Invert()
	x, y := inv.TransformPoint(p.X, p.Y)
	return r2.Vec{X: x, Y: y}
}

// Contains reports whether a screen point falls inside the rotated frame.
func (f Frame) Contains(p r2.Vec) bool {
	l := f.ToLocal(p)
	return l.X >= 0 && l.X <= f.Width && l.Y >= 0 && l.Y <= f.Height
}

// Kind is the interaction a session performs.
type Kind int

const (
	Move Kind = iota
	Rotate
	Resize
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Rotate:
		return "rotate"
	case Resize:
		return "resize"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Handle names the edges a resize drags, as a combination of t, b, l and r.
type Handle string

// Handles lists the resize handles in display order.
var Handles = []Handle{"tl", "t", "tr", "l", "r", "bl", "b", "br"}

// RotateHandle is the affordance name of the rotation grip.
const RotateHandle = "rotate"

func (h Handle) Top() bool    { return strings.ContainsRune(string(h), 't') }
func (h Handle) Bottom() bool { return strings.ContainsRune(string(h), 'b') }
func (h Handle) Left() bool   { return strings.ContainsRune(string(h), 'l') }
func (h Handle) Right() bool  { return strings.ContainsRune(string(h), 'r') }

// ParseHandle validates a resize handle name.
func ParseHandle(s string) (Handle, error) {
	if s == "" {
		return "", fmt.Errorf("empty resize handle")
	}
	h := Handle(s)
	if strings.Trim(s, "tblr") != "" || (h.Top() && h.Bottom()) || (h.Left() && h.Right()) {
		return "", fmt.Errorf("invalid resize handle %q", s)
	}
	return h, nil
}

// ParseInteraction maps an affordance name to a session kind and handle:
// "move", "rotate", or a resize handle.
func ParseInteraction(name string) (Kind, Handle, error) {
	switch name {
	case "move":
		return Move, "", nil
	case RotateHandle:
		return Rotate, "", nil
	}
	h, err := ParseHandle(name)
	if err != nil {
		return 0, "", err
	}
	return Resize, h, nil
}

type Options struct {
	// MinSize is the smallest width or height a resize may produce.
	MinSize float64
}

func DefaultOptions() Options {
	return Options{MinSize: 20}
}
