// Package canvas is the raster overlay painted by the drawing engine.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

// Surface wraps a gg context with the operations the editor needs:
// pixel snapshots, clipped painting and destination-out erasing.
type Surface struct {
	dc      *gg.Context
	scratch *gg.Context
}

// New creates a transparent surface. Dimensions below one pixel are raised to one.
func New(width, height int) *Surface {
	return &Surface{dc: gg.NewContext(max(width, 1), max(height, 1))}
}

func (s *Surface) Width() int  { return s.dc.Width() }
func (s *Surface) Height() int { return s.dc.Height() }

// Resize sets the backing store dimensions. Content is discarded even when
// the dimensions are unchanged.
func (s *Surface) Resize(width, height int) error {
	if err := s.dc.Resize(max(width, 1), max(height, 1)); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	s.dc.ResetClip()
	s.dc.Clear()
	return nil
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	s.dc.ClearPath()
	s.dc.Clear()
}

// Stroke describes how a line is painted.
type Stroke struct {
	Color color.Color
	Width float64
	// Dash is the on/off length of a dash pattern. Zero paints a solid line.
	Dash float64
}

func (s *Surface) applyStroke(st Stroke) {
	stroke := gg.RoundStroke().WithWidth(st.Width)
	if st.Dash > 0 {
		stroke = stroke.WithDashPattern(st.Dash, st.Dash)
	}
	s.dc.SetStroke(stroke)
	s.dc.SetColor(st.Color)
}

func (s *Surface) trace(points []r2.Vec, closed bool) {
	s.dc.ClearPath()
	for i, p := range points {
		if i == 0 {
			s.dc.MoveTo(p.X, p.Y)
			continue
		}
		s.dc.LineTo(p.X, p.Y)
	}
	if closed {
		s.dc.ClosePath()
	}
}

// FillPolygon fills and outlines a closed polygon.
func (s *Surface) FillPolygon(points []r2.Vec, fill color.Color, outline Stroke) error {
	if len(points) < 2 {
		return nil
	}
	s.trace(points, true)
	s.dc.SetColor(fill)
	if err := s.dc.FillPreserve(); err != nil {
		return fmt.Errorf("fill polygon: %w", err)
	}
	s.applyStroke(outline)
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke polygon: %w", err)
	}
	return nil
}

// FillRect fills and outlines an axis-aligned rectangle. Negative width or
// height extend the rectangle left or up from (X, Y).
func (s *Surface) FillRect(r geometry.Rect, fill color.Color, outline Stroke) error {
	s.dc.ClearPath()
	x, y, w, h := r.X, r.Y, r.Width, r.Height
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(fill)
	if err := s.dc.FillPreserve(); err != nil {
		return fmt.Errorf("fill rect: %w", err)
	}
	s.applyStroke(outline)
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke rect: %w", err)
	}
	return nil
}

// Line strokes an open polyline.
func (s *Surface) Line(points []r2.Vec, st Stroke) error {
	if len(points) < 2 {
		return nil
	}
	s.trace(points, false)
	s.applyStroke(st)
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke line: %w", err)
	}
	return nil
}

// WithClip runs fn with painting restricted to the polygon. A polygon with
// fewer than three points runs fn unclipped.
func (s *Surface) WithClip(points []r2.Vec, fn func() error) error {
	if len(points) < 3 {
		return fn()
	}
	s.dc.Push()
	defer s.dc.Pop()
	s.trace(points, true)
	s.dc.Clip()
	return fn()
}

// Erase removes coverage along the polyline, like a destination-out stroke.
func (s *Surface) Erase(points []r2.Vec, width float64) error {
	if len(points) < 2 {
		return nil
	}
	w, h := s.Width(), s.Height()
	if s.scratch == nil {
		s.scratch = gg.NewContext(w, h)
	} else if err := s.scratch.Resize(w, h); err != nil {
		return fmt.Errorf("resize eraser: %w", err)
	}
	s.scratch.Clear()
	s.scratch.ClearPath()
	for i, p := range points {
		if i == 0 {
			s.scratch.MoveTo(p.X, p.Y)
			continue
		}
		s.scratch.LineTo(p.X, p.Y)
	}
	s.scratch.SetStroke(gg.RoundStroke().WithWidth(width))
	s.scratch.SetColor(color.Black)
	if err := s.scratch.Stroke(); err != nil {
		return fmt.Errorf("stroke eraser: %w", err)
	}

	mask := s.scratch.ResizeTarget().Data()
	dst := s.dc.ResizeTarget().Data()
	for i := 3; i < len(dst) && i < len(mask); i += 4 {
		a := uint32(mask[i])
		if a == 0 {
			continue
		}
		keep := 255 - a
		for c := i - 3; c <= i; c++ {
			dst[c] = uint8(uint32(dst[c]) * keep / 255)
		}
	}
	return nil
}

// Alpha returns the coverage of the pixel at (x, y); zero outside the surface.
func (s *Surface) Alpha(x, y int) uint8 {
	if x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return 0
	}
	return s.dc.ResizeTarget().Data()[(y*s.Width()+x)*4+3]
}

// IsBlank reports whether no pixel has any coverage.
func (s *Surface) IsBlank() bool {
	data := s.dc.ResizeTarget().Data()
	for i := 3; i < len(data); i += 4 {
		if data[i] != 0 {
			return false
		}
	}
	return true
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}
