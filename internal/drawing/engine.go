// Package drawing interprets pointer input per tool and paints the result
// onto a canvas.Surface, maintaining at most one active clip path.
package drawing

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/canvas"
	"github.com/layoutnav/layoutnav/internal/clippath"
	"github.com/layoutnav/layoutnav/internal/geometry"
)

// Engine is the drawing state machine. It owns the clip path, the
// in-progress polygon or pen stroke, and the preview snapshots.
// Handlers must be called from one goroutine.
type Engine struct {
	opts    Options
	surface *canvas.Surface
	tool    Tool

	// Clip state
	clip    clippath.Path
	polygon *clippath.Polygon
	pen     *clippath.Pen

	// Per-stroke state
	drawing bool
	anchor  r2.Vec
	last    r2.Vec

	// snapshot backs the live preview of the current shape, or the rubber
	// band of the current polygon edge.
	snapshot *canvas.Snapshot
	// polygonBase is the canvas before the first vertex of the current polygon.
	polygonBase *canvas.Snapshot
}

// NewEngine creates an engine painting onto surface with the Select tool active.
func NewEngine(surface *canvas.Surface, opts Options) *Engine {
	return &Engine{
		opts:    opts,
		surface: surface,
		tool:    Select,
		polygon: clippath.NewPolygon(opts.PolygonCloseRadius),
		pen:     clippath.NewPen(opts.PenCloseDistance),
	}
}

// --- Queries ---

func (e *Engine) Tool() Tool               { return e.tool }
func (e *Engine) Surface() *canvas.Surface { return e.surface }
func (e *Engine) ClipPath() clippath.Path  { return e.clip }
func (e *Engine) Drawing() bool            { return e.drawing }
func (e *Engine) PolygonPoints() []r2.Vec  { return e.polygon.Points() }
func (e *Engine) PolygonInProgress() bool  { return e.polygon.InProgress() }

// --- Commands ---

// SetTool switches the active tool. Leaving Polygon with vertices placed
// cancels the polygon and restores the canvas to how it was before the
// polygon began.
func (e *Engine) SetTool(t Tool) {
	if t == e.tool {
		return
	}
	if e.tool == Polygon && e.polygon.InProgress() {
		e.surface.Restore(e.polygonBase)
		e.polygon.Reset()
		e.polygonBase = nil
		e.snapshot = nil
		e.drawing = false
		slog.Debug("polygon cancelled by tool switch", "tool", t)
	}
	if e.drawing {
		e.endStroke()
	}
	e.tool = t
}

// Reset discards the clip path, pending points, the drawing flag and every
// snapshot. Pixels are left as they are.
func (e *Engine) Reset() {
	e.clip = nil
	e.polygon.Reset()
	e.pen.Reset()
	e.drawing = false
	e.snapshot = nil
	e.polygonBase = nil
}

// Clear makes the canvas transparent and resets all drawing state.
func (e *Engine) Clear() {
	e.surface.Clear()
	e.Reset()
}

// Resize reallocates the canvas backing store, which discards its pixels,
// and resets all drawing state.
func (e *Engine) Resize(width, height int) error {
	if err := e.surface.Resize(width, height); err != nil {
		return err
	}
	e.Reset()
	return nil
}

// PointerDown begins a stroke, or places a polygon vertex.
func (e *Engine) PointerDown(pt r2.Vec) {
	switch e.tool {
	case Select:
		return
	case Polygon:
		e.polygonClick(pt)
		return
	}

	e.drawing = true
	e.anchor = pt
	e.last = pt
	switch {
	case e.tool.isShape():
		e.snapshot = e.surface.Snapshot()
	case e.tool == Pen:
		e.snapshot = e.surface.Snapshot()
		e.pen.Begin(pt)
	}
}

// PointerMove extends the current stroke or redraws the current preview.
func (e *Engine) PointerMove(pt r2.Vec) {
	if !e.drawing || e.tool == Select {
		return
	}

	switch {
	case e.tool == Polygon:
		last, ok := e.polygon.Last()
		if !ok || e.snapshot == nil {
			return
		}
		e.surface.Restore(e.snapshot)
		e.paint(e.surface.Line([]r2.Vec{last, pt}, e.ink(0)))
	case e.tool.isShape():
		e.surface.Restore(e.snapshot)
		e.paint(e.drawShape(e.anchor, pt))
	case e.tool == Pen:
		e.pen.Add(pt)
		e.paint(e.surface.Line([]r2.Vec{e.last, pt}, e.ink(0)))
		e.last = pt
	case e.tool == Eraser:
		e.paint(e.surface.Erase([]r2.Vec{e.last, pt}, e.opts.EraserWidth))
		e.last = pt
	}
}

// PointerUp commits the current stroke. Polygons ignore pointer-up.
func (e *Engine) PointerUp(pt r2.Vec) {
	if e.tool == Polygon || e.tool == Select || !e.drawing {
		return
	}

	switch {
	case e.tool.isShape():
		e.surface.Restore(e.snapshot)
		e.paint(e.drawShape(e.anchor, pt))
	case e.tool == Pen:
		if path, ok := e.pen.Finish(); ok {
			e.commitClip(path, "pen")
		}
	}
	e.endStroke()
}

// PointerLeave handles the pointer leaving the canvas. An active stroke is
// committed as on pointer-up; a polygon only drops its rubber band.
func (e *Engine) PointerLeave(pt r2.Vec) {
	if e.tool == Polygon {
		if e.drawing {
			e.surface.Restore(e.snapshot)
		}
		return
	}
	if e.drawing {
		e.PointerUp(pt)
	}
}

func (e *Engine) endStroke() {
	e.drawing = false
	e.snapshot = nil
	e.pen.Reset()
}

func (e *Engine) polygonClick(pt r2.Vec) {
	if !e.polygon.InProgress() {
		e.polygonBase = e.surface.Snapshot()
	}
	last, hadLast := e.polygon.Last()

	res, path := e.polygon.Click(pt)
	switch res {
	case clippath.Closed:
		e.commitClip(path, "polygon")
		e.polygonBase = nil
		e.snapshot = nil
		e.drawing = false
	case clippath.Appended:
		if hadLast {
			// Drop any rubber band before committing the edge.
			e.surface.Restore(e.snapshot)
			e.paint(e.surface.Line([]r2.Vec{last, pt}, e.ink(0)))
		}
		e.snapshot = e.surface.Snapshot()
		e.drawing = true
	}
}

// commitClip replaces the active clip path and repaints the canvas with it.
func (e *Engine) commitClip(path clippath.Path, source string) {
	if !path.Valid() {
		return
	}
	e.clip = path
	e.surface.Clear()
	e.paint(e.surface.FillPolygon(path, ClipFill, e.ink(0)))
	slog.Info("clip path committed", "source", source, "points", len(path))
}

func (e *Engine) drawShape(from, to r2.Vec) error {
	return e.surface.WithClip(e.clip, func() error {
		if e.tool == DashedLine {
			return e.surface.Line([]r2.Vec{from, to}, e.ink(e.opts.DashLength))
		}
		return e.surface.FillRect(ShapeRect(e.tool, from, to), ShapeFill, e.ink(0))
	})
}

func (e *Engine) ink(dash float64) canvas.Stroke {
	return canvas.Stroke{Color: Ink, Width: e.opts.StrokeWidth, Dash: dash}
}

func (e *Engine) paint(err error) {
	if err != nil {
		slog.Warn("paint failed", "tool", e.tool, "error", err)
	}
}

// ShapeRect returns the rectangle dragged from anchor to pt. Width and height
// keep the drag direction's sign. For Square both sides take the larger
// absolute extent.
func ShapeRect(tool Tool, anchor, pt r2.Vec) geometry.Rect {
	w := pt.X - anchor.X
	h := pt.Y - anchor.Y
	if tool == Square {
		side := math.Max(math.Abs(w), math.Abs(h))
		w = side * sign(w)
		h = side * sign(h)
	}
	return geometry.Rect{X: anchor.X, Y: anchor.Y, Width: w, Height: h}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
