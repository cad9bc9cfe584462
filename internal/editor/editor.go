package editor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/canvas"
	"github.com/layoutnav/layoutnav/internal/drawing"
	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/imageio"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/transform"
)

var (
	ErrNoImage        = errors.New("no image loaded")
	ErrEmptyCanvas    = errors.New("canvas is empty")
	ErrMissingDetails = errors.New("layout name and owner are required")
)

type Options struct {
	Drawing        drawing.Options
	Transform      transform.Options
	PlaygroundFill float64
}

func DefaultOptions() Options {
	return Options{
		Drawing:        drawing.DefaultOptions(),
		Transform:      transform.DefaultOptions(),
		PlaygroundFill: 0.7,
	}
}

// Editor is the layout editor: a photo framed on the playground with a
// drawing canvas laid over it. Pointer positions are playground coordinates.
type Editor struct {
	opts   Options
	ctrl   *transform.Controller
	engine *drawing.Engine

	// Photo state
	photo      image.Image
	frame      transform.Frame
	playground geometry.Size

	// session is the id of the frame interaction this editor started, if any.
	session uuid.UUID
	capture []transform.Acquirer
}

// New creates an editor. ctrl is shared with the map overlay so only one
// interaction runs at a time; nil gives the editor its own controller.
func New(ctrl *transform.Controller, opts Options) *Editor {
	if ctrl == nil {
		ctrl = transform.NewController(opts.Transform)
	}
	return &Editor{
		opts:   opts,
		ctrl:   ctrl,
		engine: drawing.NewEngine(canvas.New(1, 1), opts.Drawing),
	}
}

// --- Queries ---

func (e *Editor) HasImage() bool            { return e.photo != nil }
func (e *Editor) Frame() transform.Frame    { return e.frame }
func (e *Editor) Tool() drawing.Tool        { return e.engine.Tool() }
func (e *Editor) Engine() *drawing.Engine   { return e.engine }
func (e *Editor) Playground() geometry.Size { return e.playground }

// Interacting reports whether a frame interaction started here is running.
func (e *Editor) Interacting() bool {
	s, ok := e.ctrl.Active()
	return ok && s.ID == e.session
}

// --- Commands ---

// SetCapture sets what every frame interaction acquires while it runs,
// such as window-level pointer listeners.
func (e *Editor) SetCapture(acquirers ...transform.Acquirer) {
	e.capture = acquirers
}

// LoadImage frames img on a playground of the given size and resets all
// drawing state. The canvas takes the frame's size.
func (e *Editor) LoadImage(img image.Image, playground geometry.Size) error {
	natural := imageio.Size(img)
	if natural.Width <= 0 || natural.Height <= 0 {
		return imageio.ErrEmptyImage
	}
	e.endInteraction()

	r := imageio.Fit(natural, playground, e.opts.PlaygroundFill)
	e.photo = img
	e.playground = playground
	e.frame = transform.Frame{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	if err := e.engine.Resize(pixels(r.Width), pixels(r.Height)); err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}

	slog.Info("image loaded", "width", natural.Width, "height", natural.Height,
		"frameWidth", r.Width, "frameHeight", r.Height)
	return nil
}

func (e *Editor) SetTool(t drawing.Tool) {
	if t != drawing.Select {
		e.endInteraction()
	}
	e.engine.SetTool(t)
}

// Clear wipes the canvas and resets drawing state.
func (e *Editor) Clear() {
	e.engine.Clear()
}

// BeginInteraction starts a frame move, rotate or resize. name is "move",
// "rotate" or a resize handle. It is only available with the select tool.
func (e *Editor) BeginInteraction(name string, pt r2.Vec) error {
	if e.photo == nil {
		return ErrNoImage
	}
	kind, handle, err := transform.ParseInteraction(name)
	if err != nil {
		return err
	}
	if e.engine.Tool() != drawing.Select {
		return fmt.Errorf("begin %s: tool %s is active", name, e.engine.Tool())
	}
	s := transform.NewSession(kind, handle, pt, e.frame)
	e.ctrl.Begin(transform.TargetFunc(e.applyFrame), s, e.capture...)
	e.session = s.ID
	return nil
}

func (e *Editor) PointerDown(pt r2.Vec) {
	if e.photo == nil {
		return
	}
	if e.engine.Tool() == drawing.Select {
		if e.frame.Contains(pt) {
			if err := e.BeginInteraction("move", pt); err != nil {
				slog.Debug("frame move not started", "error", err)
			}
		}
		return
	}
	e.engine.PointerDown(e.toCanvas(pt))
}

func (e *Editor) PointerMove(pt r2.Vec) {
	if e.Interacting() {
		e.ctrl.Move(pt)
		return
	}
	if e.photo != nil {
		e.engine.PointerMove(e.toCanvas(pt))
	}
}

func (e *Editor) PointerUp(pt r2.Vec) {
	if e.Interacting() {
		e.ctrl.Move(pt)
		e.endInteraction()
		return
	}
	if e.photo != nil {
		e.engine.PointerUp(e.toCanvas(pt))
	}
}

// PointerLeave is the pointer leaving the canvas. Frame interactions keep
// tracking the pointer until it is released anywhere.
func (e *Editor) PointerLeave(pt r2.Vec) {
	if e.Interacting() || e.photo == nil {
		return
	}
	e.engine.PointerLeave(e.toCanvas(pt))
}

// Save validates the editor state and returns a new layout whose image is
// the photo composited with the drawing at the frame's size.
func (e *Editor) Save(name, owner string) (layout.Layout, error) {
	if e.photo == nil {
		return layout.Layout{}, ErrNoImage
	}
	if e.engine.Surface().IsBlank() {
		return layout.Layout{}, ErrEmptyCanvas
	}
	name, owner = strings.TrimSpace(name), strings.TrimSpace(owner)
	if name == "" || owner == "" {
		return layout.Layout{}, ErrMissingDetails
	}

	data, err := e.Composite()
	if err != nil {
		return layout.Layout{}, err
	}
	l := layout.New(name, owner, data)
	slog.Info("layout saved", "id", l.ID, "name", l.Name, "bytes", len(data))
	return l, nil
}

// Composite renders the photo, scaled to fit the canvas, with the drawing
// on top and returns it as PNG.
func (e *Editor) Composite() ([]byte, error) {
	if e.photo == nil {
		return nil, ErrNoImage
	}
	surface := e.engine.Surface()
	w, h := surface.Width(), surface.Height()
	dc := gg.NewContext(w, h)
	defer dc.Close()

	box := geometry.Rect{Width: float64(w), Height: float64(h)}
	r := imageio.Contain(imageio.Size(e.photo), box)
	if !r.IsEmpty() {
		dc.DrawImageEx(gg.ImageBufFromImage(e.photo), gg.DrawImageOptions{
			X: r.X, Y: r.Y, DstWidth: r.Width, DstHeight: r.Height,
		})
	}
	dc.DrawImage(gg.ImageBufFromImage(surface.Image()), 0, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Editor) applyFrame(kind transform.Kind, f transform.Frame) bool {
	if e.photo == nil {
		return false
	}
	resized := f.Width != e.frame.Width || f.Height != e.frame.Height
	e.frame = f
	if resized {
		if err := e.engine.Resize(pixels(f.Width), pixels(f.Height)); err != nil {
			slog.Warn("canvas resize failed", "error", err)
		}
	}
	return true
}

func (e *Editor) endInteraction() {
	if e.Interacting() {
		e.ctrl.End()
	}
	e.session = uuid.Nil
}

// toCanvas maps a playground point into the canvas's unrotated pixel space.
func (e *Editor) toCanvas(pt r2.Vec) r2.Vec {
	return e.frame.ToLocal(pt)
}

func pixels(v float64) int {
	return max(1, int(math.Round(v)))
}
