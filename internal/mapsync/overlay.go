package mapsync

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/transform"
)

var (
	ErrPlacementNotFound = errors.New("placement not found")
	ErrPlacementFixed    = errors.New("placement is fixed")
)

// Overlay reconciles markers with the store and applies zoom rescaling to
// fixed placements.
type Overlay struct {
	m       Map
	store   Store
	ctrl    *transform.Controller
	capture []transform.Acquirer

	// rendered tracks which placement ids currently have a marker.
	rendered   map[string]bool
	cancelZoom func()
}

// NewOverlay subscribes to zoom changes on m. Interactions run through
// ctrl, which may be shared with other surfaces so that only one session is
// active at a time.
func NewOverlay(m Map, store Store, ctrl *transform.Controller) *Overlay {
	o := &Overlay{
		m:        m,
		store:    store,
		ctrl:     ctrl,
		rendered: make(map[string]bool),
	}
	o.cancelZoom = m.OnZoom(func(zoom float64) { o.HandleZoom(zoom) })
	return o
}

// SetCapture sets extra acquirers held for every interaction session, such
// as window-level pointer listeners.
func (o *Overlay) SetCapture(acquirers ...transform.Acquirer) {
	o.capture = acquirers
}

// Close unsubscribes from the map and ends any running session.
func (o *Overlay) Close() {
	o.ctrl.End()
	if o.cancelZoom != nil {
		o.cancelZoom()
		o.cancelZoom = nil
	}
}

// Sync creates, updates, or removes markers so they match the store.
// Existing markers are updated in place; handlers are rebound on every
// non-fixed marker because its content was replaced.
func (o *Overlay) Sync() {
	seen := make(map[string]bool)
	for _, p := range o.store.Placements() {
		seen[p.ID] = true
		mk := o.markerFor(p)
		if o.rendered[p.ID] {
			o.m.UpdateMarker(p.ID, mk)
		} else {
			o.m.AddMarker(p.ID, mk)
			o.rendered[p.ID] = true
		}
		if !p.Fixed {
			o.m.BindMarker(p.ID, o.handlers(p.ID))
		}
	}
	for id := range o.rendered {
		if !seen[id] {
			o.m.RemoveMarker(id)
			delete(o.rendered, id)
		}
	}
}

func (o *Overlay) markerFor(p layout.PlacedLayout) Marker {
	w, h := geometry.RotatedBoundingSize(p.Size.Width, p.Size.Height, p.Rotation)
	c := Content{
		PlacementID: p.ID,
		ImageData:   p.ImageData,
		Size:        p.Size,
		Rotation:    p.Rotation,
		Fixed:       p.Fixed,
	}
	if p.Fixed {
		c.Label = o.store.LayoutName(p.LayoutID)
	} else {
		c.Handles = make([]string, 0, len(transform.Handles)+1)
		for _, hd := range transform.Handles {
			c.Handles = append(c.Handles, string(hd))
		}
		c.Handles = append(c.Handles, transform.RotateHandle)
		c.FixAction = true
	}
	return Marker{
		Position:  p.Position,
		IconSize:  geometry.Size{Width: w, Height: h},
		Draggable: !p.Fixed,
		Content:   c,
	}
}

func (o *Overlay) handlers(id string) Handlers {
	return Handlers{
		OnHandleDown: func(handle string, pointer r2.Vec) {
			if err := o.BeginInteraction(id, handle, pointer); err != nil {
				slog.Debug("interaction not started", "placement", id, "error", err)
			}
		},
		OnFix:     func() { o.Fix(id) },
		OnDragEnd: func(pos layout.LatLng) { o.DragEnd(id, pos) },
	}
}

// HandleZoom rescales every fixed placement from its captured anchor and
// returns how many were rescaled.
func (o *Overlay) HandleZoom(zoom float64) int {
	n := 0
	for _, p := range o.store.Placements() {
		size, ok := p.SizeAtZoom(zoom)
		if !ok {
			continue
		}
		if o.store.UpdatePlacement(p.ID, func(pl *layout.PlacedLayout) { pl.Size = size }) {
			n++
		}
	}
	if n > 0 {
		o.Sync()
	}
	return n
}

// Fix locks a placement at the current zoom. It reports false if the
// placement is missing or already fixed. A session running on the
// placement aborts on its next move.
func (o *Overlay) Fix(id string) bool {
	zoom := o.m.Zoom()
	fixed := false
	if !o.store.UpdatePlacement(id, func(p *layout.PlacedLayout) { fixed = p.Fix(zoom) }) || !fixed {
		return false
	}
	slog.Info("placement fixed", "placement", id, "zoom", zoom)
	o.Sync()
	return true
}

// DragEnd moves a placement to the position its marker was dropped at.
func (o *Overlay) DragEnd(id string, pos layout.LatLng) bool {
	moved := false
	o.store.UpdatePlacement(id, func(p *layout.PlacedLayout) {
		if p.Fixed {
			return
		}
		p.Position = pos
		moved = true
	})
	if moved {
		o.Sync()
	}
	return moved
}

// BeginInteraction starts a rotate or resize session on a placement from a
// pointer-down on one of its handles. Map panning is suspended until the
// session ends.
func (o *Overlay) BeginInteraction(id, handle string, pointer r2.Vec) error {
	p, ok := o.store.Placement(id)
	if !ok {
		return fmt.Errorf("begin interaction on %s: %w", id, ErrPlacementNotFound)
	}
	if p.Fixed {
		return fmt.Errorf("begin interaction on %s: %w", id, ErrPlacementFixed)
	}
	kind, h, err := transform.ParseInteraction(handle)
	if err != nil {
		return fmt.Errorf("begin interaction on %s: %w", id, err)
	}

	origin := transform.FrameAt(o.m.Project(p.Position), p.Size, p.Rotation)
	session := transform.NewSession(kind, h, pointer, origin)
	acquirers := append([]transform.Acquirer{o.suspendPan}, o.capture...)
	o.ctrl.Begin(&placementTarget{o: o, id: id}, session, acquirers...)
	return nil
}

// PointerMove advances the running session.
func (o *Overlay) PointerMove(pointer r2.Vec) bool {
	return o.ctrl.Move(pointer)
}

// PointerUp ends the running session wherever the pointer is.
func (o *Overlay) PointerUp() {
	o.ctrl.End()
}

func (o *Overlay) suspendPan() func() {
	o.m.SetDragging(false)
	return func() { o.m.SetDragging(true) }
}

// placementTarget writes session frames back to a placement. Size and
// position are re-anchored geographically from the frame's screen center.
type placementTarget struct {
	o  *Overlay
	id string
}

func (t *placementTarget) Apply(kind transform.Kind, f transform.Frame) bool {
	live := false
	t.o.store.UpdatePlacement(t.id, func(p *layout.PlacedLayout) {
		if p.Fixed {
			return
		}
		live = true
		switch kind {
		case transform.Rotate:
			p.Rotation = f.Rotation
		case transform.Resize:
			p.Size = f.Size()
			p.Position = t.o.m.Unproject(f.Center())
		case transform.Move:
			p.Position = t.o.m.Unproject(f.Center())
		}
	})
	if live {
		t.o.Sync()
	}
	return live
}
