package geo

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/mapsync"
	"github.com/layoutnav/layoutnav/internal/transform"
)

var (
	ErrNoMarker     = errors.New("no such marker")
	ErrNoHandler    = errors.New("marker has no handler for this action")
	ErrNotDraggable = errors.New("marker is not draggable")
)

// Layer is an ordered marker group. Updating a marker's content drops its
// handlers, as replacing a DOM subtree drops its listeners.
type Layer struct {
	order    []string
	markers  map[string]mapsync.Marker
	handlers map[string]mapsync.Handlers
}

func NewLayer() *Layer {
	return &Layer{
		markers:  make(map[string]mapsync.Marker),
		handlers: make(map[string]mapsync.Handlers),
	}
}

func (l *Layer) add(id string, m mapsync.Marker) {
	if _, ok := l.markers[id]; !ok {
		l.order = append(l.order, id)
	}
	l.markers[id] = m
}

func (l *Layer) update(id string, m mapsync.Marker) {
	if _, ok := l.markers[id]; !ok {
		return
	}
	l.markers[id] = m
	delete(l.handlers, id)
}

func (l *Layer) remove(id string) {
	delete(l.markers, id)
	delete(l.handlers, id)
	l.order = slices.DeleteFunc(l.order, func(x string) bool { return x == id })
}

func (l *Layer) bind(id string, h mapsync.Handlers) {
	if _, ok := l.markers[id]; ok {
		l.handlers[id] = h
	}
}

// IDs returns the marker ids in insertion order.
func (l *Layer) IDs() []string { return slices.Clone(l.order) }

func (l *Layer) Marker(id string) (mapsync.Marker, bool) {
	m, ok := l.markers[id]
	return m, ok
}

var _ mapsync.Map = (*Viewport)(nil)

func (v *Viewport) AddMarker(id string, m mapsync.Marker)    { v.layer.add(id, m) }
func (v *Viewport) UpdateMarker(id string, m mapsync.Marker) { v.layer.update(id, m) }
func (v *Viewport) RemoveMarker(id string)                   { v.layer.remove(id) }
func (v *Viewport) BindMarker(id string, h mapsync.Handlers) { v.layer.bind(id, h) }

// --- Input simulation ---

// HitTest returns the id of the topmost marker whose rotated content covers
// container point p, or "" if none does. Later markers draw on top.
func (v *Viewport) HitTest(p r2.Vec) string {
	ids := v.layer.order
	for i := len(ids) - 1; i >= 0; i-- {
		m := v.layer.markers[ids[i]]
		f := transform.FrameAt(v.Project(m.Position), m.Content.Size, m.Content.Rotation)
		if f.Contains(p) {
			return ids[i]
		}
	}
	return ""
}

// PressHandle delivers a pointer-down on one of a marker's handles at the
// given container point.
func (v *Viewport) PressHandle(id, handle string, pointer r2.Vec) error {
	h, err := v.handler(id)
	if err != nil {
		return err
	}
	m, _ := v.layer.Marker(id)
	if !slices.Contains(m.Content.Handles, handle) || h.OnHandleDown == nil {
		return fmt.Errorf("press %s on %s: %w", handle, id, ErrNoHandler)
	}
	h.OnHandleDown(handle, pointer)
	return nil
}

// ClickFix presses a marker's fix action.
func (v *Viewport) ClickFix(id string) error {
	h, err := v.handler(id)
	if err != nil {
		return err
	}
	m, _ := v.layer.Marker(id)
	if !m.Content.FixAction || h.OnFix == nil {
		return fmt.Errorf("fix %s: %w", id, ErrNoHandler)
	}
	h.OnFix()
	return nil
}

// DragMarker drops a draggable marker at a new coordinate.
func (v *Viewport) DragMarker(id string, to layout.LatLng) error {
	m, ok := v.layer.Marker(id)
	if !ok {
		return fmt.Errorf("drag %s: %w", id, ErrNoMarker)
	}
	if !m.Draggable {
		return fmt.Errorf("drag %s: %w", id, ErrNotDraggable)
	}
	m.Position = to
	v.layer.markers[id] = m
	if h, ok := v.layer.handlers[id]; ok && h.OnDragEnd != nil {
		h.OnDragEnd(to)
	}
	return nil
}

func (v *Viewport) handler(id string) (mapsync.Handlers, error) {
	if _, ok := v.layer.Marker(id); !ok {
		return mapsync.Handlers{}, fmt.Errorf("marker %s: %w", id, ErrNoMarker)
	}
	h, ok := v.layer.handlers[id]
	if !ok {
		return mapsync.Handlers{}, fmt.Errorf("marker %s: %w", id, ErrNoHandler)
	}
	return h, nil
}
