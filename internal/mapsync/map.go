// Package mapsync keeps map markers consistent with the placed layouts and
// runs handle interactions on them.
package mapsync

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/layout"
)

// Map is the capability surface the overlay needs from a map widget.
// Points are in map-container pixels.
type Map interface {
	Project(ll layout.LatLng) r2.Vec
	Unproject(p r2.Vec) layout.LatLng
	Zoom() float64
	Center() layout.LatLng

	AddMarker(id string, m Marker)
	// UpdateMarker replaces the marker's position and content in place.
	// Replacing content drops any handlers bound to the marker.
	UpdateMarker(id string, m Marker)
	RemoveMarker(id string)
	BindMarker(id string, h Handlers)

	// OnZoom registers fn to run after each zoom change and returns a
	// function that unregisters it.
	OnZoom(fn func(zoom float64)) (cancel func())
	// SetDragging enables or disables the map's own pan gesture.
	SetDragging(enabled bool)
}

// Marker is what the map renders for one placement.
type Marker struct {
	Position layout.LatLng
	// IconSize is the rotated bounding box of the content, so rotated
	// content is never cropped.
	IconSize  geometry.Size
	Draggable bool
	Content   Content
}

// Content is the marker body: the layout image at its size and rotation,
// plus either interaction affordances or, once fixed, the layout's name.
type Content struct {
	PlacementID string
	ImageData   []byte
	Size        geometry.Size
	Rotation    float64
	Fixed       bool
	Label       string
	Handles     []string
	FixAction   bool
}

// Handlers are the marker callbacks the overlay binds.
type Handlers struct {
	// OnHandleDown fires on pointer-down over a resize or rotate handle.
	OnHandleDown func(handle string, pointer r2.Vec)
	OnFix        func()
	OnDragEnd    func(position layout.LatLng)
}

// Store is the placement list the overlay reads and mutates.
type Store interface {
	Placements() []layout.PlacedLayout
	Placement(id string) (layout.PlacedLayout, bool)
	UpdatePlacement(id string, fn func(*layout.PlacedLayout)) bool
	LayoutName(layoutID string) string
}
