// Package geo is an in-process map widget: a Web-Mercator viewport with a
// marker layer that satisfies mapsync.Map.
package geo

import (
	"maps"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/layout"
)

// TileSize is the pixel width of the world at zoom 0.
const TileSize = 256

// earthRadius matches the sphere orb's Mercator projection uses.
const earthRadius = 6378137.0

// Viewport maps geographic coordinates to container pixels for a center,
// a zoom level and a container size.
type Viewport struct {
	center   layout.LatLng
	zoom     float64
	width    float64
	height   float64
	dragging bool

	layer *Layer

	zoomListeners map[int]func(float64)
	nextListener  int
}

func NewViewport(center layout.LatLng, zoom, width, height float64) *Viewport {
	return &Viewport{
		center:        center,
		zoom:          zoom,
		width:         width,
		height:        height,
		dragging:      true,
		layer:         NewLayer(),
		zoomListeners: make(map[int]func(float64)),
	}
}

func (v *Viewport) Zoom() float64            { return v.zoom }
func (v *Viewport) Center() layout.LatLng    { return v.center }
func (v *Viewport) Dragging() bool           { return v.dragging }
func (v *Viewport) SetDragging(enabled bool) { v.dragging = enabled }
func (v *Viewport) Layer() *Layer            { return v.layer }

func (v *Viewport) Size() (float64, float64) { return v.width, v.height }

// worldPixel returns the absolute pixel position of ll at the current zoom.
func (v *Viewport) worldPixel(ll layout.LatLng) r2.Vec {
	m := project.WGS84.ToMercator(orb.Point{ll.Lng, ll.Lat})
	scale := TileSize * math.Pow(2, v.zoom)
	half := math.Pi * earthRadius
	return r2.Vec{
		X: (m[0] + half) / (2 * half) * scale,
		Y: (half - m[1]) / (2 * half) * scale,
	}
}

func (v *Viewport) fromWorldPixel(p r2.Vec) layout.LatLng {
	scale := TileSize * math.Pow(2, v.zoom)
	half := math.Pi * earthRadius
	m := orb.Point{
		p.X/scale*2*half - half,
		half - p.Y/scale*2*half,
	}
	ll := project.Mercator.ToWGS84(m)
	return layout.LatLng{Lat: ll[1], Lng: ll[0]}
}

// Project returns the container pixel of ll.
func (v *Viewport) Project(ll layout.LatLng) r2.Vec {
	origin := r2.Sub(v.worldPixel(v.center), r2.Vec{X: v.width / 2, Y: v.height / 2})
	return r2.Sub(v.worldPixel(ll), origin)
}

// Unproject returns the coordinate under container pixel p.
func (v *Viewport) Unproject(p r2.Vec) layout.LatLng {
	origin := r2.Sub(v.worldPixel(v.center), r2.Vec{X: v.width / 2, Y: v.height / 2})
	return v.fromWorldPixel(r2.Add(p, origin))
}

// SetZoom changes the zoom level and notifies zoom listeners. Setting the
// current zoom again still notifies.
func (v *Viewport) SetZoom(zoom float64) {
	v.zoom = zoom
	for _, fn := range v.listeners() {
		fn(zoom)
	}
}

// Pan moves the view by a pixel delta, as the map's own drag gesture does.
// It reports false while dragging is disabled.
func (v *Viewport) Pan(dx, dy float64) bool {
	if !v.dragging {
		return false
	}
	v.center = v.Unproject(r2.Vec{X: v.width/2 - dx, Y: v.height/2 - dy})
	return true
}

func (v *Viewport) SetCenter(ll layout.LatLng) { v.center = ll }

func (v *Viewport) OnZoom(fn func(float64)) func() {
	id := v.nextListener
	v.nextListener++
	v.zoomListeners[id] = fn
	return func() { delete(v.zoomListeners, id) }
}

func (v *Viewport) listeners() []func(float64) {
	var out []func(float64)
	for _, id := range slices.Sorted(maps.Keys(v.zoomListeners)) {
		out = append(out, v.zoomListeners[id])
	}
	return out
}
