//go:build js && wasm

package main

import (
	"encoding/base64"
	"syscall/js"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/mapsync"
	"github.com/layoutnav/layoutnav/internal/transform"
)

// jsMap adapts a page-side map object to mapsync.Map. The adapter exposes
// project, unproject, getZoom, getCenter, addMarker, updateMarker,
// removeMarker, setDragging and onZoom; marker events come back through
// the bridge's handleDown, fixPlacement and dragEnd functions.
type jsMap struct {
	v        js.Value
	handlers map[string]mapsync.Handlers
}

func newJSMap(v js.Value) *jsMap {
	return &jsMap{v: v, handlers: make(map[string]mapsync.Handlers)}
}

func (m *jsMap) Project(ll layout.LatLng) r2.Vec {
	p := m.v.Call("project", ll.Lat, ll.Lng)
	return r2.Vec{X: p.Index(0).Float(), Y: p.Index(1).Float()}
}

func (m *jsMap) Unproject(p r2.Vec) layout.LatLng {
	return latLng(m.v.Call("unproject", p.X, p.Y))
}

func (m *jsMap) Zoom() float64         { return m.v.Call("getZoom").Float() }
func (m *jsMap) Center() layout.LatLng { return latLng(m.v.Call("getCenter")) }

func (m *jsMap) AddMarker(id string, mk mapsync.Marker) {
	m.v.Call("addMarker", id, markerValue(mk))
}

func (m *jsMap) UpdateMarker(id string, mk mapsync.Marker) {
	delete(m.handlers, id)
	m.v.Call("updateMarker", id, markerValue(mk))
}

func (m *jsMap) RemoveMarker(id string) {
	delete(m.handlers, id)
	m.v.Call("removeMarker", id)
}

func (m *jsMap) BindMarker(id string, h mapsync.Handlers) {
	m.handlers[id] = h
}

func (m *jsMap) SetDragging(enabled bool) {
	m.v.Call("setDragging", enabled)
}

func (m *jsMap) OnZoom(fn func(zoom float64)) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			fn(args[0].Float())
		}
		return nil
	})
	unsubscribe := m.v.Call("onZoom", cb)
	return func() {
		if unsubscribe.Type() == js.TypeFunction {
			unsubscribe.Invoke()
		}
		cb.Release()
	}
}

func (m *jsMap) handler(id string) (mapsync.Handlers, bool) {
	h, ok := m.handlers[id]
	return h, ok
}

func latLng(v js.Value) layout.LatLng {
	return layout.LatLng{Lat: v.Get("lat").Float(), Lng: v.Get("lng").Float()}
}

func markerValue(mk mapsync.Marker) map[string]interface{} {
	c := mk.Content
	handles := make([]interface{}, len(c.Handles))
	for i, h := range c.Handles {
		handles[i] = h
	}
	return map[string]interface{}{
		"lat":        mk.Position.Lat,
		"lng":        mk.Position.Lng,
		"iconWidth":  mk.IconSize.Width,
		"iconHeight": mk.IconSize.Height,
		"draggable":  mk.Draggable,
		"imageUrl":   "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.ImageData),
		"width":      c.Size.Width,
		"height":     c.Size.Height,
		"rotation":   c.Rotation,
		"isFixed":    c.Fixed,
		"label":      c.Label,
		"handles":    handles,
		"fixAction":  c.FixAction,
	}
}

// windowPointer returns an acquirer that holds window-level pointermove and
// pointerup listeners for the length of an interaction session, so a
// release anywhere ends it. Points are relative to the element origin
// returns, or the viewport when it is unset.
func windowPointer(origin func() js.Value, move, up func(r2.Vec)) transform.Acquirer {
	return func() func() {
		win := js.Global().Get("window")
		onMove := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			if len(args) > 0 {
				move(eventPoint(origin(), args[0]))
			}
			return nil
		})
		onUp := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			if len(args) > 0 {
				up(eventPoint(origin(), args[0]))
			}
			return nil
		})
		win.Call("addEventListener", "pointermove", onMove)
		win.Call("addEventListener", "pointerup", onUp)
		return func() {
			win.Call("removeEventListener", "pointermove", onMove)
			win.Call("removeEventListener", "pointerup", onUp)
			onMove.Release()
			onUp.Release()
		}
	}
}

// eventPoint converts a pointer event to coordinates relative to el.
func eventPoint(el, ev js.Value) r2.Vec {
	p := r2.Vec{X: ev.Get("clientX").Float(), Y: ev.Get("clientY").Float()}
	if el.Truthy() {
		rect := el.Call("getBoundingClientRect")
		p.X -= rect.Get("left").Float()
		p.Y -= rect.Get("top").Float()
	}
	return p
}
