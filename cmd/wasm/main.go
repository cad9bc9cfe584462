//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"os"
	"syscall/js"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/auth"
	"github.com/layoutnav/layoutnav/internal/config"
	"github.com/layoutnav/layoutnav/internal/drawing"
	"github.com/layoutnav/layoutnav/internal/editor"
	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/imageio"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/navigator"
)

var (
	app           *navigator.App
	ed            *editor.Editor
	editorOptions editor.Options
	jm            *jsMap
	mapContainer  js.Value

	// playgroundContainer is the element editor pointer coordinates are
	// relative to.
	playgroundContainer js.Value
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	users, err := cfg.Users()
	if err != nil {
		slog.Error("parse users", "error", err)
		os.Exit(1)
	}
	svc := auth.NewService(cfg.JWTSecret, cfg.BcryptCost, cfg.SessionTTL)
	if err := svc.Seed(context.Background(), users); err != nil {
		slog.Error("seed users", "error", err)
		os.Exit(1)
	}
	app = navigator.New(svc, cfg.NavigatorOptions())
	editorOptions = cfg.EditorOptions()
	newEditor()

	api := js.Global().Get("Object").New()

	// --- Session ---
	api.Set("login", js.FuncOf(login))
	api.Set("logout", js.FuncOf(logout))
	api.Set("getState", js.FuncOf(getState))

	// --- Library ---
	api.Set("openCreator", js.FuncOf(openCreator))
	api.Set("cancelCreation", js.FuncOf(cancelCreation))
	api.Set("selectLayout", js.FuncOf(selectLayout))
	api.Set("getLayouts", js.FuncOf(getLayouts))

	// --- Editor ---
	api.Set("loadImage", js.FuncOf(loadImage))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))
	api.Set("beginFrameInteraction", js.FuncOf(beginFrameInteraction))
	api.Set("clearCanvas", js.FuncOf(clearCanvas))
	api.Set("getCanvas", js.FuncOf(getCanvas))
	api.Set("getFrame", js.FuncOf(getFrame))
	api.Set("saveLayout", js.FuncOf(saveLayout))

	// --- Map ---
	api.Set("attachMap", js.FuncOf(attachMap))
	api.Set("detachMap", js.FuncOf(detachMap))
	api.Set("requestPlacement", js.FuncOf(requestPlacement))
	api.Set("place", js.FuncOf(place))
	api.Set("handleDown", js.FuncOf(handleDown))
	api.Set("fixPlacement", js.FuncOf(fixPlacement))
	api.Set("dragEnd", js.FuncOf(dragEnd))
	api.Set("removePlacement", js.FuncOf(removePlacement))
	api.Set("getPlacements", js.FuncOf(getPlacements))

	js.Global().Set("layoutNavigator", api)
	js.Global().Set("layoutNavigatorReady", js.ValueOf(true))

	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

func sizeArg(args []js.Value, i int) geometry.Size {
	return geometry.Size{Width: args[i].Float(), Height: args[i+1].Float()}
}

// --- Session ---

func login(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("email and password")
	}
	code, success := app.Login(context.Background(), args[0].String(), args[1].String())
	if !success {
		return js.ValueOf(map[string]interface{}{
			"code":    code,
			"message": auth.FailureMessage(code),
		})
	}
	return ok()
}

func logout(this js.Value, args []js.Value) interface{} {
	app.Logout()
	newEditor()
	return ok()
}

// newEditor replaces the editor. Frame interactions keep tracking the
// pointer through window listeners once it leaves the playground.
func newEditor() {
	ed = editor.New(app.Controller(), editorOptions)
	ed.SetCapture(windowPointer(
		func() js.Value { return playgroundContainer },
		func(p r2.Vec) { ed.PointerMove(p) },
		func(p r2.Vec) { ed.PointerUp(p) },
	))
}

func getState(this js.Value, args []js.Value) interface{} {
	state := map[string]interface{}{
		"authenticated": app.Authenticated(),
		"email":         app.Email(),
		"view":          app.View().String(),
		"tool":          ed.Tool().String(),
		"hasImage":      ed.HasImage(),
	}
	if l, found := app.Selected(); found {
		state["selected"] = l.ID
	}
	if l, found := app.Pending(); found {
		state["pending"] = l.ID
	}
	return js.ValueOf(state)
}

// --- Library ---

func openCreator(this js.Value, args []js.Value) interface{} {
	if err := app.OpenCreator(); err != nil {
		return fail(err)
	}
	return ok()
}

func cancelCreation(this js.Value, args []js.Value) interface{} {
	app.CancelCreation()
	return ok()
}

func selectLayout(this js.Value, args []js.Value) interface{} {
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	if err := app.SelectLayout(id); err != nil {
		return fail(err)
	}
	return ok()
}

func getLayouts(this js.Value, args []js.Value) interface{} {
	return toJSON(app.Layouts())
}

// --- Editor ---

// loadImage takes the image file bytes (Uint8Array), the playground width
// and height, and optionally the playground element.
func loadImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("image bytes and playground size")
	}
	if len(args) > 3 {
		playgroundContainer = args[3]
	}
	data := make([]byte, args[0].Length())
	js.CopyBytesToGo(data, args[0])
	img, err := imageio.DecodeBytes(data)
	if err != nil {
		return fail(err)
	}
	if err := ed.LoadImage(img, sizeArg(args, 1)); err != nil {
		return fail(err)
	}
	return ok()
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("tool")
	}
	t, err := drawing.ParseTool(args[0].String())
	if err != nil {
		return fail(err)
	}
	ed.SetTool(t)
	return ok()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) >= 2 {
		ed.PointerDown(geometry.Pt(args[0].Float(), args[1].Float()))
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) >= 2 {
		ed.PointerMove(geometry.Pt(args[0].Float(), args[1].Float()))
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) >= 2 {
		ed.PointerUp(geometry.Pt(args[0].Float(), args[1].Float()))
	}
	return nil
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	if len(args) >= 2 {
		ed.PointerLeave(geometry.Pt(args[0].Float(), args[1].Float()))
	}
	return nil
}

func beginFrameInteraction(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("interaction and pointer")
	}
	if err := ed.BeginInteraction(args[0].String(), geometry.Pt(args[1].Float(), args[2].Float())); err != nil {
		return fail(err)
	}
	return ok()
}

func clearCanvas(this js.Value, args []js.Value) interface{} {
	ed.Clear()
	return ok()
}

// getCanvas returns the drawing as RGBA bytes ready for ImageData.
func getCanvas(this js.Value, args []js.Value) interface{} {
	img := ed.Engine().Surface().Image()
	rgba, isRGBA := img.(*image.RGBA)
	if !isRGBA {
		b := img.Bounds()
		rgba = image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}
	pix := js.Global().Get("Uint8ClampedArray").New(len(rgba.Pix))
	js.CopyBytesToJS(pix, rgba.Pix)
	return js.ValueOf(map[string]interface{}{
		"width":  rgba.Rect.Dx(),
		"height": rgba.Rect.Dy(),
		"pixels": pix,
	})
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return toJSON(ed.Frame())
}

func saveLayout(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("name and owner")
	}
	l, err := ed.Save(args[0].String(), args[1].String())
	if err != nil {
		return fail(err)
	}
	if err := app.AddLayout(l); err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": l.ID})
}

// --- Map ---

// attachMap takes the page's map adapter and its container element.
func attachMap(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("map adapter")
	}
	jm = newJSMap(args[0])
	if len(args) > 1 {
		mapContainer = args[1]
	}
	app.AttachMap(jm, windowPointer(
		func() js.Value { return mapContainer },
		func(p r2.Vec) {
			if o := app.Overlay(); o != nil {
				o.PointerMove(p)
			}
		},
		func(r2.Vec) {
			if o := app.Overlay(); o != nil {
				o.PointerUp()
			}
		},
	))
	return ok()
}

func detachMap(this js.Value, args []js.Value) interface{} {
	app.DetachMap()
	jm = nil
	mapContainer = js.Undefined()
	return ok()
}

func requestPlacement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("layout id")
	}
	if err := app.RequestPlacement(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func place(this js.Value, args []js.Value) interface{} {
	p, err := app.Place()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": p.ID})
}

// handleDown delivers a pointer-down on a marker handle: id, handle, x, y
// in map container pixels.
func handleDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 || jm == nil {
		return missing("placement, handle and pointer")
	}
	h, bound := jm.handler(args[0].String())
	if !bound || h.OnHandleDown == nil {
		return js.ValueOf(map[string]interface{}{"error": "placement has no handles"})
	}
	h.OnHandleDown(args[1].String(), geometry.Pt(args[2].Float(), args[3].Float()))
	return ok()
}

func fixPlacement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("placement id")
	}
	if err := app.Fix(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func dragEnd(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 || jm == nil {
		return missing("placement and position")
	}
	h, bound := jm.handler(args[0].String())
	if !bound || h.OnDragEnd == nil {
		return js.ValueOf(map[string]interface{}{"error": "placement is not draggable"})
	}
	h.OnDragEnd(layout.LatLng{Lat: args[1].Float(), Lng: args[2].Float()})
	return ok()
}

func removePlacement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("placement id")
	}
	if err := app.Remove(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func getPlacements(this js.Value, args []js.Value) interface{} {
	return toJSON(app.Placements())
}
