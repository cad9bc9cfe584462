package navigator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/layoutnav/layoutnav/internal/auth"
	"github.com/layoutnav/layoutnav/internal/geo"
	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/mapsync"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newApp(t *testing.T) *App {
	t.Helper()
	svc := auth.NewService("secret", bcrypt.MinCost, time.Hour)
	if _, err := svc.Register(context.Background(), "admin@example.com", "changeme"); err != nil {
		t.Fatal(err)
	}
	return New(svc, DefaultOptions())
}

func loggedIn(t *testing.T) *App {
	t.Helper()
	a := newApp(t)
	if code, ok := a.Login(context.Background(), "admin@example.com", "changeme"); !ok {
		t.Fatalf("Login failed: %s", code)
	}
	return a
}

func newViewport() *geo.Viewport {
	return geo.NewViewport(layout.LatLng{Lat: 51.505, Lng: -0.09}, 13, 1024, 768)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		ok       bool
		code     string
	}{
		{"valid", "admin@example.com", "changeme", true, ""},
		{"bad email", "admin", "changeme", false, auth.CodeInvalidEmail},
		{"bad password", "admin@example.com", "wrong", false, auth.CodeInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t)
			code, ok := a.Login(context.Background(), tt.email, tt.password)
			if ok != tt.ok || code != tt.code {
				t.Fatalf("Login = (%q, %v), want (%q, %v)", code, ok, tt.code, tt.ok)
			}
			if a.Authenticated() != tt.ok {
				t.Fatalf("Authenticated = %v", a.Authenticated())
			}
		})
	}
}

func TestRequiresLogin(t *testing.T) {
	a := newApp(t)
	if err := a.OpenCreator(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("OpenCreator err = %v", err)
	}
	if _, err := a.SaveLayout("n", "o", pngBytes(t, 2, 2)); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SaveLayout err = %v", err)
	}
	if _, err := a.Place(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Place err = %v", err)
	}
}

func TestViewsAndSelection(t *testing.T) {
	a := loggedIn(t)
	l, err := a.SaveLayout("Hall", "ops", pngBytes(t, 4, 2))
	if err != nil {
		t.Fatal(err)
	}

	if err := a.SelectLayout(l.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Selected(); !ok {
		t.Fatal("layout should be selected")
	}
	if err := a.OpenCreator(); err != nil {
		t.Fatal(err)
	}
	if a.View() != ViewCreate {
		t.Fatalf("view = %v, want create", a.View())
	}
	if _, ok := a.Selected(); ok {
		t.Fatal("opening the creator clears the selection")
	}
	a.CancelCreation()
	if a.View() != ViewMap {
		t.Fatalf("view = %v, want map", a.View())
	}

	if err := a.SelectLayout(l.ID); err != nil {
		t.Fatal(err)
	}
	if err := a.SelectLayout(l.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Selected(); ok {
		t.Fatal("selecting the selected layout toggles it off")
	}
	if err := a.SelectLayout("layout_missing"); !errors.Is(err, ErrLayoutNotFound) {
		t.Fatalf("err = %v, want ErrLayoutNotFound", err)
	}
}

func TestSaveReturnsToMap(t *testing.T) {
	a := loggedIn(t)
	if err := a.OpenCreator(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.SaveLayout("Hall", "ops", pngBytes(t, 4, 2)); err != nil {
		t.Fatal(err)
	}
	if a.View() != ViewMap || len(a.Layouts()) != 1 {
		t.Fatalf("view = %v layouts = %d", a.View(), len(a.Layouts()))
	}
}

func TestPlace(t *testing.T) {
	a := loggedIn(t)
	vp := newViewport()
	a.AttachMap(vp)

	l, err := a.SaveLayout("Hall", "ops", pngBytes(t, 400, 100))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Place(); !errors.Is(err, ErrNoPendingPlacement) {
		t.Fatalf("err = %v, want ErrNoPendingPlacement", err)
	}
	if err := a.SelectLayout(l.ID); err != nil {
		t.Fatal(err)
	}
	if err := a.RequestPlacement(l.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Selected(); ok {
		t.Fatal("requesting placement clears the selection")
	}

	p, err := a.Place()
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if p.Size.Width != 200 || p.Size.Height != 50 {
		t.Fatalf("size = %+v, want 200x50", p.Size)
	}
	if p.Position != vp.Center() || p.Rotation != 0 || p.Fixed {
		t.Fatalf("placement = %+v", p)
	}
	if _, ok := a.Pending(); ok {
		t.Fatal("pending layout should clear after placement")
	}
	if _, ok := vp.Layer().Marker(p.ID); !ok {
		t.Fatal("placement should be rendered as a marker")
	}
}

func TestPlaceWithoutMap(t *testing.T) {
	a := loggedIn(t)
	l, _ := a.SaveLayout("Hall", "ops", pngBytes(t, 4, 2))
	if err := a.RequestPlacement(l.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Place(); !errors.Is(err, ErrNoMap) {
		t.Fatalf("err = %v, want ErrNoMap", err)
	}
}

func placed(t *testing.T) (*App, *geo.Viewport, layout.PlacedLayout) {
	t.Helper()
	a := loggedIn(t)
	vp := newViewport()
	a.AttachMap(vp)
	l, err := a.SaveLayout("Hall", "ops", pngBytes(t, 400, 200))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.RequestPlacement(l.ID); err != nil {
		t.Fatal(err)
	}
	p, err := a.Place()
	if err != nil {
		t.Fatal(err)
	}
	return a, vp, p
}

func TestFixAndZoom(t *testing.T) {
	a, vp, p := placed(t)
	if err := a.Fix(p.ID); err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if err := a.Fix(p.ID); !errors.Is(err, mapsync.ErrPlacementFixed) {
		t.Fatalf("second Fix err = %v, want ErrPlacementFixed", err)
	}
	mk, _ := vp.Layer().Marker(p.ID)
	if mk.Content.Label != "Hall" || len(mk.Content.Handles) != 0 {
		t.Fatalf("fixed marker content = %+v", mk.Content)
	}

	vp.SetZoom(14)
	got, _ := a.Placement(p.ID)
	if got.Size.Width != 400 || got.Size.Height != 200 {
		t.Fatalf("size after zoom in = %+v, want 400x200", got.Size)
	}
}

func TestRemoveAndEdit(t *testing.T) {
	a, vp, p := placed(t)
	if err := a.Edit(p.ID, geometry.Size{Width: 300, Height: 150}, 45); err != nil {
		t.Fatal(err)
	}
	mk, _ := vp.Layer().Marker(p.ID)
	if mk.Content.Rotation != 45 || mk.Content.Size.Width != 300 {
		t.Fatalf("marker content = %+v, want 300 wide at 45 degrees", mk.Content)
	}
	if err := a.Edit(p.ID, geometry.Size{Width: 5, Height: 150}, 0); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
	if err := a.Remove(p.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := vp.Layer().Marker(p.ID); ok {
		t.Fatal("removed placement still rendered")
	}
	if err := a.Remove(p.ID); !errors.Is(err, ErrPlacementNotFound) {
		t.Fatalf("err = %v, want ErrPlacementNotFound", err)
	}
	if err := a.Edit(p.ID, geometry.Size{Width: 300, Height: 150}, 0); !errors.Is(err, ErrPlacementNotFound) {
		t.Fatalf("err = %v, want ErrPlacementNotFound", err)
	}
}

func TestEditRejectsFixedPlacement(t *testing.T) {
	a, vp, p := placed(t)
	if err := a.Fix(p.ID); err != nil {
		t.Fatal(err)
	}
	before, _ := a.Placement(p.ID)

	err := a.Edit(p.ID, geometry.Size{Width: 999, Height: 100}, 45)
	if !errors.Is(err, mapsync.ErrPlacementFixed) {
		t.Fatalf("err = %v, want ErrPlacementFixed", err)
	}
	after, _ := a.Placement(p.ID)
	if after.Rotation != before.Rotation || after.Size != before.Size ||
		*after.InitialSize != *before.InitialSize || *after.InitialZoom != *before.InitialZoom {
		t.Fatalf("fixed placement changed: %+v -> %+v", before, after)
	}

	vp.SetZoom(14)
	got, _ := a.Placement(p.ID)
	if got.Size.Width != 400 || got.Size.Height != 200 {
		t.Fatalf("size after zoom in = %+v, want 400x200", got.Size)
	}
}

func TestLogoutResetsEverything(t *testing.T) {
	a, vp, _ := placed(t)
	if err := a.OpenCreator(); err != nil {
		t.Fatal(err)
	}
	a.Logout()

	if a.Authenticated() || a.Email() != "" || a.View() != ViewMap {
		t.Fatalf("session not cleared: email=%q view=%v", a.Email(), a.View())
	}
	if len(a.Layouts()) != 0 || len(a.Placements()) != 0 {
		t.Fatal("layouts and placements should be cleared")
	}
	if len(vp.Layer().IDs()) != 0 {
		t.Fatal("markers should be removed")
	}
}

func TestRequestPlacementUnknownLayout(t *testing.T) {
	a := loggedIn(t)
	for _, id := range []string{"not-an-id", "place_01h455vb4pex5vsknk084sn02q"} {
		if err := a.RequestPlacement(id); !errors.Is(err, ErrLayoutNotFound) {
			t.Errorf("RequestPlacement(%q) err = %v, want ErrLayoutNotFound", id, err)
		}
	}
}
