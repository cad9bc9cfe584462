package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/layoutnav/layoutnav/internal/auth"
	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/imageio"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/mapsync"
	"github.com/layoutnav/layoutnav/internal/transform"
	"github.com/layoutnav/layoutnav/internal/typeid"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrLayoutNotFound     = errors.New("layout not found")
	ErrPlacementNotFound  = errors.New("placement not found")
	ErrNoPendingPlacement = errors.New("no layout waiting to be placed")
	ErrNoMap              = errors.New("no map attached")
	ErrInvalidSize        = errors.New("placement size below minimum")
)

type View int

const (
	ViewMap View = iota
	ViewCreate
)

func (v View) String() string {
	if v == ViewCreate {
		return "create"
	}
	return "map"
}

type Options struct {
	PlaceWidth float64
	Transform  transform.Options
}

func DefaultOptions() Options {
	return Options{PlaceWidth: 200, Transform: transform.DefaultOptions()}
}

// Authenticator is the credential check the app logs in against.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
	ValidateToken(token string) (string, error)
}

// App holds everything the user sees once logged in: the layout library,
// the layouts placed on the map, and which view is showing.
type App struct {
	auth Authenticator
	opts Options
	ctrl *transform.Controller

	// Session state
	email string
	token string

	// View state
	view     View
	selected string
	pending  string

	layouts    layout.Library
	placements layout.Placements

	m       mapsync.Map
	overlay *mapsync.Overlay
}

func New(a Authenticator, opts Options) *App {
	return &App{
		auth: a,
		opts: opts,
		ctrl: transform.NewController(opts.Transform),
	}
}

// --- Queries ---

// Controller is the interaction controller shared by the map overlay and
// the editor.
func (a *App) Controller() *transform.Controller { return a.ctrl }
func (a *App) Email() string                     { return a.email }
func (a *App) View() View                        { return a.view }
func (a *App) Layouts() []layout.Layout          { return a.layouts.All() }
func (a *App) Overlay() *mapsync.Overlay         { return a.overlay }

// Authenticated reports whether the session token is still valid.
func (a *App) Authenticated() bool {
	if a.token == "" {
		return false
	}
	if _, err := a.auth.ValidateToken(a.token); err != nil {
		slog.Debug("session token rejected", "error", err)
		return false
	}
	return true
}

// Selected returns the highlighted layout, if any.
func (a *App) Selected() (layout.Layout, bool) {
	if a.selected == "" {
		return layout.Layout{}, false
	}
	return a.layouts.Get(a.selected)
}

// Pending returns the layout waiting to be placed, if any.
func (a *App) Pending() (layout.Layout, bool) {
	if a.pending == "" {
		return layout.Layout{}, false
	}
	return a.layouts.Get(a.pending)
}

// --- Commands ---

// Login checks the credentials. On failure it returns the failure code and
// the caller is expected to clear the password it holds.
func (a *App) Login(ctx context.Context, email, password string) (string, bool) {
	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		code := auth.Code(err)
		slog.Warn("login failed", "email", email, "code", code, "error", err)
		return code, false
	}
	if res.User.Email == "" {
		return auth.CodeUnknown, false
	}
	a.email = res.User.Email
	a.token = res.Token
	a.view = ViewMap
	slog.Info("user logged in", "email", a.email)
	return "", true
}

// Logout drops the session and everything created during it.
func (a *App) Logout() {
	a.ctrl.End()
	slog.Info("user logged out", "email", a.email)
	a.email = ""
	a.token = ""
	a.view = ViewMap
	a.selected = ""
	a.pending = ""
	a.layouts.Reset()
	a.placements.Reset()
	a.sync()
}

func (a *App) OpenCreator() error {
	if !a.Authenticated() {
		return ErrNotAuthenticated
	}
	a.view = ViewCreate
	a.selected = ""
	return nil
}

func (a *App) CancelCreation() {
	a.view = ViewMap
}

// SelectLayout highlights a layout; selecting the highlighted layout again
// clears the selection. An empty id clears it too.
func (a *App) SelectLayout(id string) error {
	if id == "" || id == a.selected {
		a.selected = ""
		return nil
	}
	if _, ok := a.layouts.Get(id); !ok {
		return fmt.Errorf("select %s: %w", id, ErrLayoutNotFound)
	}
	a.selected = id
	return nil
}

// SaveLayout adds a new layout to the library and returns to the map.
func (a *App) SaveLayout(name, owner string, imageData []byte) (layout.Layout, error) {
	l := layout.New(name, owner, imageData)
	if err := a.AddLayout(l); err != nil {
		return layout.Layout{}, err
	}
	return l, nil
}

// AddLayout adds a layout built elsewhere, such as by the editor, and
// returns to the map.
func (a *App) AddLayout(l layout.Layout) error {
	if !a.Authenticated() {
		return ErrNotAuthenticated
	}
	a.layouts.Add(l)
	a.view = ViewMap
	slog.Info("layout added", "id", l.ID, "name", l.Name, "owner", l.Owner)
	return nil
}

// AttachMap connects the app to a map. Placements are rendered on it
// straight away. A previously attached map is detached first.
func (a *App) AttachMap(m mapsync.Map, capture ...transform.Acquirer) *mapsync.Overlay {
	a.DetachMap()
	a.m = m
	a.overlay = mapsync.NewOverlay(m, a, a.ctrl)
	a.overlay.SetCapture(capture...)
	a.overlay.Sync()
	return a.overlay
}

func (a *App) DetachMap() {
	if a.overlay != nil {
		a.overlay.Close()
	}
	a.m = nil
	a.overlay = nil
}

// RequestPlacement marks a layout to be placed on the map and clears the
// selection. Place completes it.
func (a *App) RequestPlacement(layoutID string) error {
	if !a.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := typeid.Validate(layoutID, typeid.PrefixLayout); err != nil {
		return fmt.Errorf("place: %w: %v", ErrLayoutNotFound, err)
	}
	if _, ok := a.layouts.Get(layoutID); !ok {
		return fmt.Errorf("place %s: %w", layoutID, ErrLayoutNotFound)
	}
	a.pending = layoutID
	a.selected = ""
	return nil
}

// Place puts the pending layout at the map center, PlaceWidth pixels wide
// with the height following the image's aspect ratio.
func (a *App) Place() (layout.PlacedLayout, error) {
	if !a.Authenticated() {
		return layout.PlacedLayout{}, ErrNotAuthenticated
	}
	if a.m == nil {
		return layout.PlacedLayout{}, ErrNoMap
	}
	l, ok := a.Pending()
	if !ok {
		return layout.PlacedLayout{}, ErrNoPendingPlacement
	}

	natural, err := imageio.NaturalSize(l.ImageData)
	if err != nil {
		return layout.PlacedLayout{}, fmt.Errorf("place %s: %w", l.ID, err)
	}
	size := geometry.Size{
		Width:  a.opts.PlaceWidth,
		Height: a.opts.PlaceWidth * natural.Height / natural.Width,
	}
	p := layout.NewPlacement(l, a.m.Center(), size)
	a.placements.Add(p)
	a.pending = ""

	slog.Info("layout placed", "placement", p.ID, "layout", l.ID,
		"lat", p.Position.Lat, "lng", p.Position.Lng)
	a.sync()
	return p, nil
}

// Fix locks a placement at the map's current zoom.
func (a *App) Fix(id string) error {
	p, ok := a.placements.Get(id)
	if !ok {
		return fmt.Errorf("fix %s: %w", id, ErrPlacementNotFound)
	}
	if p.Fixed {
		return fmt.Errorf("fix %s: %w", id, mapsync.ErrPlacementFixed)
	}
	if a.overlay == nil {
		return ErrNoMap
	}
	a.overlay.Fix(id)
	return nil
}

func (a *App) Remove(id string) error {
	if !a.placements.Remove(id) {
		return fmt.Errorf("remove %s: %w", id, ErrPlacementNotFound)
	}
	slog.Info("placement removed", "placement", id)
	a.sync()
	return nil
}

// Edit sets the size and rotation of a placement that is not yet fixed
// and redraws the map. A fixed placement keeps its anchor; only zoom
// rescales it.
func (a *App) Edit(id string, size geometry.Size, rotation float64) error {
	p, ok := a.placements.Get(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrPlacementNotFound)
	}
	if p.Fixed {
		return fmt.Errorf("edit %s: %w", id, mapsync.ErrPlacementFixed)
	}
	if minSize := a.opts.Transform.MinSize; size.Width < minSize || size.Height < minSize {
		return fmt.Errorf("edit %s: %w: %gx%g", id, ErrInvalidSize, size.Width, size.Height)
	}
	a.placements.Update(id, func(pl *layout.PlacedLayout) {
		pl.Size = size
		pl.Rotation = rotation
	})
	slog.Debug("placement edited", "placement", id, "width", size.Width,
		"height", size.Height, "rotation", rotation)
	a.sync()
	return nil
}

func (a *App) sync() {
	if a.overlay != nil {
		a.overlay.Sync()
	}
}

// --- mapsync.Store ---

func (a *App) Placements() []layout.PlacedLayout { return a.placements.All() }

func (a *App) Placement(id string) (layout.PlacedLayout, bool) {
	return a.placements.Get(id)
}

// UpdatePlacement mutates a placement without redrawing; the overlay
// syncs after its own updates.
func (a *App) UpdatePlacement(id string, fn func(*layout.PlacedLayout)) bool {
	return a.placements.Update(id, fn)
}

func (a *App) LayoutName(layoutID string) string {
	l, ok := a.layouts.Get(layoutID)
	if !ok {
		return ""
	}
	return l.Name
}

var _ mapsync.Store = (*App)(nil)
