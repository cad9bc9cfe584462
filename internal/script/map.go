package script

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/layoutnav/layoutnav/internal/geo"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/navigator"
)

var ErrNoPlacement = errors.New("no placement to act on")

// MapScript drives placements on a map. Steps that act on a placement
// take its index in placement order. Without one, a grab acts on the
// marker under its point and other steps on the most recent placement.
type MapScript struct {
	Steps []MapStep `yaml:"steps"`
}

type MapStep struct {
	Place     bool           `yaml:"place,omitempty"`
	Grab      *Grab          `yaml:"grab,omitempty"`
	Move      *Point         `yaml:"move,omitempty"`
	Up        bool           `yaml:"up,omitempty"`
	Fix       bool           `yaml:"fix,omitempty"`
	DragTo    *layout.LatLng `yaml:"dragTo,omitempty"`
	Remove    bool           `yaml:"remove,omitempty"`
	Zoom      *float64       `yaml:"zoom,omitempty"`
	Pan       *Point         `yaml:"pan,omitempty"`
	Placement *int           `yaml:"placement,omitempty"`
}

func (s MapStep) validate() error {
	n := countSet(s.Place, s.Grab != nil, s.Move != nil, s.Up, s.Fix,
		s.DragTo != nil, s.Remove, s.Zoom != nil, s.Pan != nil)
	if n != 1 {
		return fmt.Errorf("%w: want exactly one action, got %d", ErrInvalidStep, n)
	}
	return nil
}

func ParseMap(data []byte) (*MapScript, error) {
	var s MapScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing map script: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadMap(path string) (*MapScript, error) {
	var s MapScript
	if err := readFile(path, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *MapScript) validate() error {
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Run replays the steps. Each place step places layoutID again. Marker
// gestures go through the viewport's bound handlers, as a user's would.
func (s *MapScript) Run(app *navigator.App, vp *geo.Viewport, layoutID string) error {
	if app.Overlay() == nil {
		return navigator.ErrNoMap
	}
	for i, st := range s.Steps {
		if err := runMapStep(app, vp, layoutID, st); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func runMapStep(app *navigator.App, vp *geo.Viewport, layoutID string, st MapStep) error {
	switch {
	case st.Place:
		if err := app.RequestPlacement(layoutID); err != nil {
			return err
		}
		_, err := app.Place()
		return err
	case st.Move != nil:
		app.Overlay().PointerMove(st.Move.Vec())
		return nil
	case st.Up:
		app.Overlay().PointerUp()
		return nil
	case st.Zoom != nil:
		vp.SetZoom(*st.Zoom)
		return nil
	case st.Pan != nil:
		vp.Pan(st.Pan.X, st.Pan.Y)
		return nil
	}

	if st.Grab != nil && st.Placement == nil {
		if id := vp.HitTest(st.Grab.At.Vec()); id != "" {
			return vp.PressHandle(id, st.Grab.Handle, st.Grab.At.Vec())
		}
	}
	id, err := target(app, st.Placement)
	if err != nil {
		return err
	}
	switch {
	case st.Grab != nil:
		return vp.PressHandle(id, st.Grab.Handle, st.Grab.At.Vec())
	case st.Fix:
		return vp.ClickFix(id)
	case st.DragTo != nil:
		return vp.DragMarker(id, *st.DragTo)
	case st.Remove:
		return app.Remove(id)
	}
	return nil
}

func target(app *navigator.App, index *int) (string, error) {
	all := app.Placements()
	if len(all) == 0 {
		return "", ErrNoPlacement
	}
	i := len(all) - 1
	if index != nil {
		i = *index
	}
	if i < 0 || i >= len(all) {
		return "", fmt.Errorf("%w: index %d of %d", ErrNoPlacement, i, len(all))
	}
	return all[i].ID, nil
}
