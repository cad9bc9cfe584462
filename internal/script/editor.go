package script

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/layoutnav/layoutnav/internal/drawing"
	"github.com/layoutnav/layoutnav/internal/editor"
	"github.com/layoutnav/layoutnav/internal/geometry"
)

// EditorScript drives a layout editor.
type EditorScript struct {
	Playground geometry.Size `yaml:"playground"`
	Steps      []EditorStep  `yaml:"steps"`
}

type EditorStep struct {
	Tool  string  `yaml:"tool,omitempty"`
	Down  *Point  `yaml:"down,omitempty"`
	Move  *Point  `yaml:"move,omitempty"`
	Up    *Point  `yaml:"up,omitempty"`
	Leave *Point  `yaml:"leave,omitempty"`
	Drag  []Point `yaml:"drag,omitempty"`
	Grab  *Grab   `yaml:"grab,omitempty"`
	Clear bool    `yaml:"clear,omitempty"`
}

func (s EditorStep) validate() error {
	n := countSet(s.Tool != "", s.Down != nil, s.Move != nil, s.Up != nil,
		s.Leave != nil, len(s.Drag) > 0, s.Grab != nil, s.Clear)
	if n != 1 {
		return fmt.Errorf("%w: want exactly one action, got %d", ErrInvalidStep, n)
	}
	if s.Tool != "" {
		if _, err := drawing.ParseTool(s.Tool); err != nil {
			return err
		}
	}
	if s.Drag != nil && len(s.Drag) < 2 {
		return fmt.Errorf("%w: drag needs at least 2 points", ErrInvalidStep)
	}
	return nil
}

// ParseEditor decodes and validates an editor script.
func ParseEditor(data []byte) (*EditorScript, error) {
	var s EditorScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing editor script: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadEditor reads an editor script from a file.
func LoadEditor(path string) (*EditorScript, error) {
	var s EditorScript
	if err := readFile(path, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *EditorScript) validate() error {
	if s.Playground.Width <= 0 || s.Playground.Height <= 0 {
		return fmt.Errorf("%w: playground size must be positive", ErrInvalidStep)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Run replays the steps on ed, which must already hold an image.
func (s *EditorScript) Run(ed *editor.Editor) error {
	for i, st := range s.Steps {
		if err := runEditorStep(ed, st); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func runEditorStep(ed *editor.Editor, st EditorStep) error {
	switch {
	case st.Tool != "":
		t, err := drawing.ParseTool(st.Tool)
		if err != nil {
			return err
		}
		ed.SetTool(t)
	case st.Down != nil:
		ed.PointerDown(st.Down.Vec())
	case st.Move != nil:
		ed.PointerMove(st.Move.Vec())
	case st.Up != nil:
		ed.PointerUp(st.Up.Vec())
	case st.Leave != nil:
		ed.PointerLeave(st.Leave.Vec())
	case len(st.Drag) > 0:
		ed.PointerDown(st.Drag[0].Vec())
		for _, p := range st.Drag[1:] {
			ed.PointerMove(p.Vec())
		}
		ed.PointerUp(st.Drag[len(st.Drag)-1].Vec())
	case st.Grab != nil:
		return ed.BeginInteraction(st.Grab.Handle, st.Grab.At.Vec())
	case st.Clear:
		ed.Clear()
	}
	return nil
}
