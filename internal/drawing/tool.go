package drawing

import (
	"fmt"
	"strings"
)

// Tool selects how the engine interprets pointer input.
type Tool int

const (
	// Select passes pointer input through to the frame instead of the canvas.
	Select Tool = iota
	Pen
	Polygon
	Rectangle
	Square
	DashedLine
	Eraser
)

var toolNames = map[Tool]string{
	Select:     "select",
	Pen:        "pen",
	Polygon:    "polygon",
	Rectangle:  "rectangle",
	Square:     "square",
	DashedLine: "dashes",
	Eraser:     "eraser",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a tool name back to its Tool.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	return Select, fmt.Errorf("unknown tool %q", name)
}

// isShape reports whether the tool previews against a snapshot while dragging.
func (t Tool) isShape() bool {
	return t == Rectangle || t == Square || t == DashedLine
}
