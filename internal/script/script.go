// Package script replays recorded pointer sessions against the editor and
// the map. Scripts are YAML documents holding a list of steps; every step
// names exactly one action.
package script

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

var ErrInvalidStep = errors.New("invalid step")

// Point is a pixel position written as a two-element sequence: [x, y].
type Point struct {
	X, Y float64
}

func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	var xy []float64
	if err := node.Decode(&xy); err != nil {
		return fmt.Errorf("line %d: point: %w", node.Line, err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: point needs 2 coordinates, got %d", node.Line, len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func (p Point) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []float64{p.X, p.Y} {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(v, 'g', -1, 64),
		})
	}
	return node, nil
}

// Grab presses an interaction handle: "move", "rotate" or a resize handle.
type Grab struct {
	Handle string `yaml:"handle"`
	At     Point  `yaml:"at"`
}

func readFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing script %s: %w", path, err)
	}
	return nil
}

// countSet returns how many of the flags are true.
func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
