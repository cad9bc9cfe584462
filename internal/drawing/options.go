package drawing

import "image/color"

type Options struct {
	PolygonCloseRadius float64
	PenCloseDistance   float64
	StrokeWidth        float64
	EraserWidth        float64
	DashLength         float64
}

func DefaultOptions() Options {
	return Options{
		PolygonCloseRadius: 10,
		PenCloseDistance:   15,
		StrokeWidth:        3,
		EraserWidth:        20,
		DashLength:         10,
	}
}

var (
	// ClipFill is the translucent gray inside a committed clip path.
	ClipFill color.Color = color.NRGBA{R: 128, G: 128, B: 128, A: 128}
	// ShapeFill fills rectangles and squares.
	ShapeFill color.Color = color.NRGBA{R: 22, G: 163, B: 74, A: 128}
	// Ink outlines every shape and line.
	Ink color.Color = color.White
)
