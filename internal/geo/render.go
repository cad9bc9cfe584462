package geo

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/imageio"
)

// Background is the fill behind rendered markers.
var Background = color.NRGBA{R: 229, G: 227, B: 223, A: 255}

// Render draws every marker's image at its projected center, scaled to its
// content size and rotated about its center.
func (v *Viewport) Render() (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, int(v.width), int(v.height)))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	view := geometry.Rect{Width: v.width, Height: v.height}

	for _, id := range v.layer.IDs() {
		m, _ := v.layer.Marker(id)
		if len(m.Content.ImageData) == 0 {
			continue
		}
		src, err := imageio.DecodeBytes(m.Content.ImageData)
		if err != nil {
			return nil, fmt.Errorf("render marker %s: %w", id, err)
		}
		b := src.Bounds()
		sw, sh := float64(b.Dx()), float64(b.Dy())
		c := v.Project(m.Position)
		mat := geometry.FromTransform(
			c.X, c.Y,
			m.Content.Size.Width/sw, m.Content.Size.Height/sh,
			m.Content.Rotation,
			float64(b.Min.X)+sw/2, float64(b.Min.Y)+sh/2,
		)
		srcRect := geometry.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: sw, Height: sh}
		if !mat.TransformRect(srcRect).Intersects(view) {
			continue
		}
		draw.CatmullRom.Transform(dst, aff3(mat), src, b, draw.Over, nil)
	}
	return dst, nil
}

func aff3(m geometry.Matrix2D) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}
