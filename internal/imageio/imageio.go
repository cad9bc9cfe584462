// Package imageio decodes user-selected raster files and fits them into
// the editor playground.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("image has no pixels")
)

// SupportedFormats returns the file extensions Decode understands.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".qoi"}
}

// IsSupportedFormat checks the path's extension against SupportedFormats.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Decode reads any registered raster format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return nil, "", ErrUnsupportedFormat
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}
	return img, format, nil
}

func DecodeBytes(data []byte) (image.Image, error) {
	img, _, err := Decode(bytes.NewReader(data))
	return img, err
}

// NaturalSize reads only the header of an encoded image.
func NaturalSize(data []byte) (geometry.Size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return geometry.Size{}, ErrUnsupportedFormat
	}
	if err != nil {
		return geometry.Size{}, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return geometry.Size{}, ErrEmptyImage
	}
	return geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// Load decodes the image file at path.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Encode writes img as PNG, or as QOI when format is "qoi".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "", "png":
		return png.Encode(w, img)
	case "qoi":
		return qoi.Encode(w, img)
	}
	return fmt.Errorf("encode %q: %w", format, ErrUnsupportedFormat)
}

// Size returns an image's pixel dimensions.
func Size(img image.Image) geometry.Size {
	b := img.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Fit frames an image of the natural size inside the playground: at most
// fill of the playground's width and height, aspect preserved, centered.
func Fit(natural, playground geometry.Size, fill float64) geometry.Rect {
	if natural.Width <= 0 || natural.Height <= 0 {
		return geometry.Rect{}
	}
	aspect := natural.Width / natural.Height
	w := playground.Width * fill
	h := w / aspect
	if h > playground.Height*fill {
		h = playground.Height * fill
		w = h * aspect
	}
	return geometry.Rect{
		X:      (playground.Width - w) / 2,
		Y:      (playground.Height - h) / 2,
		Width:  w,
		Height: h,
	}
}

// Contain returns where an image of the natural size lands when scaled to
// fit entirely inside box, centered, aspect preserved.
func Contain(natural geometry.Size, box geometry.Rect) geometry.Rect {
	if natural.Width <= 0 || natural.Height <= 0 || box.IsEmpty() {
		return geometry.Rect{}
	}
	scale := min(box.Width/natural.Width, box.Height/natural.Height)
	w, h := natural.Width*scale, natural.Height*scale
	return geometry.Rect{
		X:      box.X + (box.Width-w)/2,
		Y:      box.Y + (box.Height-h)/2,
		Width:  w,
		Height: h,
	}
}
