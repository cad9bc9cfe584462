package layout

import (
	"math"
	"time"

	"github.com/layoutnav/layoutnav/internal/geometry"
	"github.com/layoutnav/layoutnav/internal/typeid"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Layout is a saved, immutable floor-plan image.
type Layout struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	ImageData []byte    `json:"imageData"`
	CreatedAt time.Time `json:"createdAt"`
}

func New(name, owner string, imageData []byte) Layout {
	return Layout{
		ID:        typeid.NewLayoutID(),
		Name:      name,
		Owner:     owner,
		ImageData: imageData,
		CreatedAt: time.Now().UTC(),
	}
}

// PlacedLayout is one instance of a Layout on the map. Position is the
// geographic center; Size is in screen pixels at the zoom it was last set.
// InitialZoom and InitialSize are nil until the placement is fixed and
// never change afterwards.
type PlacedLayout struct {
	ID          string         `json:"id"`
	LayoutID    string         `json:"layoutId"`
	ImageData   []byte         `json:"-"`
	Position    LatLng         `json:"position"`
	Size        geometry.Size  `json:"size"`
	Rotation    float64        `json:"rotation"`
	Fixed       bool           `json:"isFixed"`
	InitialZoom *float64       `json:"initialZoom,omitempty"`
	InitialSize *geometry.Size `json:"initialSize,omitempty"`
}

func NewPlacement(l Layout, position LatLng, size geometry.Size) PlacedLayout {
	return PlacedLayout{
		ID:        typeid.NewPlacementID(),
		LayoutID:  l.ID,
		ImageData: l.ImageData,
		Position:  position,
		Size:      size,
	}
}

// Fix locks the placement to the given zoom, capturing the current size as
// the rescale anchor. It reports false if the placement was already fixed,
// in which case nothing changes.
func (p *PlacedLayout) Fix(zoom float64) bool {
	if p.Fixed {
		return false
	}
	z := zoom
	size := p.Size
	p.Fixed = true
	p.InitialZoom = &z
	p.InitialSize = &size
	return true
}

// SizeAtZoom returns the size a fixed placement has at zoom:
// InitialSize scaled by 2^(zoom-InitialZoom). It reports false for
// placements without a captured anchor.
func (p PlacedLayout) SizeAtZoom(zoom float64) (geometry.Size, bool) {
	if !p.Fixed || p.InitialZoom == nil || p.InitialSize == nil {
		return geometry.Size{}, false
	}
	return p.InitialSize.Scale(math.Pow(2, zoom-*p.InitialZoom)), true
}

// Clone returns a copy that shares no pointers with p.
func (p PlacedLayout) Clone() PlacedLayout {
	if p.InitialZoom != nil {
		z := *p.InitialZoom
		p.InitialZoom = &z
	}
	if p.InitialSize != nil {
		s := *p.InitialSize
		p.InitialSize = &s
	}
	return p
}
