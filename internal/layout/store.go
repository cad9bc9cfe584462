// Package layout holds the saved layouts and their map placements as
// in-memory lists owned by the application controller.
package layout

import "slices"

// Library is the ordered list of saved layouts.
type Library struct {
	layouts []Layout
}

func (l *Library) Add(layout Layout) {
	l.layouts = append(l.layouts, layout)
}

func (l *Library) Get(id string) (Layout, bool) {
	i := slices.IndexFunc(l.layouts, func(x Layout) bool { return x.ID == id })
	if i < 0 {
		return Layout{}, false
	}
	return l.layouts[i], true
}

func (l *Library) All() []Layout {
	return slices.Clone(l.layouts)
}

func (l *Library) Len() int { return len(l.layouts) }

func (l *Library) Reset() { l.layouts = nil }

// Placements is the ordered list of placed layouts.
type Placements struct {
	items []PlacedLayout
}

func (p *Placements) Add(pl PlacedLayout) {
	p.items = append(p.items, pl)
}

func (p *Placements) Get(id string) (PlacedLayout, bool) {
	i := p.index(id)
	if i < 0 {
		return PlacedLayout{}, false
	}
	return p.items[i].Clone(), true
}

// Update applies fn to the placement with the given id. It reports false
// if no such placement exists.
func (p *Placements) Update(id string, fn func(*PlacedLayout)) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	fn(&p.items[i])
	return true
}

func (p *Placements) Remove(id string) bool {
	n := len(p.items)
	p.items = slices.DeleteFunc(p.items, func(x PlacedLayout) bool { return x.ID == id })
	return len(p.items) != n
}

// All returns copies of every placement in order.
func (p *Placements) All() []PlacedLayout {
	out := make([]PlacedLayout, len(p.items))
	for i, pl := range p.items {
		out[i] = pl.Clone()
	}
	return out
}

func (p *Placements) Len() int { return len(p.items) }

func (p *Placements) Reset() { p.items = nil }

func (p *Placements) index(id string) int {
	return slices.IndexFunc(p.items, func(x PlacedLayout) bool { return x.ID == id })
}
