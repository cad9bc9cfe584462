package clippath

import (
	"testing"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

func TestPolygonClosesOnExistingPoints(t *testing.T) {
	p := NewPolygon(10)
	for _, pt := range []struct{ x, y float64 }{{0, 0}, {10, 0}, {10, 10}} {
		if res, _ := p.Click(geometry.Pt(pt.x, pt.y)); res != Appended {
			t.Fatalf("click %v = %v, want appended", pt, res)
		}
	}

	res, path := p.Click(geometry.Pt(0, 0.5))
	if res != Closed {
		t.Fatalf("closing click = %v, want closed", res)
	}
	if len(path) != 3 {
		t.Fatalf("closed path has %d points, want 3", len(path))
	}
	if path[2] != geometry.Pt(10, 10) {
		t.Errorf("last vertex = %v, want (10,10)", path[2])
	}
	if p.InProgress() {
		t.Error("builder should be empty after closing")
	}
}

func TestPolygonFarClickAppends(t *testing.T) {
	p := NewPolygon(10)
	p.Click(geometry.Pt(0, 0))
	p.Click(geometry.Pt(50, 0))
	p.Click(geometry.Pt(50, 50))
	if res, _ := p.Click(geometry.Pt(10, 0)); res != Appended {
		t.Fatalf("click at exactly the radius = %v, want appended", res)
	}
	if got := len(p.Points()); got != 4 {
		t.Fatalf("points = %d, want 4", got)
	}
}

func TestPolygonTooFewPointsNotClosable(t *testing.T) {
	p := NewPolygon(10)
	p.Click(geometry.Pt(0, 0))
	p.Click(geometry.Pt(40, 0))

	res, path := p.Click(geometry.Pt(1, 1))
	if res != Ignored || path != nil {
		t.Fatalf("click = %v %v, want ignored with no path", res, path)
	}
	if got := len(p.Points()); got != 2 {
		t.Fatalf("points = %d, want 2", got)
	}
}

func TestPolygonSecondClickNearFirstAppends(t *testing.T) {
	// With a single vertex nothing can close, so a nearby click is a vertex.
	p := NewPolygon(10)
	p.Click(geometry.Pt(0, 0))
	if res, _ := p.Click(geometry.Pt(2, 2)); res != Appended {
		t.Fatalf("second click = %v, want appended", res)
	}
}

func TestPenAutoClose(t *testing.T) {
	tests := []struct {
		name   string
		end    float64
		points int
		closed bool
	}{
		{"ends near start", 5, 5, true},
		{"ends far away", 50, 5, false},
		{"too short", 1, 2, false},
		{"three points near", 3, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pen := NewPen(15)
			pen.Begin(geometry.Pt(0, 0))
			for i := 1; i < tt.points-1; i++ {
				pen.Add(geometry.Pt(float64(i)*20, float64(i)*10))
			}
			if tt.points > 1 {
				pen.Add(geometry.Pt(tt.end, 0))
			}

			path, ok := pen.Finish()
			if ok != tt.closed {
				t.Fatalf("Finish ok = %v, want %v", ok, tt.closed)
			}
			if ok && len(path) != tt.points {
				t.Fatalf("path has %d points, want %d", len(path), tt.points)
			}
			if !ok && path != nil {
				t.Fatalf("unclosed stroke returned path %v", path)
			}
			if len(pen.Points()) != 0 {
				t.Fatal("pen should be empty after Finish")
			}
		})
	}
}
