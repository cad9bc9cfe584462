package transform

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layoutnav/layoutnav/internal/geometry"
)

const tol = 1e-9

func near(a, b r2.Vec) bool {
	return scalar.EqualWithinAbs(a.X, b.X, 1e-6) && scalar.EqualWithinAbs(a.Y, b.Y, 1e-6)
}

func polar(c r2.Vec, radius, degrees float64) r2.Vec {
	rad := geometry.Radians(degrees)
	return r2.Vec{X: c.X + radius*math.Cos(rad), Y: c.Y + radius*math.Sin(rad)}
}

func TestMove(t *testing.T) {
	origin := Frame{X: 10, Y: 20, Width: 100, Height: 50, Rotation: 30}
	s := NewSession(Move, "", geometry.Pt(50, 50), origin)
	_, f := Step(s, geometry.Pt(65, 40), DefaultOptions())
	want := Frame{X: 25, Y: 10, Width: 100, Height: 50, Rotation: 30}
	if f != want {
		t.Fatalf("move = %+v, want %+v", f, want)
	}
}

func TestRotateAccumulates(t *testing.T) {
	origin := Frame{X: -50, Y: -50, Width: 100, Height: 100, Rotation: 10}
	c := origin.Center()
	s := NewSession(Rotate, "", polar(c, 80, 0), origin)
	opts := DefaultOptions()

	// Walk the pointer around one and a half turns in small steps.
	var f Frame
	for deg := 10.0; deg <= 540; deg += 10 {
		s, f = Step(s, polar(c, 80, deg), opts)
	}
	if !scalar.EqualWithinAbs(f.Rotation, 550, 1e-6) {
		t.Fatalf("rotation = %v, want 550", f.Rotation)
	}
	if f.X != origin.X || f.Width != origin.Width {
		t.Fatalf("rotate changed geometry: %+v", f)
	}
}

func TestRotateTwoStepsSum(t *testing.T) {
	origin := Frame{Width: 40, Height: 40, Rotation: -20}
	c := origin.Center()
	tests := []struct{ theta1, theta2 float64 }{
		{30, 45},
		{170, 30},
		{-120, -100},
		{90, -150},
	}
	for _, tt := range tests {
		s := NewSession(Rotate, "", polar(c, 10, 160), origin)
		s, _ = Step(s, polar(c, 10, 160+tt.theta1), DefaultOptions())
		_, f := Step(s, polar(c, 10, 160+tt.theta1+tt.theta2), DefaultOptions())
		want := origin.Rotation + tt.theta1 + tt.theta2
		if !scalar.EqualWithinAbs(f.Rotation, want, 1e-6) {
			t.Errorf("θ1=%v θ2=%v: rotation = %v, want %v", tt.theta1, tt.theta2, f.Rotation, want)
		}
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	origin := Frame{X: 100, Y: 100, Width: 200, Height: 100}
	for _, h := range Handles {
		s := NewSession(Resize, h, geometry.Pt(0, 0), origin)
		var dx, dy float64
		if h.Right() {
			dx = -1000
		}
		if h.Left() {
			dx = 1000
		}
		if h.Bottom() {
			dy = -1000
		}
		if h.Top() {
			dy = 1000
		}
		_, f := Step(s, geometry.Pt(dx, dy), DefaultOptions())
		if h.Left() || h.Right() {
			if f.Width != 20 {
				t.Errorf("%s: width = %v, want 20", h, f.Width)
			}
		}
		if h.Top() || h.Bottom() {
			if f.Height != 20 {
				t.Errorf("%s: height = %v, want 20", h, f.Height)
			}
		}
	}
}

func TestResizeUnrotatedEdges(t *testing.T) {
	origin := Frame{X: 100, Y: 100, Width: 200, Height: 100}
	tests := []struct {
		handle Handle
		dx, dy float64
		want   Frame
	}{
		{"r", 30, 99, Frame{X: 100, Y: 100, Width: 230, Height: 100}},
		{"l", -30, 0, Frame{X: 70, Y: 100, Width: 230, Height: 100}},
		{"b", 5, 40, Frame{X: 100, Y: 100, Width: 200, Height: 140}},
		{"t", 0, 40, Frame{X: 100, Y: 140, Width: 200, Height: 60}},
		{"tl", -10, -20, Frame{X: 90, Y: 80, Width: 210, Height: 120}},
		{"br", 10, 20, Frame{X: 100, Y: 100, Width: 210, Height: 120}},
	}
	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			s := NewSession(Resize, tt.handle, geometry.Pt(0, 0), origin)
			_, f := Step(s, geometry.Pt(tt.dx, tt.dy), DefaultOptions())
			if !scalar.EqualWithinAbs(f.X, tt.want.X, tol) || !scalar.EqualWithinAbs(f.Y, tt.want.Y, tol) ||
				!scalar.EqualWithinAbs(f.Width, tt.want.Width, tol) || !scalar.EqualWithinAbs(f.Height, tt.want.Height, tol) {
				t.Fatalf("resize %s = %+v, want %+v", tt.handle, f, tt.want)
			}
		})
	}
}

func TestResizeUsesLocalAxes(t *testing.T) {
	// Rotated a quarter turn, the frame's +x axis points down the screen.
	origin := Frame{X: 0, Y: 0, Width: 100, Height: 50, Rotation: 90}
	s := NewSession(Resize, "r", geometry.Pt(0, 0), origin)
	_, f := Step(s, geometry.Pt(0, 30), DefaultOptions())
	if !scalar.EqualWithinAbs(f.Width, 130, tol) || !scalar.EqualWithinAbs(f.Height, 50, tol) {
		t.Fatalf("size = %vx%v, want 130x50", f.Width, f.Height)
	}
}

// anchorOf returns the screen position of the point a resize must keep
// fixed: the midpoint or corner opposite the dragged handle.
func anchorOf(f Frame, h Handle) r2.Vec {
	var ax, ay float64
	switch {
	case h.Right():
		ax = -1
	case h.Left():
		ax = 1
	}
	switch {
	case h.Bottom():
		ay = -1
	case h.Top():
		ay = 1
	}
	sx, sy := geometry.Unlocalize(ax*f.Width/2, ay*f.Height/2, f.Rotation)
	c := f.Center()
	return r2.Vec{X: c.X + sx, Y: c.Y + sy}
}

func TestResizeKeepsOppositeEdgeFixed(t *testing.T) {
	deltas := []r2.Vec{{X: 37, Y: -12}, {X: -400, Y: 250}, {X: 3, Y: 3}, {X: -15, Y: -90}}
	for _, angle := range []float64{0, 30, 90, 145, -60, 400} {
		origin := Frame{X: 40, Y: 70, Width: 120, Height: 80, Rotation: angle}
		for _, h := range Handles {
			for _, d := range deltas {
				s := NewSession(Resize, h, geometry.Pt(500, 500), origin)
				_, f := Step(s, r2.Add(geometry.Pt(500, 500), d), DefaultOptions())
				if before, after := anchorOf(origin, h), anchorOf(f, h); !near(before, after) {
					t.Fatalf("angle %v handle %s delta %v: anchor moved %v -> %v", angle, h, d, before, after)
				}
				if f.Width < 20 || f.Height < 20 {
					t.Fatalf("angle %v handle %s delta %v: size %vx%v below floor", angle, h, d, f.Width, f.Height)
				}
			}
		}
	}
}

type recordingTarget struct {
	frames []Frame
	gone   bool
}

func (r *recordingTarget) Apply(kind Kind, f Frame) bool {
	if r.gone {
		return false
	}
	r.frames = append(r.frames, f)
	return true
}

func counter(acquired, released *int) Acquirer {
	return func() func() {
		*acquired++
		return func() { *released++ }
	}
}

func TestControllerLifecycle(t *testing.T) {
	c := NewController(DefaultOptions())
	target := &recordingTarget{}
	var acquired, released int

	origin := Frame{Width: 50, Height: 50}
	c.Begin(target, NewSession(Move, "", geometry.Pt(0, 0), origin), counter(&acquired, &released))
	if acquired != 1 {
		t.Fatalf("acquired = %d, want 1", acquired)
	}
	if !c.Move(geometry.Pt(5, 5)) || len(target.frames) != 1 {
		t.Fatal("move should apply a frame")
	}
	c.End()
	c.End()
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}
	if _, ok := c.Active(); ok {
		t.Fatal("no session should be active")
	}
	if c.Move(geometry.Pt(9, 9)) {
		t.Fatal("move without a session must do nothing")
	}
}

func TestControllerNewSessionEndsPrevious(t *testing.T) {
	c := NewController(DefaultOptions())
	var acquired, released int
	s := NewSession(Move, "", geometry.Pt(0, 0), Frame{Width: 50, Height: 50})
	c.Begin(&recordingTarget{}, s, counter(&acquired, &released))
	c.Begin(&recordingTarget{}, s, counter(&acquired, &released))
	if acquired != 2 || released != 1 {
		t.Fatalf("acquired=%d released=%d, want 2 and 1", acquired, released)
	}
	c.End()
	if released != 2 {
		t.Fatalf("released = %d, want 2", released)
	}
}

func TestControllerAbortsWhenTargetGone(t *testing.T) {
	c := NewController(DefaultOptions())
	target := &recordingTarget{gone: true}
	var acquired, released int
	c.Begin(target, NewSession(Resize, "r", geometry.Pt(0, 0), Frame{Width: 50, Height: 50}), counter(&acquired, &released))
	if c.Move(geometry.Pt(10, 0)) {
		t.Fatal("move should report the abort")
	}
	if len(target.frames) != 0 {
		t.Fatal("no frame may be applied after the target is gone")
	}
	if released != 1 {
		t.Fatalf("capture not released: released = %d", released)
	}
	if _, ok := c.Active(); ok {
		t.Fatal("aborted session should not stay active")
	}
}

func TestCaptureReleasesInReverse(t *testing.T) {
	var order []string
	acq := func(name string) Acquirer {
		return func() func() {
			order = append(order, "+"+name)
			return func() { order = append(order, "-"+name) }
		}
	}
	c := Acquire(acq("listeners"), nil, acq("pan"))
	c.Release()
	c.Release()
	want := []string{"+listeners", "+pan", "-pan", "-listeners"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestParseInteraction(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		handle  Handle
		wantErr bool
	}{
		{"move", Move, "", false},
		{"rotate", Rotate, "", false},
		{"tl", Resize, "tl", false},
		{"b", Resize, "b", false},
		{"lr", 0, "", true},
		{"x", 0, "", true},
		{"", 0, "", true},
	}
	for _, tt := range tests {
		kind, h, err := ParseInteraction(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseInteraction(%q) err = %v", tt.name, err)
			continue
		}
		if err == nil && (kind != tt.kind || h != tt.handle) {
			t.Errorf("ParseInteraction(%q) = %v %q", tt.name, kind, h)
		}
	}
}

func TestFrameContains(t *testing.T) {
	f := Frame{X: 0, Y: 0, Width: 100, Height: 20, Rotation: 90}
	// Rotated about (50, 10), the frame spans y from -40 to 60 at x=50.
	if !f.Contains(geometry.Pt(50, 55)) {
		t.Error("point along the rotated long axis should be inside")
	}
	if f.Contains(geometry.Pt(95, 10)) {
		t.Error("point beyond the rotated short axis should be outside")
	}
}

func TestFrameToLocal(t *testing.T) {
	f := Frame{X: 10, Y: 20, Width: 100, Height: 50, Rotation: 90}
	tests := []struct {
		name   string
		screen r2.Vec
		want   r2.Vec
	}{
		{"center", geometry.Pt(60, 45), geometry.Pt(50, 25)},
		{"along rotated x axis", geometry.Pt(60, 55), geometry.Pt(60, 25)},
		{"along rotated y axis", geometry.Pt(50, 45), geometry.Pt(50, 35)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.ToLocal(tt.screen)
			if !scalar.EqualWithinAbs(got.X, tt.want.X, 1e-9) || !scalar.EqualWithinAbs(got.Y, tt.want.Y, 1e-9) {
				t.Fatalf("ToLocal(%v) = %v, want %v", tt.screen, got, tt.want)
			}
			x, y := f.Matrix().TransformPoint(got.X, got.Y)
			if !scalar.EqualWithinAbs(x, tt.screen.X, 1e-9) || !scalar.EqualWithinAbs(y, tt.screen.Y, 1e-9) {
				t.Fatalf("Matrix maps back to (%v, %v), want %v", x, y, tt.screen)
			}
		})
	}
}
