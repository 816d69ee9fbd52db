package geom

import (
	"math"
	"testing"
)

func TestBounds(t *testing.T) {
	if _, ok := Bounds(nil); ok {
		t.Fatal("Bounds(nil) should report !ok")
	}

	r, ok := Bounds([]Point{{X: 1, Y: 5}, {X: -3, Y: 2}, {X: 4, Y: -1}})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Rect{Min: Point{X: -3, Y: -1}, Max: Point{X: 4, Y: 5}}
	if r != want {
		t.Errorf("Bounds = %+v, want %+v", r, want)
	}
	if c := r.Center(); c.X != 0.5 || c.Y != 2 {
		t.Errorf("Center = %+v", c)
	}
}

func TestSegmentDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 10, Y: 0}

	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"on segment", Point{X: 5, Y: 0}, 0},
		{"above middle", Point{X: 5, Y: 3}, 3},
		{"past end", Point{X: 13, Y: 4}, 5},
		{"before start", Point{X: -3, Y: 4}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentDistance(tt.p, a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SegmentDistance = %v, want %v", got, tt.want)
			}
		})
	}

	// Degenerate segment
	if got := SegmentDistance(Point{X: 3, Y: 4}, a, a); got != 5 {
		t.Errorf("degenerate SegmentDistance = %v, want 5", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0.2, 0.5, 2.0) != 0.5 {
		t.Error("low clamp failed")
	}
	if Clamp(3.0, 0.5, 2.0) != 2.0 {
		t.Error("high clamp failed")
	}
	if Clamp(7, 0, 10) != 7 {
		t.Error("in-range int changed")
	}
}

func TestRectContains(t *testing.T) {
	r := RectFromSize(Point{X: 10, Y: 10}, Size{W: 100, H: 50})
	if !r.Contains(Point{X: 10, Y: 60}) {
		t.Error("corner should be contained")
	}
	if r.Contains(Point{X: 111, Y: 20}) {
		t.Error("point outside width should not be contained")
	}
}
