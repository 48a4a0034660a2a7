package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRect_DerivedEdges(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Width: 30, Height: 40}
	if r.Right() != 40 {
		t.Errorf("expected right 40, got %v", r.Right())
	}
	if r.Bottom() != 60 {
		t.Errorf("expected bottom 60, got %v", r.Bottom())
	}
	if r.Area() != 1200 {
		t.Errorf("expected area 1200, got %v", r.Area())
	}
}

func TestRect_DegenerateArea(t *testing.T) {
	if a := (Rect{Width: 0, Height: 10}).Area(); a != 0 {
		t.Errorf("expected zero area, got %v", a)
	}
	if a := (Rect{Width: -5, Height: 10}).Area(); a != 0 {
		t.Errorf("expected zero area for negative width, got %v", a)
	}
}

func TestRect_Union(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Width: 10, Height: 10}
	b := Rect{Left: 20, Top: 5, Width: 10, Height: 10}
	u := a.Union(b)
	want := Rect{Left: 0, Top: 0, Width: 30, Height: 15}
	if u != want {
		t.Errorf("expected union %+v, got %+v", want, u)
	}
}

func TestRect_IoU_Identical(t *testing.T) {
	r := Rect{Left: 5, Top: 5, Width: 50, Height: 20}
	if iou := r.IoU(r); !almostEqual(iou, 1.0) {
		t.Errorf("expected IoU 1.0 for identical rects, got %v", iou)
	}
}

func TestRect_IoU_Disjoint(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Width: 10, Height: 10}
	b := Rect{Left: 100, Top: 100, Width: 10, Height: 10}
	if iou := a.IoU(b); iou != 0 {
		t.Errorf("expected IoU 0 for disjoint rects, got %v", iou)
	}
}

func TestRect_IoU_HalfOverlap(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Width: 10, Height: 10}
	b := Rect{Left: 5, Top: 0, Width: 10, Height: 10}
	// Intersection 50, union 150.
	if iou := a.IoU(b); !almostEqual(iou, 1.0/3.0) {
		t.Errorf("expected IoU 1/3, got %v", iou)
	}
}

func TestConversion_RoundTrip(t *testing.T) {
	vp := Viewport{Width: 612, Height: 792}
	r := Rect{Left: 50, Top: 100, Width: 200, Height: 20}

	nr := ToNormalized(r, vp)
	back := ToPixels(nr, vp)

	if !almostEqual(back.Left, r.Left) || !almostEqual(back.Top, r.Top) ||
		!almostEqual(back.Width, r.Width) || !almostEqual(back.Height, r.Height) {
		t.Errorf("round trip changed rect: %+v -> %+v", r, back)
	}
}

func TestToNormalized_DegenerateViewport(t *testing.T) {
	r := Rect{Left: 50, Top: 100, Width: 200, Height: 20}
	nr := ToNormalized(r, Viewport{})
	if nr != (NormalizedRect{}) {
		t.Errorf("expected zero rect for degenerate viewport, got %+v", nr)
	}
}

func TestNormalizedPosition_Valid(t *testing.T) {
	p := NormalizedPosition{PageNumber: 1, Bounds: NormalizedRect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05}}
	if !p.Valid() {
		t.Error("expected position to be valid")
	}
	if (NormalizedPosition{PageNumber: 1}).Valid() {
		t.Error("expected zero-size position to be invalid")
	}
	if (NormalizedPosition{Bounds: p.Bounds}).Valid() {
		t.Error("expected page 0 position to be invalid")
	}
}
