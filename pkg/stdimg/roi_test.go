package stdimg

import (
	"image"
	"testing"
)

func TestROIContainsInclusive(t *testing.T) {
	r := &ROI{X: 1, Y: 2, W: 3, H: 1}
	cases := []struct {
		x, y int
		want bool
	}{
		{1, 2, true}, {4, 3, true}, {4, 2, true},
		{0, 2, false}, {5, 2, false}, {1, 4, false}, {1, 1, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Fatalf("Contains(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
		if InROI(c.x, c.y, r) != c.want {
			t.Fatalf("InROI disagrees with Contains at (%d,%d)", c.x, c.y)
		}
	}
	var none *ROI
	if !none.Contains(-100, 1<<20) || !InROI(0, 0, nil) {
		t.Fatalf("nil ROI must contain every point")
	}
}

func TestNewROIFromCorners(t *testing.T) {
	r := NewROI(10, 2, 4, 8)
	if *r != (ROI{X: 4, Y: 2, W: 6, H: 6}) {
		t.Fatalf("unexpected ROI %v", r)
	}
}

func TestROIClip(t *testing.T) {
	cases := []struct {
		in   *ROI
		want *ROI
	}{
		{nil, nil},
		{&ROI{X: 2, Y: 2, W: 3, H: 3}, &ROI{X: 2, Y: 2, W: 3, H: 3}},
		{&ROI{X: -5, Y: -1, W: 8, H: 100}, &ROI{X: 0, Y: 0, W: 3, H: 7}},
		{&ROI{X: 7, Y: 7, W: 10, H: 10}, &ROI{X: 7, Y: 7, W: 2, H: 0}},
	}
	for _, c := range cases {
		got := c.in.Clip(10, 8)
		if (got == nil) != (c.want == nil) || (got != nil && *got != *c.want) {
			t.Fatalf("Clip(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	outside := (&ROI{X: 20, Y: 0, W: 3, H: 3}).Clip(10, 8)
	if !outside.Empty() {
		t.Fatalf("ROI outside the buffer should clip to empty, got %v", outside)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			if outside.Contains(x, y) {
				t.Fatalf("empty ROI contains (%d,%d)", x, y)
			}
		}
	}
}

func TestROIRectAndString(t *testing.T) {
	r := &ROI{X: 1, Y: 1, W: 2, H: 3}
	if r.Rect() != image.Rect(1, 1, 4, 5) {
		t.Fatalf("unexpected rect %v", r.Rect())
	}
	if r.String() != "1,1 2x3" {
		t.Fatalf("unexpected string %q", r.String())
	}
	var none *ROI
	if none.String() != "none" || none.Clone() != nil {
		t.Fatalf("nil ROI helpers wrong")
	}
	c := r.Clone()
	c.X = 9
	if r.X != 1 {
		t.Fatalf("Clone aliases its receiver")
	}
}
