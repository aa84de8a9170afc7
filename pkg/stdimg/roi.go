package stdimg

import (
	"fmt"
	"image"
)

// ROI is a rectangular region of interest in buffer pixel coordinates.
// A nil *ROI means the whole buffer.
//
// Bounds are inclusive on both ends: a pixel is inside when
// X <= x <= X+W and Y <= y <= Y+H.
type ROI struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// NewROI builds a ROI from two drag corners in any order, the way a rubber-band
// selection reports them.
func NewROI(x0, y0, x1, y1 int) *ROI {
	return &ROI{
		X: min(x0, x1),
		Y: min(y0, y1),
		W: max(x0, x1) - min(x0, x1),
		H: max(y0, y1) - min(y0, y1),
	}
}

// Contains reports whether (x,y) lies within r. A nil ROI contains every point.
func (r *ROI) Contains(x, y int) bool {
	if r == nil {
		return true
	}
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// InROI is the free-function form of Contains.
func InROI(x, y int, r *ROI) bool {
	return r.Contains(x, y)
}

// Clip returns r restricted to [0,w)x[0,h). A rectangle lying entirely
// outside the buffer clips to an ROI that contains no pixel.
func (r *ROI) Clip(w, h int) *ROI {
	if r == nil {
		return nil
	}
	if r.X > w-1 || r.Y > h-1 || r.X+r.W < 0 || r.Y+r.H < 0 || r.W < 0 || r.H < 0 {
		return &ROI{W: -1, H: -1}
	}
	x0 := clampInt(r.X, 0, w-1)
	y0 := clampInt(r.Y, 0, h-1)
	x1 := clampInt(r.X+r.W, 0, w-1)
	y1 := clampInt(r.Y+r.H, 0, h-1)
	return &ROI{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Empty reports whether r is non-nil and contains no pixel.
func (r *ROI) Empty() bool {
	return r != nil && (r.W < 0 || r.H < 0)
}

// Rect returns the half-open image.Rectangle covered by r.
func (r *ROI) Rect() image.Rectangle {
	if r == nil {
		return image.Rectangle{}
	}
	return image.Rect(r.X, r.Y, r.X+r.W+1, r.Y+r.H+1)
}

// Clone returns a copy of r (nil stays nil).
func (r *ROI) Clone() *ROI {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (r *ROI) String() string {
	if r == nil {
		return "none"
	}
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.W, r.H)
}

// scanBounds returns the pixel span [x0,x1]x[y0,y1] an ROI-aware operation must visit.
// Pixels outside it are passed through untouched.
func scanBounds(r *ROI, w, h int) (x0, y0, x1, y1 int) {
	if r == nil {
		return 0, 0, w - 1, h - 1
	}
	return max(r.X, 0), max(r.Y, 0), min(r.X+r.W, w-1), min(r.Y+r.H, h-1)
}
