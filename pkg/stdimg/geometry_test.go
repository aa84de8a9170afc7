package stdimg

import (
	"image"
	"image/color"
	"testing"
)

var marker = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// markedBuffer is a w x h black buffer with a red marker at (0,0).
func markedBuffer(w, h int) *image.NRGBA {
	img := makeSolid(w, h, color.NRGBA{A: 255})
	i := img.PixOffset(0, 0)
	img.Pix[i+0] = 255
	return img
}

func TestResizePercent(t *testing.T) {
	src := makeSolid(10, 8, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	half := ResizePercent(src, 50)
	if half.Bounds().Dx() != 5 || half.Bounds().Dy() != 4 {
		t.Fatalf("50%% resize gave %v", half.Bounds())
	}
	double := ResizePercent(src, 200)
	if double.Bounds().Dx() != 20 || double.Bounds().Dy() != 16 {
		t.Fatalf("200%% resize gave %v", double.Bounds())
	}
	tiny := ResizePercent(makeSolid(3, 3, marker), 1)
	if tiny.Bounds().Dx() != 1 || tiny.Bounds().Dy() != 1 {
		t.Fatalf("resize clamps to 10%% with 1px minimum, got %v", tiny.Bounds())
	}
	same := ResizePercent(src, 100)
	same.Pix[0] = 0
	if src.Pix[0] != 40 {
		t.Fatalf("100%% resize must not alias the source")
	}
}

func TestNormalizeRotation(t *testing.T) {
	cases := map[int]int{0: 0, 90: 90, -90: 270, 360: 0, 450: 90, 540: 180, -630: 90}
	for in, want := range cases {
		if got := NormalizeRotation(in); got != want {
			t.Fatalf("NormalizeRotation(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRotateClockwise(t *testing.T) {
	src := markedBuffer(3, 2)
	cases := []struct {
		deg        int
		w, h, x, y int
	}{
		{0, 3, 2, 0, 0},
		{90, 2, 3, 1, 0},
		{180, 3, 2, 2, 1},
		{270, 2, 3, 0, 2},
		{-90, 2, 3, 0, 2},
	}
	for _, c := range cases {
		out := Rotate(src, c.deg)
		if out.Bounds().Dx() != c.w || out.Bounds().Dy() != c.h {
			t.Fatalf("rotate %d: size %v, want %dx%d", c.deg, out.Bounds(), c.w, c.h)
		}
		if pixelAt(out, c.x, c.y) != marker {
			t.Fatalf("rotate %d: marker not at (%d,%d)", c.deg, c.x, c.y)
		}
	}
}

func TestFlip(t *testing.T) {
	src := markedBuffer(4, 3)
	if pixelAt(Flip(src, true, false), 3, 0) != marker {
		t.Fatalf("horizontal flip misplaced marker")
	}
	if pixelAt(Flip(src, false, true), 0, 2) != marker {
		t.Fatalf("vertical flip misplaced marker")
	}
	if pixelAt(Flip(src, true, true), 3, 2) != marker {
		t.Fatalf("double flip misplaced marker")
	}
	none := Flip(src, false, false)
	if none == src || !EqualNRGBA(none, src) {
		t.Fatalf("no-op flip should return an equal copy")
	}
}

func TestAutoOrient(t *testing.T) {
	src := markedBuffer(3, 2)
	cases := []struct {
		orientation int
		w, h, x, y  int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{6, 2, 3, 1, 0},
		{8, 2, 3, 0, 2},
	}
	for _, c := range cases {
		out := AutoOrient(src, c.orientation)
		if out.Bounds().Dx() != c.w || out.Bounds().Dy() != c.h {
			t.Fatalf("orientation %d: size %v, want %dx%d", c.orientation, out.Bounds(), c.w, c.h)
		}
		if pixelAt(out, c.x, c.y) != marker {
			t.Fatalf("orientation %d: marker not at (%d,%d)", c.orientation, c.x, c.y)
		}
	}
}
