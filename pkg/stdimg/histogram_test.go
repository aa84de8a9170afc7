package stdimg

import (
	"image"
	"image/color"
	"testing"
)

func TestComputeHistograms(t *testing.T) {
	src := makeSolid(3, 2, color.NRGBA{R: 10, G: 20, B: 31, A: 255})
	hs := ComputeHistograms(src, nil)
	if hs.Total != 6 {
		t.Fatalf("expected 6 pixels, got %d", hs.Total)
	}
	if hs.R[10] != 6 || hs.G[20] != 6 || hs.B[31] != 6 {
		t.Fatalf("channel counts wrong")
	}
	// (10+20+31)/3 = 20.33 -> 20
	if hs.Gray[20] != 6 || hs.Channel(3)[20] != 6 {
		t.Fatalf("gray histogram wrong")
	}
	if hs.Channel(0) != &hs.R {
		t.Fatalf("Channel(0) should be the red histogram")
	}
	roiHS := ComputeHistograms(src, &ROI{X: 1, Y: 0, W: 5, H: 0})
	if roiHS.Total != 2 {
		t.Fatalf("ROI histogram should count 2 pixels, got %d", roiHS.Total)
	}
}

func TestEqualizeFlattensCDF(t *testing.T) {
	// 64 distinct levels, skewed into the dark end
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < 32*32; i++ {
		v := uint8(i % 64)
		src.Pix[i*4+0] = v
		src.Pix[i*4+1] = v / 2
		src.Pix[i*4+2] = v
		src.Pix[i*4+3] = 255
	}
	out := Equalize(src, nil)
	hs := ComputeHistograms(out, nil)
	for c := 0; c < 3; c++ {
		hist := hs.Channel(c)
		cdf := 0
		for m := 0; m < 256; m++ {
			cdf += hist[m]
			if hist[m] == 0 {
				continue
			}
			ideal := float64(cdf) / float64(hs.Total) * 255
			if d := ideal - float64(m); d > 1 || d < -1 {
				t.Fatalf("channel %d: cdf at %d is %.2f of 255, not uniform", c, m, ideal)
			}
		}
	}
	// the brightest level maps to 255
	if got := pixelAt(out, 31, 1).R; got != 255 {
		t.Fatalf("expected brightest value to equalize to 255, got %d", got)
	}
}

func TestEqualizeEmptyROI(t *testing.T) {
	src := makeNoise(4, 4, 8)
	roi := (&ROI{X: 10, Y: 10, W: 2, H: 2}).Clip(4, 4)
	if !EqualNRGBA(Equalize(src, roi), src) {
		t.Fatalf("empty ROI should leave the buffer unchanged")
	}
}

func TestSegmentRGBTopLeftQuadrant(t *testing.T) {
	src := makeNoise(4, 4, 99)
	set := func(x, y int, r, g, b uint8) {
		i := src.PixOffset(x, y)
		src.Pix[i+0], src.Pix[i+1], src.Pix[i+2] = r, g, b
	}
	set(0, 0, 200, 10, 10)
	set(1, 0, 10, 200, 10)
	set(0, 1, 10, 10, 200)
	set(1, 1, 100, 100, 100)

	roi := &ROI{X: 0, Y: 0, W: 1, H: 1}
	out := SegmentRGB(src, 128, roi)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if !roi.Contains(x, y) && pixelAt(out, x, y) != pixelAt(src, x, y) {
				t.Fatalf("pixel (%d,%d) outside ROI changed", x, y)
			}
		}
	}
	check := func(x, y int, r, g, b uint8) {
		got := pixelAt(out, x, y)
		if got.R != r || got.G != g || got.B != b {
			t.Fatalf("pixel (%d,%d) = %v, want %d/%d/%d", x, y, got, r, g, b)
		}
		if got.A != src.Pix[src.PixOffset(x, y)+3] {
			t.Fatalf("alpha changed at (%d,%d)", x, y)
		}
	}
	check(0, 0, 255, 0, 0)
	check(1, 0, 0, 255, 0)
	check(0, 1, 0, 0, 255)
	check(1, 1, 100, 100, 100)
}

func TestSegmentRGBTiesAndThreshold(t *testing.T) {
	src := makeColumns(1, 0, 0, 0)
	set := func(x int, r, g, b uint8) {
		i := src.PixOffset(x, 0)
		src.Pix[i+0], src.Pix[i+1], src.Pix[i+2] = r, g, b
	}
	set(0, 200, 200, 0)
	set(1, 0, 200, 200)
	set(2, 128, 0, 0)
	out := SegmentRGB(src, 128, nil)
	if got := pixelAt(out, 0, 0); got.R != 255 || got.G != 0 {
		t.Fatalf("R/G tie should resolve to red, got %v", got)
	}
	if got := pixelAt(out, 1, 0); got.G != 255 || got.B != 0 {
		t.Fatalf("G/B tie should resolve to green, got %v", got)
	}
	if got := pixelAt(out, 2, 0); got.R != 128 {
		t.Fatalf("value equal to threshold must not be recoloured, got %v", got)
	}
}
