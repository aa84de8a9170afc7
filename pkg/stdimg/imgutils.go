package stdimg

import (
	"image"
	"image/color"
	"math"
)

// ToNRGBA converts any image.Image to an origin-anchored *image.NRGBA (non-premultiplied RGBA).
// The result never aliases the input, so callers may treat it as their own pixel buffer.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := out.PixOffset(0, y)
			copy(out.Pix[di:di+b.Dx()*4], n.Pix[si:si+b.Dx()*4])
		}
		return out
	}
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix[idx+0] = c.R
			out.Pix[idx+1] = c.G
			out.Pix[idx+2] = c.B
			out.Pix[idx+3] = c.A
			idx += 4
		}
	}
	return out
}

// CloneNRGBA returns an origin-anchored copy of src.
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	return ToNRGBA(src)
}

// anchored returns src when its bounds start at (0,0), so that PixOffset(x, y)
// with x, y counted from zero addresses the right pixel, and an
// origin-anchored copy otherwise.
func anchored(src *image.NRGBA) *image.NRGBA {
	if src == nil || src.Rect.Min == (image.Point{}) {
		return src
	}
	return ToNRGBA(src)
}

// NewBuffer allocates a w x h pixel buffer with every pixel set to c.
func NewBuffer(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// EqualNRGBA reports whether a and b have the same bounds and identical pixels.
func EqualNRGBA(a, b *image.NRGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds() != b.Bounds() {
		return false
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	for y := 0; y < h; y++ {
		ai := a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y)
		bi := b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y)
		ra := a.Pix[ai : ai+w*4]
		rb := b.Pix[bi : bi+w*4]
		for i := range ra {
			if ra[i] != rb[i] {
				return false
			}
		}
	}
	return true
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloatToUint8 ensures v in [0,255]
func clampFloatToUint8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// clampByte rounds v to the nearest integer and clamps it into a channel value.
func clampByte(v float64) uint8 {
	return uint8(clampFloatToUint8(math.Round(v)))
}
