package stdimg

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Resize limits for ResizePercent.
const (
	MinResizePercent = 10
	MaxResizePercent = 200
)

// ResizePercent scales src by pct percent (clamped to 10..200) using Lanczos
// resampling. Each output side is at least one pixel.
func ResizePercent(src *image.NRGBA, pct int) *image.NRGBA {
	if src == nil {
		return nil
	}
	pct = clampInt(pct, MinResizePercent, MaxResizePercent)
	if pct == 100 {
		return CloneNRGBA(src)
	}
	scale := float64(pct) / 100
	w := max(1, int(math.Round(float64(src.Bounds().Dx())*scale)))
	h := max(1, int(math.Round(float64(src.Bounds().Dy())*scale)))
	return imaging.Resize(src, w, h, imaging.Lanczos)
}

// NormalizeRotation folds deg into {0, 90, 180, 270}, rounding to the nearest
// quarter turn.
func NormalizeRotation(deg int) int {
	q := int(math.Round(float64(deg) / 90))
	q %= 4
	if q < 0 {
		q += 4
	}
	return q * 90
}

// Rotate turns src clockwise by deg degrees (a multiple of 90 after
// NormalizeRotation). Quarter turns swap width and height.
func Rotate(src *image.NRGBA, deg int) *image.NRGBA {
	if src == nil {
		return nil
	}
	switch NormalizeRotation(deg) {
	case 90:
		return imaging.Rotate270(src)
	case 180:
		return imaging.Rotate180(src)
	case 270:
		return imaging.Rotate90(src)
	default:
		return CloneNRGBA(src)
	}
}

// Flip mirrors src horizontally and/or vertically.
func Flip(src *image.NRGBA, horizontal, vertical bool) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := src
	if horizontal {
		out = imaging.FlipH(out)
	}
	if vertical {
		out = imaging.FlipV(out)
	}
	if out == src {
		return CloneNRGBA(src)
	}
	return out
}

// AutoOrient applies an EXIF orientation (1..8) to img. Unknown orientations
// return an unmodified copy.
func AutoOrient(img image.Image, orientation int) *image.NRGBA {
	if img == nil {
		return nil
	}
	src := ToNRGBA(img)
	switch orientation {
	case 2:
		return imaging.FlipH(src)
	case 3:
		return imaging.Rotate180(src)
	case 4:
		return imaging.FlipV(src)
	case 5:
		return imaging.Transpose(src)
	case 6:
		return imaging.Rotate270(src)
	case 7:
		return imaging.Transverse(src)
	case 8:
		return imaging.Rotate90(src)
	default:
		return src
	}
}
