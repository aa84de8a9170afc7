package stdimg

import (
	"image"
)

// channelExtrema returns per-channel minima and maxima of R, G, B over the
// in-ROI pixels of src. ok is false when the ROI selects no pixel.
func channelExtrema(src *image.NRGBA, roi *ROI) (lo, hi [3]uint8, ok bool) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	lo = [3]uint8{255, 255, 255}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := src.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := src.Pix[i+c]
				lo[c] = min(lo[c], v)
				hi[c] = max(hi[c], v)
			}
			ok = true
		}
	}
	return lo, hi, ok
}

// Normalize stretches each of R, G and B so that its minimum over the in-ROI
// pixels maps to 0 and its maximum to 255: v' = (v-min)*255/(max-min), with a
// range of 1 used when max == min. Only in-ROI pixels are read and written.
func Normalize(src *image.NRGBA, roi *ROI) *image.NRGBA {
	if src == nil {
		return nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	lo, hi, ok := channelExtrema(src, roi)
	if !ok {
		return out
	}
	var lut [3][256]uint8
	for c := 0; c < 3; c++ {
		rng := float64(hi[c]) - float64(lo[c])
		if rng == 0 {
			rng = 1
		}
		for v := 0; v < 256; v++ {
			lut[c][v] = clampByte((float64(v) - float64(lo[c])) * 255 / rng)
		}
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := out.PixOffset(x, y)
			out.Pix[i+0] = lut[0][out.Pix[i+0]]
			out.Pix[i+1] = lut[1][out.Pix[i+1]]
			out.Pix[i+2] = lut[2][out.Pix[i+2]]
		}
	}
	return out
}

// HistogramStretch is Normalize over the full frame. It ignores any ROI.
func HistogramStretch(src *image.NRGBA) *image.NRGBA {
	return Normalize(src, nil)
}

// Binarize sets R, G and B of every in-ROI pixel to 255 when its BT.709 luma
// is >= threshold and to 0 otherwise. Alpha is preserved.
func Binarize(src *image.NRGBA, threshold uint8, roi *ROI) *image.NRGBA {
	if src == nil {
		return nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := out.PixOffset(x, y)
			var v uint8
			if Luma709(out.Pix[i+0], out.Pix[i+1], out.Pix[i+2]) >= float64(threshold) {
				v = 255
			}
			out.Pix[i+0] = v
			out.Pix[i+1] = v
			out.Pix[i+2] = v
		}
	}
	return out
}

// Grayscale writes the rounded BT.709 luma of every in-ROI pixel to R, G and B.
func Grayscale(src *image.NRGBA, roi *ROI) *image.NRGBA {
	if src == nil {
		return nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := out.PixOffset(x, y)
			lum := clampByte(Luma709(out.Pix[i+0], out.Pix[i+1], out.Pix[i+2]))
			out.Pix[i+0] = lum
			out.Pix[i+1] = lum
			out.Pix[i+2] = lum
		}
	}
	return out
}
