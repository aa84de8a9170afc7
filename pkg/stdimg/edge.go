package stdimg

import (
	"image"
	"math"
)

// Luma601 returns ITU-R BT.601 luma. The edge detectors use it.
func Luma601(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Luma709 returns ITU-R BT.709 luma. Grayscale and Binarize use it.
func Luma709(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// lumaPlane converts src to a rounded BT.601 luma plane, one byte per pixel.
func lumaPlane(src *image.NRGBA) []uint8 {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	plane := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			plane[y*w+x] = clampByte(Luma601(src.Pix[i+0], src.Pix[i+1], src.Pix[i+2]))
		}
	}
	return plane
}

// EdgeMagnitude converts src to BT.601 luma and applies the gradient kernel
// gx (and gy when non-nil). With two kernels the magnitude is sqrt(gx²+gy²);
// with one it is |gx|. The clamped magnitude is written to R, G and B of
// every interior in-ROI pixel. Border pixels, pixels outside roi and alpha
// keep their input values.
func (e Engine) EdgeMagnitude(src *image.NRGBA, gx Kernel, gy *Kernel, roi *ROI) *image.NRGBA {
	if src == nil {
		return nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	r := gx.Radius()
	if w <= 2*r || h <= 2*r {
		return out
	}
	luma := lumaPlane(src)
	e.forEachBand(r, h-r, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := r; x < w-r; x++ {
				if !roi.Contains(x, y) {
					continue
				}
				sx, sy := 0.0, 0.0
				idx := 0
				for ky := -r; ky <= r; ky++ {
					row := (y+ky)*w + x - r
					for kx := 0; kx < gx.Size; kx++ {
						v := float64(luma[row+kx])
						sx += v * gx.Weights[idx]
						if gy != nil {
							sy += v * gy.Weights[idx]
						}
						idx++
					}
				}
				var mag float64
				if gy != nil {
					mag = math.Sqrt(sx*sx + sy*sy)
				} else {
					mag = math.Abs(sx)
				}
				v := clampByte(mag)
				i := out.PixOffset(x, y)
				out.Pix[i+0] = v
				out.Pix[i+1] = v
				out.Pix[i+2] = v
			}
		}
	})
	return out
}

// Sobel returns the Sobel gradient magnitude of src.
func (e Engine) Sobel(src *image.NRGBA, roi *ROI) *image.NRGBA {
	gx, gy := SobelKernels()
	return e.EdgeMagnitude(src, gx, &gy, roi)
}

// Prewitt returns the Prewitt gradient magnitude of src.
func (e Engine) Prewitt(src *image.NRGBA, roi *ROI) *image.NRGBA {
	gx, gy := PrewittKernels()
	return e.EdgeMagnitude(src, gx, &gy, roi)
}

// Laplacian returns |Laplacian| of the luma of src.
func (e Engine) Laplacian(src *image.NRGBA, roi *ROI) *image.NRGBA {
	return e.EdgeMagnitude(src, LaplacianKernel(), nil, roi)
}

// Hysteresis classifies the Sobel magnitude of src with two cutoffs:
// 255 when value >= high, 128 when low <= value < high, 0 otherwise.
// The value of a pixel is its R channel after the Sobel pass, so border
// pixels are classified by their original red value.
//
// This is a double threshold on raw gradient magnitude. There is no
// non-maximum suppression and no edge tracing, so it is not Canny.
// low <= high is expected but not enforced.
func (e Engine) Hysteresis(src *image.NRGBA, low, high uint8, roi *ROI) *image.NRGBA {
	out := e.Sobel(src, roi)
	if out == nil {
		return nil
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := out.PixOffset(x, y)
			v := out.Pix[i+0]
			var level uint8
			switch {
			case v >= high:
				level = 255
			case v >= low:
				level = 128
			}
			out.Pix[i+0] = level
			out.Pix[i+1] = level
			out.Pix[i+2] = level
		}
	}
	return out
}

// Sobel runs Engine.Sobel with the default worker count.
func Sobel(src *image.NRGBA, roi *ROI) *image.NRGBA {
	return Engine{}.Sobel(src, roi)
}

// Hysteresis runs Engine.Hysteresis with the default worker count.
func Hysteresis(src *image.NRGBA, low, high uint8, roi *ROI) *image.NRGBA {
	return Engine{}.Hysteresis(src, low, high, roi)
}
