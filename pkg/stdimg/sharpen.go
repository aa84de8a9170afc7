package stdimg

import (
	"fmt"
	"image"
	"math"
)

// SharpenKernelSize is the Gaussian window used by Sharpen.
const SharpenKernelSize = 5

// MaxSharpenAmount bounds the unsharp mask multiplier.
const MaxSharpenAmount = 5.0

// UnsharpMask blurs src with a k x k Gaussian and adds amount times the
// difference back: v' = v + amount*(v - blurred). Pixels whose R, G and B
// differences are all below threshold are left as they are; threshold <= 0
// sharpens everything. Only in-ROI pixels change and alpha is preserved.
func (e Engine) UnsharpMask(src *image.NRGBA, k int, amount, threshold float64, roi *ROI) (*image.NRGBA, error) {
	if src == nil {
		return nil, nil
	}
	if amount < 0 || amount > MaxSharpenAmount {
		return nil, fmt.Errorf("%w: sharpen amount %g not in 0..%g", ErrInvalidParameter, amount, MaxSharpenAmount)
	}
	src = anchored(src)
	blurred, err := e.GaussianBlur(src, k, roi)
	if err != nil {
		return nil, err
	}
	out := CloneNRGBA(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := src.PixOffset(x, y)
			var mask [3]float64
			small := true
			for c := 0; c < 3; c++ {
				mask[c] = float64(src.Pix[i+c]) - float64(blurred.Pix[i+c])
				if math.Abs(mask[c]) >= threshold {
					small = false
				}
			}
			if threshold > 0 && small {
				continue
			}
			for c := 0; c < 3; c++ {
				out.Pix[i+c] = clampByte(float64(src.Pix[i+c]) + amount*mask[c])
			}
		}
	}
	return out, nil
}

// Sharpen is UnsharpMask with a 5x5 Gaussian and no threshold.
func (e Engine) Sharpen(src *image.NRGBA, amount float64, roi *ROI) (*image.NRGBA, error) {
	return e.UnsharpMask(src, SharpenKernelSize, amount, 0, roi)
}

// Sharpen runs Engine.Sharpen with the default worker count.
func Sharpen(src *image.NRGBA, amount float64, roi *ROI) (*image.NRGBA, error) {
	return Engine{}.Sharpen(src, amount, roi)
}
