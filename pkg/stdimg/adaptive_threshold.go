package stdimg

import (
	"fmt"
	"image"
)

// MaxAdaptiveOffset bounds the constant subtracted from the local mean.
const MaxAdaptiveOffset = 255

// AdaptiveThreshold applies a local mean threshold over a block x block
// window of BT.709 luma. A pixel becomes white when its luma is above
// mean - offset and black otherwise. Windows are clipped at the image edges.
// Only in-ROI pixels are written; alpha is preserved.
func AdaptiveThreshold(src *image.NRGBA, block, offset int, roi *ROI) (*image.NRGBA, error) {
	if err := ValidateKernelSize(block); err != nil {
		return nil, err
	}
	if offset < -MaxAdaptiveOffset || offset > MaxAdaptiveOffset {
		return nil, fmt.Errorf("%w: adaptive offset %d not in -%d..%d", ErrInvalidParameter, offset, MaxAdaptiveOffset, MaxAdaptiveOffset)
	}
	if src == nil {
		return nil, nil
	}
	src = anchored(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			lum[y*w+x] = Luma709(src.Pix[i+0], src.Pix[i+1], src.Pix[i+2])
		}
	}
	// integral image, one extra row and column of zeros
	integ := make([]float64, (w+1)*(h+1))
	for y := 1; y <= h; y++ {
		sum := 0.0
		for x := 1; x <= w; x++ {
			sum += lum[(y-1)*w+(x-1)]
			integ[y*(w+1)+x] = integ[(y-1)*(w+1)+x] + sum
		}
	}

	out := CloneNRGBA(src)
	half := block / 2
	rx0, ry0, rx1, ry1 := scanBounds(roi, w, h)
	for y := ry0; y <= ry1; y++ {
		for x := rx0; x <= rx1; x++ {
			x0 := clampInt(x-half, 0, w-1)
			x1 := clampInt(x+half, 0, w-1) + 1
			y0 := clampInt(y-half, 0, h-1)
			y1 := clampInt(y+half, 0, h-1) + 1
			area := float64((x1 - x0) * (y1 - y0))
			s := integ[y1*(w+1)+x1] - integ[y0*(w+1)+x1] - integ[y1*(w+1)+x0] + integ[y0*(w+1)+x0]
			var v uint8
			if lum[y*w+x] > s/area-float64(offset) {
				v = 255
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = v
			out.Pix[i+1] = v
			out.Pix[i+2] = v
		}
	}
	return out, nil
}
