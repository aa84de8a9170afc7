package stdimg

import (
	"image"
	"slices"
)

// MedianFilter replaces R, G and B of every interior in-ROI pixel with the
// median of its k x k neighbourhood (the value at index k²/2 of the sorted
// window). Border pixels within k/2 of an edge, pixels outside roi and alpha
// are copied from src unchanged.
func (e Engine) MedianFilter(src *image.NRGBA, k int, roi *ROI) (*image.NRGBA, error) {
	if err := ValidateKernelSize(k); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	r := k / 2
	if w <= 2*r || h <= 2*r {
		return out, nil
	}
	mid := (k * k) / 2
	e.forEachBand(r, h-r, func(y0, y1 int) {
		// per-band scratch windows
		rs := make([]uint8, k*k)
		gs := make([]uint8, k*k)
		bs := make([]uint8, k*k)
		for y := y0; y < y1; y++ {
			for x := r; x < w-r; x++ {
				if !roi.Contains(x, y) {
					continue
				}
				n := 0
				for ky := -r; ky <= r; ky++ {
					row := src.PixOffset(x-r, y+ky)
					for kx := 0; kx < k; kx++ {
						p := row + kx*4
						rs[n] = src.Pix[p+0]
						gs[n] = src.Pix[p+1]
						bs[n] = src.Pix[p+2]
						n++
					}
				}
				slices.Sort(rs)
				slices.Sort(gs)
				slices.Sort(bs)
				i := out.PixOffset(x, y)
				out.Pix[i+0] = rs[mid]
				out.Pix[i+1] = gs[mid]
				out.Pix[i+2] = bs[mid]
			}
		}
	})
	return out, nil
}

// MedianFilter runs Engine.MedianFilter with the default worker count.
func MedianFilter(src *image.NRGBA, k int, roi *ROI) (*image.NRGBA, error) {
	return Engine{}.MedianFilter(src, k, roi)
}

// Despeckle removes isolated impulses with a 3x3 median over the whole frame.
func Despeckle(src *image.NRGBA) *image.NRGBA {
	out, _ := MedianFilter(src, 3, nil)
	return out
}
