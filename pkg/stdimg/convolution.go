package stdimg

import (
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Engine runs the neighbourhood filters. Interior rows are split into bands
// processed by at most Workers goroutines; the zero value uses GOMAXPROCS.
//
// Every band writes a disjoint set of output rows and no band ever writes a
// border pixel, so the result does not depend on the worker count.
type Engine struct {
	Workers int
}

func (e Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// forEachBand calls fn over [y0,y1) split into contiguous bands and waits for all of them.
func (e Engine) forEachBand(y0, y1 int, fn func(b0, b1 int)) {
	rows := y1 - y0
	if rows <= 0 {
		return
	}
	n := min(e.workers(), rows)
	if n <= 1 {
		fn(y0, y1)
		return
	}
	band := (rows + n - 1) / n
	var g errgroup.Group
	g.SetLimit(n)
	for b0 := y0; b0 < y1; b0 += band {
		b0 := b0
		b1 := min(b0+band, y1)
		g.Go(func() error {
			fn(b0, b1)
			return nil
		})
	}
	_ = g.Wait()
}

// Convolve applies k to the R, G and B channels of every interior in-ROI pixel.
// Pixels closer than k.Radius() to any edge, pixels outside roi and the alpha
// channel are copied from src unchanged. Results are rounded and clamped to [0,255].
func (e Engine) Convolve(src *image.NRGBA, k Kernel, roi *ROI) *image.NRGBA {
	if src == nil {
		return nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	r := k.Radius()
	if w <= 2*r || h <= 2*r {
		return out
	}
	e.forEachBand(r, h-r, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := r; x < w-r; x++ {
				if !roi.Contains(x, y) {
					continue
				}
				sr, sg, sb := 0.0, 0.0, 0.0
				idx := 0
				for ky := -r; ky <= r; ky++ {
					row := src.PixOffset(x-r, y+ky)
					for kx := 0; kx < k.Size; kx++ {
						wgt := k.Weights[idx]
						p := row + kx*4
						sr += float64(src.Pix[p+0]) * wgt
						sg += float64(src.Pix[p+1]) * wgt
						sb += float64(src.Pix[p+2]) * wgt
						idx++
					}
				}
				i := out.PixOffset(x, y)
				out.Pix[i+0] = clampByte(sr)
				out.Pix[i+1] = clampByte(sg)
				out.Pix[i+2] = clampByte(sb)
			}
		}
	})
	return out
}

// Convolve runs Engine.Convolve with the default worker count.
func Convolve(src *image.NRGBA, k Kernel, roi *ROI) *image.NRGBA {
	return Engine{}.Convolve(src, k, roi)
}

// MeanBlur convolves src with a k x k box kernel.
func (e Engine) MeanBlur(src *image.NRGBA, k int, roi *ROI) (*image.NRGBA, error) {
	kern, err := MeanKernel(k)
	if err != nil {
		return nil, err
	}
	return e.Convolve(src, kern, roi), nil
}

// GaussianBlur convolves src with a k x k Gaussian (sigma = k/6).
func (e Engine) GaussianBlur(src *image.NRGBA, k int, roi *ROI) (*image.NRGBA, error) {
	kern, err := GaussianKernel(k)
	if err != nil {
		return nil, err
	}
	return e.Convolve(src, kern, roi), nil
}

// MeanBlur runs Engine.MeanBlur with the default worker count.
func MeanBlur(src *image.NRGBA, k int, roi *ROI) (*image.NRGBA, error) {
	return Engine{}.MeanBlur(src, k, roi)
}

// GaussianBlur runs Engine.GaussianBlur with the default worker count.
func GaussianBlur(src *image.NRGBA, k int, roi *ROI) (*image.NRGBA, error) {
	return Engine{}.GaussianBlur(src, k, roi)
}
