package stdimg

import (
	"image"
	"math"
)

// HistogramSet holds 256-bin counts for each colour channel plus a gray
// channel where gray = round((R+G+B)/3).
type HistogramSet struct {
	R, G, B, Gray [256]int
	Total         int
}

// ComputeHistograms counts channel values over the in-ROI pixels of src.
func ComputeHistograms(src *image.NRGBA, roi *ROI) HistogramSet {
	var hs HistogramSet
	if src == nil {
		return hs
	}
	src = anchored(src)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := src.PixOffset(x, y)
			r, g, b := src.Pix[i+0], src.Pix[i+1], src.Pix[i+2]
			hs.R[r]++
			hs.G[g]++
			hs.B[b]++
			hs.Gray[int(math.Round(float64(int(r)+int(g)+int(b))/3))]++
			hs.Total++
		}
	}
	return hs
}

// Channel returns the histogram for channel c (0=R, 1=G, 2=B, 3=Gray).
func (hs *HistogramSet) Channel(c int) *[256]int {
	switch c {
	case 0:
		return &hs.R
	case 1:
		return &hs.G
	case 2:
		return &hs.B
	default:
		return &hs.Gray
	}
}

// cdfMap builds the equalization lookup table round(cdf(v)/total*255).
func cdfMap(hist *[256]int, total int) [256]uint8 {
	var m [256]uint8
	cdf := 0
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		m[i] = uint8(math.Round(float64(cdf) / float64(total) * 255.0))
	}
	return m
}

// Equalize performs histogram equalization per channel. Histograms are built
// from in-ROI pixels only and only in-ROI pixels are remapped.
func Equalize(src *image.NRGBA, roi *ROI) *image.NRGBA {
	if src == nil {
		return nil
	}
	src = anchored(src)
	out := CloneNRGBA(src)
	hs := ComputeHistograms(src, roi)
	if hs.Total == 0 {
		return out
	}
	mapR := cdfMap(&hs.R, hs.Total)
	mapG := cdfMap(&hs.G, hs.Total)
	mapB := cdfMap(&hs.B, hs.Total)

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0, x1, y1 := scanBounds(roi, w, h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := out.PixOffset(x, y)
			out.Pix[i+0] = mapR[out.Pix[i+0]]
			out.Pix[i+1] = mapG[out.Pix[i+1]]
			out.Pix[i+2] = mapB[out.Pix[i+2]]
		}
	}
	return out
}

// SegmentRGB recolours every in-ROI pixel whose dominant channel exceeds
// threshold to pure red, green or blue. Ties resolve in R, G, B order.
// Pixels whose dominant channel is <= threshold are left unchanged.
func SegmentRGB(src *image.NRGBA, threshold uint8, roi *ROI) *image.NRGBA {
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
			r, g, b := out.Pix[i+0], out.Pix[i+1], out.Pix[i+2]
			maxc := max(r, g, b)
			if maxc <= threshold {
				continue
			}
			switch maxc {
			case r:
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2] = 255, 0, 0
			case g:
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2] = 0, 255, 0
			default:
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2] = 0, 0, 255
			}
		}
	}
	return out
}
