package stdimg

import (
	"fmt"
	"image"
)

// Recompute derives a processed buffer from src and p. It never modifies src
// and keeps no state between calls, so replaying the same (src, p, roi)
// always yields the same pixels.
//
// Stages run in a fixed order: resize, rotate, flip, blur, edge detection,
// grayscale, normalize, equalize, histogram stretch, sharpen, then one of
// RGB segmentation, adaptive threshold or binarization. roi is interpreted in the coordinates of the
// geometrically transformed buffer and clipped to it.
func (e Engine) Recompute(src *image.NRGBA, p FilterParameters, roi *ROI) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Normalized()

	buf := ResizePercent(src, p.ResizePercent)
	if p.Rotation != 0 {
		buf = Rotate(buf, p.Rotation)
	}
	if p.FlipH || p.FlipV {
		buf = Flip(buf, p.FlipH, p.FlipV)
	}
	roi = roi.Clip(buf.Bounds().Dx(), buf.Bounds().Dy())

	var err error
	if p.BlurRadius > 0 {
		switch p.Blur {
		case BlurMean:
			buf, err = e.MeanBlur(buf, p.BlurRadius, roi)
		case BlurGaussian:
			buf, err = e.GaussianBlur(buf, p.BlurRadius, roi)
		case BlurMedian:
			buf, err = e.MedianFilter(buf, p.BlurRadius, roi)
		}
		if err != nil {
			return nil, err
		}
	}

	switch p.Edge {
	case EdgeSobel:
		buf = e.Sobel(buf, roi)
	case EdgePrewitt:
		buf = e.Prewitt(buf, roi)
	case EdgeLaplacian:
		buf = e.Laplacian(buf, roi)
	case EdgeHysteresis:
		buf = e.Hysteresis(buf, uint8(p.CannyLow), uint8(p.CannyHigh), roi)
	}

	if p.Grayscale {
		buf = Grayscale(buf, roi)
	}
	if p.Normalize {
		buf = Normalize(buf, roi)
	}
	if p.Equalize {
		buf = Equalize(buf, roi)
	}
	if p.HistogramStretch {
		buf = HistogramStretch(buf)
	}
	if p.Sharpen > 0 {
		if buf, err = e.Sharpen(buf, p.Sharpen, roi); err != nil {
			return nil, err
		}
	}
	switch {
	case p.SegmentationRGB:
		buf = SegmentRGB(buf, uint8(p.Threshold), roi)
	case p.AdaptiveBlock > 0:
		if buf, err = AdaptiveThreshold(buf, p.AdaptiveBlock, p.AdaptiveOffset, roi); err != nil {
			return nil, err
		}
	case p.Threshold != DefaultThreshold:
		buf = Binarize(buf, uint8(p.Threshold), roi)
	}
	return buf, nil
}

// Recompute runs Engine.Recompute with the default worker count.
func Recompute(src *image.NRGBA, p FilterParameters, roi *ROI) (*image.NRGBA, error) {
	return Engine{}.Recompute(src, p, roi)
}
