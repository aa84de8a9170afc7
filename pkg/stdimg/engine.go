package stdimg

import (
	"fmt"
	"image"
	"strconv"
)

// ApplyOperation runs a single named operation from Operations against img and
// returns a new buffer. Arguments are textual, in the order listed by the
// operation's ArgSpec. roi is honoured by ROI-aware operations and ignored by
// the others.
func (e Engine) ApplyOperation(img image.Image, name string, args []string, roi *ROI) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	spec, ok := LookupOperation(name)
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", name)
	}
	src := ToNRGBA(img)
	roi = roi.Clip(src.Bounds().Dx(), src.Bounds().Dy())

	switch spec.Name {
	case "meanBlur", "gaussianBlur", "medianFilter":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s requires 1 arg: k", spec.Name)
		}
		k, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid kernel size: %w", err)
		}
		switch spec.Name {
		case "meanBlur":
			return e.MeanBlur(src, k, roi)
		case "gaussianBlur":
			return e.GaussianBlur(src, k, roi)
		default:
			return e.MedianFilter(src, k, roi)
		}

	case "despeckle":
		out, err := e.MedianFilter(src, 3, nil)
		return out, err

	case "sobel":
		return e.Sobel(src, roi), nil

	case "prewitt":
		return e.Prewitt(src, roi), nil

	case "laplacian":
		return e.Laplacian(src, roi), nil

	case "hysteresis":
		low, high := 50, 150
		if len(args) >= 1 {
			v, err := parseByteArg("low", args[0])
			if err != nil {
				return nil, err
			}
			low = v
		}
		if len(args) >= 2 {
			v, err := parseByteArg("high", args[1])
			if err != nil {
				return nil, err
			}
			high = v
		}
		return e.Hysteresis(src, uint8(low), uint8(high), roi), nil

	case "grayscale":
		return Grayscale(src, roi), nil

	case "normalize":
		return Normalize(src, roi), nil

	case "equalize":
		return Equalize(src, roi), nil

	case "histogramStretch":
		return HistogramStretch(src), nil

	case "segmentRGB":
		threshold := DefaultThreshold
		if len(args) >= 1 {
			v, err := parseByteArg("threshold", args[0])
			if err != nil {
				return nil, err
			}
			threshold = v
		}
		return SegmentRGB(src, uint8(threshold), roi), nil

	case "binarize":
		if len(args) != 1 {
			return nil, fmt.Errorf("binarize requires 1 arg: threshold")
		}
		v, err := parseByteArg("threshold", args[0])
		if err != nil {
			return nil, err
		}
		return Binarize(src, uint8(v), roi), nil

	case "sharpen":
		amount := 1.0
		if len(args) >= 1 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid amount: %w", err)
			}
			amount = v
		}
		return e.Sharpen(src, amount, roi)

	case "adaptiveThreshold":
		block, offset := 11, 2
		if len(args) >= 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid block: %w", err)
			}
			block = v
		}
		if len(args) >= 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, fmt.Errorf("invalid offset: %w", err)
			}
			offset = v
		}
		return AdaptiveThreshold(src, block, offset, roi)

	case "resize":
		if len(args) != 1 {
			return nil, fmt.Errorf("resize requires 1 arg: percent")
		}
		pct, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid percent: %w", err)
		}
		if pct < MinResizePercent || pct > MaxResizePercent {
			return nil, fmt.Errorf("%w: percent %d not in %d..%d", ErrInvalidParameter, pct, MinResizePercent, MaxResizePercent)
		}
		return ResizePercent(src, pct), nil

	case "rotate":
		if len(args) != 1 {
			return nil, fmt.Errorf("rotate requires 1 arg: degrees")
		}
		deg, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid degrees: %w", err)
		}
		if deg%90 != 0 {
			return nil, fmt.Errorf("%w: rotation %d is not a multiple of 90", ErrInvalidParameter, deg)
		}
		return Rotate(src, deg), nil

	case "flip":
		return Flip(src, false, true), nil

	case "flop":
		return Flip(src, true, false), nil
	}
	return nil, fmt.Errorf("operation %s has no implementation", spec.Name)
}

// ApplyOperation runs Engine.ApplyOperation with the default worker count.
func ApplyOperation(img image.Image, name string, args []string, roi *ROI) (*image.NRGBA, error) {
	return Engine{}.ApplyOperation(img, name, args, roi)
}

func parseByteArg(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if !inByteRange(v) {
		return 0, fmt.Errorf("%w: %s %d not in 0..255", ErrInvalidParameter, name, v)
	}
	return v, nil
}
