package stdimg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is returned by FilterParameters.Validate.
var ErrInvalidParameter = errors.New("invalid filter parameter")

// DefaultThreshold is the neutral threshold: Recompute only binarizes when
// the threshold differs from it.
const DefaultThreshold = 128

// BlurKind selects the smoothing filter applied by Recompute.
type BlurKind string

const (
	BlurNone     BlurKind = "none"
	BlurMean     BlurKind = "mean"
	BlurGaussian BlurKind = "gaussian"
	BlurMedian   BlurKind = "median"
)

// EdgeKind selects the edge detector applied by Recompute.
type EdgeKind string

const (
	EdgeNone       EdgeKind = "none"
	EdgeSobel      EdgeKind = "sobel"
	EdgePrewitt    EdgeKind = "prewitt"
	EdgeLaplacian  EdgeKind = "laplacian"
	EdgeHysteresis EdgeKind = "hysteresis"
)

// FilterParameters is the complete, serializable set of knobs that
// Recompute turns into a processed buffer. It carries no pixel data.
type FilterParameters struct {
	Grayscale        bool     `json:"grayscale" yaml:"grayscale"`
	Threshold        int      `json:"threshold" yaml:"threshold"`
	Blur             BlurKind `json:"blur" yaml:"blur"`
	BlurRadius       int      `json:"blurRadius" yaml:"blurRadius"` // odd kernel side, 0 disables blur
	ResizePercent    int      `json:"resizePercent" yaml:"resizePercent"`
	Rotation         int      `json:"rotation" yaml:"rotation"`
	FlipH            bool     `json:"flipH" yaml:"flipH"`
	FlipV            bool     `json:"flipV" yaml:"flipV"`
	Normalize        bool     `json:"normalize" yaml:"normalize"`
	Equalize         bool     `json:"equalize" yaml:"equalize"`
	HistogramStretch bool     `json:"histogramStretch" yaml:"histogramStretch"`
	SegmentationRGB  bool     `json:"segmentationRGB" yaml:"segmentationRGB"`
	Edge             EdgeKind `json:"edge" yaml:"edge"`
	CannyLow         int      `json:"cannyLow" yaml:"cannyLow"`
	CannyHigh        int      `json:"cannyHigh" yaml:"cannyHigh"`
	Sharpen          float64  `json:"sharpen" yaml:"sharpen"`             // unsharp mask amount, 0 disables
	AdaptiveBlock    int      `json:"adaptiveBlock" yaml:"adaptiveBlock"` // odd window side, 0 disables
	AdaptiveOffset   int      `json:"adaptiveOffset" yaml:"adaptiveOffset"`
}

// DefaultParameters returns the identity parameter set.
func DefaultParameters() FilterParameters {
	return FilterParameters{
		Threshold:      DefaultThreshold,
		Blur:           BlurGaussian,
		ResizePercent:  100,
		Edge:           EdgeNone,
		CannyLow:       50,
		CannyHigh:      150,
		AdaptiveOffset: 2,
	}
}

// Normalized returns p with the rotation folded into [0,360) and empty
// selectors replaced by their "none" value.
func (p FilterParameters) Normalized() FilterParameters {
	p.Rotation = NormalizeRotation(p.Rotation)
	if p.Blur == "" {
		p.Blur = BlurNone
	}
	if p.Edge == "" {
		p.Edge = EdgeNone
	}
	return p
}

func inByteRange(v int) bool {
	return v >= 0 && v <= 255
}

// Validate checks every field range. It does not enforce CannyLow <= CannyHigh.
func (p FilterParameters) Validate() error {
	if !inByteRange(p.Threshold) {
		return fmt.Errorf("%w: threshold %d not in 0..255", ErrInvalidParameter, p.Threshold)
	}
	if p.BlurRadius != 0 {
		if err := ValidateKernelSize(p.BlurRadius); err != nil {
			return err
		}
	}
	switch p.Blur {
	case "", BlurNone, BlurMean, BlurGaussian, BlurMedian:
	default:
		return fmt.Errorf("%w: unknown blur %q", ErrInvalidParameter, p.Blur)
	}
	if p.ResizePercent < MinResizePercent || p.ResizePercent > MaxResizePercent {
		return fmt.Errorf("%w: resizePercent %d not in %d..%d", ErrInvalidParameter, p.ResizePercent, MinResizePercent, MaxResizePercent)
	}
	if p.Rotation%90 != 0 {
		return fmt.Errorf("%w: rotation %d is not a multiple of 90", ErrInvalidParameter, p.Rotation)
	}
	switch p.Edge {
	case "", EdgeNone, EdgeSobel, EdgePrewitt, EdgeLaplacian, EdgeHysteresis:
	default:
		return fmt.Errorf("%w: unknown edge detector %q", ErrInvalidParameter, p.Edge)
	}
	if !inByteRange(p.CannyLow) || !inByteRange(p.CannyHigh) {
		return fmt.Errorf("%w: hysteresis cutoffs %d/%d not in 0..255", ErrInvalidParameter, p.CannyLow, p.CannyHigh)
	}
	if p.Sharpen < 0 || p.Sharpen > MaxSharpenAmount {
		return fmt.Errorf("%w: sharpen %g not in 0..%g", ErrInvalidParameter, p.Sharpen, MaxSharpenAmount)
	}
	if p.AdaptiveBlock != 0 {
		if err := ValidateKernelSize(p.AdaptiveBlock); err != nil {
			return err
		}
	}
	if p.AdaptiveOffset < -MaxAdaptiveOffset || p.AdaptiveOffset > MaxAdaptiveOffset {
		return fmt.Errorf("%w: adaptiveOffset %d not in -%d..%d", ErrInvalidParameter, p.AdaptiveOffset, MaxAdaptiveOffset, MaxAdaptiveOffset)
	}
	return nil
}

// IsIdentity reports whether p leaves a buffer unchanged.
func (p FilterParameters) IsIdentity() bool {
	return p.Label() == "Original"
}

// Label describes the active operations, e.g. "Grayscale + Equalize + Blur gaussian 5".
// It returns "Original" when nothing is active.
func (p FilterParameters) Label() string {
	p = p.Normalized()
	var names []string
	if p.Grayscale {
		names = append(names, "Grayscale")
	}
	if p.Equalize {
		names = append(names, "Equalize")
	}
	if p.Normalize {
		names = append(names, "Normalize")
	}
	if p.HistogramStretch {
		names = append(names, "Histogram stretch")
	}
	if p.Sharpen > 0 {
		names = append(names, fmt.Sprintf("Sharpen %g", p.Sharpen))
	}
	switch {
	case p.SegmentationRGB:
		names = append(names, fmt.Sprintf("RGB segmentation %d", p.Threshold))
	case p.AdaptiveBlock > 0:
		names = append(names, fmt.Sprintf("Adaptive threshold %d/%d", p.AdaptiveBlock, p.AdaptiveOffset))
	case p.Threshold != DefaultThreshold:
		names = append(names, fmt.Sprintf("Threshold %d", p.Threshold))
	}
	if p.BlurRadius > 0 && p.Blur != BlurNone {
		names = append(names, fmt.Sprintf("Blur %s %d", p.Blur, p.BlurRadius))
	}
	switch p.Edge {
	case EdgeNone:
	case EdgeHysteresis:
		names = append(names, fmt.Sprintf("Edges hysteresis %d/%d", p.CannyLow, p.CannyHigh))
	default:
		names = append(names, "Edges "+string(p.Edge))
	}
	if p.ResizePercent != 100 {
		names = append(names, fmt.Sprintf("Resize %d%%", p.ResizePercent))
	}
	if p.Rotation != 0 {
		names = append(names, fmt.Sprintf("Rotate %d", p.Rotation))
	}
	if p.FlipH {
		names = append(names, "Flip H")
	}
	if p.FlipV {
		names = append(names, "Flip V")
	}
	if len(names) == 0 {
		return "Original"
	}
	return strings.Join(names, " + ")
}
