// Package stdimg: authoritative registry of engine operations.
//
// This file mirrors the operations implemented in ApplyOperation in
// pkg/stdimg/engine.go. Keep this list up-to-date when you add or
// modify operations so callers (CLI, docs, remote delegation) can read a
// single source of truth.

package stdimg

import "strings"

// ArgSpec describes a single argument for an operation. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "bool", "enum"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// OperationSpec defines a single operation and its expected arguments.
type OperationSpec struct {
	Name        string
	Aliases     []string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
	ROIAware    bool
}

// Operations is the authoritative list of operations implemented by the engine.
var Operations = []OperationSpec{
	{
		Name:        "meanBlur",
		Args:        []ArgSpec{{"k", "int", true, "", "odd kernel side 3..21"}},
		Usage:       "meanBlur <k>",
		Description: "Box blur with a k x k mean kernel; borders copied.",
		ROIAware:    true,
	},
	{
		Name:        "gaussianBlur",
		Aliases:     []string{"blur"},
		Args:        []ArgSpec{{"k", "int", true, "", "odd kernel side 3..21 (sigma = k/6)"}},
		Usage:       "gaussianBlur <k>",
		Description: "Gaussian blur with a normalized k x k kernel; borders copied.",
		ROIAware:    true,
	},
	{
		Name:        "medianFilter",
		Aliases:     []string{"median"},
		Args:        []ArgSpec{{"k", "int", true, "", "odd window side 3..21"}},
		Usage:       "medianFilter <k>",
		Description: "Per-channel median of the k x k window; borders copied.",
		ROIAware:    true,
	},
	{
		Name:        "despeckle",
		Args:        []ArgSpec{},
		Usage:       "despeckle",
		Description: "3x3 median over the whole frame.",
	},
	{
		Name:        "sobel",
		Args:        []ArgSpec{},
		Usage:       "sobel",
		Description: "Sobel gradient magnitude of BT.601 luma.",
		ROIAware:    true,
	},
	{
		Name:        "prewitt",
		Args:        []ArgSpec{},
		Usage:       "prewitt",
		Description: "Prewitt gradient magnitude of BT.601 luma.",
		ROIAware:    true,
	},
	{
		Name:        "laplacian",
		Args:        []ArgSpec{},
		Usage:       "laplacian",
		Description: "Absolute 4-neighbour Laplacian of BT.601 luma.",
		ROIAware:    true,
	},
	{
		Name:        "hysteresis",
		Aliases:     []string{"canny"},
		Args:        []ArgSpec{{"low", "int", false, "50", "low cutoff 0..255"}, {"high", "int", false, "150", "high cutoff 0..255"}},
		Usage:       "hysteresis [low] [high]",
		Description: "Double threshold of Sobel magnitude (255/128/0). Not true Canny: no suppression or tracing.",
		ROIAware:    true,
	},
	{
		Name:        "grayscale",
		Args:        []ArgSpec{},
		Usage:       "grayscale",
		Description: "Convert to luminance (Rec.709).",
		ROIAware:    true,
	},
	{
		Name:        "normalize",
		Args:        []ArgSpec{},
		Usage:       "normalize",
		Description: "Stretch per-channel in-ROI extremes to full [0,255].",
		ROIAware:    true,
	},
	{
		Name:        "equalize",
		Args:        []ArgSpec{},
		Usage:       "equalize",
		Description: "Per-channel histogram equalization over in-ROI pixels.",
		ROIAware:    true,
	},
	{
		Name:        "histogramStretch",
		Aliases:     []string{"stretch"},
		Args:        []ArgSpec{},
		Usage:       "histogramStretch",
		Description: "Per-channel min-max stretch over the full frame (ignores ROI).",
	},
	{
		Name:        "segmentRGB",
		Aliases:     []string{"segmentation"},
		Args:        []ArgSpec{{"threshold", "int", false, "128", "dominant channel cutoff 0..255"}},
		Usage:       "segmentRGB [threshold]",
		Description: "Recolour pixels to pure R/G/B by dominant channel above threshold.",
		ROIAware:    true,
	},
	{
		Name:        "binarize",
		Aliases:     []string{"threshold"},
		Args:        []ArgSpec{{"threshold", "int", true, "", "luma cutoff 0..255"}},
		Usage:       "binarize <threshold>",
		Description: "Threshold Rec.709 luma to black/white.",
		ROIAware:    true,
	},
	{
		Name:        "sharpen",
		Args:        []ArgSpec{{"amount", "float", false, "1", "unsharp mask multiplier 0..5"}},
		Usage:       "sharpen [amount]",
		Description: "Unsharp mask with a 5x5 Gaussian: v + amount*(v - blurred).",
		ROIAware:    true,
	},
	{
		Name:        "adaptiveThreshold",
		Aliases:     []string{"adaptive"},
		Args:        []ArgSpec{{"block", "int", false, "11", "odd window side 3..21"}, {"offset", "int", false, "2", "subtracted from the local mean -255..255"}},
		Usage:       "adaptiveThreshold [block] [offset]",
		Description: "Black/white by comparing Rec.709 luma with the local window mean minus offset.",
		ROIAware:    true,
	},
	{
		Name:        "resize",
		Args:        []ArgSpec{{"percent", "int", true, "", "10..200"}},
		Usage:       "resize <percent>",
		Description: "Scale by percent using Lanczos resampling.",
	},
	{
		Name:        "rotate",
		Args:        []ArgSpec{{"degrees", "int", true, "", "multiple of 90"}},
		Usage:       "rotate <degrees>",
		Description: "Rotate clockwise by quarter turns.",
	},
	{
		Name:        "flip",
		Args:        []ArgSpec{},
		Usage:       "flip",
		Description: "Mirror vertically.",
	},
	{
		Name:        "flop",
		Args:        []ArgSpec{},
		Usage:       "flop",
		Description: "Mirror horizontally.",
	},
}

// LookupOperation finds an operation by name or alias, case-insensitively.
func LookupOperation(name string) (OperationSpec, bool) {
	for _, op := range Operations {
		if strings.EqualFold(op.Name, name) {
			return op, true
		}
		for _, a := range op.Aliases {
			if strings.EqualFold(a, name) {
				return op, true
			}
		}
	}
	return OperationSpec{}, false
}
