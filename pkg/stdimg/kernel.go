package stdimg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel size limits accepted by the blur and median filters.
const (
	MinKernelSize = 3
	MaxKernelSize = 21
)

// ErrInvalidKernelSize is returned when a kernel side length is even or outside [MinKernelSize, MaxKernelSize].
var ErrInvalidKernelSize = errors.New("invalid kernel size")

// Kernel is a square convolution kernel stored row-major.
type Kernel struct {
	Size    int
	Weights []float64
}

// Radius returns the half-width floor(Size/2).
func (k Kernel) Radius() int {
	return k.Size / 2
}

// At returns the weight at offset (dx,dy) from the kernel centre.
func (k Kernel) At(dx, dy int) float64 {
	r := k.Radius()
	return k.Weights[(dy+r)*k.Size+(dx+r)]
}

// Sum returns the sum of all weights.
func (k Kernel) Sum() float64 {
	return floats.Sum(k.Weights)
}

// ValidateKernelSize checks that k is odd and within the supported range.
func ValidateKernelSize(k int) error {
	if k%2 == 0 || k < MinKernelSize || k > MaxKernelSize {
		return fmt.Errorf("%w: %d (must be odd, %d..%d)", ErrInvalidKernelSize, k, MinKernelSize, MaxKernelSize)
	}
	return nil
}

// MeanKernel builds a k x k box kernel whose weights are all 1/k².
func MeanKernel(k int) (Kernel, error) {
	if err := ValidateKernelSize(k); err != nil {
		return Kernel{}, err
	}
	w := make([]float64, k*k)
	for i := range w {
		w[i] = 1.0 / float64(k*k)
	}
	return Kernel{Size: k, Weights: w}, nil
}

// GaussianKernel builds a normalized k x k Gaussian with sigma = k/6.
func GaussianKernel(k int) (Kernel, error) {
	if err := ValidateKernelSize(k); err != nil {
		return Kernel{}, err
	}
	sigma := float64(k) / 6.0
	r := k / 2
	w := make([]float64, 0, k*k)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			w = append(w, math.Exp(-float64(x*x+y*y)/(2*sigma*sigma)))
		}
	}
	// normalize
	floats.Scale(1/floats.Sum(w), w)
	return Kernel{Size: k, Weights: w}, nil
}

// SobelKernels returns the 3x3 Sobel gradient pair (x, y).
func SobelKernels() (Kernel, Kernel) {
	gx := Kernel{Size: 3, Weights: []float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}}
	gy := Kernel{Size: 3, Weights: []float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}}
	return gx, gy
}

// PrewittKernels returns the 3x3 Prewitt gradient pair (x, y).
func PrewittKernels() (Kernel, Kernel) {
	gx := Kernel{Size: 3, Weights: []float64{-1, 0, 1, -1, 0, 1, -1, 0, 1}}
	gy := Kernel{Size: 3, Weights: []float64{-1, -1, -1, 0, 0, 0, 1, 1, 1}}
	return gx, gy
}

// LaplacianKernel returns the 4-neighbour 3x3 Laplacian. It is not normalized.
func LaplacianKernel() Kernel {
	return Kernel{Size: 3, Weights: []float64{0, 1, 0, 1, -4, 1, 0, 1, 0}}
}
