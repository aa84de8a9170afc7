package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

// DefaultDownloadName is used when a download is requested without a name.
const DefaultDownloadName = "processed.png"

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImage writes img as PNG. An empty path writes DefaultDownloadName and a
// path without an extension gets ".png" appended. The written path is
// returned.
func SaveImage(path string, img image.Image) (string, error) {
	if path == "" {
		path = DefaultDownloadName
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	} else if !strings.EqualFold(filepath.Ext(path), ".png") {
		return "", fmt.Errorf("downloads are PNG only: %s", path)
	}
	b, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// DescribeImage returns a one-line summary of a buffer: size, mean luma and
// the share of opaque pixels.
func DescribeImage(img *image.NRGBA) string {
	if img == nil {
		return "no image"
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return fmt.Sprintf("Width: %d, Height: %d", w, h)
	}
	hs := stdimg.ComputeHistograms(img, nil)
	var sum int
	for v, n := range hs.Gray {
		sum += v * n
	}
	opaque := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 255 {
				opaque++
			}
		}
	}
	return fmt.Sprintf("Width: %d, Height: %d, Mean: %.1f, Opaque: %.0f%%",
		w, h, float64(sum)/float64(hs.Total), 100*float64(opaque)/float64(w*h))
}
