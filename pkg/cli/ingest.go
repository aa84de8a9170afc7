package cli

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"

	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

// ErrUnsupportedImageFormat is returned for files whose content type is not
// in AcceptedMIMETypes.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// AcceptedMIMETypes lists the content types the editor will import.
var AcceptedMIMETypes = []string{"image/jpeg", "image/png", "image/bmp", "image/svg+xml"}

// Default raster size for SVGs without a usable viewBox.
const defaultSVGSize = 512

// DetectMIME sniffs the content type of data. SVG is recognised from its
// markup, or from a .svg name when the markup is not in the sniffed prefix.
func DetectMIME(name string, data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if strings.HasPrefix(ct, "image/") && ct != "image/svg+xml" {
		return ct
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "image/svg+xml"
	}
	if strings.EqualFold(filepath.Ext(name), ".svg") && strings.HasPrefix(ct, "text/") {
		return "image/svg+xml"
	}
	return ct
}

func accepted(mime string) bool {
	for _, m := range AcceptedMIMETypes {
		if m == mime {
			return true
		}
	}
	return false
}

// DecodeImage decodes data into an NRGBA buffer after checking its content
// type against the allow-list. JPEGs carrying an EXIF orientation are
// auto-oriented. It returns the detected MIME type alongside the buffer.
func DecodeImage(name string, data []byte) (*image.NRGBA, string, error) {
	mime := DetectMIME(name, data)
	if !accepted(mime) {
		return nil, mime, fmt.Errorf("%w: %s is %s", ErrUnsupportedImageFormat, name, mime)
	}

	var (
		img image.Image
		err error
	)
	switch mime {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
		if err == nil {
			if o := jpegOrientation(data); o > 1 {
				return stdimg.AutoOrient(img, o), mime, nil
			}
		}
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
	case "image/svg+xml":
		img, err = rasterizeSVG(data)
	}
	if err != nil {
		return nil, mime, fmt.Errorf("decode %s: %w", name, err)
	}
	return stdimg.ToNRGBA(img), mime, nil
}

// LoadImage reads and decodes the file at path.
func LoadImage(path string) (*image.NRGBA, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return DecodeImage(filepath.Base(path), b)
}

// jpegOrientation returns the EXIF orientation tag, or 1 when absent.
func jpegOrientation(data []byte) int {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = defaultSVGSize, defaultSVGSize
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}
