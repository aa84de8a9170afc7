package history

import (
	"fmt"
	"image"

	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	decoder, _ = zstd.NewReader(nil)
)

// Snapshot is an immutable, zstd-compressed copy of a pixel buffer. Journal
// entries share snapshots by pointer; nothing mutates one after creation.
type Snapshot struct {
	Width  int
	Height int
	data   []byte
}

// NewSnapshot captures img. The buffer is copied, so later writes to img do
// not affect the snapshot.
func NewSnapshot(img *image.NRGBA) *Snapshot {
	if img == nil {
		return &Snapshot{}
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	raw := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		raw = append(raw, img.Pix[i:i+w*4]...)
	}
	return &Snapshot{
		Width:  w,
		Height: h,
		data:   encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)),
	}
}

// Decode restores the buffer the snapshot was taken from.
func (s *Snapshot) Decode() (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	if len(img.Pix) == 0 {
		return img, nil
	}
	raw, err := decoder.DecodeAll(s.data, img.Pix[:0])
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(raw) != len(img.Pix) {
		return nil, fmt.Errorf("decode snapshot: got %d bytes, want %d", len(raw), len(img.Pix))
	}
	return img, nil
}

// Size returns the compressed size in bytes.
func (s *Snapshot) Size() int {
	return len(s.data)
}
