package cli

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"
)

func testPreviewer(out *bytes.Buffer, env map[string]string) *Previewer {
	return &Previewer{
		Out:    out,
		Getenv: func(k string) string { return env[k] },
		Log:    quietLogger(),
		Debug:  true,
	}
}

func inlinePayload(t *testing.T, out string) []byte {
	t.Helper()
	idx := strings.Index(out, ":")
	if idx < 0 {
		t.Fatalf("no ':' found in output: %q", out)
	}
	payload := out[idx+1:]
	if bi := strings.Index(payload, "\a"); bi >= 0 {
		payload = payload[:bi]
	}
	dec, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("base64 decode failed: %v", err)
	}
	return dec
}

func TestPreviewInlineSequence(t *testing.T) {
	var out bytes.Buffer
	p := testPreviewer(&out, map[string]string{"TERM_PROGRAM": "WezTerm", "TERM": "xterm-256color"})
	if err := p.Show(makeSolid(2, 2, red), "png"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "\x1b]1337;File=name=preview.png;inline=1;") {
		t.Fatalf("expected inline 1337 sequence, got: %q", s)
	}
	if dec := inlinePayload(t, s); !bytes.HasPrefix(dec, []byte("\x89PNG")) {
		t.Fatalf("payload is not PNG: %x", dec[:4])
	}
}

func TestPreviewEncodesJPEG(t *testing.T) {
	var out bytes.Buffer
	p := testPreviewer(&out, map[string]string{"TERM_PROGRAM": "WezTerm"})
	if err := p.Show(makeSolid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255}), "jpeg"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	dec := inlinePayload(t, out.String())
	if len(dec) < 2 || dec[0] != 0xFF || dec[1] != 0xD8 {
		t.Fatalf("expected JPEG SOI bytes, got: %x", dec[:4])
	}
}

func TestPreviewKittyChunks(t *testing.T) {
	var out bytes.Buffer
	p := testPreviewer(&out, map[string]string{})
	p.Backend = "kitty"
	// noise does not compress, so the PNG needs several 4096-byte chunks
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Intn(256))
	}
	if err := p.Show(img, "jpeg"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "\x1b_Ga=T,f=100,t=d,q=2,c=25,r=13,m=1;") {
		t.Fatalf("unexpected first chunk header: %q", s[:min(len(s), 48)])
	}
	if !strings.Contains(s, "\x1b_Gm=0;") {
		t.Fatalf("missing final chunk")
	}
}

func TestPreviewNothingDetected(t *testing.T) {
	var out bytes.Buffer
	p := testPreviewer(&out, map[string]string{"NO_CHAFA": "1", "TERM": "dumb"})
	if p.Supported() {
		t.Fatalf("dumb terminal reported as supported")
	}
	if err := p.Show(makeSolid(2, 2, red), "png"); err == nil {
		t.Fatalf("expected error without a backend")
	}
	if err := p.Show(nil, "png"); err == nil {
		t.Fatalf("expected error for nil image")
	}
}

func TestComputePreviewSize(t *testing.T) {
	cases := []struct {
		w, h       int
		cols, rows int
	}{
		{16, 16, 6, 3},      // clamped up to the minimum
		{400, 1280, 25, 40}, // limited by height
		{1280, 320, 80, 10}, // limited by width
		{200, 200, 25, 13},
	}
	for _, c := range cases {
		got := computePreviewSize(image.NewNRGBA(image.Rect(0, 0, c.w, c.h)))
		if got.Cols != c.cols || got.Rows != c.rows {
			t.Fatalf("computePreviewSize(%dx%d) = %dx%d; want %dx%d", c.w, c.h, got.Cols, got.Rows, c.cols, c.rows)
		}
		if got.PixelWidth != got.Cols*8 || got.PixelHeight != got.Rows*16 {
			t.Fatalf("pixel size mismatch: %+v", got)
		}
	}
}
