package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Terminal preview for the kitty graphics protocol, the iTerm2-style OSC 1337
// inline image sequence, sixel (through img2sixel) and chafa.
//
// Detection looks at TERM, TERM_PROGRAM and a few terminal-specific
// variables. PREVIEW_BACKEND forces a backend; the others remain fallbacks.

// Previewer renders buffers into the terminal.
type Previewer struct {
	Out     io.Writer
	Backend string // kitty, inline, sixel, chafa; empty to detect
	Getenv  func(string) string
	Log     *logrus.Logger
	Debug   bool
}

// NewPreviewer returns a Previewer writing to out configured from cfg.
func NewPreviewer(out io.Writer, cfg Config, log *logrus.Logger) *Previewer {
	return &Previewer{
		Out:     out,
		Backend: cfg.PreviewBackend,
		Getenv:  os.Getenv,
		Log:     log,
		Debug:   cfg.PreviewDebug,
	}
}

func (p *Previewer) debugf(format string, args ...interface{}) {
	if !p.Debug || p.Log == nil {
		return
	}
	p.Log.WithField("component", "preview").Debugf(format, args...)
}

func (p *Previewer) env(k string) string {
	if p.Getenv == nil {
		return os.Getenv(k)
	}
	return p.Getenv(k)
}

func (p *Previewer) isKitty() bool {
	if p.env("KITTY_WINDOW_ID") != "" || p.env("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(p.env("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghost")
}

func (p *Previewer) isInlineCapable() bool {
	switch p.env("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	if p.env("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(p.env("TERM"))
	return strings.Contains(term, "wez") || strings.Contains(term, "warp") ||
		strings.Contains(term, "tabby") || strings.Contains(term, "vscode")
}

func (p *Previewer) isSixelCapable() bool {
	if p.env("SIXEL_PREVIEW") == "1" || p.env("WT_SESSION") != "" {
		return true
	}
	term := strings.ToLower(p.env("TERM"))
	return strings.Contains(term, "foot") || strings.Contains(term, "mlterm")
}

func (p *Previewer) hasChafa() bool {
	if p.env("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// Supported reports whether any backend is likely to work.
func (p *Previewer) Supported() bool {
	return p.Backend != "" || p.isKitty() || p.isInlineCapable() || p.isSixelCapable() || p.hasChafa()
}

// PreviewSize is a target placement in terminal cells.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize fits the image into at most 80x40 cells of 8x16 pixels,
// preserving the aspect ratio and never scaling up.
func computePreviewSize(img image.Image) PreviewSize {
	const (
		charW, charH     = 8, 16
		minCols, minRows = 6, 3
		maxCols, maxRows = 80, 40
	)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return PreviewSize{Cols: minCols, Rows: minRows, PixelWidth: minCols * charW, PixelHeight: minRows * charH}
	}
	scale := math.Min(1, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = max(minCols, min(maxCols, cols))
	rows = max(minRows, min(maxRows, rows))
	return PreviewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

// trailingLines is how many newlines follow an image so the prompt lands below it.
func trailingLines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	default:
		return 4
	}
}

// Show encodes img (PNG, or JPEG when format is "jpeg"/"jpg" and the backend
// is not kitty) and sends it to the first backend that accepts it.
func (p *Previewer) Show(img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	kitty := p.Backend == "kitty" || (p.Backend == "" && p.isKitty())
	f := strings.ToLower(format)
	var blob []byte
	if (f == "jpeg" || f == "jpg") && !kitty {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
			return fmt.Errorf("jpeg encode failed: %w", err)
		}
		blob, f = buf.Bytes(), "jpeg"
	} else {
		b, err := EncodePNG(img)
		if err != nil {
			return err
		}
		blob, f = b, "png"
	}
	return p.send(blob, f, computePreviewSize(img))
}

type backend struct {
	name   string
	usable func() bool
	send   func([]byte, string, PreviewSize) error
}

func (p *Previewer) backends() []backend {
	return []backend{
		{"inline", p.isInlineCapable, p.sendInline},
		{"kitty", p.isKitty, p.sendKitty},
		{"sixel", p.isSixelCapable, p.sendSixel},
		{"chafa", p.hasChafa, p.sendChafa},
	}
}

func (p *Previewer) send(blob []byte, format string, size PreviewSize) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty image blob")
	}
	all := p.backends()
	if p.Backend != "" {
		name := p.Backend
		if name == "iterm" || name == "wezterm" {
			name = "inline"
		}
		matched := false
		for _, b := range all {
			if b.name != name {
				continue
			}
			matched = true
			err := b.send(blob, format, size)
			if err == nil {
				return nil
			}
			p.debugf("forced backend %s failed: %v", name, err)
		}
		if !matched {
			p.debugf("unknown PREVIEW_BACKEND value: %s", p.Backend)
		}
	}
	var firstErr error
	for _, b := range all {
		if !b.usable() {
			continue
		}
		p.debugf("attempting %s backend", b.name)
		err := b.send(blob, format, size)
		if err == nil {
			return nil
		}
		p.debugf("%s backend failed: %v", b.name, err)
		if firstErr == nil {
			firstErr = fmt.Errorf("%s preview failed: %w", b.name, err)
		}
	}
	if firstErr != nil {
		return firstErr
	}
	return fmt.Errorf("no preview protocol matched")
}

func (p *Previewer) newlines(rows int) {
	fmt.Fprint(p.Out, strings.Repeat("\n", trailingLines(rows)))
}

// sendKitty transmits the payload in base64 chunks of at most 4096 bytes.
// The first chunk carries the placement (c, r) and q=2 to silence replies.
func (p *Previewer) sendKitty(data []byte, format string, size PreviewSize) error {
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(p.Out, seq); err != nil {
			return err
		}
	}
	p.newlines(size.Rows)
	return nil
}

func (p *Previewer) sendInline(data []byte, format string, size PreviewSize) error {
	name := "preview.png"
	if format == "jpeg" {
		name = "preview.jpg"
	}
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	seq := "\x1b]1337;File=name=" + name + ";inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
	if _, err := io.WriteString(p.Out, seq); err != nil {
		return err
	}
	p.newlines(0)
	return nil
}

func (p *Previewer) runFilter(name string, args []string, data []byte) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.Out
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (p *Previewer) sendSixel(data []byte, format string, size PreviewSize) error {
	if err := p.runFilter("img2sixel", []string{"-"}, data); err != nil {
		return err
	}
	p.newlines(0)
	return nil
}

func (p *Previewer) sendChafa(data []byte, format string, size PreviewSize) error {
	args := []string{"--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-"}
	if f := p.env("CHAFA_FILL"); f != "" {
		args[0] = "--fill=" + f
	}
	if s := p.env("CHAFA_SYMBOLS"); s != "" {
		args[1] = "--symbols=" + s
	}
	if err := p.runFilter("chafa", args, data); err != nil {
		return err
	}
	p.newlines(size.Rows)
	return nil
}
