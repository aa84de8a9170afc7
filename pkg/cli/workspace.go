package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/rasterkit/pkg/collection"
	"github.com/Fepozopo/rasterkit/pkg/history"
	"github.com/Fepozopo/rasterkit/pkg/remote"
	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

// ErrNoSelection is returned by operations that need a selected image.
var ErrNoSelection = errors.New("no image selected")

// Workspace is the editor state behind the REPL and the batch commands: the
// image collection, the live filter parameters and ROI, their undo stack and
// the buffer currently on display.
//
// The displayed buffer is always derived from the selected record's imported
// source by Render, or taken from a journal entry by Revert.
type Workspace struct {
	Engine  stdimg.Engine
	Images  *collection.Collection
	Undo    *history.UndoStack
	Presets map[string]stdimg.Preset
	Remote  *remote.Client

	params  stdimg.FilterParameters
	roi     *stdimg.ROI
	display *image.NRGBA
	log     *logrus.Logger
}

// NewWorkspace builds an empty workspace from cfg.
func NewWorkspace(cfg Config, log *logrus.Logger) (*Workspace, error) {
	presets, err := stdimg.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}
	return &Workspace{
		Engine:  stdimg.Engine{Workers: cfg.Workers},
		Images:  collection.New(),
		Undo:    history.NewUndoStack(cfg.UndoDepth),
		Presets: presets,
		Remote:  remote.NewClient(cfg.RemoteURL),
		params:  stdimg.DefaultParameters(),
		log:     log,
	}, nil
}

// Params returns the live filter parameters.
func (w *Workspace) Params() stdimg.FilterParameters { return w.params }

// ROI returns the live region of interest, nil meaning the whole frame.
func (w *Workspace) ROI() *stdimg.ROI { return w.roi.Clone() }

// Display returns the buffer currently shown for the selected image.
func (w *Workspace) Display() *image.NRGBA { return w.display }

func (w *Workspace) state() history.State {
	return history.State{Params: w.params, ROI: w.roi.Clone()}
}

func (w *Workspace) selected() (*collection.ImageRecord, error) {
	rec, ok := w.Images.SelectedRecord()
	if !ok {
		return nil, ErrNoSelection
	}
	return rec, nil
}

// Open imports the images at paths and selects the first of them when
// nothing was selected yet. Nothing is imported if any path fails.
func (w *Workspace) Open(paths ...string) error {
	sources := make([]collection.Source, 0, len(paths))
	for _, p := range paths {
		img, mime, err := LoadImage(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		w.log.WithFields(logrus.Fields{
			"image":  p,
			"mime":   mime,
			"width":  img.Bounds().Dx(),
			"height": img.Bounds().Dy(),
		}).Debug("Decoded image")
		sources = append(sources, collection.Source{Name: p, Image: img})
	}
	return w.Import(sources...)
}

// Import adds already-decoded images. See Open.
func (w *Workspace) Import(sources ...collection.Source) error {
	if len(sources) == 0 {
		return nil
	}
	first := w.Images.Len()
	w.Images.AddImages(sources...)
	w.log.WithField("count", len(sources)).Info("Images imported")
	if w.Images.Selected() < 0 {
		return w.Select(first)
	}
	return nil
}

// Select makes image i the active one. The parameters, ROI and undo stack
// start over for the new selection.
func (w *Workspace) Select(i int) error {
	if err := w.Images.Select(i); err != nil {
		return err
	}
	w.params = stdimg.DefaultParameters()
	w.roi = nil
	w.Undo.Clear()
	rec, _ := w.Images.SelectedRecord()
	w.log.WithFields(logrus.Fields{"image": rec.Name, "index": i}).Info("Image selected")
	_, err := w.Render()
	return err
}

// Remove drops image i from the collection. The display is cleared when the
// selected image goes away.
func (w *Workspace) Remove(i int) error {
	sel := w.Images.Selected()
	rec, err := w.Images.At(i)
	if err != nil {
		return err
	}
	if err := w.Images.Remove(i); err != nil {
		return err
	}
	if i == sel {
		w.display = nil
		w.params = stdimg.DefaultParameters()
		w.roi = nil
		w.Undo.Clear()
	}
	w.log.WithField("image", rec.Name).Info("Image removed")
	return nil
}

// Render recomputes the display from the selected source with the live
// parameters and ROI.
func (w *Workspace) Render() (*image.NRGBA, error) {
	rec, err := w.selected()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := w.Engine.Recompute(rec.Source, w.params, w.roi)
	if err != nil {
		return nil, err
	}
	w.display = out
	w.log.WithFields(logrus.Fields{
		"image":    rec.Name,
		"op":       w.params.Label(),
		"kernel":   w.params.BlurRadius,
		"duration": time.Since(start),
	}).Debug("Recomputed")
	return out, nil
}

// update validates next, pushes the current state for undo and renders.
// Invalid parameters leave the workspace untouched.
func (w *Workspace) update(next stdimg.FilterParameters, roi *stdimg.ROI) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if err := w.Undo.PushState(w.state()); err != nil {
		return err
	}
	w.params, w.roi = next, roi
	if _, err := w.selected(); err != nil {
		return nil
	}
	_, err := w.Render()
	return err
}

// Set changes one filter parameter by name, e.g. Set("blur", "median").
func (w *Workspace) Set(key, value string) error {
	next, err := applySetting(w.params, key, value)
	if err != nil {
		return err
	}
	return w.update(next, w.roi)
}

// SetROI selects the rectangle spanned by two corners, clipped to the
// displayed buffer.
func (w *Workspace) SetROI(x0, y0, x1, y1 int) error {
	roi := stdimg.NewROI(x0, y0, x1, y1)
	if w.display != nil {
		roi = roi.Clip(w.display.Bounds().Dx(), w.display.Bounds().Dy())
	}
	return w.update(w.params, roi)
}

// ClearROI removes the region of interest.
func (w *Workspace) ClearROI() error {
	return w.update(w.params, nil)
}

// Reset restores the default parameters and drops the ROI. The previous
// state stays reachable through Undo.
func (w *Workspace) Reset() error {
	return w.update(stdimg.DefaultParameters(), nil)
}

// ApplyPreset replaces the live parameters with the named preset.
func (w *Workspace) ApplyPreset(id string) error {
	p, ok := w.Presets[id]
	if !ok {
		return fmt.Errorf("unknown preset: %s", id)
	}
	w.log.WithField("preset", id).Info("Preset applied")
	return w.update(p.Params, w.roi)
}

// UndoStep restores the previous parameter state. It reports false when
// there was nothing to undo.
func (w *Workspace) UndoStep() (bool, error) {
	st, ok, err := w.Undo.UndoState(w.state())
	return w.restore("Undo", st, ok, err)
}

// RedoStep re-applies the next parameter state. It reports false when there
// was nothing to redo.
func (w *Workspace) RedoStep() (bool, error) {
	st, ok, err := w.Undo.RedoState(w.state())
	return w.restore("Redo", st, ok, err)
}

func (w *Workspace) restore(what string, st history.State, ok bool, err error) (bool, error) {
	if err != nil || !ok {
		return false, err
	}
	w.params, w.roi = st.Params, st.ROI
	w.log.WithFields(logrus.Fields{
		"op":   st.Params.Label(),
		"undo": w.Undo.UndoLen(),
		"redo": w.Undo.RedoLen(),
	}).Info(what)
	if _, serr := w.selected(); serr != nil {
		return true, nil
	}
	_, err = w.Render()
	return true, err
}

// Commit records the displayed buffer in the selected image's journal.
// An empty label uses the parameter label.
func (w *Workspace) Commit(label string) (history.EditAction, error) {
	rec, err := w.selected()
	if err != nil {
		return history.EditAction{}, err
	}
	if w.display == nil {
		if _, err := w.Render(); err != nil {
			return history.EditAction{}, err
		}
	}
	if label == "" {
		label = w.params.Label()
	}
	a := rec.Journal.Commit(label, history.NewSnapshot(w.display))
	w.log.WithFields(logrus.Fields{"image": rec.Name, "op": label, "id": a.ID}).Info("Committed")
	return a, nil
}

// Revert appends a copy of journal entry i and shows its pixels.
func (w *Workspace) Revert(i int) (history.EditAction, error) {
	rec, err := w.selected()
	if err != nil {
		return history.EditAction{}, err
	}
	a, err := rec.Journal.RevertTo(i)
	if err != nil {
		return history.EditAction{}, err
	}
	img, err := a.Snapshot.Decode()
	if err != nil {
		return a, err
	}
	w.display = img
	w.log.WithFields(logrus.Fields{"image": rec.Name, "op": a.Label, "id": a.ID}).Info("Reverted")
	return a, nil
}

// History returns the selected image's journal entries.
func (w *Workspace) History() ([]history.EditAction, error) {
	rec, err := w.selected()
	if err != nil {
		return nil, err
	}
	return rec.Journal.Entries(), nil
}

// Apply runs a single registry operation on the displayed buffer, honouring
// the ROI, and commits the result under the operation's usage line.
func (w *Workspace) Apply(name string, args []string) (history.EditAction, error) {
	rec, err := w.selected()
	if err != nil {
		return history.EditAction{}, err
	}
	if w.display == nil {
		if _, err := w.Render(); err != nil {
			return history.EditAction{}, err
		}
	}
	start := time.Now()
	out, err := w.Engine.ApplyOperation(w.display, name, args, w.roi)
	if err != nil {
		return history.EditAction{}, err
	}
	w.display = out
	w.log.WithFields(logrus.Fields{
		"image":    rec.Name,
		"op":       name,
		"duration": time.Since(start),
	}).Info("Operation applied")
	return w.Commit(strings.TrimSpace(name + " " + strings.Join(args, " ")))
}

// Histograms counts channel values of the displayed buffer inside the ROI.
func (w *Workspace) Histograms() (stdimg.HistogramSet, error) {
	if _, err := w.selected(); err != nil {
		return stdimg.HistogramSet{}, err
	}
	if w.display == nil {
		if _, err := w.Render(); err != nil {
			return stdimg.HistogramSet{}, err
		}
	}
	return stdimg.ComputeHistograms(w.display, w.roi.Clip(w.display.Bounds().Dx(), w.display.Bounds().Dy())), nil
}

// Save writes the displayed buffer as PNG and returns the path used.
func (w *Workspace) Save(path string) (string, error) {
	if w.display == nil {
		return "", ErrNoSelection
	}
	out, err := SaveImage(path, w.display)
	if err != nil {
		return "", err
	}
	w.log.WithField("path", out).Info("Saved")
	return out, nil
}

// RemoteProcess delegates operation to the processing server, fetches the
// output and commits it. A response overtaken by a newer one for the same
// image is discarded with remote.ErrStaleResponse.
func (w *Workspace) RemoteProcess(ctx context.Context, operation string, params map[string]any) (history.EditAction, error) {
	rec, err := w.selected()
	if err != nil {
		return history.EditAction{}, err
	}
	entry := w.log.WithFields(logrus.Fields{"image": rec.Name, "op": operation})
	res, err := w.Remote.Process(ctx, rec.Name, operation, params)
	if err != nil {
		entry.WithError(err).Warn("Remote processing failed")
		return history.EditAction{}, err
	}
	entry = entry.WithField("token", res.Ticket.Token)
	img, err := w.Remote.Fetch(ctx, res.OutputFile)
	if err != nil {
		entry.WithError(err).Warn("Remote fetch failed")
		return history.EditAction{}, err
	}
	if err := w.Remote.Accept(res.Ticket); err != nil {
		entry.Warn("Discarding stale remote response")
		return history.EditAction{}, err
	}
	w.display = stdimg.ToNRGBA(img)
	entry.Info("Remote result received")
	return w.Commit("remote " + operation)
}

// RemoteOperations lists the operations the processing server supports.
func (w *Workspace) RemoteOperations(ctx context.Context) ([]string, error) {
	ops, err := w.Remote.Operations(ctx)
	if err != nil {
		w.log.WithError(err).Warn("Listing remote operations failed")
		return nil, err
	}
	return ops, nil
}

// settingKeys maps accepted Set keys (lower case) to canonical names.
var settingKeys = map[string]string{
	"grayscale":        "grayscale",
	"threshold":        "threshold",
	"blur":             "blur",
	"blurradius":       "blurRadius",
	"kernel":           "blurRadius",
	"resize":           "resizePercent",
	"resizepercent":    "resizePercent",
	"rotation":         "rotation",
	"rotate":           "rotation",
	"fliph":            "flipH",
	"flipv":            "flipV",
	"normalize":        "normalize",
	"equalize":         "equalize",
	"stretch":          "histogramStretch",
	"histogramstretch": "histogramStretch",
	"segmentation":     "segmentationRGB",
	"segmentationrgb":  "segmentationRGB",
	"edge":             "edge",
	"cannylow":         "cannyLow",
	"cannyhigh":        "cannyHigh",
	"sharpen":          "sharpen",
	"adaptive":         "adaptiveBlock",
	"adaptiveblock":    "adaptiveBlock",
	"adaptiveoffset":   "adaptiveOffset",
}

// SettingNames lists the canonical parameter names accepted by Set.
func SettingNames() []string {
	return []string{
		"grayscale", "threshold", "blur", "blurRadius", "resizePercent", "rotation",
		"flipH", "flipV", "normalize", "equalize", "histogramStretch", "segmentationRGB",
		"edge", "cannyLow", "cannyHigh", "sharpen", "adaptiveBlock", "adaptiveOffset",
	}
}

// applySetting returns p with key set to value. p itself is not modified.
func applySetting(p stdimg.FilterParameters, key, value string) (stdimg.FilterParameters, error) {
	name, ok := settingKeys[strings.ToLower(key)]
	if !ok {
		return p, fmt.Errorf("unknown parameter: %s", key)
	}
	value = strings.TrimSpace(value)

	boolField := func(dst *bool) error {
		b, err := parseBoolLikeToString(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b == "true"
		return nil
	}
	intField := func(dst *int) error {
		raw := value
		if name == "resizePercent" {
			n, err := parsePercentValue(value)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			raw = n
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: expected integer, got %q", name, value)
		}
		*dst = v
		return nil
	}

	var err error
	switch name {
	case "grayscale":
		err = boolField(&p.Grayscale)
	case "flipH":
		err = boolField(&p.FlipH)
	case "flipV":
		err = boolField(&p.FlipV)
	case "normalize":
		err = boolField(&p.Normalize)
	case "equalize":
		err = boolField(&p.Equalize)
	case "histogramStretch":
		err = boolField(&p.HistogramStretch)
	case "segmentationRGB":
		err = boolField(&p.SegmentationRGB)
	case "threshold":
		err = intField(&p.Threshold)
	case "blurRadius":
		err = intField(&p.BlurRadius)
	case "resizePercent":
		err = intField(&p.ResizePercent)
	case "rotation":
		err = intField(&p.Rotation)
	case "cannyLow":
		err = intField(&p.CannyLow)
	case "cannyHigh":
		err = intField(&p.CannyHigh)
	case "adaptiveBlock":
		err = intField(&p.AdaptiveBlock)
	case "adaptiveOffset":
		err = intField(&p.AdaptiveOffset)
	case "sharpen":
		v, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			err = fmt.Errorf("%s: expected number, got %q", name, value)
		}
		p.Sharpen = v
	case "blur":
		p.Blur = stdimg.BlurKind(strings.ToLower(value))
	case "edge":
		p.Edge = stdimg.EdgeKind(strings.ToLower(value))
	}
	if err != nil {
		return p, err
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
