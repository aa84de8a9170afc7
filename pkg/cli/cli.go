package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Fepozopo/rasterkit/pkg/remote"
	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

func usage(out io.Writer) {
	fmt.Fprintln(out, "Commands available:")
	fmt.Fprintln(out, "  open <path>...          import images")
	fmt.Fprintln(out, "  list                    list open images")
	fmt.Fprintln(out, "  select <n>              select image n")
	fmt.Fprintln(out, "  remove <n>              close image n")
	fmt.Fprintln(out, "  params                  show the live parameters")
	fmt.Fprintln(out, "  set <name> <value>      change a parameter (see 'params')")
	fmt.Fprintln(out, "  preset [id]             list presets or apply one")
	fmt.Fprintln(out, "  roi <x0> <y0> <x1> <y1> restrict filters to a region; 'roi clear' removes it")
	fmt.Fprintln(out, "  undo | redo | reset     step through parameter changes")
	fmt.Fprintln(out, "  apply <op> [args]       run one operation on the view and commit it")
	fmt.Fprintln(out, "  ops [op]                list operations or show one")
	fmt.Fprintln(out, "  commit [label]          record the view in the history")
	fmt.Fprintln(out, "  history                 show the history of the selected image")
	fmt.Fprintln(out, "  revert <n>              restore history entry n")
	fmt.Fprintln(out, "  hist                    channel histogram summary")
	fmt.Fprintln(out, "  remote [op [k=v]...]    list server operations, or process the image on the server")
	fmt.Fprintln(out, "  show                    preview the view")
	fmt.Fprintln(out, "  save [file.png]         download the view as PNG")
	fmt.Fprintln(out, "  update                  check for updates")
	fmt.Fprintln(out, "  help | quit")
}

// REPL is the line-oriented interactive editor.
type REPL struct {
	WS      *Workspace
	Preview *Previewer // nil disables previews
	Updater *Updater   // nil disables the update command
	in      *bufio.Reader
	out     io.Writer
}

// NewREPL wires a REPL over ws reading commands from in.
func NewREPL(ws *Workspace, in io.Reader, out io.Writer) *REPL {
	return &REPL{WS: ws, in: bufio.NewReader(in), out: out}
}

// PromptLine displays a prompt and reads one trimmed line.
func (r *REPL) PromptLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question.
func (r *REPL) Confirm(prompt string) (bool, error) {
	answer, err := r.PromptLine(prompt)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Run reads commands until "quit" or end of input. Command errors are
// printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Terminal Image Editor")
	usage(r.out)
	for {
		line, err := r.PromptLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		quit, err := r.Exec(ctx, line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		if quit {
			fmt.Fprintln(r.out, "Exiting...")
			return nil
		}
	}
}

// Exec runs a single command line. It reports true when the line asked to quit.
func (r *REPL) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	ws := r.WS

	switch cmd {
	case "q", "quit", "exit":
		return true, nil

	case "h", "help":
		usage(r.out)

	case "open", "o":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: open <path>...")
		}
		if err := ws.Open(args...); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Opened %d image(s)\n", len(args))
		r.showView()

	case "list", "ls":
		sel := ws.Images.Selected()
		for i, name := range ws.Images.Names() {
			mark := " "
			if i == sel {
				mark = "*"
			}
			fmt.Fprintf(r.out, "%s %d) %s\n", mark, i, name)
		}

	case "select":
		i, err := intArg(args, 0, "index")
		if err != nil {
			return false, err
		}
		if err := ws.Select(i); err != nil {
			return false, err
		}
		r.showView()

	case "remove", "rm":
		i, err := intArg(args, 0, "index")
		if err != nil {
			return false, err
		}
		return false, ws.Remove(i)

	case "params":
		r.printParams()

	case "set":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: set <name> <value>")
		}
		if err := ws.Set(args[0], args[1]); err != nil {
			return false, err
		}
		r.showView()

	case "preset":
		if len(args) == 0 {
			for _, id := range stdimg.PresetIDs(ws.Presets) {
				fmt.Fprintf(r.out, "  %-18s %s\n", id, ws.Presets[id].Name)
			}
			return false, nil
		}
		if err := ws.ApplyPreset(args[0]); err != nil {
			return false, err
		}
		r.showView()

	case "roi":
		if len(args) == 1 && strings.EqualFold(args[0], "clear") {
			return false, ws.ClearROI()
		}
		if len(args) != 4 {
			return false, fmt.Errorf("usage: roi <x0> <y0> <x1> <y1> | roi clear")
		}
		c := make([]int, 4)
		for i := range c {
			v, err := intArg(args, i, "coordinate")
			if err != nil {
				return false, err
			}
			c[i] = v
		}
		if err := ws.SetROI(c[0], c[1], c[2], c[3]); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "ROI: %s\n", ws.ROI())

	case "undo", "redo":
		step := ws.UndoStep
		if cmd == "redo" {
			step = ws.RedoStep
		}
		moved, err := step()
		if err != nil {
			return false, err
		}
		if !moved {
			fmt.Fprintf(r.out, "Nothing to %s\n", cmd)
			return false, nil
		}
		r.showView()

	case "reset":
		if err := ws.Reset(); err != nil {
			return false, err
		}
		r.showView()

	case "ops":
		if len(args) == 1 {
			op, ok := stdimg.LookupOperation(args[0])
			if !ok {
				return false, fmt.Errorf("unknown operation: %s", args[0])
			}
			fmt.Fprintln(r.out, Tooltip(op))
			return false, nil
		}
		for _, op := range stdimg.Operations {
			fmt.Fprintf(r.out, "  %-26s %s\n", op.Usage, op.Description)
		}

	case "apply", "/":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: apply <op> [args]")
		}
		norm, err := NormalizeArgs(args[0], args[1:])
		if err != nil {
			return false, err
		}
		a, err := ws.Apply(args[0], norm)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Applied %s (#%d)\n", a.Label, a.ID)
		r.showView()

	case "commit":
		a, err := ws.Commit(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Committed #%d %s\n", a.ID, a.Label)

	case "history":
		entries, err := ws.History()
		if err != nil {
			return false, err
		}
		for i, e := range entries {
			fmt.Fprintf(r.out, "  %d) #%d %s  %s\n", i, e.ID, e.Time.Format("15:04:05"), e.Label)
		}

	case "revert":
		i, err := intArg(args, 0, "history index")
		if err != nil {
			return false, err
		}
		a, err := ws.Revert(i)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "%s\n", a.Label)
		r.showView()

	case "hist":
		hs, err := ws.Histograms()
		if err != nil {
			return false, err
		}
		r.printHistograms(hs)

	case "remote":
		if len(args) == 0 {
			ops, err := ws.RemoteOperations(ctx)
			var perr *remote.ProcessingError
			if errors.As(err, &perr) {
				return false, fmt.Errorf("server: %s", perr.Message)
			}
			if err != nil {
				return false, err
			}
			fmt.Fprintf(r.out, "Remote operations: %s\n", strings.Join(ops, ", "))
			return false, nil
		}
		params, err := remoteParams(args[1:])
		if err != nil {
			return false, err
		}
		a, err := ws.RemoteProcess(ctx, args[0], params)
		var perr *remote.ProcessingError
		if errors.As(err, &perr) {
			return false, fmt.Errorf("server: %s", perr.Message)
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Committed #%d %s\n", a.ID, a.Label)
		r.showView()

	case "show":
		if ws.Display() == nil {
			return false, ErrNoSelection
		}
		r.showView()

	case "save", "s":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		out, err := ws.Save(path)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Saved to %s\n", out)

	case "update", "u":
		if r.Updater == nil {
			return false, fmt.Errorf("updates are disabled")
		}
		return false, r.Updater.Run(ctx)

	default:
		return false, fmt.Errorf("unknown command: %s (try 'help')", cmd)
	}
	return false, nil
}

func (r *REPL) showView() {
	img := r.WS.Display()
	if img == nil {
		return
	}
	if r.Preview != nil {
		if err := r.Preview.Show(img, "png"); err != nil {
			r.Preview.debugf("preview failed: %v", err)
		}
	}
	fmt.Fprintf(r.out, "[%s] %s\n", r.WS.Params().Label(), DescribeImage(img))
}

func (r *REPL) printParams() {
	p := r.WS.Params()
	fmt.Fprintf(r.out, "  grayscale=%t threshold=%d blur=%s blurRadius=%d\n", p.Grayscale, p.Threshold, p.Blur, p.BlurRadius)
	fmt.Fprintf(r.out, "  resizePercent=%d rotation=%d flipH=%t flipV=%t\n", p.ResizePercent, p.Rotation, p.FlipH, p.FlipV)
	fmt.Fprintf(r.out, "  normalize=%t equalize=%t histogramStretch=%t segmentationRGB=%t\n", p.Normalize, p.Equalize, p.HistogramStretch, p.SegmentationRGB)
	fmt.Fprintf(r.out, "  edge=%s cannyLow=%d cannyHigh=%d\n", p.Edge, p.CannyLow, p.CannyHigh)
	fmt.Fprintf(r.out, "  sharpen=%g adaptiveBlock=%d adaptiveOffset=%d\n", p.Sharpen, p.AdaptiveBlock, p.AdaptiveOffset)
	fmt.Fprintf(r.out, "  roi=%s undo=%d redo=%d\n", r.WS.ROI(), r.WS.Undo.UndoLen(), r.WS.Undo.RedoLen())
}

func (r *REPL) printHistograms(hs stdimg.HistogramSet) {
	names := []string{"R", "G", "B", "Gray"}
	for c, name := range names {
		bins := hs.Channel(c)
		lo, hi, sum := -1, 0, 0
		for v, n := range bins {
			if n == 0 {
				continue
			}
			if lo < 0 {
				lo = v
			}
			hi = v
			sum += v * n
		}
		if lo < 0 {
			fmt.Fprintf(r.out, "  %-4s empty\n", name)
			continue
		}
		fmt.Fprintf(r.out, "  %-4s min=%d max=%d mean=%.1f\n", name, lo, hi, float64(sum)/float64(hs.Total))
	}
}

func intArg(args []string, i int, what string) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing %s", what)
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", what, args[i])
	}
	return v, nil
}

// remoteParams turns key=value pairs into a JSON-ready map. Integers,
// booleans and floats are converted; everything else stays a string.
func remoteParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		if n, err := strconv.Atoi(v); err == nil {
			params[k] = n
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = f
		} else if b, err := strconv.ParseBool(v); err == nil {
			params[k] = b
		} else {
			params[k] = v
		}
	}
	return params, nil
}
