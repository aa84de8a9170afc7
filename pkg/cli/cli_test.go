package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fepozopo/rasterkit/pkg/remote"
)

func runScript(t *testing.T, ws *Workspace, script string) string {
	t.Helper()
	var out bytes.Buffer
	r := NewREPL(ws, strings.NewReader(script), &out)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestREPLSession(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	if err := os.WriteFile(in, pngBytes(t, makeSolid(4, 4, red)), 0o644); err != nil {
		t.Fatal(err)
	}
	saved := filepath.Join(dir, "gray.png")

	ws := newTestWorkspace(t)
	out := runScript(t, ws, strings.Join([]string{
		"open " + in,
		"set grayscale on",
		"set blurRadius 4",
		"undo",
		"undo",
		"redo",
		"commit",
		"history",
		"revert 0",
		"apply rotate 90",
		"save " + saved,
		"quit",
		"set threshold 1",
	}, "\n")+"\n")

	for _, want := range []string{
		"Opened 1 image(s)",
		"[Grayscale] Width: 4, Height: 4",
		"error: invalid kernel size",
		"Nothing to undo",
		"Committed #3 Grayscale",
		"0) #1",
		"Revert to #1 (imported)",
		"Applied rotate 90",
		"Saved to " + saved,
		"Exiting...",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if ws.Params().Threshold != 128 {
		t.Fatalf("commands after quit were executed")
	}
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestREPLEndOfInput(t *testing.T) {
	ws := newTestWorkspace(t)
	out := runScript(t, ws, "params\nset equalize yes")
	if !strings.Contains(out, "equalize=false") {
		t.Fatalf("params not printed:\n%s", out)
	}
	if !ws.Params().Equalize {
		t.Fatalf("last line without newline was not executed")
	}
}

func TestExecErrors(t *testing.T) {
	ws := newTestWorkspace(t)
	r := NewREPL(ws, strings.NewReader(""), &bytes.Buffer{})
	for _, line := range []string{
		"frobnicate",
		"select x",
		"select 0",
		"roi 1 2 3",
		"set grayscale",
		"apply",
		"apply medianFilter 4",
		"remote",
		"remote sepia noequals",
		"show",
		"update",
		"ops nope",
	} {
		quit, err := r.Exec(context.Background(), line)
		if err == nil {
			t.Fatalf("Exec(%q) expected error", line)
		}
		if quit {
			t.Fatalf("Exec(%q) asked to quit", line)
		}
	}
}

func TestListMarksSelection(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, n := range []string{"a.png", "b.png"} {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, pngBytes(t, makeSolid(2, 2, red)), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	ws := newTestWorkspace(t)
	out := runScript(t, ws, "open "+strings.Join(paths, " ")+"\nselect 1\nlist\npreset\nops\n")
	if !strings.Contains(out, "  0) "+paths[0]) || !strings.Contains(out, "* 1) "+paths[1]) {
		t.Fatalf("list output wrong:\n%s", out)
	}
	if !strings.Contains(out, "edge_detection") || !strings.Contains(out, "gaussianBlur <k>") {
		t.Fatalf("preset or ops listing missing:\n%s", out)
	}
}

func TestRemoteParams(t *testing.T) {
	got, err := remoteParams([]string{"kernel=5", "sigma=1.5", "invert=true", "mode=fast"})
	if err != nil {
		t.Fatal(err)
	}
	if got["kernel"] != 5 || got["sigma"] != 1.5 || got["invert"] != true || got["mode"] != "fast" {
		t.Fatalf("remoteParams = %#v", got)
	}
}

func TestREPLRemoteListsOperations(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.Remote = remote.NewClient(remoteServer(t, nil).URL)
	out := runScript(t, ws, "remote\nquit\n")
	if !strings.Contains(out, "Remote operations: blur, grayscale") {
		t.Fatalf("missing operation listing:\n%s", out)
	}
}
