package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fepozopo/rasterkit/pkg/history"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigDefaults(t *testing.T) {
	c, err := ConfigFromEnv(envMap(nil))
	if err != nil {
		t.Fatal(err)
	}
	if c.RemoteURL != "http://localhost:5000" || c.LogLevel != "info" || c.UndoDepth != history.DefaultUndoDepth || c.Workers < 1 {
		t.Fatalf("defaults = %+v", c)
	}
}

func TestConfigOverrides(t *testing.T) {
	c, err := ConfigFromEnv(envMap(map[string]string{
		"RASTERKIT_REMOTE_URL": "http://proc:8080",
		"RASTERKIT_LOG_LEVEL":  "DEBUG",
		"RASTERKIT_WORKERS":    "3",
		"RASTERKIT_PRESETS":    "presets.yaml",
		"RASTERKIT_UNDO_DEPTH": "10",
		"PREVIEW_DEBUG":        "yes",
		"PREVIEW_BACKEND":      "Kitty",
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		RemoteURL:      "http://proc:8080",
		LogLevel:       "debug",
		Workers:        3,
		PresetsFile:    "presets.yaml",
		UndoDepth:      10,
		PreviewDebug:   true,
		PreviewBackend: "kitty",
	}
	if c != want {
		t.Fatalf("config = %+v; want %+v", c, want)
	}
}

func TestConfigRejectsBadNumbers(t *testing.T) {
	for _, env := range []map[string]string{
		{"RASTERKIT_WORKERS": "0"},
		{"RASTERKIT_WORKERS": "many"},
		{"RASTERKIT_UNDO_DEPTH": "-1"},
		{"PREVIEW_DEBUG": "perhaps"},
	} {
		if _, err := ConfigFromEnv(envMap(env)); err == nil {
			t.Fatalf("ConfigFromEnv(%v) expected error", env)
		}
	}
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	const key = "RASTERKIT_UNDO_DEPTH"
	t.Setenv(key, "")
	os.Unsetenv(key)

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(key+"=7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), path)
	if err != nil {
		t.Fatal(err)
	}
	if c.UndoDepth != 7 {
		t.Fatalf("UndoDepth = %d; want 7", c.UndoDepth)
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "warn", false).WithField("image", "a.png").Warn("careful")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("non-debug output is not JSON: %q", buf.String())
	}
	if entry["image"] != "a.png" || entry["msg"] != "careful" {
		t.Fatalf("entry = %v", entry)
	}

	buf.Reset()
	l := NewLogger(&buf, "warn", false)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, "info", true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug mode dropped debug entry: %q", buf.String())
	}
}
