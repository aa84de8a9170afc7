package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/rasterkit/pkg/history"
)

// Config holds the runtime settings read from the environment (and an
// optional .env file).
type Config struct {
	RemoteURL      string
	LogLevel       string
	Debug          bool
	Workers        int
	PresetsFile    string
	UndoDepth      int
	PreviewDebug   bool
	PreviewBackend string
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		RemoteURL: "http://localhost:5000",
		LogLevel:  "info",
		Workers:   runtime.NumCPU(),
		UndoDepth: history.DefaultUndoDepth,
	}
}

// LoadConfig loads envFiles (".env" when none are given) into the process
// environment and reads Config from it. Missing env files are ignored.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return ConfigFromEnv(os.Getenv)
}

// ConfigFromEnv builds a Config from getenv, starting from DefaultConfig.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	c := DefaultConfig()
	if v := getenv("RASTERKIT_REMOTE_URL"); v != "" {
		c.RemoteURL = v
	}
	if v := getenv("RASTERKIT_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv("RASTERKIT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c, fmt.Errorf("RASTERKIT_WORKERS: invalid worker count %q", v)
		}
		c.Workers = n
	}
	c.PresetsFile = getenv("RASTERKIT_PRESETS")
	if v := getenv("RASTERKIT_UNDO_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c, fmt.Errorf("RASTERKIT_UNDO_DEPTH: invalid depth %q", v)
		}
		c.UndoDepth = n
	}
	if v := getenv("PREVIEW_DEBUG"); v != "" {
		b, err := parseBoolLikeToString(v)
		if err != nil {
			return c, fmt.Errorf("PREVIEW_DEBUG: %w", err)
		}
		c.PreviewDebug = b == "true"
	}
	c.PreviewBackend = strings.ToLower(getenv("PREVIEW_BACKEND"))
	return c, nil
}
