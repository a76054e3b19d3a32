package logging_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doppelkit/doppel/pkg/doppel/logging"
)

// TestInit tests the Init function with various configurations.
// Note: This test cannot run in parallel with other tests that use global state.
func TestInit(t *testing.T) {
	validDir := t.TempDir()
	debugDir := t.TempDir()
	componentsDir := t.TempDir()
	invalidDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{
			name: "valid config with defaults",
			cfg: logging.Config{
				Level: "info",
				Path:  filepath.Join(validDir, "test.log"),
			},
			wantErr: false,
		},
		{
			name: "valid config with debug level",
			cfg: logging.Config{
				Level: "debug",
				Path:  filepath.Join(debugDir, "debug.log"),
			},
			wantErr: false,
		},
		{
			name: "valid config with component overrides",
			cfg: logging.Config{
				Level: "info",
				Path:  filepath.Join(componentsDir, "components.log"),
				Components: map[string]string{
					"scanner":  "debug",
					"detector": "warn",
				},
			},
			wantErr: false,
		},
		{
			name: "invalid log level",
			cfg: logging.Config{
				Level: "invalid",
				Path:  filepath.Join(invalidDir, "invalid.log"),
			},
			wantErr: true,
		},
		{
			name: "invalid component level",
			cfg: logging.Config{
				Level:      "info",
				Path:       filepath.Join(invalidDir, "comp.log"),
				Components: map[string]string{"scanner": "loud"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Note: No t.Parallel() - these tests modify global state

			err := logging.Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if closeErr := logging.Close(); closeErr != nil {
					t.Errorf("Close() error = %v", closeErr)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"info", logging.LevelInfo, false},
		{"warn", logging.LevelWarn, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"ERROR", logging.LevelError, false},
		{"trace", logging.LevelInfo, true},
		{"", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, logging.ErrInvalidLevel) {
					t.Errorf("error = %v, want ErrInvalidLevel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level logging.Level
		want  string
	}{
		{logging.LevelDebug, "debug"},
		{logging.LevelInfo, "info"},
		{logging.LevelWarn, "warn"},
		{logging.LevelError, "error"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestGetBeforeInit(t *testing.T) {
	// Loggers obtained before Init must be usable and silent.
	logger := logging.Get("uninitialized")
	logger.Info("this goes nowhere")
	logger.Error("so does this")
}

func TestLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doppel.log")

	if err := logging.Init(logging.Config{Level: "info", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logger := logging.Get("detector")
	logger.Info("scan started", "root", "/tmp/x")
	logger.Debug("suppressed at info level")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "scan started") {
		t.Error("log file missing info message")
	}
	if !strings.Contains(content, "detector") {
		t.Error("log file missing component prefix")
	}
	if strings.Contains(content, "suppressed at info level") {
		t.Error("debug message logged despite info level")
	}
}

func TestComponentLevelOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doppel.log")

	cfg := logging.Config{
		Level: "warn",
		Path:  path,
		Components: map[string]string{
			"scanner": "debug",
		},
	}
	if err := logging.Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logging.Get("scanner").Debug("scanner debug visible")
	logging.Get("cache").Info("cache info hidden")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "scanner debug visible") {
		t.Error("component override did not lower scanner level")
	}
	if strings.Contains(content, "cache info hidden") {
		t.Error("default warn level did not suppress cache info message")
	}
}

func TestWith(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doppel.log")

	if err := logging.Init(logging.Config{Level: "info", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logger := logging.Get("detector").With("session", "abc123")
	logger.Info("run finished")

	if err := logging.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "abc123") {
		t.Error("With context missing from log output")
	}
}

func TestCloseWithoutInit(t *testing.T) {
	if err := logging.Close(); err != nil {
		t.Errorf("Close() before Init error = %v", err)
	}
}
