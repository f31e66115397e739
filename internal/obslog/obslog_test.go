package obslog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevelDefaultsToWarn(t *testing.T) {
	if got := parseLevel("nonsense"); got != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", got)
	}
	if got := parseLevel(" DEBUG "); got != zapcore.DebugLevel {
		t.Fatalf("expected debug level, got %v", got)
	}
}

func TestInitFromEnvWithoutCoresIsNop(t *testing.T) {
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "false")
	if err := InitFromEnv(); err != nil {
		t.Fatalf("InitFromEnv: %v", err)
	}
	defer Set(nil)
	if L() == nil {
		t.Fatalf("expected non-nil logger")
	}
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected nop logger when no cores are configured")
	}
}

func TestBuildJSONToConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "nested", "engine.log")
	logger, err := Build(Options{Level: zapcore.InfoLevel, Format: "json", Console: &console, File: path})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("search_start", zap.String("run_id", "r1"))
	_ = logger.Sync()

	if strings.Contains(console.String(), "hidden") {
		t.Fatalf("debug line passed an info level filter: %q", console.String())
	}
	if !strings.Contains(console.String(), `"msg":"search_start"`) || !strings.Contains(console.String(), `"run_id":"r1"`) {
		t.Fatalf("unexpected console output %q", console.String())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "search_start") {
		t.Fatalf("file sink missed the entry: %q", b)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "XML")
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "")
	opts := OptionsFromEnv()
	if opts.Level != zapcore.ErrorLevel || opts.Format != "legacy" || opts.Console != nil {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.File != filepath.Join("logs", "engine.log") {
		t.Fatalf("unexpected default log file %q", opts.File)
	}
}
