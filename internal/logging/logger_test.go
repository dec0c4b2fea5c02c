package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/blueprint/internal/config"
)

func TestLoggerWritesToProjectLogFile(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir, WithLevel("debug"), WithMode("production"))
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("document saved", "document_id", "doc-1", "redis_password", "hunter2")
	logger.With("component", "test").Debug("detail")
	logger.Printf("plain %s\n", "line")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(projectDir, config.BlueprintDir, "logs", LogFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	for _, want := range []string{"document saved", "doc-1", "[REDACTED]", "component", "plain line"} {
		if !strings.Contains(text, want) {
			t.Fatalf("log missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "hunter2") {
		t.Fatalf("password leaked into log")
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir, WithLevel("warn"))
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Close()
	data, err := os.ReadFile(filepath.Join(projectDir, config.BlueprintDir, "logs", LogFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Fatalf("unexpected log contents:\n%s", data)
	}
}

func TestNilAndNopLoggersAreSafe(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Info("ignored")
	nilLogger.Printf("ignored")
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
	nop := NewNop()
	nop.With("k", "v").Error("ignored")
	nilLogger.With("k", "v").Warn("ignored")
}
