package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"joylaunch/internal/config"
	"joylaunch/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()

	logger, closer, err := logging.NewFromConfig(&cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })
	logger.Info("launch started", logging.Args(logging.String(logging.FieldStep, "check-interpreter"))...)

	content, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "launch started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersComponentStepAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "launcher")
	ctx := logging.ContextWithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Warn("step failed",
		logging.Args(
			logging.String(logging.FieldStep, "install-requirements"),
			logging.Int(logging.FieldExitCode, 2),
			logging.Error(errors.New("pip exited")),
		)...,
	)

	text := buf.String()
	for _, want := range []string{"WARN  launcher/install-requirements: step failed", "exit_code=2", `error="pip exited"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in console output, got %q", want, text)
		}
	}
	if strings.Contains(text, "run-123") {
		t.Fatalf("expected run id hidden on console at warn level, got %q", text)
	}
}

func TestConsoleLoggerShowsRunIDAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.ContextWithRunID(context.Background(), "run-789")
	logging.WithContext(ctx, logger).WithGroup("venv").Debug("probe", "dir", "/tmp/my env")

	text := buf.String()
	for _, want := range []string{"run_id=run-789", `venv.dir="/tmp/my env"`, "caller=logger_test.go:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in console output, got %q", want, text)
		}
	}
}

func TestJSONLoggerIncludesRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "json.log")

	logger, closer, err := logging.New(logging.Options{Format: "json", Level: "info", Console: io.Discard, File: logPath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closer.Close() })
	ctx := logging.ContextWithRunID(context.Background(), "run-456")
	logging.WithContext(ctx, logger).Info("done")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry[logging.FieldRunID] != "run-456" {
		t.Fatalf("expected run id in json log, got %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml", Console: io.Discard}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCloserReleasesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "joylaunch.log")
	logger, closer, err := logging.New(logging.Options{Level: "info", Console: io.Discard, File: logPath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("before close")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := closer.Close(); err == nil {
		t.Fatal("expected second Close to report the file already closed")
	}

	_, consoleOnly, err := logging.New(logging.Options{Console: io.Discard})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := consoleOnly.Close(); err != nil {
		t.Fatalf("console-only closer should be a no-op, got %v", err)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected no-op logger to be disabled at every level")
	}
}
