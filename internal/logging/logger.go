package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"joylaunch/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string // "console" or "json"
	// Console receives every record; nil means os.Stderr so the launched
	// program keeps stdout to itself.
	Console io.Writer
	// File, when set, is appended to in the same format.
	File string
}

// New constructs a slog logger using the provided options. Caller locations
// are included at debug level only. The returned closer releases the log file
// and is safe to call when no file was opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	addSource := level <= slog.LevelDebug

	var newHandler func(io.Writer, slog.Leveler, bool) slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		newHandler = newConsoleHandler
	case "json":
		newHandler = newJSONHandler
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	out, closer, err := openOutput(opts.Console, opts.File)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(newHandler(out, levelVar, addSource)), closer, nil
}

// NewFromConfig builds the launcher logger from the [logging] section,
// writing to console and, when logging.dir is set, to the log file.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Console: console})
	}
	return New(Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: console,
		File:    cfg.LogFilePath(),
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openOutput(console io.Writer, path string) (io.Writer, io.Closer, error) {
	if console == nil {
		console = os.Stderr
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return console, nopCloser{}, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return io.MultiWriter(console, file), file, nil
}
