package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for launch identifiers.
	FieldRunID = "run_id"
	// FieldStep is the standardized structured logging key for launcher step names.
	FieldStep = "step"
	// FieldExitCode is the standardized structured logging key for child process exit codes.
	FieldExitCode = "exit_code"
	// FieldCommand is the standardized structured logging key for executed commands.
	FieldCommand = "command"
)

type runIDKey struct{}

// ContextWithRunID tags ctx with the launch identifier.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the launch identifier stored on ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(String(FieldRunID, id))
	}
	return logger
}
