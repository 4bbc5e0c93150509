package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Spec describes a single child process invocation.
type Spec struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string // nil inherits the parent environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, quoteArg(s.Path))
	for _, arg := range s.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\"") {
		return fmt.Sprintf("%q", arg)
	}
	return arg
}

// Executor abstracts command execution for testability.
//
// Run blocks until the process exits. The returned exit code is 0 on success,
// the process exit status when it ran and failed, and -1 when it could not be
// started or was killed.
type Executor interface {
	Run(ctx context.Context, spec Spec) (int, error)
}

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// OSExecutor executes commands using os/exec.
type OSExecutor struct{}

// Run implements Executor.
func (OSExecutor) Run(ctx context.Context, spec Spec) (int, error) {
	if strings.TrimSpace(spec.Path) == "" {
		return -1, errors.New("command path required")
	}
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("%s: %w", spec.Path, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			return -1, fmt.Errorf("%s: %w", spec.Path, err)
		}
		return code, &ExitError{Command: spec.Path, Code: code}
	}
	return -1, fmt.Errorf("start %s: %w", spec.Path, err)
}

// Output runs spec and returns everything it wrote to stdout and stderr.
func Output(ctx context.Context, executor Executor, spec Spec) (string, int, error) {
	var buf strings.Builder
	spec.Stdout = &buf
	spec.Stderr = &buf
	code, err := executor.Run(ctx, spec)
	return buf.String(), code, err
}
