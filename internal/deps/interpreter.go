package deps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"joylaunch/internal/command"
)

// ErrInterpreterNotFound reports that no candidate produced a Python version.
var ErrInterpreterNotFound = errors.New("python interpreter not found")

var pythonVersionPattern = regexp.MustCompile(`Python\s+(\d+\.\d+(?:\.\d+)?\S*)`)

// Interpreter identifies the Python executable that answered the version check.
type Interpreter struct {
	Command string // candidate as configured, e.g. "python"
	Path    string // resolved executable path
	Version string // e.g. "3.12.1"
}

// ResolveInterpreter probes candidates in order with "--version" and returns
// the first one that exits zero and reports a Python version. A timeout of
// zero means no per-candidate limit.
func ResolveInterpreter(ctx context.Context, executor command.Executor, candidates []string, timeout time.Duration) (Interpreter, error) {
	if executor == nil {
		executor = command.OSExecutor{}
	}
	var tried []string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		tried = append(tried, candidate)

		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}
		version, ok := probeVersion(ctx, executor, path, timeout)
		if !ok {
			if ctx.Err() != nil {
				return Interpreter{}, ctx.Err()
			}
			continue
		}
		return Interpreter{Command: candidate, Path: path, Version: version}, nil
	}
	if len(tried) == 0 {
		return Interpreter{}, fmt.Errorf("%w: no candidates configured", ErrInterpreterNotFound)
	}
	return Interpreter{}, fmt.Errorf("%w (tried %s)", ErrInterpreterNotFound, strings.Join(tried, ", "))
}

func probeVersion(ctx context.Context, executor command.Executor, path string, timeout time.Duration) (string, bool) {
	probeCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, code, err := command.Output(probeCtx, executor, command.Spec{Path: path, Args: []string{"--version"}})
	if err != nil || code != 0 {
		return "", false
	}
	return ParseVersion(out)
}

// ParseVersion extracts the version from "python --version" output.
func ParseVersion(output string) (string, bool) {
	match := pythonVersionPattern.FindStringSubmatch(output)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}
