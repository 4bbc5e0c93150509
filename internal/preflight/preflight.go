package preflight

import (
	"context"

	"joylaunch/internal/command"
	"joylaunch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Option configures RunAll.
type Option func(*runner)

type runner struct {
	exec command.Executor
}

// WithExecutor overrides the executor used for the interpreter probe.
func WithExecutor(exec command.Executor) Option {
	return func(r *runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// RunAll executes every check for cfg in display order.
func RunAll(ctx context.Context, cfg *config.Config, opts ...Option) []Result {
	if cfg == nil {
		return nil
	}
	r := &runner{exec: command.OSExecutor{}}
	for _, opt := range opts {
		opt(r)
	}

	return []Result{
		CheckInterpreter(ctx, r.exec, cfg),
		CheckDirectoryAccess("Working directory", cfg.Launcher.WorkDir),
		CheckFile("Requirements", cfg.Launcher.Requirements),
		CheckFile("Target program", cfg.Launcher.Target),
		CheckEnvironment(cfg.Environment.Dir),
	}
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
