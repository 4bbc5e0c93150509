package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"joylaunch/internal/command"
	"joylaunch/internal/config"
	"joylaunch/internal/deps"
	"joylaunch/internal/venv"
)

// CheckInterpreter resolves the configured interpreter the way a launch does.
func CheckInterpreter(ctx context.Context, exec command.Executor, cfg *config.Config) Result {
	const name = "Python interpreter"

	timeout := time.Duration(cfg.Python.VersionTimeoutSeconds) * time.Second
	interp, err := deps.ResolveInterpreter(ctx, exec, cfg.InterpreterCandidates(), timeout)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (Python %s)", interp.Path, interp.Version)}
}

// CheckDirectoryAccess verifies that the directory exists and accepts new files.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	probe, err := os.CreateTemp(path, ".joylaunch-probe-*")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	probePath := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probePath)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFile verifies that path names an existing regular file.
func CheckFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckEnvironment reports the virtual environment state. An absent
// environment passes because the next launch creates it.
func CheckEnvironment(dir string) Result {
	const name = "Virtual environment"

	env := venv.New(dir)
	exists, err := env.Exists()
	switch {
	case errors.Is(err, venv.ErrNotDirectory):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: exists but is not a directory)", env.Dir())}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", env.Dir(), err)}
	case !exists:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (absent; created on next run)", env.Dir())}
	}
	if _, err := os.Stat(env.Python()); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: interpreter missing at %s)", env.Dir(), env.Python())}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (present)", env.Dir())}
}

// CheckSystemDeps reports which interpreter candidates are on PATH.
// Only one has to be available, so each is optional.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	candidates := cfg.InterpreterCandidates()
	requirements := make([]deps.Requirement, 0, len(candidates))
	for _, candidate := range candidates {
		requirements = append(requirements, deps.Requirement{
			Name:        candidate,
			Command:     candidate,
			Description: "Python interpreter candidate",
			Optional:    len(candidates) > 1,
		})
	}
	return deps.CheckBinaries(requirements)
}
