package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"joylaunch/internal/command"
	"joylaunch/internal/venv"
)

// Actions recognized by FakePython.
const (
	ActionVersion    = "version"
	ActionVenv       = "venv"
	ActionUpgradePip = "upgrade-pip"
	ActionInstall    = "install"
	ActionTarget     = "target"
)

// FakePython is a command.Executor that imitates the interpreter, venv and
// pip without running anything. "-m venv <dir>" creates <dir> on disk.
type FakePython struct {
	Version string
	// ExitCodes maps an action to the exit status it reports; missing
	// actions succeed.
	ExitCodes map[string]int
	// OnRun, when set, is called for every invocation before it completes.
	OnRun func(action string, spec command.Spec)

	mu    sync.Mutex
	calls []command.Spec
}

// Run implements command.Executor.
func (f *FakePython) Run(ctx context.Context, spec command.Spec) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	action := ClassifyPython(spec.Args)

	f.mu.Lock()
	f.calls = append(f.calls, spec)
	code := f.ExitCodes[action]
	f.mu.Unlock()

	if f.OnRun != nil {
		f.OnRun(action, spec)
	}

	if code == 0 {
		switch action {
		case ActionVersion:
			version := f.Version
			if version == "" {
				version = "3.12.1"
			}
			if spec.Stdout != nil {
				fmt.Fprintf(spec.Stdout, "Python %s\n", version)
			}
		case ActionVenv:
			if err := createFakeEnvironment(spec.Args[2]); err != nil {
				return -1, err
			}
		}
		return 0, nil
	}
	return code, &command.ExitError{Command: spec.Path, Code: code}
}

// createFakeEnvironment lays out dir with an empty interpreter file where the
// real venv module would put one.
func createFakeEnvironment(dir string) error {
	python := venv.New(dir).Python()
	if err := os.MkdirAll(filepath.Dir(python), 0o755); err != nil {
		return err
	}
	return os.WriteFile(python, nil, 0o755)
}

// Calls returns every spec seen so far.
func (f *FakePython) Calls() []command.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]command.Spec(nil), f.calls...)
}

// Actions returns the classified action of every call, in order.
func (f *FakePython) Actions() []string {
	calls := f.Calls()
	actions := make([]string, 0, len(calls))
	for _, spec := range calls {
		actions = append(actions, ClassifyPython(spec.Args))
	}
	return actions
}

// ClassifyPython names the interpreter invocation described by args.
func ClassifyPython(args []string) string {
	switch {
	case len(args) == 1 && args[0] == "--version":
		return ActionVersion
	case len(args) >= 3 && args[0] == "-m" && args[1] == "venv":
		return ActionVenv
	case len(args) >= 5 && args[0] == "-m" && args[1] == "pip" && args[3] == "--upgrade":
		return ActionUpgradePip
	case len(args) >= 5 && args[0] == "-m" && args[1] == "pip" && args[3] == "-r":
		return ActionInstall
	default:
		return ActionTarget
	}
}
