package venv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"

	"joylaunch/internal/command"
)

// ErrNotDirectory reports an environment path occupied by something other than a directory.
var ErrNotDirectory = errors.New("environment path exists but is not a directory")

const lockRetryDelay = 250 * time.Millisecond

// Environment is a virtual environment rooted at a fixed directory.
type Environment struct {
	dir string
}

// New returns the environment rooted at dir. Nothing is touched on disk.
func New(dir string) Environment {
	return Environment{dir: filepath.Clean(dir)}
}

// Dir returns the environment root.
func (e Environment) Dir() string {
	return e.dir
}

// Exists reports whether the environment directory is present.
func (e Environment) Exists() (bool, error) {
	info, err := os.Stat(e.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat environment: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s: %w", e.dir, ErrNotDirectory)
	}
	return true, nil
}

// ScriptsDir returns the directory holding the environment's executables.
func (e Environment) ScriptsDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.dir, "Scripts")
	}
	return filepath.Join(e.dir, "bin")
}

// Python returns the environment's interpreter path.
func (e Environment) Python() string {
	name := "python"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(e.ScriptsDir(), name)
}

// CreateSpec returns the command that creates the environment with interpreter.
func (e Environment) CreateSpec(interpreter string) command.Spec {
	return command.Spec{Path: interpreter, Args: []string{"-m", "venv", e.dir}}
}

// Create runs "<interpreter> -m venv <dir>", streaming tool output to stdout/stderr.
func (e Environment) Create(ctx context.Context, executor command.Executor, interpreter string, stdout, stderr io.Writer) (int, error) {
	spec := e.CreateSpec(interpreter)
	spec.Stdout = stdout
	spec.Stderr = stderr
	return executor.Run(ctx, spec)
}

// LockPath returns the sibling lock file guarding environment setup.
func (e Environment) LockPath() string {
	return e.dir + ".lock"
}

// Lock blocks until the setup lock is held or ctx is done. The returned
// function releases it.
func (e Environment) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(e.dir), 0o755); err != nil {
		return nil, fmt.Errorf("create environment parent: %w", err)
	}
	lock := flock.New(e.LockPath())
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire environment lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire environment lock: %s is held by another launcher", e.LockPath())
	}
	return lock.Unlock, nil
}

// Size sums the bytes of every regular file inside the environment.
func (e Environment) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(e.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("measure environment: %w", err)
	}
	return total, nil
}
