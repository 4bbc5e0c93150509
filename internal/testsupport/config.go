package testsupport

import (
	"path/filepath"
	"testing"

	"joylaunch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a normalized-looking config rooted in a unique temp
// directory: work dir, environment, manifest, target and history all live
// under it. Pause is off so tests never wait on stdin.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	workDir := filepath.Join(base, "app")
	cfgVal := config.Default()
	cfgVal.Launcher.WorkDir = workDir
	cfgVal.Launcher.Requirements = filepath.Join(workDir, "requirements.txt")
	cfgVal.Launcher.Target = filepath.Join(workDir, "joy-caption.py")
	cfgVal.Launcher.Pause = false
	cfgVal.Environment.Dir = filepath.Join(workDir, "venv")
	cfgVal.Environment.LockTimeoutSeconds = 5
	cfgVal.Python.Interpreter = filepath.Join(base, "bin", "python")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithStubInterpreter writes an executable at the configured interpreter path
// that prints a Python version. The launcher's executor decides what actually
// runs; the file only has to satisfy PATH resolution.
func WithStubInterpreter() ConfigOption {
	return func(b *configBuilder) {
		WriteExecutable(b.t, b.cfg.Python.Interpreter, "echo 'Python 3.12.1'")
	}
}

// WithFailFast switches the launcher to the abort failure policy.
func WithFailFast() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Launcher.OnFailure = config.OnFailureAbort
	}
}

// WithPause enables the post-run pause step.
func WithPause() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Launcher.Pause = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Launcher.WorkDir)
}
