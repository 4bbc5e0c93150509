package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Python selects the interpreter used to bootstrap the environment.
type Python struct {
	// Interpreter is the command used for the version check and for creating
	// the environment. Empty means probe the platform defaults in order.
	Interpreter           string `toml:"interpreter"`
	VersionTimeoutSeconds int    `toml:"version_timeout_seconds"`
}

// Environment describes the virtual environment directory.
type Environment struct {
	Dir                string `toml:"dir"`
	LockTimeoutSeconds int    `toml:"lock_timeout_seconds"`
}

// Launcher contains the setup-and-run sequence settings.
type Launcher struct {
	WorkDir           string   `toml:"work_dir"`
	Requirements      string   `toml:"requirements"`
	Target            string   `toml:"target"`
	TargetArgs        []string `toml:"target_args"`
	Banner            string   `toml:"banner"`
	UpgradePip        bool     `toml:"upgrade_pip"`
	Pause             bool     `toml:"pause"`
	OnFailure         string   `toml:"on_failure"`
	PropagateExitCode bool     `toml:"propagate_exit_code"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for joylaunch.
//
// Configuration sections:
//   - Python: interpreter selection and probe timeout
//   - Environment: virtual environment directory and lock timeout
//   - Launcher: manifest, target program, banner, pause and failure policy
//   - History: SQLite run history
//   - Logging: log format, level, and file output
type Config struct {
	Python      Python      `toml:"python"`
	Environment Environment `toml:"environment"`
	Launcher    Launcher    `toml:"launcher"`
	History     History     `toml:"history"`
	Logging     Logging     `toml:"logging"`
}

// Load reads the configuration at path, falling back to JOYLAUNCH_CONFIG, the
// per-user file and ./joylaunch.toml in that order. A missing file yields the
// defaults. It returns the config, the path consulted and whether that file
// existed.
func Load(path string) (*Config, string, bool, error) {
	source, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(source, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// locate picks the config file to read. An explicit path, or the env var,
// is used even when the file is absent.
func locate(explicit string) (string, bool, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(configEnvVar))
	}
	if explicit != "" {
		resolved, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(resolved)
		return resolved, exists, err
	}

	candidates := make([]string, 0, 2)
	for _, raw := range []string{defaultConfigPath, projectConfigName} {
		resolved, err := expandPath(raw)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, resolved)
	}
	for _, candidate := range candidates {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return candidates[0], false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat config: %w", err)
	}
}

// EnsureDirectories creates the directories joylaunch writes its own state to.
// The virtual environment directory is deliberately excluded; it is created by
// the interpreter on first launch.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
		}
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		dir := filepath.Dir(c.History.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	return nil
}

// FailFast reports whether the launcher stops after the first failing step.
func (c *Config) FailFast() bool {
	return c.Launcher.OnFailure == OnFailureAbort
}

// InterpreterCandidates returns the commands probed for the interpreter check.
func (c *Config) InterpreterCandidates() []string {
	if python := strings.TrimSpace(c.Python.Interpreter); python != "" {
		return []string{python}
	}
	return defaultInterpreterCandidates()
}
