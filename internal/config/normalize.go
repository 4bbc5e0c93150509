package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizePython()
	if err := c.normalizeLauncher(); err != nil {
		return err
	}
	if err := c.normalizeEnvironment(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePython() {
	c.Python.Interpreter = strings.TrimSpace(c.Python.Interpreter)
	if c.Python.VersionTimeoutSeconds <= 0 {
		c.Python.VersionTimeoutSeconds = defaultVersionTimeoutSeconds
	}
}

// normalizeLauncher must run before normalizeEnvironment: relative paths in
// both sections are anchored at the launcher work directory.
func (c *Config) normalizeLauncher() error {
	var err error
	if strings.TrimSpace(c.Launcher.WorkDir) == "" {
		c.Launcher.WorkDir = defaultWorkDir
	}
	if c.Launcher.WorkDir, err = expandPath(strings.TrimSpace(c.Launcher.WorkDir)); err != nil {
		return fmt.Errorf("launcher.work_dir: %w", err)
	}
	if c.Launcher.Requirements, err = resolveAgainst(c.Launcher.WorkDir, c.Launcher.Requirements); err != nil {
		return fmt.Errorf("launcher.requirements: %w", err)
	}
	if c.Launcher.Target, err = resolveAgainst(c.Launcher.WorkDir, c.Launcher.Target); err != nil {
		return fmt.Errorf("launcher.target: %w", err)
	}
	c.Launcher.Banner = strings.TrimSpace(c.Launcher.Banner)
	if c.Launcher.Banner == "" {
		c.Launcher.Banner = defaultBanner
	}
	c.Launcher.OnFailure = strings.ToLower(strings.TrimSpace(c.Launcher.OnFailure))
	if c.Launcher.OnFailure == "" {
		c.Launcher.OnFailure = defaultOnFailure
	}
	return nil
}

func (c *Config) normalizeEnvironment() error {
	var err error
	if c.Environment.Dir, err = resolveAgainst(c.Launcher.WorkDir, c.Environment.Dir); err != nil {
		return fmt.Errorf("environment.dir: %w", err)
	}
	if c.Environment.LockTimeoutSeconds <= 0 {
		c.Environment.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(defaultStateDir(), defaultHistoryFile)
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
