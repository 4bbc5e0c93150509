package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLauncher(); err != nil {
		return err
	}
	if err := c.validateEnvironment(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLauncher() error {
	if c.Launcher.Requirements == "" {
		return errors.New("launcher.requirements must be set")
	}
	if c.Launcher.Target == "" {
		return errors.New("launcher.target must be set")
	}
	switch c.Launcher.OnFailure {
	case OnFailureContinue, OnFailureAbort:
	default:
		return fmt.Errorf("launcher.on_failure must be %q or %q, got %q", OnFailureContinue, OnFailureAbort, c.Launcher.OnFailure)
	}
	return nil
}

func (c *Config) validateEnvironment() error {
	if c.Environment.Dir == "" {
		return errors.New("environment.dir must be set")
	}
	if filepath.Clean(c.Environment.Dir) == filepath.Clean(c.Launcher.WorkDir) {
		return errors.New("environment.dir must not be the launcher work directory")
	}
	if c.Environment.LockTimeoutSeconds <= 0 {
		return errors.New("environment.lock_timeout_seconds must be positive")
	}
	if c.Python.VersionTimeoutSeconds <= 0 {
		return errors.New("python.version_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
