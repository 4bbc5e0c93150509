package config

import (
	"fmt"
	"strings"
)

// Overrides carries command-line values that replace configured ones.
// Empty strings and false booleans leave the configuration untouched.
type Overrides struct {
	Interpreter       string
	Requirements      string
	Target            string
	EnvironmentDir    string
	FailFast          bool
	NoPause           bool
	PropagateExitCode bool
}

// Apply merges o into the configuration and re-validates it. Relative paths
// resolve against the launcher work directory, like values from the file.
func (c *Config) Apply(o Overrides) error {
	var err error
	if v := strings.TrimSpace(o.Interpreter); v != "" {
		c.Python.Interpreter = v
	}
	if v := strings.TrimSpace(o.Requirements); v != "" {
		if c.Launcher.Requirements, err = resolveAgainst(c.Launcher.WorkDir, v); err != nil {
			return fmt.Errorf("--requirements: %w", err)
		}
	}
	if v := strings.TrimSpace(o.Target); v != "" {
		if c.Launcher.Target, err = resolveAgainst(c.Launcher.WorkDir, v); err != nil {
			return fmt.Errorf("--target: %w", err)
		}
	}
	if v := strings.TrimSpace(o.EnvironmentDir); v != "" {
		if c.Environment.Dir, err = resolveAgainst(c.Launcher.WorkDir, v); err != nil {
			return fmt.Errorf("--venv: %w", err)
		}
	}
	if o.FailFast {
		c.Launcher.OnFailure = OnFailureAbort
	}
	if o.NoPause {
		c.Launcher.Pause = false
	}
	if o.PropagateExitCode {
		c.Launcher.PropagateExitCode = true
	}
	return c.Validate()
}
