package config

import (
	"path/filepath"
	"runtime"
)

// Failure policies accepted by launcher.on_failure.
const (
	OnFailureContinue = "continue"
	OnFailureAbort    = "abort"
)

const (
	configEnvVar                 = "JOYLAUNCH_CONFIG"
	defaultConfigPath            = "~/.config/joylaunch/config.toml"
	projectConfigName            = "joylaunch.toml"
	defaultVersionTimeoutSeconds = 15
	defaultEnvironmentDir        = "venv"
	defaultLockTimeoutSeconds    = 600
	defaultWorkDir               = "."
	defaultRequirements          = "requirements.txt"
	defaultTarget                = "joy-caption.py"
	defaultBanner                = "Results will appear below"
	defaultOnFailure             = OnFailureContinue
	defaultHistoryFile           = "history.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogFileName           = "joylaunch.log"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Python: Python{
			VersionTimeoutSeconds: defaultVersionTimeoutSeconds,
		},
		Environment: Environment{
			Dir:                defaultEnvironmentDir,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Launcher: Launcher{
			WorkDir:      defaultWorkDir,
			Requirements: defaultRequirements,
			Target:       defaultTarget,
			Banner:       defaultBanner,
			UpgradePip:   true,
			Pause:        true,
			OnFailure:    defaultOnFailure,
		},
		History: History{
			Enabled: true,
			Path:    filepath.Join(defaultStateDir(), defaultHistoryFile),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// LogFilePath returns the log file location, or "" when file logging is off.
func (c *Config) LogFilePath() string {
	if c.Logging.Dir == "" {
		return ""
	}
	return filepath.Join(c.Logging.Dir, defaultLogFileName)
}

// defaultInterpreterCandidates mirrors how a console user would reach Python:
// the "py" launcher only ships on Windows.
func defaultInterpreterCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"python", "py", "python3"}
	}
	return []string{"python", "python3"}
}
