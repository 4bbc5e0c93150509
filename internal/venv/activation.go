package venv

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Activation is the process environment with the virtual environment
// activated, paired with the environment it replaced.
type Activation struct {
	base      []string
	activated []string
}

// Activate derives the activated environment from base (typically
// os.Environ()): VIRTUAL_ENV points at the environment, its scripts
// directory leads PATH, and PYTHONHOME is dropped. base is not modified.
func (e Environment) Activate(base []string) Activation {
	baseCopy := append([]string(nil), base...)

	activated := append([]string(nil), base...)
	pathValue, _ := lookupEnv(activated, "PATH")
	if pathValue == "" {
		pathValue = e.ScriptsDir()
	} else {
		pathValue = e.ScriptsDir() + string(os.PathListSeparator) + pathValue
	}
	activated = setEnv(activated, "PATH", pathValue)
	activated = setEnv(activated, "VIRTUAL_ENV", e.dir)
	activated = setEnv(activated, "VIRTUAL_ENV_PROMPT", filepath.Base(e.dir))
	activated = unsetEnv(activated, "PYTHONHOME")

	return Activation{base: baseCopy, activated: activated}
}

// Env returns the activated environment for child processes.
func (a Activation) Env() []string {
	return append([]string(nil), a.activated...)
}

// Deactivate returns the environment as it was before activation.
func (a Activation) Deactivate() []string {
	return append([]string(nil), a.base...)
}

// LookupEnv finds key in env using the platform's case rules.
func LookupEnv(env []string, key string) (string, bool) {
	return lookupEnv(env, key)
}

func envKeyEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func lookupEnv(env []string, key string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		name, value, ok := strings.Cut(env[i], "=")
		if ok && envKeyEqual(name, key) {
			return value, true
		}
	}
	return "", false
}

func setEnv(env []string, key, value string) []string {
	out := unsetEnv(env, key)
	return append(out, key+"="+value)
}

func unsetEnv(env []string, key string) []string {
	out := env[:0:0]
	for _, entry := range env {
		name, _, ok := strings.Cut(entry, "=")
		if ok && envKeyEqual(name, key) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
