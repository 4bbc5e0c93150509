// Package logging assembles structured slog loggers used across joylaunch.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so launcher steps are tagged with the
// run identifier and step name. Logs default to stderr: stdout belongs to the
// launched program and the package installer.
//
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
