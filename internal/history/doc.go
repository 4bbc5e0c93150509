// Package history persists launcher runs in SQLite.
//
// Each launch becomes one runs row plus one run_steps row per sequence step.
// The schema is applied from embedded migrations on Open; the store is
// best-effort from the launcher's point of view and never changes a launch
// outcome.
package history
