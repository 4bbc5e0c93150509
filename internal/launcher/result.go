package launcher

import (
	"fmt"
	"time"

	"joylaunch/internal/deps"
)

// ErrInterpreterNotFound is returned by Run when no Python interpreter answers
// the version check. It is the only failure that stops a launch before setup.
var ErrInterpreterNotFound = deps.ErrInterpreterNotFound

// Step names one stage of the setup-and-run sequence.
type Step string

// Steps in the order Run issues them.
const (
	StepCheckInterpreter    Step = "check-interpreter"
	StepCreateEnvironment   Step = "create-environment"
	StepActivate            Step = "activate"
	StepUpgradePip          Step = "upgrade-pip"
	StepInstallRequirements Step = "install-requirements"
	StepBanner              Step = "banner"
	StepRunTarget           Step = "run-target"
	StepPause               Step = "pause"
	StepDeactivate          Step = "deactivate"
)

// Sequence lists every step in issue order.
var Sequence = []Step{
	StepCheckInterpreter,
	StepCreateEnvironment,
	StepActivate,
	StepUpgradePip,
	StepInstallRequirements,
	StepBanner,
	StepRunTarget,
	StepPause,
	StepDeactivate,
}

// StepResult records how a single step went.
type StepResult struct {
	Step      Step
	Skipped   bool
	ExitCode  int
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Failed reports whether the step ran and did not succeed.
func (s StepResult) Failed() bool {
	return !s.Skipped && (s.Err != nil || s.ExitCode != 0)
}

// Result summarizes one launch.
type Result struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	Interpreter        deps.Interpreter
	EnvironmentDir     string
	EnvironmentCreated bool
	Target             string
	TargetExitCode     int // -1 when the target never ran to completion
	Aborted            bool
	Steps              []StepResult
}

// Step returns the result of s, if it was issued.
func (r Result) Step(s Step) (StepResult, bool) {
	for _, step := range r.Steps {
		if step.Step == s {
			return step, true
		}
	}
	return StepResult{}, false
}

// Failures returns the steps that ran and failed, in order.
func (r Result) Failures() []StepResult {
	var failed []StepResult
	for _, step := range r.Steps {
		if step.Failed() {
			failed = append(failed, step)
		}
	}
	return failed
}

// StepError wraps the failure that stopped a fail-fast launch.
type StepError struct {
	Step     Step
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Step, e.ExitCode)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCode maps a launch outcome to the launcher's process exit status.
//
// A missing interpreter, or any error returned by Run, yields 1. Otherwise
// the status is 0 unless propagate is set, in which case the target's exit
// code is passed through (1 when the target never completed).
func ExitCode(result Result, err error, propagate bool) int {
	if err != nil {
		return 1
	}
	if !propagate {
		return 0
	}
	if result.TargetExitCode < 0 {
		return 1
	}
	return result.TargetExitCode
}
