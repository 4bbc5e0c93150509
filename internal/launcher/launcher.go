package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"joylaunch/internal/command"
	"joylaunch/internal/config"
	"joylaunch/internal/deps"
	"joylaunch/internal/logging"
	"joylaunch/internal/venv"
)

// InterpreterMissingMessage is printed when the version check fails.
const InterpreterMissingMessage = "Python is not installed or not found in PATH. Please install Python and try again."

// EnvironmentMissingFormat is printed to stderr when the environment's
// interpreter is absent after setup; %s is its path.
const EnvironmentMissingFormat = "Virtual environment interpreter %s is missing; dependency installation and the program will fail."

// Pauser blocks until the user acknowledges the run.
type Pauser interface {
	Pause(ctx context.Context) error
}

// Recorder persists launch results.
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// Option configures the launcher.
type Option func(*Launcher)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec command.Executor) Option {
	return func(l *Launcher) {
		if exec != nil {
			l.exec = exec
		}
	}
}

// WithPauser sets the acknowledgment prompt used after the target exits.
func WithPauser(p Pauser) Option {
	return func(l *Launcher) {
		l.pauser = p
	}
}

// WithRecorder sets the run history sink.
func WithRecorder(r Recorder) Option {
	return func(l *Launcher) {
		l.recorder = r
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithIO overrides the streams handed to child processes.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		if stdin != nil {
			l.stdin = stdin
		}
		if stdout != nil {
			l.stdout = stdout
		}
		if stderr != nil {
			l.stderr = stderr
		}
	}
}

// WithBaseEnv replaces os.Environ() as the pre-activation environment.
func WithBaseEnv(env []string) Option {
	return func(l *Launcher) {
		l.baseEnv = append([]string(nil), env...)
	}
}

// Launcher runs the setup-and-run sequence for one configuration.
type Launcher struct {
	cfg      *config.Config
	env      venv.Environment
	exec     command.Executor
	pauser   Pauser
	recorder Recorder
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	baseEnv  []string
}

// New constructs a launcher. Without WithPauser the pause step is skipped.
func New(cfg *config.Config, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:     cfg,
		env:     venv.New(cfg.Environment.Dir),
		exec:    command.OSExecutor{},
		logger:  logging.NewNop(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		baseEnv: os.Environ(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "launcher")
	return l
}

// Environment returns the virtual environment the launcher manages.
func (l *Launcher) Environment() venv.Environment {
	return l.env
}

// run carries per-launch state through the sequence.
type run struct {
	ctx        context.Context
	logger     *slog.Logger
	result     Result
	activation *venv.Activation
	stop       *StepError
}

// Run executes the sequence: check interpreter, create the environment if
// absent, activate, upgrade pip, install requirements, print the banner, run
// the target, pause, deactivate.
//
// Only a missing interpreter returns early. Under the default "continue"
// policy every other failure is recorded in the Result and Run returns a nil
// error. Under "abort" the first failure skips to pause and deactivate and is
// returned as a *StepError. Deactivate is always the last step issued once
// the interpreter check has passed.
func (l *Launcher) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	r := &run{
		ctx:    ctx,
		logger: logging.WithContext(ctx, l.logger),
		result: Result{
			RunID:          runID,
			StartedAt:      time.Now().UTC(),
			EnvironmentDir: l.env.Dir(),
			Target:         l.cfg.Launcher.Target,
			TargetExitCode: -1,
		},
	}

	if err := l.checkInterpreter(r); err != nil {
		if errors.Is(err, ErrInterpreterNotFound) {
			fmt.Fprintln(l.stdout, InterpreterMissingMessage)
		}
		l.finish(r)
		return r.result, err
	}

	l.setup(r)
	l.banner(r)
	l.runTarget(r)
	l.pause(r)
	l.deactivate(r)
	l.finish(r)

	if r.stop != nil {
		r.result.Aborted = true
		return r.result, r.stop
	}
	return r.result, nil
}

func (l *Launcher) checkInterpreter(r *run) error {
	timeout := time.Duration(l.cfg.Python.VersionTimeoutSeconds) * time.Second
	var resolveErr error
	l.step(r, StepCheckInterpreter, func() (int, error) {
		interp, err := deps.ResolveInterpreter(r.ctx, l.exec, l.cfg.InterpreterCandidates(), timeout)
		if err != nil {
			resolveErr = err
			return -1, err
		}
		r.result.Interpreter = interp
		r.logger.Info("python interpreter found",
			logging.Args(
				logging.String(logging.FieldCommand, interp.Path),
				logging.String("version", interp.Version),
			)...,
		)
		return 0, nil
	})
	return resolveErr
}

// setup holds the environment lock from the existence check through
// dependency installation. A lock that cannot be taken fails the
// create-environment step like any other setup failure; the remaining steps
// run without it.
func (l *Launcher) setup(r *run) {
	var unlock func() error
	defer func() {
		if unlock == nil {
			return
		}
		if err := unlock(); err != nil {
			r.logger.Warn("release environment lock failed", logging.Args(logging.Error(err))...)
		}
	}()

	l.step(r, StepCreateEnvironment, func() (int, error) {
		lockCtx, cancel := context.WithTimeout(r.ctx, time.Duration(l.cfg.Environment.LockTimeoutSeconds)*time.Second)
		defer cancel()
		release, err := l.env.Lock(lockCtx)
		if err != nil {
			return -1, err
		}
		unlock = release

		exists, err := l.env.Exists()
		if err != nil {
			return -1, err
		}
		if exists {
			r.logger.Debug("environment present; reusing", logging.Args(logging.String("dir", l.env.Dir()))...)
			return 0, nil
		}
		r.logger.Info("creating environment", logging.Args(logging.String("dir", l.env.Dir()))...)
		code, err := l.env.Create(r.ctx, l.exec, r.result.Interpreter.Path, l.stdout, l.stderr)
		if err == nil && code == 0 {
			r.result.EnvironmentCreated = true
		}
		return code, err
	})

	l.step(r, StepActivate, func() (int, error) {
		activation := l.env.Activate(l.baseEnv)
		r.activation = &activation
		return 0, nil
	})
	l.warnIfEnvironmentMissing(r)

	if l.cfg.Launcher.UpgradePip {
		l.step(r, StepUpgradePip, func() (int, error) {
			return l.python(r, "-m", "pip", "install", "--upgrade", "pip")
		})
	} else {
		l.skip(r, StepUpgradePip)
	}

	l.step(r, StepInstallRequirements, func() (int, error) {
		return l.python(r, "-m", "pip", "install", "-r", l.cfg.Launcher.Requirements)
	})
}

// warnIfEnvironmentMissing tells the user up front why pip and the target are
// about to fail when the environment's interpreter does not exist.
func (l *Launcher) warnIfEnvironmentMissing(r *run) {
	if r.stop != nil {
		return
	}
	python := l.env.Python()
	if _, err := os.Stat(python); err == nil {
		return
	}
	fmt.Fprintf(l.stderr, EnvironmentMissingFormat+"\n", python)
	r.logger.Warn("environment interpreter missing", logging.Args(logging.String(logging.FieldCommand, python))...)
}

func (l *Launcher) banner(r *run) {
	l.step(r, StepBanner, func() (int, error) {
		if _, err := fmt.Fprintln(l.stdout, l.cfg.Launcher.Banner); err != nil {
			return -1, err
		}
		return 0, nil
	})
}

func (l *Launcher) runTarget(r *run) {
	l.step(r, StepRunTarget, func() (int, error) {
		args := append([]string{l.cfg.Launcher.Target}, l.cfg.Launcher.TargetArgs...)
		code, err := l.pythonWithStdin(r, args...)
		r.result.TargetExitCode = code
		return code, err
	})
}

func (l *Launcher) pause(r *run) {
	if !l.cfg.Launcher.Pause || l.pauser == nil || r.ctx.Err() != nil {
		l.skip(r, StepPause)
		return
	}
	// Pause ignores a pending fail-fast stop.
	started := time.Now()
	err := l.pauser.Pause(r.ctx)
	result := StepResult{Step: StepPause, Err: err, StartedAt: started, Duration: time.Since(started)}
	if err != nil {
		result.ExitCode = -1
		r.logger.Warn("pause failed", l.stepAttrs(result)...)
	}
	l.record(r, result)
}

func (l *Launcher) deactivate(r *run) {
	started := time.Now()
	if r.activation != nil {
		l.baseEnv = r.activation.Deactivate()
		r.activation = nil
	}
	l.record(r, StepResult{Step: StepDeactivate, StartedAt: started, Duration: time.Since(started)})
}

func (l *Launcher) finish(r *run) {
	r.result.FinishedAt = time.Now().UTC()
	if l.recorder == nil {
		return
	}
	// History is best-effort: a broken database must not change the launch outcome.
	if err := l.recorder.Record(context.WithoutCancel(r.ctx), r.result); err != nil {
		r.logger.Warn("record run history failed", logging.Args(logging.Error(err))...)
	}
}

func (l *Launcher) python(r *run, args ...string) (int, error) {
	return l.exec.Run(r.ctx, l.spec(r, args))
}

func (l *Launcher) pythonWithStdin(r *run, args ...string) (int, error) {
	spec := l.spec(r, args)
	spec.Stdin = l.stdin
	return l.exec.Run(r.ctx, spec)
}

func (l *Launcher) spec(r *run, args []string) command.Spec {
	spec := command.Spec{
		Path:   l.env.Python(),
		Args:   args,
		Dir:    l.cfg.Launcher.WorkDir,
		Stdout: l.stdout,
		Stderr: l.stderr,
	}
	if r.activation != nil {
		spec.Env = r.activation.Env()
	}
	return spec
}

// step runs fn unless a fail-fast stop is pending, then records and logs the outcome.
func (l *Launcher) step(r *run, step Step, fn func() (int, error)) {
	if r.stop != nil {
		l.skip(r, step)
		return
	}
	started := time.Now()
	code, err := fn()
	if err == nil && code != 0 {
		err = &command.ExitError{Command: string(step), Code: code}
	}
	result := StepResult{Step: step, ExitCode: code, Err: err, StartedAt: started, Duration: time.Since(started)}
	l.record(r, result)

	if !result.Failed() || step == StepCheckInterpreter {
		return
	}
	if l.cfg.FailFast() {
		r.stop = &StepError{Step: step, ExitCode: code, Err: err}
		r.logger.Error("step failed; skipping to teardown", l.stepAttrs(result)...)
		return
	}
	r.logger.Warn("step failed; continuing", l.stepAttrs(result)...)
}

func (l *Launcher) skip(r *run, step Step) {
	l.record(r, StepResult{Step: step, Skipped: true})
}

func (l *Launcher) record(r *run, result StepResult) {
	r.result.Steps = append(r.result.Steps, result)
	if result.Skipped {
		r.logger.Debug("step skipped", logging.Args(logging.String(logging.FieldStep, string(result.Step)))...)
		return
	}
	if !result.Failed() {
		r.logger.Debug("step finished", l.stepAttrs(result)...)
	}
}

func (l *Launcher) stepAttrs(result StepResult) []any {
	attrs := []logging.Attr{
		logging.String(logging.FieldStep, string(result.Step)),
		logging.Int(logging.FieldExitCode, result.ExitCode),
		logging.Duration("duration", result.Duration),
	}
	if result.Err != nil {
		attrs = append(attrs, logging.Error(result.Err))
	}
	return logging.Args(attrs...)
}
