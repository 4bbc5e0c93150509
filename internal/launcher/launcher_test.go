package launcher_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"joylaunch/internal/command"
	"joylaunch/internal/config"
	"joylaunch/internal/launcher"
	"joylaunch/internal/testsupport"
	"joylaunch/internal/venv"
)

type recordingPauser struct {
	calls int
	err   error
}

func (p *recordingPauser) Pause(context.Context) error {
	p.calls++
	return p.err
}

type memoryRecorder struct {
	mu      sync.Mutex
	results []launcher.Result
}

func (m *memoryRecorder) Record(_ context.Context, result launcher.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return nil
}

func newLauncher(t *testing.T, cfg *config.Config, fake *testsupport.FakePython, opts ...launcher.Option) (*launcher.Launcher, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	base := []launcher.Option{
		launcher.WithExecutor(fake),
		launcher.WithIO(strings.NewReader(""), &stdout, &stdout),
		launcher.WithBaseEnv([]string{"PATH=/usr/bin"}),
	}
	return launcher.New(cfg, append(base, opts...)...), &stdout
}

func stepNames(result launcher.Result) []launcher.Step {
	names := make([]launcher.Step, 0, len(result.Steps))
	for _, step := range result.Steps {
		names = append(names, step.Step)
	}
	return names
}

func TestRunWithoutInterpreterExitsOneAndCreatesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := &testsupport.FakePython{}
	l, stdout := newLauncher(t, cfg, fake)

	result, err := l.Run(context.Background())
	if !errors.Is(err, launcher.ErrInterpreterNotFound) {
		t.Fatalf("expected ErrInterpreterNotFound, got %v", err)
	}
	if code := launcher.ExitCode(result, err, false); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stdout.String(), "not installed") {
		t.Fatalf("expected not-installed message, got %q", stdout.String())
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("expected no commands issued, got %v", fake.Actions())
	}
	if _, statErr := os.Stat(cfg.Environment.Dir); !os.IsNotExist(statErr) {
		t.Fatalf("environment must not be created, stat err = %v", statErr)
	}
	if got := stepNames(result); !reflect.DeepEqual(got, []launcher.Step{launcher.StepCheckInterpreter}) {
		t.Fatalf("unexpected steps: %v", got)
	}
}

func TestRunIssuesStepsInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter(), testsupport.WithPause())
	pauser := &recordingPauser{}
	fake := &testsupport.FakePython{}
	l, stdout := newLauncher(t, cfg, fake, launcher.WithPauser(pauser))

	var bannerBeforeTarget bool
	fake.OnRun = func(action string, _ command.Spec) {
		if action == testsupport.ActionTarget {
			bannerBeforeTarget = strings.Contains(stdout.String(), "Results will appear below")
		}
	}

	result, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantActions := []string{
		testsupport.ActionVersion,
		testsupport.ActionVenv,
		testsupport.ActionUpgradePip,
		testsupport.ActionInstall,
		testsupport.ActionTarget,
	}
	if got := fake.Actions(); !reflect.DeepEqual(got, wantActions) {
		t.Fatalf("unexpected command order: got %v want %v", got, wantActions)
	}
	if got := stepNames(result); !reflect.DeepEqual(got, launcher.Sequence) {
		t.Fatalf("unexpected step order: got %v want %v", got, launcher.Sequence)
	}
	if !bannerBeforeTarget {
		t.Fatal("expected banner printed before the target ran")
	}
	if !result.EnvironmentCreated {
		t.Fatal("expected environment to be created on first run")
	}
	if pauser.calls != 1 {
		t.Fatalf("expected one pause, got %d", pauser.calls)
	}
	if result.Interpreter.Version != "3.12.1" {
		t.Fatalf("unexpected interpreter version: %q", result.Interpreter.Version)
	}
	if result.TargetExitCode != 0 {
		t.Fatalf("unexpected target exit code: %d", result.TargetExitCode)
	}
}

func TestRunUsesActivatedEnvironmentForPipAndTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	fake := &testsupport.FakePython{}
	l, _ := newLauncher(t, cfg, fake)

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	env := venv.New(cfg.Environment.Dir)
	for _, spec := range fake.Calls() {
		action := testsupport.ClassifyPython(spec.Args)
		switch action {
		case testsupport.ActionVersion, testsupport.ActionVenv:
			if spec.Path != cfg.Python.Interpreter {
				t.Fatalf("%s should use the base interpreter, got %q", action, spec.Path)
			}
		default:
			if spec.Path != env.Python() {
				t.Fatalf("%s should use the environment interpreter, got %q", action, spec.Path)
			}
			if got, _ := venv.LookupEnv(spec.Env, "VIRTUAL_ENV"); got != cfg.Environment.Dir {
				t.Fatalf("%s ran without activation, VIRTUAL_ENV=%q", action, got)
			}
			if spec.Dir != cfg.Launcher.WorkDir {
				t.Fatalf("%s ran in %q, want %q", action, spec.Dir, cfg.Launcher.WorkDir)
			}
		}
	}
	install := fake.Calls()[3]
	if install.Args[len(install.Args)-1] != cfg.Launcher.Requirements {
		t.Fatalf("expected manifest path as last install arg, got %v", install.Args)
	}
	target := fake.Calls()[4]
	if target.Args[0] != cfg.Launcher.Target {
		t.Fatalf("expected target script as first arg, got %v", target.Args)
	}
}

func TestSecondRunReusesEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	fake := &testsupport.FakePython{}
	l, _ := newLauncher(t, cfg, fake)

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.EnvironmentCreated {
		t.Fatal("second run must not recreate the environment")
	}

	venvCalls := 0
	for _, action := range fake.Actions() {
		if action == testsupport.ActionVenv {
			venvCalls++
		}
	}
	if venvCalls != 1 {
		t.Fatalf("expected exactly one environment creation, got %d", venvCalls)
	}

	entries, err := os.ReadDir(cfg.Launcher.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	dirs := 0
	for _, entry := range entries {
		if entry.IsDir() {
			dirs++
		}
	}
	if dirs != 1 {
		t.Fatalf("expected exactly one environment directory, found %d entries: %v", dirs, entries)
	}
}

func TestInstallFailureStillRunsTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	fake := &testsupport.FakePython{ExitCodes: map[string]int{
		testsupport.ActionUpgradePip: 1,
		testsupport.ActionInstall:    2,
	}}
	l, _ := newLauncher(t, cfg, fake)

	result, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("best-effort run should not error, got %v", err)
	}
	actions := fake.Actions()
	if actions[len(actions)-1] != testsupport.ActionTarget {
		t.Fatalf("expected target to run after failed install, got %v", actions)
	}
	failures := result.Failures()
	if len(failures) != 2 {
		t.Fatalf("expected two failed steps, got %#v", failures)
	}
	if failures[1].Step != launcher.StepInstallRequirements || failures[1].ExitCode != 2 {
		t.Fatalf("unexpected install failure record: %#v", failures[1])
	}
	if code := launcher.ExitCode(result, err, false); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestPauseAndDeactivateFollowFailingTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter(), testsupport.WithPause())
	pauser := &recordingPauser{}
	fake := &testsupport.FakePython{ExitCodes: map[string]int{testsupport.ActionTarget: 3}}
	l, _ := newLauncher(t, cfg, fake, launcher.WithPauser(pauser))

	result, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pauser.calls != 1 {
		t.Fatalf("expected pause after failing target, got %d calls", pauser.calls)
	}
	steps := stepNames(result)
	if steps[len(steps)-1] != launcher.StepDeactivate {
		t.Fatalf("deactivate must be last, got %v", steps)
	}
	if steps[len(steps)-2] != launcher.StepPause {
		t.Fatalf("pause must precede deactivate, got %v", steps)
	}
	if result.TargetExitCode != 3 {
		t.Fatalf("expected target exit code 3, got %d", result.TargetExitCode)
	}
	if code := launcher.ExitCode(result, err, false); code != 0 {
		t.Fatalf("target status must not propagate by default, got %d", code)
	}
	if code := launcher.ExitCode(result, err, true); code != 3 {
		t.Fatalf("expected propagated exit code 3, got %d", code)
	}
}

func TestFailFastSkipsToTeardown(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter(), testsupport.WithFailFast(), testsupport.WithPause())
	pauser := &recordingPauser{}
	fake := &testsupport.FakePython{ExitCodes: map[string]int{testsupport.ActionInstall: 1}}
	l, stdout := newLauncher(t, cfg, fake, launcher.WithPauser(pauser))

	result, err := l.Run(context.Background())
	var stepErr *launcher.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != launcher.StepInstallRequirements {
		t.Fatalf("unexpected failing step: %s", stepErr.Step)
	}
	for _, action := range fake.Actions() {
		if action == testsupport.ActionTarget {
			t.Fatal("target must not run after a fail-fast stop")
		}
	}
	if strings.Contains(stdout.String(), cfg.Launcher.Banner) {
		t.Fatal("banner must be skipped after a fail-fast stop")
	}
	if pauser.calls != 1 {
		t.Fatalf("expected pause to still run, got %d", pauser.calls)
	}
	if got := stepNames(result); !reflect.DeepEqual(got, launcher.Sequence) {
		t.Fatalf("expected every step recorded, got %v", got)
	}
	if target, _ := result.Step(launcher.StepRunTarget); !target.Skipped {
		t.Fatalf("expected target step skipped, got %#v", target)
	}
	if !result.Aborted {
		t.Fatal("expected result marked aborted")
	}
	if code := launcher.ExitCode(result, err, false); code != 1 {
		t.Fatalf("expected exit code 1 after abort, got %d", code)
	}
}

func TestUpgradePipCanBeDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	cfg.Launcher.UpgradePip = false
	fake := &testsupport.FakePython{}
	l, _ := newLauncher(t, cfg, fake)

	result, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, action := range fake.Actions() {
		if action == testsupport.ActionUpgradePip {
			t.Fatal("pip upgrade should be skipped")
		}
	}
	if step, _ := result.Step(launcher.StepUpgradePip); !step.Skipped {
		t.Fatalf("expected upgrade step marked skipped, got %#v", step)
	}
}

func TestEnvironmentPathOccupiedByFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	testsupport.WriteFile(t, cfg.Environment.Dir, "not a venv")
	fake := &testsupport.FakePython{}
	l, _ := newLauncher(t, cfg, fake)

	result, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("best-effort run should not error, got %v", err)
	}
	step, _ := result.Step(launcher.StepCreateEnvironment)
	if !errors.Is(step.Err, venv.ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory on create step, got %v", step.Err)
	}
	if result.EnvironmentCreated {
		t.Fatal("environment must not be reported as created")
	}
}

func holdEnvironmentLock(t *testing.T, cfg *config.Config) {
	t.Helper()
	unlock, err := venv.New(cfg.Environment.Dir).Lock(context.Background())
	if err != nil {
		t.Fatalf("hold environment lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })
}

func TestSetupFailureBeforeCreateStillRunsTarget(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "lock held elsewhere",
			prepare: func(t *testing.T, cfg *config.Config) {
				cfg.Environment.LockTimeoutSeconds = 1
				holdEnvironmentLock(t, cfg)
			},
		},
		{
			name: "parent is a file",
			prepare: func(t *testing.T, cfg *config.Config) {
				blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
				testsupport.WriteFile(t, blocker, "")
				cfg.Environment.Dir = filepath.Join(blocker, "venv")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter(), testsupport.WithPause())
			tt.prepare(t, cfg)
			pauser := &recordingPauser{}
			fake := &testsupport.FakePython{}
			l, stdout := newLauncher(t, cfg, fake, launcher.WithPauser(pauser))

			result, err := l.Run(context.Background())
			if err != nil {
				t.Fatalf("best-effort run should not error, got %v", err)
			}
			if code := launcher.ExitCode(result, err, false); code != 0 {
				t.Fatalf("expected exit code 0, got %d", code)
			}
			create, _ := result.Step(launcher.StepCreateEnvironment)
			if !create.Failed() {
				t.Fatalf("expected create-environment to fail, got %#v", create)
			}
			wantActions := []string{
				testsupport.ActionVersion,
				testsupport.ActionUpgradePip,
				testsupport.ActionInstall,
				testsupport.ActionTarget,
			}
			if got := fake.Actions(); !reflect.DeepEqual(got, wantActions) {
				t.Fatalf("unexpected commands: got %v want %v", got, wantActions)
			}
			if pauser.calls != 1 {
				t.Fatalf("expected one pause, got %d", pauser.calls)
			}
			if got := stepNames(result); !reflect.DeepEqual(got, launcher.Sequence) {
				t.Fatalf("unexpected steps: %v", got)
			}
			if !strings.Contains(stdout.String(), "is missing") {
				t.Fatalf("expected missing-environment hint, got %q", stdout.String())
			}
		})
	}
}

func TestFailFastLockTimeoutPausesAndDeactivates(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter(), testsupport.WithFailFast(), testsupport.WithPause())
	cfg.Environment.LockTimeoutSeconds = 1
	holdEnvironmentLock(t, cfg)
	pauser := &recordingPauser{}
	fake := &testsupport.FakePython{}
	l, stdout := newLauncher(t, cfg, fake, launcher.WithPauser(pauser))

	result, err := l.Run(context.Background())
	var stepErr *launcher.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != launcher.StepCreateEnvironment {
		t.Fatalf("expected create-environment StepError, got %v", err)
	}
	if got := fake.Actions(); !reflect.DeepEqual(got, []string{testsupport.ActionVersion}) {
		t.Fatalf("expected only the version check, got %v", got)
	}
	if pauser.calls != 1 {
		t.Fatalf("expected pause to still run, got %d", pauser.calls)
	}
	if got := stepNames(result); got[len(got)-1] != launcher.StepDeactivate {
		t.Fatalf("expected deactivate last, got %v", got)
	}
	if strings.Contains(stdout.String(), "is missing") {
		t.Fatalf("hint is only for runs that continue, got %q", stdout.String())
	}
}

func TestFailedEnvironmentCreationIsReported(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	fake := &testsupport.FakePython{ExitCodes: map[string]int{testsupport.ActionVenv: 1}}
	l, stdout := newLauncher(t, cfg, fake)

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := fmt.Sprintf(launcher.EnvironmentMissingFormat, venv.New(cfg.Environment.Dir).Python())
	if !strings.Contains(stdout.String(), want) {
		t.Fatalf("expected %q in output, got %q", want, stdout.String())
	}
	if actions := fake.Actions(); actions[len(actions)-1] != testsupport.ActionTarget {
		t.Fatalf("expected target still invoked, got %v", actions)
	}
}

func TestHealthyEnvironmentPrintsNoHint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	fake := &testsupport.FakePython{}
	l, stdout := newLauncher(t, cfg, fake)

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(stdout.String(), "is missing") {
		t.Fatalf("unexpected hint: %q", stdout.String())
	}
}

func TestRecorderReceivesEveryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubInterpreter())
	recorder := &memoryRecorder{}
	fake := &testsupport.FakePython{}
	l, _ := newLauncher(t, cfg, fake, launcher.WithRecorder(recorder))

	result, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(recorder.results) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(recorder.results))
	}
	recorded := recorder.results[0]
	if recorded.RunID == "" || recorded.RunID != result.RunID {
		t.Fatalf("unexpected recorded run id: %q", recorded.RunID)
	}
	if recorded.FinishedAt.Before(recorded.StartedAt) {
		t.Fatal("finish time precedes start time")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name      string
		result    launcher.Result
		err       error
		propagate bool
		want      int
	}{
		{name: "interpreter missing", err: launcher.ErrInterpreterNotFound, want: 1},
		{name: "success", result: launcher.Result{TargetExitCode: 0}, want: 0},
		{name: "target failed not propagated", result: launcher.Result{TargetExitCode: 5}, want: 0},
		{name: "target failed propagated", result: launcher.Result{TargetExitCode: 5}, propagate: true, want: 5},
		{name: "target never ran propagated", result: launcher.Result{TargetExitCode: -1}, propagate: true, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := launcher.ExitCode(tt.result, tt.err, tt.propagate); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}
