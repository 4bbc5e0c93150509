package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"joylaunch/internal/launcher"
)

// Run is one recorded launch.
type Run struct {
	RunID              string     `json:"run_id"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         time.Time  `json:"finished_at"`
	InterpreterCommand string     `json:"interpreter_command,omitempty"`
	InterpreterPath    string     `json:"interpreter_path,omitempty"`
	InterpreterVersion string     `json:"interpreter_version,omitempty"`
	EnvironmentDir     string     `json:"environment_dir"`
	EnvironmentCreated bool       `json:"environment_created"`
	Target             string     `json:"target"`
	TargetExitCode     int        `json:"target_exit_code"`
	Aborted            bool       `json:"aborted"`
	ErrorMessage       string     `json:"error,omitempty"`
	Steps              []StepInfo `json:"steps"`
}

// StepInfo is the stored outcome of one sequence step.
type StepInfo struct {
	Step         string        `json:"step"`
	Skipped      bool          `json:"skipped"`
	ExitCode     int           `json:"exit_code"`
	ErrorMessage string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

// Duration reports the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedSteps counts steps that ran and failed.
func (r Run) FailedSteps() int {
	n := 0
	for _, step := range r.Steps {
		if !step.Skipped && (step.ExitCode != 0 || step.ErrorMessage != "") {
			n++
		}
	}
	return n
}

// Record stores a launcher result. It satisfies launcher.Recorder.
func (s *Store) Record(ctx context.Context, result launcher.Result) error {
	if result.RunID == "" {
		return errors.New("record run: missing run id")
	}
	return retryOnBusy(ctx, func() error {
		return s.insertRun(ctx, result)
	})
}

func (s *Store) insertRun(ctx context.Context, result launcher.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		run_id, started_at, finished_at, interpreter_command, interpreter_path, interpreter_version,
		environment_dir, environment_created, target, target_exit_code, aborted, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		formatTime(result.StartedAt),
		nullableTime(result.FinishedAt),
		nullableString(result.Interpreter.Command),
		nullableString(result.Interpreter.Path),
		nullableString(result.Interpreter.Version),
		result.EnvironmentDir,
		boolToInt(result.EnvironmentCreated),
		result.Target,
		result.TargetExitCode,
		boolToInt(result.Aborted),
		nullableString(firstFailure(result)),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, step := range result.Steps {
		var errMsg string
		if step.Err != nil {
			errMsg = step.Err.Error()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_steps (
			run_id, position, step, skipped, exit_code, error_message, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			result.RunID, i, string(step.Step), boolToInt(step.Skipped), step.ExitCode,
			nullableString(errMsg), step.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert step %s: %w", step.Step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, started_at, finished_at, interpreter_command, interpreter_path,
		interpreter_version, environment_dir, environment_created, target, target_exit_code,
		aborted, error_message
		FROM runs ORDER BY started_at DESC, run_id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		steps, err := s.steps(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

// Get returns a single run, or nil when runID is unknown.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, started_at, finished_at, interpreter_command,
		interpreter_path, interpreter_version, environment_dir, environment_created, target,
		target_exit_code, aborted, error_message
		FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Steps, err = s.steps(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) steps(ctx context.Context, runID string) ([]StepInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT step, skipped, exit_code, error_message, duration_ms
		FROM run_steps WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []StepInfo
	for rows.Next() {
		var (
			info       StepInfo
			skipped    int
			errMsg     sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&info.Step, &skipped, &info.ExitCode, &errMsg, &durationMS); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		info.Skipped = skipped != 0
		info.ErrorMessage = errMsg.String
		info.Duration = time.Duration(durationMS) * time.Millisecond
		steps = append(steps, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}
