package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"joylaunch/internal/launcher"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		command     sql.NullString
		path        sql.NullString
		version     sql.NullString
		created     int
		aborted     int
		errMsg      sql.NullString
	)
	if err := scanner.Scan(
		&run.RunID,
		&startedRaw,
		&finishedRaw,
		&command,
		&path,
		&version,
		&run.EnvironmentDir,
		&created,
		&run.Target,
		&run.TargetExitCode,
		&aborted,
		&errMsg,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	started, err := parseTime(startedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at for %s: %w", run.RunID, err)
	}
	run.StartedAt = started
	if finishedRaw.Valid {
		if finished, err := parseTime(finishedRaw.String); err == nil {
			run.FinishedAt = finished
		}
	}
	run.InterpreterCommand = command.String
	run.InterpreterPath = path.String
	run.InterpreterVersion = version.String
	run.EnvironmentCreated = created != 0
	run.Aborted = aborted != 0
	run.ErrorMessage = errMsg.String
	return run, nil
}

func firstFailure(result launcher.Result) string {
	failures := result.Failures()
	if len(failures) == 0 {
		return ""
	}
	first := failures[0]
	if first.Err != nil {
		return fmt.Sprintf("%s: %v", first.Step, first.Err)
	}
	return fmt.Sprintf("%s: exit status %d", first.Step, first.ExitCode)
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
