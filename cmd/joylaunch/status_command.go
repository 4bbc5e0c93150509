package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"joylaunch/internal/config"
	"joylaunch/internal/deps"
	"joylaunch/internal/history"
	"joylaunch/internal/venv"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, interpreter, environment and last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := newStatusPrinter(cmd.OutOrStdout())

			p.section("Configuration")
			if ctx.configExists {
				p.line("Config file", statusOK, ctx.configPath)
			} else {
				p.line("Config file", statusInfo, "defaults (no file at "+ctx.configPath+")")
			}
			p.line("Work directory", statusInfo, cfg.Launcher.WorkDir)
			p.line("Failure policy", statusInfo, cfg.Launcher.OnFailure)

			p.blank()
			p.section("Launch")
			kind, msg := interpreterStatus(cmd.Context(), ctx, cfg)
			p.line("Python", kind, msg)
			kind, msg = environmentStatus(cfg)
			p.line("Environment", kind, msg)
			kind, msg = fileStatus(cfg.Launcher.Requirements)
			p.line("Requirements", kind, msg)
			kind, msg = fileStatus(cfg.Launcher.Target)
			p.line("Target", kind, msg)

			p.blank()
			p.section("History")
			kind, msg = lastRunStatus(cmd.Context(), cfg)
			p.line("Last run", kind, msg)
			return nil
		},
	}
}

func interpreterStatus(ctx context.Context, cc *commandContext, cfg *config.Config) (statusKind, string) {
	timeout := time.Duration(cfg.Python.VersionTimeoutSeconds) * time.Second
	interp, err := deps.ResolveInterpreter(ctx, cc.executor, cfg.InterpreterCandidates(), timeout)
	if err != nil {
		return statusError, err.Error()
	}
	return statusOK, fmt.Sprintf("%s (%s)", interp.Version, interp.Path)
}

func environmentStatus(cfg *config.Config) (statusKind, string) {
	env := venv.New(cfg.Environment.Dir)
	exists, err := env.Exists()
	switch {
	case errors.Is(err, venv.ErrNotDirectory):
		return statusError, env.Dir() + " is not a directory"
	case err != nil:
		return statusError, err.Error()
	case !exists:
		return statusInfo, env.Dir() + " (not created yet)"
	}
	size, err := env.Size()
	if err != nil {
		return statusWarn, fmt.Sprintf("%s (size unknown: %v)", env.Dir(), err)
	}
	return statusOK, fmt.Sprintf("%s (%s)", env.Dir(), humanize.Bytes(uint64(size)))
}

func fileStatus(path string) (statusKind, string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return statusWarn, path + " (missing)"
	case info.IsDir():
		return statusWarn, path + " (is a directory)"
	}
	return statusOK, path
}

func lastRunStatus(ctx context.Context, cfg *config.Config) (statusKind, string) {
	if !cfg.History.Enabled {
		return statusInfo, "history disabled"
	}
	if _, err := os.Stat(cfg.History.Path); err != nil {
		return statusInfo, "no runs recorded"
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return statusWarn, err.Error()
	}
	defer store.Close()

	runs, err := store.Recent(ctx, 1)
	if err != nil {
		return statusWarn, err.Error()
	}
	if len(runs) == 0 {
		return statusInfo, "no runs recorded"
	}
	last := runs[0]
	kind := statusOK
	if last.Aborted || last.FailedSteps() > 0 {
		kind = statusWarn
	}
	return kind, fmt.Sprintf("%s, target exit %d, %d failed step(s)",
		humanize.Time(last.StartedAt), last.TargetExitCode, last.FailedSteps())
}
