package main

import (
	"errors"

	"github.com/spf13/cobra"

	"joylaunch/internal/console"
	"joylaunch/internal/history"
	"joylaunch/internal/launcher"
	"joylaunch/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create or reuse the environment, install requirements and run the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, ctx)
		},
	}
	bindLaunchFlags(cmd, ctx)
	return cmd
}

func bindLaunchFlags(cmd *cobra.Command, ctx *commandContext) {
	flags := cmd.Flags()
	flags.BoolVar(&ctx.overrides.FailFast, "fail-fast", false, "Stop after the first failing step (pause and deactivate still run)")
	flags.BoolVar(&ctx.overrides.NoPause, "no-pause", false, "Skip the keypress prompt after the target exits")
	flags.BoolVar(&ctx.overrides.PropagateExitCode, "propagate-exit-code", false, "Exit with the target program's exit code")
}

func runLaunch(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ctx.closeLogger() }()

	stdin := cmd.InOrStdin()
	stdout := cmd.OutOrStdout()
	opts := []launcher.Option{
		launcher.WithExecutor(ctx.executor),
		launcher.WithLogger(logger),
		launcher.WithIO(stdin, stdout, cmd.ErrOrStderr()),
		launcher.WithPauser(&console.KeyPauser{In: stdin, Out: stdout}),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("run history unavailable", logging.Args(
				logging.String("path", cfg.History.Path),
				logging.Error(err),
			)...)
		} else {
			defer store.Close()
			opts = append(opts, launcher.WithRecorder(store))
		}
	}

	result, runErr := launcher.New(cfg, opts...).Run(cmd.Context())
	code := launcher.ExitCode(result, runErr, cfg.Launcher.PropagateExitCode)
	if runErr == nil && code == 0 {
		return nil
	}
	return &exitError{
		code:   code,
		err:    runErr,
		silent: runErr == nil || errors.Is(runErr, launcher.ErrInterpreterNotFound),
	}
}
