package main

import (
	"github.com/spf13/cobra"

	"joylaunch/internal/command"
)

type rootOption func(*commandContext)

// withExecutor replaces the executor used for interpreter, pip and target
// invocations.
func withExecutor(exec command.Executor) rootOption {
	return func(c *commandContext) {
		c.executor = exec
	}
}

func newRootCommand(opts ...rootOption) *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)
	for _, opt := range opts {
		opt(ctx)
	}

	rootCmd := &cobra.Command{
		Use:           "joylaunch",
		Short:         "Set up a Python virtual environment and run the captioning tool",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, ctx)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.overrides.Interpreter, "python", "", "Python interpreter command or path")
	flags.StringVar(&ctx.overrides.EnvironmentDir, "venv", "", "Virtual environment directory")
	flags.StringVar(&ctx.overrides.Requirements, "requirements", "", "Dependency manifest passed to pip install -r")
	flags.StringVar(&ctx.overrides.Target, "target", "", "Python program to run")
	bindLaunchFlags(rootCmd, ctx)

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
