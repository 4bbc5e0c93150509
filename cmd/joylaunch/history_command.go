package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"joylaunch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent launches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled (history.enabled = false)")
				return nil
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Run", "Python", "Env created", "Failed steps", "Target exit", "Duration"},
				historyRows(runs),
				text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignLeft,
				text.AlignRight, text.AlignRight, text.AlignRight,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		python := run.InterpreterVersion
		if python == "" {
			python = "not found"
		}
		targetExit := strconv.Itoa(run.TargetExitCode)
		if run.TargetExitCode < 0 {
			targetExit = "-"
		}
		if run.Aborted {
			targetExit += " (aborted)"
		}
		rows = append(rows, []string{
			humanize.Time(run.StartedAt),
			shortRunID(run.RunID),
			python,
			yesNo(run.EnvironmentCreated),
			strconv.Itoa(run.FailedSteps()),
			targetExit,
			run.Duration().Round(10 * time.Millisecond).String(),
		})
	}
	return rows
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
