package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"joylaunch/internal/deps"
	"joylaunch/internal/preflight"
)

type doctorReport struct {
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Ready        bool               `json:"ready"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the interpreter, manifest, target and environment are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := doctorReport{
				Checks:       preflight.RunAll(cmd.Context(), cfg, preflight.WithExecutor(ctx.executor)),
				Dependencies: preflight.CheckSystemDeps(cfg),
			}
			report.Ready = !preflight.Failed(report.Checks)

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				renderDoctor(cmd, report)
			}

			if !report.Ready {
				return &exitError{code: 1, silent: true}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderDoctor(cmd *cobra.Command, report doctorReport) {
	p := newStatusPrinter(cmd.OutOrStdout())

	rows := make([][]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		kind := passedKind(check.Passed)
		rows = append(rows, []string{
			check.Name,
			p.paint(kind.String(), kind),
			check.Detail,
		})
	}
	fmt.Fprintln(p.out, renderTable([]string{"Check", "Status", "Detail"}, rows))

	depRows := make([][]string, 0, len(report.Dependencies))
	for _, dep := range report.Dependencies {
		kind := statusOK
		detail := "found on PATH"
		if !dep.Available {
			kind = statusError
			if dep.Optional {
				kind = statusWarn
			}
			detail = dep.Detail
		}
		depRows = append(depRows, []string{
			dep.Command,
			p.paint(kind.String(), kind),
			yesNo(dep.Optional),
			detail,
		})
	}
	fmt.Fprintln(p.out, renderTable([]string{"Command", "Status", "Optional", "Detail"}, depRows))

	if report.Ready {
		p.line("Result", statusOK, "ready to launch")
	} else {
		p.line("Result", statusError, "fix the failing checks above")
	}
}
