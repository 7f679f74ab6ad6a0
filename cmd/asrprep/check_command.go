package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"asrprep/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var testOnly bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, external programs and hub access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{TestOnly: testOnly})
			fmt.Fprintln(cmd.OutOrStdout(), renderChecks(results))
			return preflightError(results)
		},
	}

	cmd.Flags().BoolVar(&testOnly, "test-only", false, "Skip checks only a full run needs")
	return cmd
}

func renderChecks(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		switch {
		case r.Passed:
		case r.Optional:
			status = "warn"
		default:
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}

func preflightError(results []preflight.Result) error {
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(names, "; "))
}
