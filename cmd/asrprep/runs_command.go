package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"asrprep/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored preparation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				summaries, err := st.Runs(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					fmt.Fprintln(out, "No runs stored")
					return nil
				}
				fmt.Fprintln(out, renderRuns(summaries))
				return nil
			})
		},
	}

	runsCmd.AddCommand(newRunsDeleteCommand(ctx))
	return runsCmd
}

func newRunsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run and its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(st *store.Store) error {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
				return nil
			})
		},
	}
}

func renderRuns(summaries []store.RunSummary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		splits := make([]string, 0, len(s.Splits))
		for _, c := range s.Splits {
			splits = append(splits, fmt.Sprintf("%s=%d", c.Split, c.Records))
		}
		source := s.SourceConfig
		if source == "" {
			source = "-"
		}
		rows = append(rows, []string{
			s.ID,
			s.Kind,
			s.CreatedAt.Local().Format(time.DateTime),
			source,
			strings.Join(splits, " "),
			strconv.Itoa(s.Total()),
		})
	}
	return renderTable(
		[]string{"Run", "Kind", "Created", "Config", "Splits", "Records"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
