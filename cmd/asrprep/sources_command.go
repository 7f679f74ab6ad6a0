package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"asrprep/internal/language"
	"asrprep/internal/prep"
	"asrprep/internal/report"
	"asrprep/internal/sources/audiofolder"
	"asrprep/internal/sources/fleurs"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var only []string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Load the configured sources and summarize their splits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			workDir, err := os.MkdirTemp(cfg.Paths.WorkDir, "sources-")
			if err != nil {
				return fmt.Errorf("create work directory: %w", err)
			}
			defer os.RemoveAll(workDir)

			assembler := prep.NewFromConfig(cfg, workDir, logger, nil, nil)
			names := assembler.SourceNames()
			if len(only) > 0 {
				for _, name := range only {
					if !slices.Contains(names, name) {
						return fmt.Errorf("unknown source %q (expected %s)", name, strings.Join(names, " or "))
					}
				}
				names = only
			}

			var prober report.Prober
			if probe {
				prober = report.FFprobe(cfg.Audio.FFprobeBinary)
			}

			var stats []report.SplitStats
			for _, name := range names {
				splits, err := assembler.LoadSource(cmd.Context(), name)
				if err != nil {
					return err
				}
				summary, err := report.Summarize(cmd.Context(), name, splits, prober, assembler.Workers())
				if err != nil {
					return err
				}
				stats = append(stats, summary...)
			}

			out := cmd.OutOrStdout()
			if slices.Contains(names, fleurs.Name) {
				fmt.Fprintf(out, "FLEURS %s: %s\n", cfg.Fleurs.Config, language.DisplayName(cfg.Fleurs.Config))
			}
			if slices.Contains(names, audiofolder.Name) {
				fmt.Fprintf(out, "Audio folder: %s\n", cfg.AudioFolder.DataDir)
			}
			fmt.Fprintln(out, renderSourceStats(stats, probe))
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Inspect every audio file with ffprobe")
	cmd.Flags().StringSliceVar(&only, "source", nil, "Limit to the named sources (fleurs, audiofolder)")
	return cmd
}

func renderSourceStats(stats []report.SplitStats, probed bool) string {
	headers := []string{"Source", "Split", "Records"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight}
	if probed {
		headers = append(headers, "Duration", "Mean (s)", "Std dev (s)", "Size", "Sample rates")
		aligns = append(aligns, alignRight, alignRight, alignRight, alignRight, alignLeft)
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		row := []string{s.Source, s.Split, strconv.Itoa(s.Records)}
		if probed {
			rates := make([]string, 0, len(s.SampleRates))
			for _, r := range s.SampleRates {
				rates = append(rates, strconv.Itoa(r))
			}
			row = append(row,
				s.HumanDuration(),
				strconv.FormatFloat(s.MeanSeconds, 'f', 2, 64),
				strconv.FormatFloat(s.StdDevSeconds, 'f', 2, 64),
				s.HumanBytes(),
				strings.Join(rates, ", "),
			)
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}
