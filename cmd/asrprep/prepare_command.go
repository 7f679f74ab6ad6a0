package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"asrprep/internal/config"
	"asrprep/internal/dataset"
	"asrprep/internal/features"
	"asrprep/internal/logging"
	"asrprep/internal/metrics"
	"asrprep/internal/preflight"
	"asrprep/internal/prep"
	"asrprep/internal/services"
	"asrprep/internal/store"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var testOnly bool
	var outputPath string
	var metricsPath string
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build the processed train/test dataset and store it",
		Long: "Load the FLEURS corpus and the local audio folder, align their schemas, " +
			"concatenate train and test, extract features and labels for every record, " +
			"and store the result in the output database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(outputPath) != "" {
				expanded, err := config.ExpandPath(outputPath)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				cfg.Paths.OutputDB = expanded
			}
			if strings.TrimSpace(metricsPath) != "" {
				expanded, err := config.ExpandPath(metricsPath)
				if err != nil {
					return fmt.Errorf("resolve metrics path: %w", err)
				}
				cfg.Metrics.Textfile = expanded
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			extractor, tokenizer, err := commandCollaborators(cfg)
			if err != nil {
				return err
			}

			if !skipChecks {
				results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{TestOnly: testOnly})
				if err := preflightError(results); err != nil {
					return err
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runID := store.NewRunID()
			runCtx = services.WithRunID(runCtx, runID)
			workDir := filepath.Join(cfg.Paths.WorkDir, runID)
			if err := os.MkdirAll(workDir, 0o755); err != nil {
				return fmt.Errorf("create work directory: %w", err)
			}
			defer os.RemoveAll(workDir)

			recorder := metrics.NewRecorder()
			progress, finish := progressFunc(cmd.ErrOrStderr())
			assembler := prep.NewFromConfig(cfg, workDir, logger, recorder, progress)

			kind := store.KindFull
			var prepared *dataset.Dict[[]dataset.ProcessedRecord]
			if testOnly {
				kind = store.KindTestOnly
				prepared, err = assembler.PrepareASRTestDataset(runCtx, extractor, tokenizer)
			} else {
				prepared, err = assembler.PrepareASRDatasets(runCtx, extractor, tokenizer)
			}
			finish()
			if metricsErr := writeMetrics(cfg, recorder); metricsErr != nil {
				logging.WithContext(runCtx, logger).Warn("metrics textfile not written", logging.Error(metricsErr))
			}
			if err != nil {
				return err
			}

			run, err := saveRun(runCtx, cfg.Paths.OutputDB, store.Run{
				ID:           runID,
				Kind:         kind,
				SourceConfig: cfg.Fleurs.Config,
			}, prepared)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s stored in %s\n", run.ID, cfg.Paths.OutputDB)
			fmt.Fprintln(out, renderPreparedSummary(prepared))
			return nil
		},
	}

	cmd.Flags().BoolVar(&testOnly, "test-only", false, "Prepare only the local test split")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output database path (overrides paths.output_db)")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Do not run preflight checks")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Prometheus textfile path (overrides metrics.textfile)")
	return cmd
}

func commandCollaborators(cfg *config.Config) (*features.CommandExtractor, *features.CommandTokenizer, error) {
	if err := cfg.ValidateFeatureCommands(); err != nil {
		return nil, nil, err
	}
	extractor, err := features.NewCommandExtractor(cfg.Features.ExtractorCommand)
	if err != nil {
		return nil, nil, fmt.Errorf("feature extractor: %w", err)
	}
	tokenizer, err := features.NewCommandTokenizer(cfg.Features.TokenizerCommand)
	if err != nil {
		return nil, nil, fmt.Errorf("tokenizer: %w", err)
	}
	return extractor, tokenizer, nil
}

func saveRun(ctx context.Context, path string, run store.Run, prepared *dataset.Dict[[]dataset.ProcessedRecord]) (store.Run, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return store.Run{}, fmt.Errorf("create output directory: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return store.Run{}, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return st.Save(ctx, run, prepared)
}

func writeMetrics(cfg *config.Config, recorder *metrics.Recorder) error {
	if strings.TrimSpace(cfg.Metrics.Textfile) == "" {
		return nil
	}
	return recorder.WriteTextfile(cfg.Metrics.Textfile)
}

func renderPreparedSummary(prepared *dataset.Dict[[]dataset.ProcessedRecord]) string {
	rows := make([][]string, 0, prepared.Len())
	for _, name := range prepared.Names() {
		records, _ := prepared.Get(name)
		frames, tokens := 0, 0
		for _, rec := range records {
			frames += len(rec.InputFeatures)
			tokens += len(rec.Labels)
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(len(records)),
			strconv.Itoa(frames),
			strconv.Itoa(tokens),
		})
	}
	return renderTable(
		[]string{"Split", "Records", "Feature rows", "Label tokens"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}
