package preflight

import (
	"context"
	"net/http"

	"asrprep/internal/config"
	"asrprep/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options selects which checks RunAll performs.
type Options struct {
	// TestOnly skips the corpus hub, which a test-only run never contacts.
	TestOnly bool
	// FeaturesOptional marks the extractor and tokenizer commands optional.
	FeaturesOptional bool
	// HTTPClient is used for the hub check; nil uses a short-timeout client.
	HTTPClient *http.Client
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckParentAccess("Output database", cfg.Paths.OutputDB),
		CheckReadableDir("Audio folder", cfg.AudioFolder.DataDir),
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg, opts.FeaturesOptional)) {
		results = append(results, FromStatus(status))
	}

	if !opts.TestOnly {
		results = append(results, CheckHub(ctx, opts.HTTPClient, cfg.Fleurs.BaseURL, cfg.Fleurs.Dataset, cfg.Fleurs.HFToken))
	}
	return results
}

// Failed returns the results that block a run.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
