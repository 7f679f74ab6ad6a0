package prep

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"asrprep/internal/config"
	"asrprep/internal/dataset"
	"asrprep/internal/features"
	"asrprep/internal/logging"
	"asrprep/internal/media/audio"
	"asrprep/internal/metrics"
	"asrprep/internal/services"
	"asrprep/internal/sources/audiofolder"
	"asrprep/internal/sources/fleurs"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 2

// DefaultSamplingRate is the rate every record is delivered at.
const DefaultSamplingRate = 16000

// UnifiedSplits are the splits built from both sources.
var UnifiedSplits = []string{dataset.SplitTrain, dataset.SplitTest}

// Source loads a dataset aligned to (audio, transcription).
type Source interface {
	Name() string
	Load(ctx context.Context) (*dataset.Dict[*dataset.Table], error)
}

// ProgressFunc receives per-split progress. It is called from worker
// goroutines.
type ProgressFunc func(split string, done, total int)

// Options configures an Assembler.
type Options struct {
	// Corpus is the remote corpus (records first in every split).
	Corpus Source
	// Local is the local audio folder.
	Local        Source
	Decoder      dataset.Decoder
	SamplingRate int
	Workers      int
	Logger       *slog.Logger
	Metrics      *metrics.Recorder
	Progress     ProgressFunc
}

// Assembler builds the prepared dataset dictionaries.
type Assembler struct {
	corpus       Source
	local        Source
	decoder      dataset.Decoder
	samplingRate int
	workers      int
	logger       *slog.Logger
	metrics      *metrics.Recorder
	progress     ProgressFunc
}

// New creates an Assembler.
func New(opts Options) *Assembler {
	rate := opts.SamplingRate
	if rate <= 0 {
		rate = DefaultSamplingRate
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Assembler{
		corpus:       opts.Corpus,
		local:        opts.Local,
		decoder:      opts.Decoder,
		samplingRate: rate,
		workers:      workers,
		logger:       logging.NewComponentLogger(opts.Logger, "prep"),
		metrics:      opts.Metrics,
		progress:     opts.Progress,
	}
}

// NewFromConfig wires the FLEURS corpus, the audio folder and the ffmpeg
// decoder from cfg. Downloads are extracted under workDir.
func NewFromConfig(cfg *config.Config, workDir string, logger *slog.Logger, recorder *metrics.Recorder, progress ProgressFunc) *Assembler {
	return New(Options{
		Corpus:       fleurs.NewFromConfig(cfg, workDir, logger),
		Local:        audiofolder.NewFromConfig(cfg, logger),
		Decoder:      audio.NewFFmpegDecoder(cfg.Audio.FFmpegBinary),
		SamplingRate: cfg.Audio.SamplingRate,
		Workers:      cfg.Processing.Workers,
		Logger:       logger,
		Metrics:      recorder,
		Progress:     progress,
	})
}

// Workers returns the configured worker count.
func (a *Assembler) Workers() int { return a.workers }

// PrepareASRDatasets returns train and test, each the corpus split followed by
// the local split, transformed to (input_features, labels).
func (a *Assembler) PrepareASRDatasets(ctx context.Context, extractor features.Extractor, tokenizer features.Tokenizer) (*dataset.Dict[[]dataset.ProcessedRecord], error) {
	ctx = ensureRunID(ctx)
	logger := logging.WithContext(ctx, a.logger)
	start := time.Now()
	logger.Info("preparing datasets", logging.Int("workers", a.workers))

	unified, err := a.Unified(ctx)
	if err != nil {
		return nil, err
	}
	out, err := a.TransformAll(ctx, unified, extractor, tokenizer)
	if err != nil {
		return nil, err
	}
	a.metrics.MarkSuccess(time.Now())
	logger.Info("datasets prepared", logging.Duration("took", time.Since(start)))
	return out, nil
}

// PrepareASRTestDataset returns only the local test split, transformed.
func (a *Assembler) PrepareASRTestDataset(ctx context.Context, extractor features.Extractor, tokenizer features.Tokenizer) (*dataset.Dict[[]dataset.ProcessedRecord], error) {
	ctx = ensureRunID(ctx)
	logger := logging.WithContext(ctx, a.logger)
	start := time.Now()
	logger.Info("preparing test dataset", logging.Int("workers", a.workers))

	local, err := a.load(ctx, a.local)
	if err != nil {
		return nil, err
	}
	test, err := requireSplit(local, a.local.Name(), dataset.SplitTest)
	if err != nil {
		return nil, err
	}
	only := dataset.NewDict[*dataset.Table]()
	only.Set(dataset.SplitTest, test)

	out, err := a.TransformAll(ctx, only, extractor, tokenizer)
	if err != nil {
		return nil, err
	}
	a.metrics.MarkSuccess(time.Now())
	logger.Info("test dataset prepared", logging.Duration("took", time.Since(start)))
	return out, nil
}

// Unified loads both sources and concatenates train and test.
func (a *Assembler) Unified(ctx context.Context) (*dataset.Dict[*dataset.Table], error) {
	corpus, err := a.load(ctx, a.corpus)
	if err != nil {
		return nil, err
	}
	local, err := a.load(ctx, a.local)
	if err != nil {
		return nil, err
	}
	return Unify(corpus, a.corpus.Name(), local, a.local.Name())
}

// LoadSource loads one named source ("fleurs" or "audiofolder").
func (a *Assembler) LoadSource(ctx context.Context, name string) (*dataset.Dict[*dataset.Table], error) {
	for _, src := range []Source{a.corpus, a.local} {
		if src != nil && src.Name() == name {
			return a.load(ctx, src)
		}
	}
	return nil, services.Wrap(services.ErrConfiguration, "prep", "load source", fmt.Sprintf("unknown source %q", name), nil)
}

// SourceNames lists the configured sources in merge order.
func (a *Assembler) SourceNames() []string {
	var names []string
	for _, src := range []Source{a.corpus, a.local} {
		if src != nil {
			names = append(names, src.Name())
		}
	}
	return names
}

func (a *Assembler) load(ctx context.Context, src Source) (*dataset.Dict[*dataset.Table], error) {
	if src == nil {
		return nil, services.Wrap(services.ErrConfiguration, "prep", "load source", "source not configured", nil)
	}
	ctx = services.WithSource(services.WithStage(ctx, "load"), src.Name())
	start := time.Now()
	splits, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	counts := make([]any, 0, splits.Len())
	for _, name := range splits.Names() {
		tbl, _ := splits.Get(name)
		a.metrics.SetSourceRecords(src.Name(), name, tbl.Len())
		counts = append(counts, logging.Int(name, tbl.Len()))
	}
	logging.WithContext(ctx, a.logger).Info("source loaded",
		logging.Duration("took", time.Since(start)),
		slog.Group("records", counts...),
	)
	return splits, nil
}

// Unify concatenates the train and test splits of two sources, first's
// records first. Both tables are reduced to their common columns in first's
// order before concatenation.
func Unify(first *dataset.Dict[*dataset.Table], firstName string, second *dataset.Dict[*dataset.Table], secondName string) (*dataset.Dict[*dataset.Table], error) {
	out := dataset.NewDict[*dataset.Table]()
	for _, split := range UnifiedSplits {
		a, err := requireSplit(first, firstName, split)
		if err != nil {
			return nil, err
		}
		b, err := requireSplit(second, secondName, split)
		if err != nil {
			return nil, err
		}
		common := intersect(a.Columns(), b.Columns())
		if a, err = a.SelectColumns(common...); err != nil {
			return nil, err
		}
		if b, err = b.SelectColumns(common...); err != nil {
			return nil, err
		}
		merged, err := dataset.Concatenate(a, b)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", split, err)
		}
		out.Set(split, merged)
	}
	return out, nil
}

// TransformAll decodes and transforms every record of every split. Splits run
// one after another; records within a split share the worker pool.
func (a *Assembler) TransformAll(ctx context.Context, splits *dataset.Dict[*dataset.Table], extractor features.Extractor, tokenizer features.Tokenizer) (*dataset.Dict[[]dataset.ProcessedRecord], error) {
	ctx = services.WithStage(ctx, "transform")
	return dataset.TransformSplits(splits, func(split string, tbl *dataset.Table) ([]dataset.ProcessedRecord, error) {
		tbl, err := tbl.SelectColumns(dataset.ColumnAudio, dataset.ColumnTranscription)
		if err != nil {
			return nil, err
		}
		records, err := tbl.Records()
		if err != nil {
			return nil, err
		}
		return a.transformSplit(services.WithSplit(ctx, split), split, records, extractor, tokenizer)
	})
}

func (a *Assembler) transformSplit(ctx context.Context, split string, records []dataset.RawRecord, extractor features.Extractor, tokenizer features.Tokenizer) ([]dataset.ProcessedRecord, error) {
	logger := logging.WithContext(ctx, a.logger)
	total := len(records)
	var done atomic.Int64
	start := time.Now()

	out, err := Map(ctx, records, a.workers, func(ctx context.Context, i int, rec dataset.RawRecord) (dataset.ProcessedRecord, error) {
		began := time.Now()
		processed, err := a.transformRecord(ctx, rec, extractor, tokenizer)
		a.metrics.ObserveRecord(split, time.Since(began), err)
		if err != nil {
			return dataset.ProcessedRecord{}, fmt.Errorf("record %d (%s): %w", i, rec.Audio.Path, err)
		}
		n := int(done.Add(1))
		if a.progress != nil {
			a.progress(split, n, total)
		}
		return processed, nil
	})
	if err != nil {
		logger.Error("transform failed", logging.Error(err))
		return nil, err
	}
	logger.Info("split transformed",
		logging.Int("records", total),
		logging.Duration("took", time.Since(start)),
	)
	if out == nil {
		out = []dataset.ProcessedRecord{}
	}
	return out, nil
}

func (a *Assembler) transformRecord(ctx context.Context, rec dataset.RawRecord, extractor features.Extractor, tokenizer features.Tokenizer) (dataset.ProcessedRecord, error) {
	decoded, err := dataset.Materialize(ctx, a.decoder, rec.Audio, a.samplingRate)
	if err != nil {
		return dataset.ProcessedRecord{}, services.Wrap(services.ErrExternalTool, "prep", "decode audio", rec.Audio.Path, err)
	}
	rec.Audio = decoded
	return features.PrepareExample(ctx, rec, extractor, tokenizer)
}

func requireSplit(d *dataset.Dict[*dataset.Table], source, split string) (*dataset.Table, error) {
	tbl, ok := d.Get(split)
	if !ok {
		return nil, services.Wrap(services.ErrSchema, "prep", "select split",
			fmt.Sprintf("source %s has no %s split (have %v)", source, split, d.Names()), nil)
	}
	return tbl, nil
}

func intersect(first, second []string) []string {
	out := make([]string, 0, len(first))
	for _, col := range first {
		if slices.Contains(second, col) {
			out = append(out, col)
		}
	}
	return out
}

func ensureRunID(ctx context.Context) context.Context {
	if _, ok := services.RunIDFromContext(ctx); ok {
		return ctx
	}
	return services.WithRunID(ctx, uuid.NewString())
}
