package fleurs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"asrprep/internal/config"
	"asrprep/internal/dataset"
	"asrprep/internal/language"
	"asrprep/internal/logging"
	"asrprep/internal/services"
)

// Name identifies the source in logs and metrics.
const Name = "fleurs"

// NativeSamplingRate is the rate of the published recordings.
const NativeSamplingRate = 48000

// Corpus columns.
const (
	ColumnID               = "id"
	ColumnNumSamples       = "num_samples"
	ColumnPath             = "path"
	ColumnRawTranscription = "raw_transcription"
	ColumnGender           = "gender"
	ColumnLangID           = "lang_id"
	ColumnLanguage         = "language"
	ColumnLangGroupID      = "lang_group_id"
)

// Columns lists the corpus columns in published order.
var Columns = []string{
	ColumnID,
	ColumnNumSamples,
	ColumnPath,
	dataset.ColumnAudio,
	dataset.ColumnTranscription,
	ColumnRawTranscription,
	ColumnGender,
	ColumnLangID,
	ColumnLanguage,
	ColumnLangGroupID,
}

// DroppedColumns are removed before raw_transcription becomes transcription.
var DroppedColumns = []string{
	ColumnID,
	ColumnNumSamples,
	ColumnPath,
	dataset.ColumnTranscription,
	ColumnGender,
	ColumnLangID,
	ColumnLanguage,
	ColumnLangGroupID,
}

// partition maps an output split to the published files it is built from.
type partition struct {
	split string
	files []string
}

var partitions = []partition{
	{split: dataset.SplitTrain, files: []string{"train", "dev"}},
	{split: dataset.SplitTest, files: []string{"test"}},
}

// Options configures a Source.
type Options struct {
	BaseURL      string
	Dataset      string
	Config       string
	Revision     string
	Token        string
	Timeout      time.Duration
	WorkDir      string
	SamplingRate int
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Source loads one corpus configuration.
type Source struct {
	hub          *hubClient
	config       string
	workDir      string
	samplingRate int
	logger       *slog.Logger
}

// New builds a Source. A nil HTTPClient gets a client with opts.Timeout.
func New(opts Options) *Source {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	rate := opts.SamplingRate
	if rate <= 0 {
		rate = 16000
	}
	return &Source{
		hub: &hubClient{
			baseURL:  strings.TrimRight(opts.BaseURL, "/"),
			dataset:  strings.Trim(opts.Dataset, "/"),
			revision: opts.Revision,
			token:    opts.Token,
			http:     client,
		},
		config:       strings.ToLower(strings.TrimSpace(opts.Config)),
		workDir:      opts.WorkDir,
		samplingRate: rate,
		logger:       logging.NewComponentLogger(opts.Logger, Name),
	}
}

// NewFromConfig builds a Source that extracts audio under workDir.
func NewFromConfig(cfg *config.Config, workDir string, logger *slog.Logger) *Source {
	return New(Options{
		BaseURL:      cfg.Fleurs.BaseURL,
		Dataset:      cfg.Fleurs.Dataset,
		Config:       cfg.Fleurs.Config,
		Revision:     cfg.Fleurs.Revision,
		Token:        cfg.Fleurs.HFToken,
		Timeout:      time.Duration(cfg.Fleurs.RequestTimeout) * time.Second,
		WorkDir:      workDir,
		SamplingRate: cfg.Audio.SamplingRate,
		Logger:       logger,
	})
}

// Name returns the source name.
func (s *Source) Name() string { return Name }

// Load fetches the train (train+dev) and test partitions and aligns them to
// (audio, transcription) at the configured sampling rate.
func (s *Source) Load(ctx context.Context) (*dataset.Dict[*dataset.Table], error) {
	raw, err := s.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}
	aligned, err := dataset.RemoveColumns(raw, DroppedColumns...)
	if err != nil {
		return nil, err
	}
	aligned, err = dataset.RenameColumn(aligned, ColumnRawTranscription, dataset.ColumnTranscription)
	if err != nil {
		return nil, err
	}
	return dataset.CastAudio(aligned, dataset.ColumnAudio, s.samplingRate)
}

// LoadRaw fetches the partitions with every corpus column.
func (s *Source) LoadRaw(ctx context.Context) (*dataset.Dict[*dataset.Table], error) {
	lang, ok := language.Lookup(s.config)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, Name, "load",
			fmt.Sprintf("unknown configuration %q", s.config), nil)
	}
	ctx = services.WithSource(ctx, Name)

	out := dataset.NewDict[*dataset.Table]()
	for _, part := range partitions {
		tables := make([]*dataset.Table, 0, len(part.files))
		for _, file := range part.files {
			tbl, err := s.loadFile(ctx, lang, file)
			if err != nil {
				return nil, err
			}
			tables = append(tables, tbl)
		}
		merged, err := dataset.Concatenate(tables...)
		if err != nil {
			return nil, err
		}
		out.Set(part.split, merged)
		logging.WithContext(services.WithSplit(ctx, part.split), s.logger).Info("partition loaded",
			logging.String("config", lang.Config),
			logging.Int("records", merged.Len()),
		)
	}
	return out, nil
}

func (s *Source) loadFile(ctx context.Context, lang language.Language, file string) (*dataset.Table, error) {
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()

	body, err := s.hub.open(ctx, fmt.Sprintf("data/%s/%s.tsv", lang.Config, file))
	if err != nil {
		return nil, err
	}
	transcripts, err := parseTranscripts(body)
	body.Close()
	if err != nil {
		return nil, fmt.Errorf("%s %s.tsv: %w", lang.Config, file, err)
	}

	archive, err := s.hub.open(ctx, fmt.Sprintf("data/%s/audio/%s.tar.gz", lang.Config, file))
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.workDir, Name, lang.Config, file)
	files, err := extractArchive(archive, dir)
	archive.Close()
	if err != nil {
		return nil, fmt.Errorf("%s %s.tar.gz: %w", lang.Config, file, err)
	}

	rows := make([]dataset.Row, 0, len(transcripts))
	for _, tr := range transcripts {
		audioPath, ok := files[tr.FileName]
		if !ok {
			return nil, services.Wrap(services.ErrNotFound, Name, "match audio",
				fmt.Sprintf("%s.tar.gz has no member %q", file, tr.FileName), nil)
		}
		rows = append(rows, dataset.Row{
			ColumnID:                    tr.ID,
			ColumnNumSamples:            tr.NumSamples,
			ColumnPath:                  audioPath,
			dataset.ColumnAudio:         dataset.Audio{Path: audioPath, SamplingRate: NativeSamplingRate},
			dataset.ColumnTranscription: tr.Transcription,
			ColumnRawTranscription:      tr.RawTranscription,
			ColumnGender:                tr.Gender,
			ColumnLangID:                lang.ID,
			ColumnLanguage:              lang.Name,
			ColumnLangGroupID:           lang.GroupID,
		})
	}
	logger.Debug("partition file fetched",
		logging.String("file", file),
		logging.Int("records", len(rows)),
		logging.Int("archive_members", len(files)),
		logging.Duration("took", time.Since(start)),
	)
	return dataset.NewTable(Columns, rows)
}
