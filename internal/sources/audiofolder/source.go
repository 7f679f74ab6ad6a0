package audiofolder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"asrprep/internal/config"
	"asrprep/internal/dataset"
	"asrprep/internal/logging"
	"asrprep/internal/services"
)

// Name identifies the source in logs and metrics.
const Name = "audiofolder"

// AudioExtensions lists the file extensions treated as audio.
var AudioExtensions = []string{".wav", ".flac", ".mp3", ".ogg", ".opus", ".m4a", ".webm"}

var splitAliases = map[string]string{
	"train":      dataset.SplitTrain,
	"validation": dataset.SplitValidation,
	"dev":        dataset.SplitValidation,
	"test":       dataset.SplitTest,
	"eval":       dataset.SplitTest,
}

var splitOrder = []string{dataset.SplitTrain, dataset.SplitValidation, dataset.SplitTest}

// Source loads an audio-folder dataset rooted at a directory.
type Source struct {
	dir          string
	samplingRate int
	logger       *slog.Logger
}

// New builds a Source for dir that casts audio to samplingRate.
func New(dir string, samplingRate int, logger *slog.Logger) *Source {
	if samplingRate <= 0 {
		samplingRate = 16000
	}
	return &Source{
		dir:          dir,
		samplingRate: samplingRate,
		logger:       logging.NewComponentLogger(logger, Name),
	}
}

// NewFromConfig builds a Source from the audiofolder section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Source {
	return New(cfg.AudioFolder.DataDir, cfg.Audio.SamplingRate, logger)
}

// Name returns the source name.
func (s *Source) Name() string { return Name }

// Dir returns the dataset root.
func (s *Source) Dir() string { return s.dir }

// Load reads every split and casts audio to the configured rate.
func (s *Source) Load(ctx context.Context) (*dataset.Dict[*dataset.Table], error) {
	raw, err := s.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.CastAudio(raw, dataset.ColumnAudio, s.samplingRate)
}

// LoadRaw reads every split. Audio cells carry no declared rate.
func (s *Source) LoadRaw(ctx context.Context) (*dataset.Dict[*dataset.Table], error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, Name, "load", fmt.Sprintf("dataset directory %s does not exist", s.dir), nil)
		}
		return nil, services.Wrap(services.ErrValidation, Name, "load", s.dir, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, Name, "load", fmt.Sprintf("%s is not a directory", s.dir), nil)
	}
	ctx = services.WithSource(ctx, Name)

	scan, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	out := dataset.NewDict[*dataset.Table]()
	if scan.audioCount() == 0 {
		logging.WithContext(ctx, s.logger).Warn("dataset directory has no audio files", logging.String("dir", s.dir))
		for _, split := range []string{dataset.SplitTrain, dataset.SplitTest} {
			empty, _ := dataset.NewTable([]string{dataset.ColumnAudio, dataset.ColumnTranscription}, nil)
			out.Set(split, empty)
		}
		return out, nil
	}

	columns, lookup, err := mergeMetadata(scan.metadata)
	if err != nil {
		return nil, err
	}
	for _, file := range slices.Sorted(maps.Keys(lookup)) {
		if _, err := os.Stat(file); err != nil {
			return nil, services.Wrap(services.ErrNotFound, Name, "match metadata",
				fmt.Sprintf("metadata lists missing file %s", file), nil)
		}
	}
	for _, split := range splitOrder {
		files, ok := scan.splits[split]
		if !ok {
			continue
		}
		tbl, err := buildTable(files, columns, lookup)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", split, err)
		}
		out.Set(split, tbl)
		logging.WithContext(services.WithSplit(ctx, split), s.logger).Info("split loaded",
			logging.Int("records", tbl.Len()),
			logging.Bool("metadata", len(scan.metadata) > 0),
		)
	}
	return out, nil
}

type scanResult struct {
	splits   map[string][]string
	metadata []string
}

func (r scanResult) audioCount() int {
	n := 0
	for _, files := range r.splits {
		n += len(files)
	}
	return n
}

func (s *Source) scan(ctx context.Context) (scanResult, error) {
	splitDirs, err := s.splitDirs()
	if err != nil {
		return scanResult{}, err
	}
	result := scanResult{splits: make(map[string][]string)}
	for _, split := range splitDirs {
		result.splits[split.name] = nil
	}

	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if name == MetadataCSV || name == MetadataJSONL {
			result.metadata = append(result.metadata, path)
			return nil
		}
		if !isAudio(name) {
			return nil
		}
		split, ok := assignSplit(s.dir, path, splitDirs)
		if !ok {
			s.logger.Debug("audio file outside split directories ignored", logging.String("path", path))
			return nil
		}
		result.splits[split] = append(result.splits[split], path)
		return nil
	})
	if err != nil {
		return scanResult{}, fmt.Errorf("scan %s: %w", s.dir, err)
	}
	for split := range result.splits {
		slices.Sort(result.splits[split])
	}
	slices.Sort(result.metadata)
	return result, nil
}

type splitDir struct {
	dir  string
	name string
}

func (s *Source) splitDirs() ([]splitDir, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}
	var dirs []splitDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if split, ok := splitAliases[strings.ToLower(entry.Name())]; ok {
			dirs = append(dirs, splitDir{dir: entry.Name(), name: split})
		}
	}
	return dirs, nil
}

// assignSplit maps a file to its split. Without split directories every file
// belongs to train.
func assignSplit(root, path string, dirs []splitDir) (string, bool) {
	if len(dirs) == 0 {
		return dataset.SplitTrain, true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	top, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	for _, d := range dirs {
		if d.dir == top {
			return d.name, true
		}
	}
	return "", false
}

func isAudio(name string) bool {
	return slices.Contains(AudioExtensions, strings.ToLower(filepath.Ext(name)))
}

// mergeMetadata reads every metadata file. All files must declare the same
// columns; the first file's column order wins.
func mergeMetadata(paths []string) ([]string, map[string]map[string]any, error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}
	var columns []string
	lookup := make(map[string]map[string]any)
	for _, path := range paths {
		md, err := readMetadata(path)
		if err != nil {
			return nil, nil, err
		}
		if columns == nil {
			columns = md.columns
		} else if !sameColumns(columns, md.columns) {
			return nil, nil, services.Wrap(services.ErrSchema, Name, "merge metadata",
				fmt.Sprintf("%s declares %v, want %v", path, md.columns, columns), nil)
		}
		for file, row := range md.rows {
			if _, dup := lookup[file]; dup {
				return nil, nil, services.Wrap(services.ErrSchema, Name, "merge metadata",
					fmt.Sprintf("%s described by more than one metadata file", file), nil)
			}
			lookup[file] = row
		}
	}
	return columns, lookup, nil
}

func buildTable(files, metaColumns []string, lookup map[string]map[string]any) (*dataset.Table, error) {
	columns := append([]string{dataset.ColumnAudio}, metaColumns...)
	rows := make([]dataset.Row, 0, len(files))
	for _, file := range files {
		row := dataset.Row{dataset.ColumnAudio: dataset.Audio{Path: file}}
		if lookup != nil {
			meta, ok := lookup[file]
			if !ok {
				return nil, services.Wrap(services.ErrSchema, Name, "match metadata",
					fmt.Sprintf("%s has no metadata row", file), nil)
			}
			for _, col := range metaColumns {
				row[col] = meta[col]
			}
		}
		rows = append(rows, row)
	}
	return dataset.NewTable(columns, rows)
}
