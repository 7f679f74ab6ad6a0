// Package report summarizes loaded sources: record counts per split and,
// when probing is enabled, duration statistics and on-disk size.
package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"asrprep/internal/dataset"
	"asrprep/internal/media/ffprobe"
	"asrprep/internal/prep"
)

// Prober inspects one audio file.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// FFprobe returns a Prober that runs binary.
func FFprobe(binary string) Prober {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}

// SplitStats describes one split of one source.
type SplitStats struct {
	Source        string
	Split         string
	Records       int
	Probed        bool
	MeanSeconds   float64
	StdDevSeconds float64
	TotalSeconds  float64
	TotalBytes    int64
	SampleRates   []int
}

// HumanBytes renders TotalBytes ("12 MB").
func (s SplitStats) HumanBytes() string {
	if !s.Probed {
		return "-"
	}
	return humanize.Bytes(uint64(max(s.TotalBytes, 0)))
}

// HumanDuration renders TotalSeconds rounded to the second.
func (s SplitStats) HumanDuration() string {
	if !s.Probed {
		return "-"
	}
	return (time.Duration(s.TotalSeconds * float64(time.Second))).Round(time.Second).String()
}

// Summarize counts records per split. With a non-nil probe every audio file is
// inspected on up to workers goroutines.
func Summarize(ctx context.Context, source string, splits *dataset.Dict[*dataset.Table], probe Prober, workers int) ([]SplitStats, error) {
	out := make([]SplitStats, 0, splits.Len())
	for _, name := range splits.Names() {
		tbl, _ := splits.Get(name)
		stats := SplitStats{Source: source, Split: name, Records: tbl.Len()}
		if probe != nil {
			if err := probeSplit(ctx, tbl, probe, workers, &stats); err != nil {
				return nil, fmt.Errorf("%s/%s: %w", source, name, err)
			}
		}
		out = append(out, stats)
	}
	return out, nil
}

type probeResult struct {
	seconds float64
	bytes   int64
	rate    int
}

func probeSplit(ctx context.Context, tbl *dataset.Table, probe Prober, workers int, stats *SplitStats) error {
	paths := make([]string, 0, tbl.Len())
	for i := range tbl.Len() {
		value, ok := tbl.Row(i)[dataset.ColumnAudio].(dataset.Audio)
		if !ok {
			return fmt.Errorf("row %d has no audio column", i)
		}
		paths = append(paths, value.Path)
	}

	results, err := prep.Map(ctx, paths, workers, func(ctx context.Context, _ int, path string) (probeResult, error) {
		res, err := probe(ctx, path)
		if err != nil {
			return probeResult{}, err
		}
		size := res.SizeBytes()
		if size <= 0 {
			if info, statErr := os.Stat(path); statErr == nil {
				size = info.Size()
			}
		}
		seconds := res.DurationSeconds()
		if math.IsNaN(seconds) {
			seconds = 0
		}
		return probeResult{seconds: seconds, bytes: size, rate: res.AudioSampleRate()}, nil
	})
	if err != nil {
		return err
	}

	stats.Probed = true
	durations := make([]float64, len(results))
	for i, r := range results {
		durations[i] = r.seconds
		stats.TotalSeconds += r.seconds
		stats.TotalBytes += r.bytes
		if r.rate > 0 && !slices.Contains(stats.SampleRates, r.rate) {
			stats.SampleRates = append(stats.SampleRates, r.rate)
		}
	}
	slices.Sort(stats.SampleRates)
	if len(durations) > 0 {
		mean, std := stat.MeanStdDev(durations, nil)
		if math.IsNaN(std) {
			std = 0
		}
		stats.MeanSeconds, stats.StdDevSeconds = mean, std
	}
	return nil
}
