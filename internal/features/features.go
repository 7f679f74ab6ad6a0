package features

import (
	"context"
	"errors"
	"fmt"

	"asrprep/internal/dataset"
	"asrprep/internal/services"
)

// Extractor computes a batch of feature matrices (typically log-Mel
// spectrograms) for mono samples at rate.
type Extractor interface {
	Extract(ctx context.Context, samples []float32, rate int) ([][][]float32, error)
}

// Tokenizer converts text to vocabulary ids.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]int, error)
}

// ErrEmptyBatch reports an extractor that returned no feature matrix.
var ErrEmptyBatch = errors.New("feature extractor returned an empty batch")

// PrepareExample maps one record to its input features and labels. The input
// features are the first matrix of the extractor's batch. Audio must be
// decoded.
func PrepareExample(ctx context.Context, record dataset.RawRecord, extractor Extractor, tokenizer Tokenizer) (dataset.ProcessedRecord, error) {
	if extractor == nil || tokenizer == nil {
		return dataset.ProcessedRecord{}, services.Wrap(services.ErrConfiguration, "features", "prepare example", "extractor and tokenizer are required", nil)
	}
	if !record.Audio.Decoded() {
		return dataset.ProcessedRecord{}, fmt.Errorf("prepare example %s: audio not decoded", record.Audio.Path)
	}

	batch, err := extractor.Extract(ctx, record.Audio.Array, record.Audio.SamplingRate)
	if err != nil {
		return dataset.ProcessedRecord{}, services.Wrap(services.ErrExternalTool, "features", "extract", record.Audio.Path, err)
	}
	if len(batch) == 0 {
		return dataset.ProcessedRecord{}, services.Wrap(services.ErrExternalTool, "features", "extract", record.Audio.Path, ErrEmptyBatch)
	}

	labels, err := tokenizer.Tokenize(ctx, record.Transcription)
	if err != nil {
		return dataset.ProcessedRecord{}, services.Wrap(services.ErrExternalTool, "features", "tokenize", record.Audio.Path, err)
	}
	if labels == nil {
		labels = []int{}
	}
	return dataset.ProcessedRecord{InputFeatures: batch[0], Labels: labels}, nil
}
