package dataset

import (
	"context"
	"fmt"

	"asrprep/internal/media/audio"
)

// Column names shared by every source after alignment.
const (
	ColumnAudio         = "audio"
	ColumnTranscription = "transcription"
	ColumnInputFeatures = "input_features"
	ColumnLabels        = "labels"
)

// Split names.
const (
	SplitTrain      = "train"
	SplitTest       = "test"
	SplitValidation = "validation"
)

// Audio is one audio cell. Until decoded, Array is nil and SamplingRate is the
// rate the cell will be decoded at.
type Audio struct {
	Path         string
	Array        []float32
	SamplingRate int
}

// Decoded reports whether the samples are present in memory.
func (a Audio) Decoded() bool {
	return a.Array != nil
}

// RawRecord is an aligned (audio, transcription) pair.
type RawRecord struct {
	Audio         Audio
	Transcription string
}

// ProcessedRecord holds model-ready features for one example.
type ProcessedRecord struct {
	InputFeatures [][]float32
	Labels        []int
}

// Decoder turns an audio file into mono samples at the requested rate.
type Decoder interface {
	Decode(ctx context.Context, path string, rate int) ([]float32, error)
}

// Materialize returns a with samples present at rate. Lazy cells are decoded
// at their declared SamplingRate, or at rate when none is declared; samples
// at another rate are then resampled to rate.
func Materialize(ctx context.Context, decoder Decoder, a Audio, rate int) (Audio, error) {
	if rate <= 0 {
		return Audio{}, fmt.Errorf("materialize %s: invalid sampling rate %d", a.Path, rate)
	}
	if a.Decoded() {
		return a.cast(rate)
	}
	if decoder == nil {
		return Audio{}, fmt.Errorf("materialize %s: no decoder configured", a.Path)
	}
	decodeRate := rate
	if a.SamplingRate > 0 {
		decodeRate = a.SamplingRate
	}
	samples, err := decoder.Decode(ctx, a.Path, decodeRate)
	if err != nil {
		return Audio{}, err
	}
	if samples == nil {
		samples = []float32{}
	}
	return Audio{Path: a.Path, Array: samples, SamplingRate: decodeRate}.cast(rate)
}

// cast re-declares the rate of a. Decoded samples are resampled in memory.
func (a Audio) cast(rate int) (Audio, error) {
	if !a.Decoded() || a.SamplingRate == rate {
		a.SamplingRate = rate
		return a, nil
	}
	resampled, err := audio.Resample(a.Array, a.SamplingRate, rate)
	if err != nil {
		return Audio{}, err
	}
	return Audio{Path: a.Path, Array: resampled, SamplingRate: rate}, nil
}
