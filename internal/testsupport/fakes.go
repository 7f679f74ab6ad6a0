package testsupport

import (
	"context"
	"sync"
)

// FakeDecoder returns a fixed number of zero samples per file and records the
// requested rates.
type FakeDecoder struct {
	Samples int

	mu    sync.Mutex
	rates []int
}

// Decode implements dataset.Decoder.
func (d *FakeDecoder) Decode(_ context.Context, _ string, rate int) ([]float32, error) {
	d.mu.Lock()
	d.rates = append(d.rates, rate)
	d.mu.Unlock()
	n := d.Samples
	if n <= 0 {
		n = 160
	}
	return make([]float32, n), nil
}

// Rates returns every rate requested so far.
func (d *FakeDecoder) Rates() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.rates...)
}

// FakeExtractor returns one 2x2 feature matrix derived from the sample count.
type FakeExtractor struct{}

// Extract implements features.Extractor.
func (FakeExtractor) Extract(_ context.Context, samples []float32, rate int) ([][][]float32, error) {
	return [][][]float32{{{float32(len(samples)), float32(rate)}, {0, 1}}}, nil
}

// FakeTokenizer returns the byte values of the text.
type FakeTokenizer struct{}

// Tokenize implements features.Tokenizer.
func (FakeTokenizer) Tokenize(_ context.Context, text string) ([]int, error) {
	ids := make([]int, len(text))
	for i := range len(text) {
		ids[i] = int(text[i])
	}
	return ids, nil
}
