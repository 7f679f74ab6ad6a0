package store

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestFeaturesCodecRoundTrip(t *testing.T) {
	matrix := [][]float32{{0.5, -1.25, 3}, {}, {float32(math.Pi)}}
	got, err := decodeFeatures(encodeFeatures(matrix))
	if err != nil {
		t.Fatalf("decodeFeatures: %v", err)
	}
	if !reflect.DeepEqual(got, matrix) {
		t.Fatalf("got %v, want %v", got, matrix)
	}
}

func TestDecodeFeaturesRejectsOversizedCounts(t *testing.T) {
	cases := map[string][]uint32{
		"row count":  {math.MaxUint32},
		"row length": {1, math.MaxUint32, 0},
		"short row":  {1, 3, 0, 0},
	}
	for name, words := range cases {
		t.Run(name, func(t *testing.T) {
			var raw []byte
			for _, w := range words {
				raw = binary.LittleEndian.AppendUint32(raw, w)
			}
			_, err := decodeFeatures(zstdEncoder().EncodeAll(raw, nil))
			if !errors.Is(err, errTruncatedFeatures) {
				t.Fatalf("expected truncated features error, got %v", err)
			}
		})
	}
}

func TestDecodeFeaturesRejectsTrailingBytes(t *testing.T) {
	raw := binary.LittleEndian.AppendUint32(nil, 0)
	raw = append(raw, 1, 2)
	if _, err := decodeFeatures(zstdEncoder().EncodeAll(raw, nil)); err == nil {
		t.Fatal("expected error for trailing bytes")
	}
}
