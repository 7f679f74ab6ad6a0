package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder
}

func zstdDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil)
	})
	return decoder
}

// encodeFeatures packs a matrix as a row count followed by, for each row, its
// length and little-endian float32 values, then compresses it with zstd.
func encodeFeatures(matrix [][]float32) []byte {
	size := 4
	for _, row := range matrix {
		size += 4 + 4*len(row)
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(matrix)))
	for _, row := range matrix {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(row)))
		for _, v := range row {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return zstdEncoder().EncodeAll(buf, nil)
}

var errTruncatedFeatures = errors.New("truncated features blob")

// decodeFeatures reverses encodeFeatures. Counts are checked against the
// remaining bytes before anything is allocated.
func decodeFeatures(blob []byte) ([][]float32, error) {
	raw, err := zstdDecoder().DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress features: %w", err)
	}
	fits := func(count uint32) bool {
		return uint64(count)*4 <= uint64(len(raw))
	}
	next := func() (uint32, error) {
		if len(raw) < 4 {
			return 0, errTruncatedFeatures
		}
		v := binary.LittleEndian.Uint32(raw)
		raw = raw[4:]
		return v, nil
	}
	rows, err := next()
	if err != nil {
		return nil, err
	}
	if !fits(rows) {
		return nil, errTruncatedFeatures
	}
	matrix := make([][]float32, 0, rows)
	for range rows {
		n, err := next()
		if err != nil {
			return nil, err
		}
		if !fits(n) {
			return nil, errTruncatedFeatures
		}
		row := make([]float32, n)
		for i := range row {
			bits, err := next()
			if err != nil {
				return nil, err
			}
			row[i] = math.Float32frombits(bits)
		}
		matrix = append(matrix, row)
	}
	if len(raw) != 0 {
		return nil, fmt.Errorf("features blob has %d trailing bytes", len(raw))
	}
	return matrix, nil
}
