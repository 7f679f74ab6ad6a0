// Package audio decodes and resamples speech audio for feature extraction.
//
// FFmpegDecoder turns any container ffmpeg understands into mono float32
// samples at a requested rate; Resample converts samples that are already in
// memory. Both sources of the preparation pipeline rely on these so every
// array handed to the feature extractor carries the configured sampling rate.
package audio
