package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegCommand is the default ffmpeg executable name.
const FFmpegCommand = "ffmpeg"

// CommandRunner executes a binary and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpegDecoder decodes audio files to mono float32 samples through ffmpeg.
type FFmpegDecoder struct {
	binary        string
	commandRunner CommandRunner
}

// NewFFmpegDecoder creates a decoder using the given ffmpeg binary.
func NewFFmpegDecoder(binary string) *FFmpegDecoder {
	if strings.TrimSpace(binary) == "" {
		binary = FFmpegCommand
	}
	return &FFmpegDecoder{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (d *FFmpegDecoder) WithCommandRunner(runner CommandRunner) {
	d.commandRunner = runner
}

// Decode reads path and returns mono samples resampled to rate.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string, rate int) ([]float32, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("decode audio: empty path")
	}
	if rate <= 0 {
		return nil, fmt.Errorf("decode audio: invalid sampling rate %d", rate)
	}
	output, err := d.run(ctx, d.binary, BuildDecodeArgs(path, rate)...)
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}
	samples, err := DecodeFloat32LE(output)
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}
	return samples, nil
}

// BuildDecodeArgs returns the ffmpeg arguments that write mono float32 PCM at
// rate to stdout.
func BuildDecodeArgs(path string, rate int) []string {
	return ffmpeg.Input(path, ffmpeg.KwArgs{
		"hide_banner": "",
		"loglevel":    "error",
		"nostdin":     "",
	}).
		Output("pipe:", ffmpeg.KwArgs{
			"f":  "f32le",
			"ac": 1,
			"ar": rate,
			"vn": "",
			"sn": "",
			"dn": "",
		}).
		GetArgs()
}

func (d *FFmpegDecoder) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if d.commandRunner != nil {
		return d.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
