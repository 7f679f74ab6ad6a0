package features

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes name with args, feeds stdin and returns stdout.
type CommandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

type extractRequest struct {
	SamplingRate int       `json:"sampling_rate"`
	Array        []float32 `json:"array"`
}

type extractResponse struct {
	InputFeatures [][][]float32 `json:"input_features"`
}

type tokenizeRequest struct {
	Text string `json:"text"`
}

type tokenizeResponse struct {
	InputIDs []int `json:"input_ids"`
}

// CommandExtractor runs an external feature extractor once per record.
type CommandExtractor struct {
	command       []string
	commandRunner CommandRunner
}

// NewCommandExtractor creates an extractor for argv command.
func NewCommandExtractor(command []string) (*CommandExtractor, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, errors.New("extractor command is empty")
	}
	return &CommandExtractor{command: append([]string(nil), command...)}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *CommandExtractor) WithCommandRunner(runner CommandRunner) {
	e.commandRunner = runner
}

// Extract sends {"sampling_rate", "array"} and reads {"input_features"}.
func (e *CommandExtractor) Extract(ctx context.Context, samples []float32, rate int) ([][][]float32, error) {
	if samples == nil {
		samples = []float32{}
	}
	var resp extractResponse
	if err := callJSON(ctx, e.commandRunner, e.command, extractRequest{SamplingRate: rate, Array: samples}, &resp); err != nil {
		return nil, err
	}
	return resp.InputFeatures, nil
}

// CommandTokenizer runs an external tokenizer once per record.
type CommandTokenizer struct {
	command       []string
	commandRunner CommandRunner
}

// NewCommandTokenizer creates a tokenizer for argv command.
func NewCommandTokenizer(command []string) (*CommandTokenizer, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, errors.New("tokenizer command is empty")
	}
	return &CommandTokenizer{command: append([]string(nil), command...)}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *CommandTokenizer) WithCommandRunner(runner CommandRunner) {
	t.commandRunner = runner
}

// Tokenize sends {"text"} and reads {"input_ids"}.
func (t *CommandTokenizer) Tokenize(ctx context.Context, text string) ([]int, error) {
	var resp tokenizeResponse
	if err := callJSON(ctx, t.commandRunner, t.command, tokenizeRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.InputIDs, nil
}

func callJSON(ctx context.Context, runner CommandRunner, command []string, request, response any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if runner == nil {
		runner = defaultRunner
	}
	output, err := runner(ctx, payload, command[0], command[1:]...)
	if err != nil {
		return fmt.Errorf("%s: %w", command[0], err)
	}
	if err := json.Unmarshal(bytes.TrimSpace(output), response); err != nil {
		return fmt.Errorf("%s: decode response: %w", command[0], err)
	}
	return nil
}

func defaultRunner(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
