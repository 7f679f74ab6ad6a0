// Package deps reports whether the external programs asrprep shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"asrprep/internal/config"
)

// Requirement defines an external program asrprep runs.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// Satisfied reports whether the requirement does not block a run.
func (s Status) Satisfied() bool {
	return s.Available || s.Optional
}

// Requirements lists the programs a prepare run needs for cfg. The feature
// commands are optional when the caller injects its own collaborators.
func Requirements(cfg *config.Config, featuresOptional bool) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Audio.FFmpegBinary, Description: "Decodes and resamples audio"},
		{Name: "FFprobe", Command: cfg.Audio.FFprobeBinary, Description: "Inspects audio for sources --probe", Optional: true},
		{Name: "Feature extractor", Command: firstWord(cfg.Features.ExtractorCommand), Description: "Computes input features", Optional: featuresOptional},
		{Name: "Tokenizer", Command: firstWord(cfg.Features.TokenizerCommand), Description: "Encodes transcriptions to label ids", Optional: featuresOptional},
	}
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			path, err := exec.LookPath(cmd)
			if err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
				break
			}
			status.Available = true
			status.Path = path
		}
		results = append(results, status)
	}
	return results
}

func firstWord(command []string) string {
	if len(command) == 0 {
		return ""
	}
	return command[0]
}
