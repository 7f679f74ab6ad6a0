package fleurs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"asrprep/internal/services"
)

const tsvFields = 7

// transcript is one row of a partition TSV.
type transcript struct {
	ID               int
	FileName         string
	RawTranscription string
	Transcription    string
	NumSamples       int
	Gender           string
}

// parseTranscripts reads a headerless TSV with the fields id, file_name,
// raw_transcription, transcription, words, num_samples, gender.
func parseTranscripts(r io.Reader) ([]transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var rows []transcript
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != tsvFields {
			return nil, services.Wrap(services.ErrSchema, "fleurs", "parse transcripts",
				fmt.Sprintf("line %d has %d fields, want %d", line, len(fields), tsvFields), nil)
		}
		id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, services.Wrap(services.ErrSchema, "fleurs", "parse transcripts",
				fmt.Sprintf("line %d id", line), err)
		}
		numSamples, err := strconv.Atoi(strings.TrimSpace(fields[5]))
		if err != nil {
			return nil, services.Wrap(services.ErrSchema, "fleurs", "parse transcripts",
				fmt.Sprintf("line %d num_samples", line), err)
		}
		rows = append(rows, transcript{
			ID:               id,
			FileName:         strings.TrimSpace(fields[1]),
			RawTranscription: fields[2],
			Transcription:    fields[3],
			NumSamples:       numSamples,
			Gender:           strings.TrimSpace(fields[6]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcripts: %w", err)
	}
	return rows, nil
}
