package audiofolder

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"asrprep/internal/services"
)

// Metadata file names and the column that links rows to audio files.
const (
	MetadataCSV     = "metadata.csv"
	MetadataJSONL   = "metadata.jsonl"
	ColumnFileName  = "file_name"
	maxJSONLineSize = 16 * 1024 * 1024
)

// metadata is one parsed metadata file. Rows are keyed by the absolute path
// of the audio file they describe.
type metadata struct {
	path    string
	columns []string
	rows    map[string]map[string]any
}

func readMetadata(path string) (*metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	var columns []string
	var records []map[string]any
	switch filepath.Base(path) {
	case MetadataCSV:
		columns, records, err = parseCSV(f)
	case MetadataJSONL:
		columns, records, err = parseJSONL(f)
	default:
		return nil, fmt.Errorf("unsupported metadata file %s", path)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrSchema, "audiofolder", "read metadata", path, err)
	}
	if !slices.Contains(columns, ColumnFileName) {
		return nil, services.Wrap(services.ErrSchema, "audiofolder", "read metadata",
			fmt.Sprintf("%s has no %s column", path, ColumnFileName), nil)
	}

	base := filepath.Dir(path)
	md := &metadata{
		path:    path,
		columns: slices.DeleteFunc(slices.Clone(columns), func(c string) bool { return c == ColumnFileName }),
		rows:    make(map[string]map[string]any, len(records)),
	}
	for i, rec := range records {
		name, _ := rec[ColumnFileName].(string)
		if strings.TrimSpace(name) == "" {
			return nil, services.Wrap(services.ErrSchema, "audiofolder", "read metadata",
				fmt.Sprintf("%s row %d has an empty %s", path, i+1, ColumnFileName), nil)
		}
		abs := filepath.Join(base, filepath.FromSlash(name))
		if _, dup := md.rows[abs]; dup {
			return nil, services.Wrap(services.ErrSchema, "audiofolder", "read metadata",
				fmt.Sprintf("%s lists %s twice", path, name), nil)
		}
		delete(rec, ColumnFileName)
		md.rows[abs] = rec
	}
	return md, nil
}

func parseCSV(r io.Reader) ([]string, []map[string]any, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty metadata file")
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var rows []map[string]any
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			row[col] = fields[i]
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func parseJSONL(r io.Reader) ([]string, []map[string]any, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLineSize)
	var columns []string
	var rows []map[string]any
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		keys, err := objectKeys(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make(map[string]any, len(keys))
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		if columns == nil {
			columns = keys
		} else if !sameColumns(columns, keys) {
			return nil, nil, fmt.Errorf("line %d: keys %v differ from %v", line, keys, columns)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if columns == nil {
		return nil, nil, errors.New("empty metadata file")
	}
	return columns, rows, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func sameColumns(a, b []string) bool {
	return slices.Equal(slices.Sorted(slices.Values(a)), slices.Sorted(slices.Values(b)))
}
