package dataset

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"asrprep/internal/services"
)

// Row is one table row keyed by column name.
type Row map[string]any

// Table is an ordered collection of rows sharing one schema.
type Table struct {
	columns []string
	rows    []Row
}

// NewTable validates that every row carries exactly the given columns.
func NewTable(columns []string, rows []Row) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if strings.TrimSpace(col) == "" {
			return nil, schemaError("new table", "empty column name")
		}
		if _, dup := seen[col]; dup {
			return nil, schemaError("new table", fmt.Sprintf("duplicate column %q", col))
		}
		seen[col] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, schemaError("new table", fmt.Sprintf("row %d has %d columns, want %d", i, len(row), len(columns)))
		}
		for _, col := range columns {
			if _, ok := row[col]; !ok {
				return nil, schemaError("new table", fmt.Sprintf("row %d is missing column %q", i, col))
			}
		}
	}
	return &Table{columns: slices.Clone(columns), rows: slices.Clone(rows)}, nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	return maps.Clone(t.rows[i])
}

// RemoveColumns drops the named columns. Every name must exist.
func (t *Table) RemoveColumns(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !slices.Contains(t.columns, name) {
			return nil, schemaError("remove columns", fmt.Sprintf("column %q not in %v", name, t.columns))
		}
		drop[name] = struct{}{}
	}
	columns := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if _, ok := drop[col]; !ok {
			columns = append(columns, col)
		}
	}
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		next := make(Row, len(columns))
		for _, col := range columns {
			next[col] = row[col]
		}
		rows[i] = next
	}
	return &Table{columns: columns, rows: rows}, nil
}

// SelectColumns keeps only the named columns, in the given order.
func (t *Table) SelectColumns(names ...string) (*Table, error) {
	var drop []string
	for i, name := range names {
		if slices.Contains(names[:i], name) {
			return nil, schemaError("select columns", fmt.Sprintf("column %q selected twice", name))
		}
		if !slices.Contains(t.columns, name) {
			return nil, schemaError("select columns", fmt.Sprintf("column %q not in %v", name, t.columns))
		}
	}
	for _, col := range t.columns {
		if !slices.Contains(names, col) {
			drop = append(drop, col)
		}
	}
	out, err := t.RemoveColumns(drop...)
	if err != nil {
		return nil, err
	}
	out.columns = slices.Clone(names)
	return out, nil
}

// RenameColumn renames oldName to newName keeping its position.
func (t *Table) RenameColumn(oldName, newName string) (*Table, error) {
	idx := slices.Index(t.columns, oldName)
	if idx < 0 {
		return nil, schemaError("rename column", fmt.Sprintf("column %q not in %v", oldName, t.columns))
	}
	if oldName == newName {
		return t, nil
	}
	if slices.Contains(t.columns, newName) {
		return nil, schemaError("rename column", fmt.Sprintf("column %q already exists", newName))
	}
	columns := slices.Clone(t.columns)
	columns[idx] = newName
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		next := maps.Clone(row)
		next[newName] = next[oldName]
		delete(next, oldName)
		rows[i] = next
	}
	return &Table{columns: columns, rows: rows}, nil
}

// CastAudio declares that the audio in column must be delivered at rate.
func (t *Table) CastAudio(column string, rate int) (*Table, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("cast audio: invalid sampling rate %d", rate)
	}
	if !slices.Contains(t.columns, column) {
		return nil, schemaError("cast audio", fmt.Sprintf("column %q not in %v", column, t.columns))
	}
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		value, ok := row[column].(Audio)
		if !ok {
			return nil, schemaError("cast audio", fmt.Sprintf("row %d column %q holds %T, want audio", i, column, row[column]))
		}
		cast, err := value.cast(rate)
		if err != nil {
			return nil, fmt.Errorf("cast audio row %d: %w", i, err)
		}
		next := maps.Clone(row)
		next[column] = cast
		rows[i] = next
	}
	return &Table{columns: slices.Clone(t.columns), rows: rows}, nil
}

// Records projects the table onto (audio, transcription). The schema must be
// exactly those two columns.
func (t *Table) Records() ([]RawRecord, error) {
	if len(t.columns) != 2 || !slices.Contains(t.columns, ColumnAudio) || !slices.Contains(t.columns, ColumnTranscription) {
		return nil, schemaError("project records", fmt.Sprintf("want columns [%s %s], have %v", ColumnAudio, ColumnTranscription, t.columns))
	}
	records := make([]RawRecord, len(t.rows))
	for i, row := range t.rows {
		a, ok := row[ColumnAudio].(Audio)
		if !ok {
			return nil, schemaError("project records", fmt.Sprintf("row %d audio holds %T", i, row[ColumnAudio]))
		}
		text, ok := row[ColumnTranscription].(string)
		if !ok {
			return nil, schemaError("project records", fmt.Sprintf("row %d transcription holds %T", i, row[ColumnTranscription]))
		}
		records[i] = RawRecord{Audio: a, Transcription: text}
	}
	return records, nil
}

// Concatenate appends tables in order. All tables must share the same set of
// columns; the result keeps the first table's column order.
func Concatenate(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, schemaError("concatenate", "no tables")
	}
	first := tables[0]
	want := slices.Sorted(slices.Values(first.columns))
	total := 0
	for i, tbl := range tables {
		have := slices.Sorted(slices.Values(tbl.columns))
		if !slices.Equal(want, have) {
			return nil, schemaError("concatenate", fmt.Sprintf("table %d has columns %v, want %v", i, tbl.columns, first.columns))
		}
		total += len(tbl.rows)
	}
	rows := make([]Row, 0, total)
	for _, tbl := range tables {
		rows = append(rows, tbl.rows...)
	}
	return &Table{columns: slices.Clone(first.columns), rows: rows}, nil
}

func schemaError(operation, message string) error {
	return services.Wrap(services.ErrSchema, "dataset", operation, message, nil)
}
