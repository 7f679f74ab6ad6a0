package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"asrprep/internal/dataset"
	"asrprep/internal/services"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run kinds.
const (
	KindFull     = "full"
	KindTestOnly = "test"
)

// Run describes one stored preparation run.
type Run struct {
	ID           string
	Kind         string
	CreatedAt    time.Time
	SourceConfig string
	// SplitNames is filled when reading; Save derives it from the dictionary.
	SplitNames []string
}

// SplitCount is the number of records stored for a split.
type SplitCount struct {
	Split   string
	Records int
}

// RunSummary is a run with its per-split record counts in split order.
type RunSummary struct {
	Run
	Splits []SplitCount
}

// Total returns the number of records across all splits.
func (r RunSummary) Total() int {
	total := 0
	for _, s := range r.Splits {
		total += s.Records
	}
	return total
}

// Store persists processed datasets in SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: flock.New(path + ".lock")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Save writes run and every record of splits in one transaction. An empty
// run ID is replaced with a new one; the stored run is returned.
func (s *Store) Save(ctx context.Context, run Run, splits *dataset.Dict[[]dataset.ProcessedRecord]) (Run, error) {
	if splits == nil {
		return Run{}, errors.New("save run: no splits")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return Run{}, fmt.Errorf("save run: invalid run id %q: %w", run.ID, err)
	}
	if run.Kind == "" {
		run.Kind = KindFull
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	locked, err := s.lock.TryLock()
	if err != nil {
		return Run{}, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return Run{}, services.Wrap(services.ErrTransient, "store", "save run",
			fmt.Sprintf("another asrprep run is writing %s", s.path), nil)
	}
	defer func() { _ = s.lock.Unlock() }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	names, err := json.Marshal(splits.Names())
	if err != nil {
		return Run{}, fmt.Errorf("encode split names: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, splits, source_config) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.CreatedAt.Format(timeLayout), string(names), nullableString(run.SourceConfig),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, split, split_order, position, input_features, labels) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for order, name := range splits.Names() {
		records, _ := splits.Get(name)
		for pos, rec := range records {
			labels, err := json.Marshal(nonNilLabels(rec.Labels))
			if err != nil {
				return Run{}, fmt.Errorf("encode labels: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, name, order, pos, encodeFeatures(rec.InputFeatures), string(labels)); err != nil {
				return Run{}, fmt.Errorf("insert record %s/%d: %w", name, pos, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	run.SplitNames = splits.Names()
	return run, nil
}

// Runs lists stored runs, newest first, with per-split counts.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, created_at, splits, source_config FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var summaries []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		summaries = append(summaries, RunSummary{Run: run})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range summaries {
		counts, err := s.splitCounts(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		for _, name := range summaries[i].SplitNames {
			summaries[i].Splits = append(summaries[i].Splits, SplitCount{Split: name, Records: counts[name]})
		}
	}
	return summaries, nil
}

// Load reads a stored run back into a dictionary with the original split and
// record order.
func (s *Store) Load(ctx context.Context, runID string) (Run, *dataset.Dict[[]dataset.ProcessedRecord], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, created_at, splits, source_config FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, services.Wrap(services.ErrNotFound, "store", "load run", fmt.Sprintf("run %s", runID), nil)
	}
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT split, input_features, labels FROM records WHERE run_id = ? ORDER BY split_order, position`, runID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := dataset.NewDict[[]dataset.ProcessedRecord]()
	for _, name := range run.SplitNames {
		out.Set(name, []dataset.ProcessedRecord{})
	}
	for rows.Next() {
		var (
			split  string
			blob   []byte
			labels string
		)
		if err := rows.Scan(&split, &blob, &labels); err != nil {
			return Run{}, nil, fmt.Errorf("scan record: %w", err)
		}
		features, err := decodeFeatures(blob)
		if err != nil {
			return Run{}, nil, fmt.Errorf("record in %s: %w", split, err)
		}
		var ids []int
		if err := json.Unmarshal([]byte(labels), &ids); err != nil {
			return Run{}, nil, fmt.Errorf("decode labels in %s: %w", split, err)
		}
		existing, _ := out.Get(split)
		out.Set(split, append(existing, dataset.ProcessedRecord{InputFeatures: features, Labels: ids}))
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, err
	}
	return run, out, nil
}

// Delete removes a run and its records.
func (s *Store) Delete(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return services.Wrap(services.ErrNotFound, "store", "delete run", fmt.Sprintf("run %s", runID), nil)
	}
	return nil
}

func (s *Store) splitCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT split, COUNT(1) FROM records WHERE run_id = ? GROUP BY split`, runID)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var (
			split string
			n     int
		)
		if err := rows.Scan(&split, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[split] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run          Run
		createdAt    string
		splitNames   string
		sourceConfig sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Kind, &createdAt, &splitNames, &sourceConfig); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run time: %w", err)
	}
	if err := json.Unmarshal([]byte(splitNames), &run.SplitNames); err != nil {
		return Run{}, fmt.Errorf("decode split names: %w", err)
	}
	run.CreatedAt = parsed
	run.SourceConfig = sourceConfig.String
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nonNilLabels(labels []int) []int {
	if labels == nil {
		return []int{}
	}
	return labels
}
