package testsupport

import (
	"context"
	"testing"

	"asrprep/internal/config"
	"asrprep/internal/dataset"
	"asrprep/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg.Paths.OutputDB)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SaveRun stores splits as a new run for tests.
func SaveRun(t testing.TB, st *store.Store, kind string, splits *dataset.Dict[[]dataset.ProcessedRecord]) store.Run {
	t.Helper()

	run, err := st.Save(context.Background(), store.Run{Kind: kind}, splits)
	if err != nil {
		t.Fatalf("store.Save: %v", err)
	}
	return run
}
