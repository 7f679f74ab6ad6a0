package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"asrprep/internal/dataset"
	"asrprep/internal/services"
	"asrprep/internal/store"
	"asrprep/internal/testsupport"
)

func sampleDict() *dataset.Dict[[]dataset.ProcessedRecord] {
	d := dataset.NewDict[[]dataset.ProcessedRecord]()
	d.Set(dataset.SplitTrain, []dataset.ProcessedRecord{
		{InputFeatures: [][]float32{{0.5, -1.25, 3}, {4, 5, 6}}, Labels: []int{50258, 1, 2, 50257}},
		{InputFeatures: [][]float32{{1}}, Labels: nil},
	})
	d.Set(dataset.SplitTest, []dataset.ProcessedRecord{})
	return d
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := st.Save(ctx, store.Run{Kind: store.KindFull, SourceConfig: "google/fleurs:tg_tj"}, sampleDict())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}

	loadedRun, loaded, err := st.Load(ctx, run.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loadedRun.SourceConfig != "google/fleurs:tg_tj" || loadedRun.Kind != store.KindFull {
		t.Fatalf("unexpected run %+v", loadedRun)
	}
	if got := loaded.Names(); !reflect.DeepEqual(got, []string{dataset.SplitTrain, dataset.SplitTest}) {
		t.Fatalf("splits = %v", got)
	}
	train, _ := loaded.Get(dataset.SplitTrain)
	want, _ := sampleDict().Get(dataset.SplitTrain)
	want[1].Labels = []int{}
	if !reflect.DeepEqual(train, want) {
		t.Fatalf("train = %+v, want %+v", train, want)
	}
	test, _ := loaded.Get(dataset.SplitTest)
	if len(test) != 0 {
		t.Fatalf("test = %+v", test)
	}
}

func TestRunsListsNewestFirstWithCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	older, err := st.Save(ctx, store.Run{Kind: store.KindFull, CreatedAt: time.Now().Add(-time.Hour)}, sampleDict())
	if err != nil {
		t.Fatal(err)
	}
	testOnly := dataset.NewDict[[]dataset.ProcessedRecord]()
	testOnly.Set(dataset.SplitTest, []dataset.ProcessedRecord{{InputFeatures: [][]float32{{1}}, Labels: []int{1}}})
	newer := testsupport.SaveRun(t, st, store.KindTestOnly, testOnly)

	runs, err := st.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID || runs[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", runs)
	}
	wantCounts := []store.SplitCount{{Split: dataset.SplitTrain, Records: 2}, {Split: dataset.SplitTest, Records: 0}}
	if !reflect.DeepEqual(runs[1].Splits, wantCounts) {
		t.Fatalf("counts = %+v", runs[1].Splits)
	}
	if runs[1].Total() != 2 || runs[0].Total() != 1 {
		t.Fatalf("totals = %d, %d", runs[1].Total(), runs[0].Total())
	}
}

func TestLoadAndDeleteUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, _, err := st.Load(ctx, store.NewRunID()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := st.Delete(ctx, store.NewRunID()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := testsupport.SaveRun(t, st, store.KindFull, sampleDict())
	if err := st.Delete(ctx, run.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	runs, err := st.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %+v", runs)
	}
}

func TestSaveRejectsInvalidRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if _, err := st.Save(context.Background(), store.Run{ID: "not-a-uuid"}, sampleDict()); err == nil {
		t.Fatal("expected error for invalid run id")
	}
}

func TestSaveFailsWhileLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	other := flock.New(st.Path() + ".lock")
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer other.Unlock()

	if _, err := st.Save(context.Background(), store.Run{}, sampleDict()); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prepared.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run, err := st.Save(context.Background(), store.Run{}, sampleDict())
	if err != nil {
		t.Fatal(err)
	}
	st.Close()

	reopened, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, _, err := reopened.Load(context.Background(), run.ID); err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
}
