package dataset_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"asrprep/internal/dataset"
	"asrprep/internal/services"
)

func fleursLikeTable(t *testing.T, n int) *dataset.Table {
	t.Helper()
	columns := []string{"id", dataset.ColumnAudio, "raw_transcription", "transcription", "gender"}
	rows := make([]dataset.Row, n)
	for i := range rows {
		rows[i] = dataset.Row{
			"id":                i,
			dataset.ColumnAudio: dataset.Audio{Path: "a.wav", SamplingRate: 48000},
			"raw_transcription": "Raw Text",
			"transcription":     "raw text",
			"gender":            "FEMALE",
		}
	}
	tbl, err := dataset.NewTable(columns, rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func pairTable(t *testing.T, texts ...string) *dataset.Table {
	t.Helper()
	rows := make([]dataset.Row, len(texts))
	for i, text := range texts {
		rows[i] = dataset.Row{
			dataset.ColumnAudio:         dataset.Audio{Path: text + ".wav", SamplingRate: 16000},
			dataset.ColumnTranscription: text,
		}
	}
	tbl, err := dataset.NewTable([]string{dataset.ColumnAudio, dataset.ColumnTranscription}, rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestNewTableRejectsMismatchedRows(t *testing.T) {
	_, err := dataset.NewTable([]string{"a", "b"}, []dataset.Row{{"a": 1}})
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	_, err = dataset.NewTable([]string{"a", "a"}, nil)
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error for duplicate column, got %v", err)
	}
}

func TestAlignFleursLikeSchema(t *testing.T) {
	tbl := fleursLikeTable(t, 2)

	tbl, err := tbl.RemoveColumns("id", "transcription", "gender")
	if err != nil {
		t.Fatalf("RemoveColumns: %v", err)
	}
	tbl, err = tbl.RenameColumn("raw_transcription", dataset.ColumnTranscription)
	if err != nil {
		t.Fatalf("RenameColumn: %v", err)
	}
	tbl, err = tbl.CastAudio(dataset.ColumnAudio, 16000)
	if err != nil {
		t.Fatalf("CastAudio: %v", err)
	}

	if got, want := tbl.Columns(), []string{dataset.ColumnAudio, dataset.ColumnTranscription}; !slices.Equal(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	records, err := tbl.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Audio.SamplingRate != 16000 {
			t.Fatalf("expected 16000 Hz, got %d", rec.Audio.SamplingRate)
		}
		if rec.Transcription != "Raw Text" {
			t.Fatalf("transcription = %q", rec.Transcription)
		}
	}
}

func TestSchemaOperationsFailOnMissingColumns(t *testing.T) {
	tbl := pairTable(t, "x")
	tests := []struct {
		name string
		run  func() error
	}{
		{"remove", func() error { _, err := tbl.RemoveColumns("gender"); return err }},
		{"rename", func() error { _, err := tbl.RenameColumn("raw_transcription", "text"); return err }},
		{"rename collision", func() error { _, err := tbl.RenameColumn(dataset.ColumnAudio, dataset.ColumnTranscription); return err }},
		{"cast", func() error { _, err := tbl.CastAudio("speech", 16000); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, services.ErrSchema) {
				t.Fatalf("expected schema error, got %v", err)
			}
		})
	}
}

func TestSchemaOperationsDoNotMutateSource(t *testing.T) {
	tbl := fleursLikeTable(t, 1)
	if _, err := tbl.RemoveColumns("id"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.RenameColumn("gender", "sex"); err != nil {
		t.Fatal(err)
	}
	if len(tbl.Columns()) != 5 {
		t.Fatalf("source columns changed: %v", tbl.Columns())
	}
	if _, ok := tbl.Row(0)["gender"]; !ok {
		t.Fatal("source row lost gender column")
	}
}

func TestCastAudioResamplesDecodedArrays(t *testing.T) {
	rows := []dataset.Row{{
		dataset.ColumnAudio:         dataset.Audio{Array: make([]float32, 4800), SamplingRate: 48000},
		dataset.ColumnTranscription: "x",
	}}
	tbl, err := dataset.NewTable([]string{dataset.ColumnAudio, dataset.ColumnTranscription}, rows)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err = tbl.CastAudio(dataset.ColumnAudio, 16000)
	if err != nil {
		t.Fatalf("CastAudio: %v", err)
	}
	records, err := tbl.Records()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(records[0].Audio.Array); got != 1600 {
		t.Fatalf("expected 1600 samples, got %d", got)
	}
}

func TestConcatenatePreservesOrder(t *testing.T) {
	a := pairTable(t, "A0", "A1")
	b := pairTable(t, "B0", "B1", "B2")

	merged, err := dataset.Concatenate(a, b)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	records, err := merged.Records()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, rec := range records {
		got = append(got, rec.Transcription)
	}
	if want := []string{"A0", "A1", "B0", "B1", "B2"}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestConcatenateKeepsFirstColumnOrder(t *testing.T) {
	a := pairTable(t, "A0")
	b, err := dataset.NewTable([]string{dataset.ColumnTranscription, dataset.ColumnAudio}, []dataset.Row{{
		dataset.ColumnAudio:         dataset.Audio{Path: "b.wav", SamplingRate: 16000},
		dataset.ColumnTranscription: "B0",
	}})
	if err != nil {
		t.Fatal(err)
	}
	merged, err := dataset.Concatenate(a, b)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	if got := merged.Columns(); got[0] != dataset.ColumnAudio {
		t.Fatalf("columns = %v", got)
	}
}

func TestConcatenateRejectsSchemaMismatch(t *testing.T) {
	a := pairTable(t, "A0")
	b := fleursLikeTable(t, 1)
	if _, err := dataset.Concatenate(a, b); !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestRecordsRejectsExtraColumns(t *testing.T) {
	tbl := fleursLikeTable(t, 1)
	if _, err := tbl.Records(); !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestDictKeepsInsertionOrder(t *testing.T) {
	d := dataset.NewDict[int]()
	d.Set("train", 1)
	d.Set("test", 2)
	d.Set("train", 3)

	if got := d.Names(); !slices.Equal(got, []string{"train", "test"}) {
		t.Fatalf("names = %v", got)
	}
	if v, ok := d.Get("train"); !ok || v != 3 {
		t.Fatalf("train = %d, %v", v, ok)
	}
	if _, ok := d.Get("validation"); ok {
		t.Fatal("unexpected validation split")
	}
}

func TestDictSchemaHelpersApplyToEverySplit(t *testing.T) {
	d := dataset.NewDict[*dataset.Table]()
	d.Set(dataset.SplitTrain, fleursLikeTable(t, 2))
	d.Set(dataset.SplitTest, fleursLikeTable(t, 1))

	d, err := dataset.RemoveColumns(d, "id", "transcription", "gender")
	if err != nil {
		t.Fatal(err)
	}
	d, err = dataset.RenameColumn(d, "raw_transcription", dataset.ColumnTranscription)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range d.Names() {
		tbl, _ := d.Get(name)
		if _, err := tbl.Records(); err != nil {
			t.Fatalf("split %s: %v", name, err)
		}
	}

	if _, err := dataset.RemoveColumns(d, "gender"); !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

type fakeDecoder struct {
	calls int
	rate  int
}

func (f *fakeDecoder) Decode(_ context.Context, _ string, rate int) ([]float32, error) {
	f.calls++
	f.rate = rate
	return []float32{0.1, 0.2}, nil
}

func TestMaterialize(t *testing.T) {
	dec := &fakeDecoder{}
	lazy := dataset.Audio{Path: "a.flac", SamplingRate: 16000}

	got, err := dataset.Materialize(context.Background(), dec, lazy, 16000)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if dec.calls != 1 || dec.rate != 16000 {
		t.Fatalf("decoder calls=%d rate=%d", dec.calls, dec.rate)
	}
	if !got.Decoded() || got.SamplingRate != 16000 {
		t.Fatalf("unexpected audio %+v", got)
	}

	again, err := dataset.Materialize(context.Background(), dec, got, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if dec.calls != 1 {
		t.Fatal("decoded audio should not be decoded again")
	}
	if !slices.Equal(again.Array, got.Array) {
		t.Fatal("decoded audio changed")
	}

	if _, err := dataset.Materialize(context.Background(), nil, lazy, 16000); err == nil {
		t.Fatal("expected error without decoder")
	}
}

func TestMaterializeDecodesAtDeclaredRate(t *testing.T) {
	dec := &fakeDecoder{}
	lazy := dataset.Audio{Path: "b.wav", SamplingRate: 8000}

	got, err := dataset.Materialize(context.Background(), dec, lazy, 16000)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if dec.rate != 8000 {
		t.Fatalf("decoded at %d, want declared rate 8000", dec.rate)
	}
	if got.SamplingRate != 16000 || len(got.Array) != 4 {
		t.Fatalf("expected 4 samples at 16000, got %d at %d", len(got.Array), got.SamplingRate)
	}

	undeclared := dataset.Audio{Path: "c.wav"}
	if _, err := dataset.Materialize(context.Background(), dec, undeclared, 22050); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if dec.rate != 22050 {
		t.Fatalf("decoded at %d, want target rate 22050", dec.rate)
	}
}

func TestSelectColumns(t *testing.T) {
	tbl := fleursLikeTable(t, 1)
	out, err := tbl.SelectColumns("raw_transcription", dataset.ColumnAudio)
	if err != nil {
		t.Fatalf("SelectColumns: %v", err)
	}
	if got := out.Columns(); !slices.Equal(got, []string{"raw_transcription", dataset.ColumnAudio}) {
		t.Fatalf("columns = %v", got)
	}
	if len(out.Row(0)) != 2 {
		t.Fatalf("row = %v", out.Row(0))
	}
	if _, err := tbl.SelectColumns("speaker"); !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}
