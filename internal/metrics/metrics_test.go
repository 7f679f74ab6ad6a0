package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, r *Recorder, split, status string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := r.recordsTotal.WithLabelValues(split, status).Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestObserveRecord(t *testing.T) {
	r := NewRecorder()
	r.ObserveRecord("train", 20*time.Millisecond, nil)
	r.ObserveRecord("train", 30*time.Millisecond, nil)
	r.ObserveRecord("train", time.Millisecond, errors.New("boom"))

	if got := counterValue(t, r, "train", StatusSuccess); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := counterValue(t, r, "train", StatusError); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}

	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "asrprep_record_duration_seconds" {
			continue
		}
		if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
			t.Errorf("histogram samples = %d, want 3", got)
		}
		return
	}
	t.Fatal("duration histogram not gathered")
}

func TestSetSourceRecords(t *testing.T) {
	r := NewRecorder()
	r.SetSourceRecords("fleurs", "train", 5)
	r.SetSourceRecords("fleurs", "train", 7)

	metric := &dto.Metric{}
	if err := r.sourceRecords.WithLabelValues("fleurs", "train").Write(metric); err != nil {
		t.Fatal(err)
	}
	if got := metric.GetGauge().GetValue(); got != 7 {
		t.Errorf("gauge = %v, want 7", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRecord("test", time.Second, nil)
	r.MarkSuccess(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "asrprep.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`asrprep_records_total{split="test",status="success"} 1`,
		"asrprep_last_success_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveRecord("train", time.Second, nil)
	r.SetSourceRecords("fleurs", "train", 1)
	r.MarkSuccess(time.Now())
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("WriteTextfile on nil recorder: %v", err)
	}
	if r.Registry() != nil {
		t.Fatal("nil recorder should have no registry")
	}
}
