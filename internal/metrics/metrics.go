// Package metrics records Prometheus metrics for dataset preparation runs.
//
// Every Recorder owns its registry so concurrent runs and tests never share
// counters. Runs export the registry as a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Recorder collects preparation metrics. A nil *Recorder is a no-op.
type Recorder struct {
	registry *prometheus.Registry

	// recordsTotal counts transformed records.
	// Labels: split, status (success/error)
	recordsTotal *prometheus.CounterVec

	// recordDuration observes per-record decode+transform time.
	// Labels: split
	recordDuration *prometheus.HistogramVec

	// sourceRecords holds the record count each source contributed.
	// Labels: source, split
	sourceRecords *prometheus.GaugeVec

	// lastRunTimestamp is the completion time of the last successful run.
	lastRunTimestamp prometheus.Gauge
}

// NewRecorder creates a Recorder with a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asrprep_records_total",
				Help: "Total number of records transformed by split and status",
			},
			[]string{"split", "status"},
		),
		recordDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asrprep_record_duration_seconds",
				Help:    "Time to decode and transform one record in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"split"},
		),
		sourceRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "asrprep_source_records",
				Help: "Number of records loaded from each source split",
			},
			[]string{"source", "split"},
		),
		lastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "asrprep_last_success_timestamp_seconds",
				Help: "Unix time of the last successful preparation run",
			},
		),
	}
	r.registry.MustRegister(r.recordsTotal, r.recordDuration, r.sourceRecords, r.lastRunTimestamp)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRecord records one transformed record.
func (r *Recorder) ObserveRecord(split string, took time.Duration, err error) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.recordsTotal.WithLabelValues(split, status).Inc()
	r.recordDuration.WithLabelValues(split).Observe(took.Seconds())
}

// SetSourceRecords records how many records a source split contributed.
func (r *Recorder) SetSourceRecords(source, split string, count int) {
	if r == nil {
		return
	}
	r.sourceRecords.WithLabelValues(source, split).Set(float64(count))
}

// MarkSuccess stamps the completion time of a successful run.
func (r *Recorder) MarkSuccess(at time.Time) {
	if r == nil {
		return
	}
	r.lastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically, for the node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
