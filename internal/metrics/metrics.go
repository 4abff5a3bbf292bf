// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the bookings pipeline.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// pipeline can always record metrics; concrete systems (Prometheus
// Pushgateway, Datadog) live in subpackages and are installed by main.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StageTotal    = "hoteletl_stage_total"
	StageDuration = "hoteletl_stage_duration_seconds"
	RowsTotal     = "hoteletl_rows_total"
	RunTotal      = "hoteletl_run_total"
	RunDuration   = "hoteletl_run_duration_seconds"
	statusSuccess = "success"
	statusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

func status(err error) string {
	if err != nil {
		return statusFailure
	}
	return statusSuccess
}

// RecordStage counts one execution of a pipeline stage and observes its
// latency.
func RecordStage(job, stage string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status(err),
	}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter for kind. Kinds used by the
// pipeline:
//   - "read"
//   - "cleaned_written"
//   - "summary_written"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRun counts a whole run and observes its wall time.
func RecordRun(job string, err error, d time.Duration) {
	lbls := Labels{"job": job, "status": status(err)}
	b := current()
	b.IncCounter(RunTotal, 1, lbls)
	b.ObserveHistogram(RunDuration, d.Seconds(), lbls)
}
