// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch run has no scrape endpoint, so collected metrics are pushed to a
// Pushgateway on Flush. Pushes are grouped by job and, when set, by run_id so
// that consecutive runs do not overwrite each other's series.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/sebamyu/Mini-Project-AIE321/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	runID      string // optional run_id grouping label
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // hoteletl_stage_total
	stageDuration *prometheus.SummaryVec // hoteletl_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // hoteletl_rows_total
	runCounter    *prometheus.CounterVec // hoteletl_run_total
	runDuration   prometheus.Gauge       // hoteletl_run_duration_seconds
}

// NewBackend constructs a Pushgateway backend. jobName defaults to
// "hoteletl"; runID may be empty.
func NewBackend(jobName, gatewayURL, runID string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "hoteletl"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		runID:      runID,
		reg:        prometheus.NewRegistry(),
		stageCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Pipeline stage executions by stage and status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Duration of pipeline stages in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"stage", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows read or written, by kind (read, cleaned_written, summary_written).",
		}, []string{"kind"}),
		runCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RunTotal,
			Help: "Completed pipeline runs by status.",
		}, []string{"status"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metrics.RunDuration,
			Help: "Wall time of the last pipeline run in seconds.",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"stage counter": b.stageCounter,
		"stage summary": b.stageDuration,
		"row counter":   b.rowCounter,
		"run counter":   b.runCounter,
		"run duration":  b.runDuration,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter != nil {
			b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.RunTotal:
		if b.runCounter != nil {
			b.runCounter.WithLabelValues(labels["status"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.StageDuration:
		if b.stageDuration != nil {
			b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
		}
	case metrics.RunDuration:
		if b.runDuration != nil {
			b.runDuration.Set(value)
		}
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.runID != "" {
		p = p.Grouping("run_id", b.runID)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
