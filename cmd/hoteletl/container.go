package main

// This file keeps the CLI layer thin: it opens a store through the storage
// registry, installs the metrics backend for the run and hands off to
// pipeline.Run. It never imports database drivers directly.

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/sebamyu/Mini-Project-AIE321/internal/config"
	"github.com/sebamyu/Mini-Project-AIE321/internal/metrics"
	"github.com/sebamyu/Mini-Project-AIE321/internal/metrics/datadog"
	"github.com/sebamyu/Mini-Project-AIE321/internal/metrics/prompush"
	"github.com/sebamyu/Mini-Project-AIE321/internal/pipeline"
	"github.com/sebamyu/Mini-Project-AIE321/internal/report"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
)

// Function variables used to introduce test seams.
var (
	newStoreFn    = storage.New
	runPipelineFn = pipeline.Run
	exportFn      = report.Export
	newRunIDFn    = uuid.NewString
)

// runOptions carries the CLI settings that are not part of config.Pipeline.
type runOptions struct {
	metricsBackend string
	pushgatewayURL string
	statsdAddr     string
	reportPath     string
	verbose        bool
}

// openStore resolves the DSN for the configured kind and opens the store.
func openStore(ctx context.Context, p config.Pipeline) (storage.Store, error) {
	dsn, err := p.Storage.DB.ConnString(p.Storage.Kind)
	if err != nil {
		return nil, err
	}
	st, err := newStoreFn(ctx, storage.Config{
		Kind:      p.Storage.Kind,
		DSN:       dsn,
		BatchSize: p.Runtime.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", p.Storage.Kind, err)
	}
	return st, nil
}

// installMetrics sets the global metrics backend for one run and returns the
// flush to call when the run ends. Unknown backends disable metrics.
func installMetrics(p config.Pipeline, runID string, o runOptions) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch o.metricsBackend {
	case "pushgateway", "prompush":
		b, err = prompush.NewBackend(p.Job, o.pushgatewayURL, runID)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       o.statsdAddr,
			GlobalTags: []string{"job:" + p.Job, "run_id:" + runID},
		})
	case "", "none":
		if o.verbose {
			log.Printf("metrics: disabled")
		}
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", o.metricsBackend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: init %s backend: %v; metrics disabled", o.metricsBackend, err)
		return func() {}
	}

	metrics.SetBackend(b)
	if o.verbose {
		log.Printf("metrics: backend=%s job=%s run_id=%s", o.metricsBackend, p.Job, runID)
	}
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// runOnce performs one complete run: fresh run id, fresh connection, and the
// optional report export after both tables are written.
func runOnce(ctx context.Context, p config.Pipeline, o runOptions) error {
	runID := newRunIDFn()
	flush := installMetrics(p, runID, o)
	defer flush()

	st, err := openStore(ctx, p)
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StageEnsureNamespace, Kind: pipeline.KindConnectivity, Err: err}
	}
	defer st.Close()

	res, err := runPipelineFn(ctx, st, p, runID)
	if err != nil {
		return err
	}

	if o.reportPath != "" {
		if err := exportFn(o.reportPath, res.Summary); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		log.Printf("report: wrote %s rows=%d", o.reportPath, res.Summary.Len())
	}
	return nil
}

// runGuard joins overlapping scheduled firings onto the run in flight.
type runGuard struct {
	g singleflight.Group
}

// Do runs fn unless a run is already in flight, in which case it waits for
// that run and returns its error with joined set. The caller that ran fn
// never sees joined, even when singleflight shared its result.
func (r *runGuard) Do(fn func() error) (joined bool, err error) {
	ran := false
	_, err, _ = r.g.Do("run", func() (any, error) {
		ran = true
		return nil, fn()
	})
	return !ran, err
}

// logFiring reports one scheduled firing. Only the firing that ran a failed
// run logs the failure; joiners note they waited on it.
func logFiring(joined bool, err error, took time.Duration) {
	switch {
	case joined:
		log.Printf("schedule: firing joined the run already in progress")
	case err != nil:
		log.Printf("schedule: run failed after %s: %v", took.Truncate(time.Millisecond), err)
	}
}

// runScheduled fires fn on the cron spec until ctx is done, then waits for a
// run in flight to finish. Run failures are logged; the schedule continues.
func runScheduled(ctx context.Context, spec string, fn func(context.Context) error) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	var guard runGuard
	c := cron.New()
	c.Schedule(sched, cron.FuncJob(func() {
		start := time.Now()
		joined, err := guard.Do(func() error { return fn(ctx) })
		logFiring(joined, err, time.Since(start))
	}))

	log.Printf("schedule: spec=%q next=%s", spec, sched.Next(time.Now()).Format(time.RFC3339))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Printf("schedule: stopped")
	return nil
}
