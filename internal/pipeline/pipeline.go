// Package pipeline runs the hotel-bookings batch job end to end: ensure the
// destination namespace, read the raw table, clean it, summarise it by month
// and replace the two destination tables.
//
// Stages run strictly in sequence and the first failure ends the run with a
// *StageError. The two writes are independent: when the summary write fails
// the cleaned table has already been replaced and stays that way.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sebamyu/Mini-Project-AIE321/internal/booking"
	"github.com/sebamyu/Mini-Project-AIE321/internal/config"
	"github.com/sebamyu/Mini-Project-AIE321/internal/metrics"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// Result summarises a successful run.
type Result struct {
	RunID string

	SourceRows  int
	CleanedRows int64
	SummaryRows int64

	// Fingerprints of the tables as written; equal across runs on unchanged
	// input.
	CleanedFingerprint uint64
	SummaryFingerprint uint64

	// Summary is the monthly table that was written, kept for report export.
	Summary table.Table

	Duration time.Duration
}

// Run executes one complete pass of the pipeline against st using cfg.
// runID tags log lines; it may be empty.
func Run(ctx context.Context, st storage.Store, cfg config.Pipeline, runID string) (Result, error) {
	start := time.Now()
	res := Result{RunID: runID}
	job := cfg.Job

	src := storage.TableRef{Namespace: cfg.Source.Namespace, Name: cfg.Source.Table}
	cleanedRef := storage.TableRef{Namespace: cfg.Destination.Namespace, Name: cfg.Destination.CleanedTable}
	summaryRef := storage.TableRef{Namespace: cfg.Destination.Namespace, Name: cfg.Destination.SummaryTable}

	log.Printf("pipeline: start run_id=%s job=%s source=%s cleaned=%s summary=%s",
		runID, job, src, cleanedRef, summaryRef)

	err := func() error {
		if err := step(job, StageEnsureNamespace, KindConnectivity, func() error {
			return st.EnsureNamespace(ctx, cfg.Destination.Namespace)
		}); err != nil {
			return err
		}

		var raw table.Table
		if err := step(job, StageRead, KindConnectivity, func() error {
			var err error
			raw, err = st.ReadTable(ctx, src)
			return err
		}); err != nil {
			return err
		}
		res.SourceRows = raw.Len()
		metrics.RecordRows(job, "read", int64(raw.Len()))
		log.Printf("pipeline: read run_id=%s table=%s rows=%s columns=%d",
			runID, src, humanize.Comma(int64(raw.Len())), len(raw.Columns))

		var cleaned table.Table
		if err := step(job, StageTransform, KindDataShape, func() error {
			var err error
			cleaned, err = booking.Transform(raw)
			return err
		}); err != nil {
			return err
		}

		var summary table.Table
		if err := step(job, StageAggregate, KindDataShape, func() error {
			var err error
			summary, err = booking.Aggregate(cleaned)
			return err
		}); err != nil {
			return err
		}

		if err := step(job, StageWriteCleaned, KindWrite, func() error {
			n, err := st.ReplaceTable(ctx, cleanedRef, cleaned)
			res.CleanedRows = n
			return err
		}); err != nil {
			return err
		}
		res.CleanedFingerprint = table.Fingerprint(cleaned)
		metrics.RecordRows(job, "cleaned_written", res.CleanedRows)
		log.Printf("pipeline: wrote run_id=%s table=%s rows=%s fingerprint=%016x",
			runID, cleanedRef, humanize.Comma(res.CleanedRows), res.CleanedFingerprint)

		if err := step(job, StageWriteSummary, KindWrite, func() error {
			n, err := st.ReplaceTable(ctx, summaryRef, summary)
			res.SummaryRows = n
			return err
		}); err != nil {
			return err
		}
		res.SummaryFingerprint = table.Fingerprint(summary)
		res.Summary = summary
		metrics.RecordRows(job, "summary_written", res.SummaryRows)
		log.Printf("pipeline: wrote run_id=%s table=%s rows=%s fingerprint=%016x",
			runID, summaryRef, humanize.Comma(res.SummaryRows), res.SummaryFingerprint)
		return nil
	}()

	res.Duration = time.Since(start)
	metrics.RecordRun(job, err, res.Duration)
	if err != nil {
		log.Printf("pipeline: failed run_id=%s stage=%s kind=%s elapsed=%s err=%v",
			runID, StageOf(err), KindOf(err), res.Duration.Truncate(time.Millisecond), err)
		return res, err
	}
	log.Printf("pipeline: done run_id=%s source_rows=%s cleaned_rows=%s summary_rows=%s elapsed=%s",
		runID, humanize.Comma(int64(res.SourceRows)), humanize.Comma(res.CleanedRows),
		humanize.Comma(res.SummaryRows), res.Duration.Truncate(time.Millisecond))
	return res, nil
}

// step times fn, records it and wraps a failure in a *StageError of kind
// (refined for a missing source table).
func step(job string, stage Stage, kind Kind, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStage(job, string(stage), err, time.Since(start))
	if err == nil {
		return nil
	}
	if stage == StageRead && errors.Is(err, storage.ErrTableNotFound) {
		kind = KindMissingSource
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
