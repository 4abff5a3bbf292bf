// Package ingest loads a raw bookings export (CSV, optionally gzipped, from
// disk or over HTTP) into the pipeline's source table, replacing whatever the
// table held before.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource"
	"github.com/sebamyu/Mini-Project-AIE321/internal/metrics"
	"github.com/sebamyu/Mini-Project-AIE321/internal/parser/csv"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// Stage is the metrics stage label for a load.
const Stage = "ingest"

// Result describes a completed load.
type Result struct {
	Rows        int64
	Columns     int
	Fingerprint uint64
	Duration    time.Duration
}

// Load reads src as CSV and replaces ref in st with its contents. The
// namespace of ref is created if absent. Nothing is written when the export
// cannot be read or parsed.
func Load(ctx context.Context, st storage.Store, src datasource.Source, ref storage.TableRef, opt csv.Options, job string) (Result, error) {
	start := time.Now()
	res, err := load(ctx, st, src, ref, opt)
	res.Duration = time.Since(start)
	metrics.RecordStage(job, Stage, err, res.Duration)
	if err != nil {
		return res, err
	}
	metrics.RecordRows(job, "ingested", res.Rows)
	log.Printf("ingest: wrote table=%s rows=%s columns=%d fingerprint=%016x elapsed=%s",
		ref, humanize.Comma(res.Rows), res.Columns, res.Fingerprint, res.Duration.Truncate(time.Millisecond))
	return res, nil
}

func load(ctx context.Context, st storage.Store, src datasource.Source, ref storage.TableRef, opt csv.Options) (Result, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: open source: %w", err)
	}
	t, err := csv.ReadTable(ctx, rc, opt)
	closeErr := rc.Close()
	if err != nil {
		return Result{}, fmt.Errorf("ingest: parse: %w", err)
	}
	if closeErr != nil {
		return Result{}, fmt.Errorf("ingest: close source: %w", closeErr)
	}
	log.Printf("ingest: parsed rows=%s columns=%d", humanize.Comma(int64(t.Len())), len(t.Columns))

	if ref.Namespace != "" {
		if err := st.EnsureNamespace(ctx, ref.Namespace); err != nil {
			return Result{}, fmt.Errorf("ingest: ensure namespace %s: %w", ref.Namespace, err)
		}
	}
	n, err := st.ReplaceTable(ctx, ref, t)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: replace %s: %w", ref, err)
	}
	return Result{Rows: n, Columns: len(t.Columns), Fingerprint: table.Fingerprint(t)}, nil
}
