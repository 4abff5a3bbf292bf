package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebamyu/Mini-Project-AIE321/internal/config"
	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource"
	"github.com/sebamyu/Mini-Project-AIE321/internal/datasource/httpds"
	"github.com/sebamyu/Mini-Project-AIE321/internal/ingest"
	"github.com/sebamyu/Mini-Project-AIE321/internal/parser/csv"
	"github.com/sebamyu/Mini-Project-AIE321/internal/pipeline"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

func rawBookings() table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: "hotel", Kind: table.String},
			{Name: "arrival_date_year", Kind: table.Int},
			{Name: "arrival_date_month", Kind: table.String},
			{Name: "arrival_date_day_of_month", Kind: table.Int},
			{Name: "stays_in_weekend_nights", Kind: table.Int},
			{Name: "stays_in_week_nights", Kind: table.Int},
			{Name: "adults", Kind: table.Int},
			{Name: "children", Kind: table.Float},
			{Name: "babies", Kind: table.Int},
			{Name: "adr", Kind: table.Float},
			{Name: "country", Kind: table.String},
			{Name: "agent", Kind: table.Float},
			{Name: "company", Kind: table.Float},
		},
		Rows: [][]any{
			{"Resort Hotel", int64(2017), "July", int64(15), int64(1), int64(2), int64(2), nil, int64(0), 100.0, "PRT", 9.0, nil},
			{"City Hotel", int64(2017), "July", int64(3), int64(0), int64(2), int64(1), 1.0, int64(0), 100.0, nil, nil, 40.0},
			{"City Hotel", int64(2015), "December", int64(31), int64(2), int64(0), int64(2), 0.0, int64(1), 75.5, "", 14.0, nil},
		},
	}
}

func seed(t *testing.T, r *Repository, cfg config.Pipeline) {
	t.Helper()
	ctx := context.Background()
	if err := r.EnsureNamespace(ctx, cfg.Source.Namespace); err != nil {
		t.Fatalf("EnsureNamespace(source): %v", err)
	}
	src := storage.TableRef{Namespace: cfg.Source.Namespace, Name: cfg.Source.Table}
	if _, err := r.ReplaceTable(ctx, src, rawBookings()); err != nil {
		t.Fatalf("seed source: %v", err)
	}
}

func fingerprintOf(t *testing.T, r *Repository, ns, name string) uint64 {
	t.Helper()
	got, err := r.ReadTable(context.Background(), storage.TableRef{Namespace: ns, Name: name})
	if err != nil {
		t.Fatalf("ReadTable %s.%s: %v", ns, name, err)
	}
	return table.Fingerprint(got)
}

// TestPipelineEndToEnd runs the full job twice against in-memory SQLite and
// checks the destination tables are identical after each run.
func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	r := newRepo(t, ":memory:")
	seed(t, r, cfg)
	ctx := context.Background()
	dst := cfg.Destination

	first, err := pipeline.Run(ctx, r, cfg, "e2e-1")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.SourceRows != 3 || first.CleanedRows != 3 || first.SummaryRows != 2 {
		t.Fatalf("first run result = %+v", first)
	}
	cleaned1 := fingerprintOf(t, r, dst.Namespace, dst.CleanedTable)
	summary1 := fingerprintOf(t, r, dst.Namespace, dst.SummaryTable)
	if cleaned1 != first.CleanedFingerprint || summary1 != first.SummaryFingerprint {
		t.Fatal("tables read back differ from what the run reported writing")
	}

	second, err := pipeline.Run(ctx, r, cfg, "e2e-2")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if fingerprintOf(t, r, dst.Namespace, dst.CleanedTable) != cleaned1 ||
		fingerprintOf(t, r, dst.Namespace, dst.SummaryTable) != summary1 {
		t.Fatal("re-run on unchanged source changed the destination tables")
	}
	if second.CleanedFingerprint != first.CleanedFingerprint || second.SummaryFingerprint != first.SummaryFingerprint {
		t.Fatalf("run fingerprints differ: %+v vs %+v", first, second)
	}

	summary, err := r.ReadTable(ctx, storage.TableRef{Namespace: dst.Namespace, Name: dst.SummaryTable})
	if err != nil {
		t.Fatalf("ReadTable summary: %v", err)
	}
	// December 2015 first; July 2017 holds both July rows.
	if summary.Rows[0][1] != int64(12) || summary.Rows[1][3] != int64(2) {
		t.Fatalf("summary rows = %#v", summary.Rows)
	}
	if summary.Rows[1][4] != 500.0 || summary.Rows[1][5] != 100.0 {
		t.Fatalf("July summary = %#v, want revenue 500.0 avg_adr 100.0", summary.Rows[1])
	}
}

func TestPipelineEndToEnd_MissingSource(t *testing.T) {
	t.Parallel()

	r := newRepo(t, ":memory:")
	_, err := pipeline.Run(context.Background(), r, config.Default(), "")
	if pipeline.KindOf(err) != pipeline.KindMissingSource {
		t.Fatalf("kind = %q (err %v), want missing_source", pipeline.KindOf(err), err)
	}
	if !errors.Is(err, storage.ErrTableNotFound) {
		t.Fatalf("err = %v, want ErrTableNotFound in chain", err)
	}
}

func TestPipelineEndToEnd_EmptySource(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	r := newRepo(t, ":memory:")
	ctx := context.Background()
	if err := r.EnsureNamespace(ctx, cfg.Source.Namespace); err != nil {
		t.Fatalf("EnsureNamespace: %v", err)
	}
	empty := rawBookings()
	empty.Rows = nil
	if _, err := r.ReplaceTable(ctx, storage.TableRef{Namespace: cfg.Source.Namespace, Name: cfg.Source.Table}, empty); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := pipeline.Run(ctx, r, cfg, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CleanedRows != 0 || res.SummaryRows != 0 {
		t.Fatalf("result = %+v", res)
	}
	got, err := r.ReadTable(ctx, storage.TableRef{Namespace: cfg.Destination.Namespace, Name: cfg.Destination.SummaryTable})
	if err != nil {
		t.Fatalf("summary table not created: %v", err)
	}
	if got.Len() != 0 || len(got.Columns) != 6 {
		t.Fatalf("summary = %d rows, columns %v", got.Len(), got.Names())
	}
}

const bookingsCSV = `hotel,arrival_date_year,arrival_date_month,arrival_date_day_of_month,stays_in_weekend_nights,stays_in_week_nights,adults,children,babies,adr,country,agent,company
Resort Hotel,2017,July,15,1,2,2,NA,0,100,PRT,9,NULL
City Hotel,2017,July,3,0,2,1,1,0,100,NULL,NULL,40
City Hotel,2015,December,31,2,0,2,0,1,75.5,GBR,14,NULL
`

// TestIngestThenPipeline loads a CSV export from disk into the source table
// and runs the job over it.
func TestIngestThenPipeline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hotel_bookings.csv")
	if err := os.WriteFile(path, []byte(bookingsCSV), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	cfg := config.Default()
	r := newRepo(t, ":memory:")
	ctx := context.Background()
	src := storage.TableRef{Namespace: cfg.Source.Namespace, Name: cfg.Source.Table}

	loaded, err := ingest.Load(ctx, r, datasource.For(path, httpds.Config{}), src, csv.Options{}, cfg.Job)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if loaded.Rows != 3 || loaded.Columns != 13 {
		t.Fatalf("ingest result = %+v", loaded)
	}

	res, err := pipeline.Run(ctx, r, cfg, "ingest-e2e")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CleanedRows != 3 || res.SummaryRows != 2 {
		t.Fatalf("result = %+v", res)
	}
	july := res.Summary.Rows[1]
	if july[3] != int64(2) || july[4] != 500.0 {
		t.Fatalf("July summary = %#v, want 2 bookings and revenue 500.0", july)
	}
}
