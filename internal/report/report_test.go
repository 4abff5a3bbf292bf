package report

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

func summary() table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: "arrival_date_year", Kind: table.Int},
			{Name: "arrival_date_month_num", Kind: table.Int},
			{Name: "arrival_date_month", Kind: table.String},
			{Name: "total_bookings", Kind: table.Int},
			{Name: "total_revenue", Kind: table.Float},
			{Name: "avg_adr", Kind: table.Float},
		},
		Rows: [][]any{
			{int64(2015), int64(12), "December", int64(1), 151.0, 75.5},
			{int64(2017), int64(7), "July", int64(2), 500.0, nil},
		},
	}
}

func TestToDataFrame(t *testing.T) {
	t.Parallel()

	in := summary()
	in.Columns = append(in.Columns, table.Column{Name: "first_arrival", Kind: table.Date})
	in.Rows[0] = append(in.Rows[0], time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC))
	in.Rows[1] = append(in.Rows[1], nil)

	df := ToDataFrame(in)
	if df.Err != nil {
		t.Fatalf("frame error: %v", df.Err)
	}
	if df.Nrow() != 2 || df.Ncol() != 7 {
		t.Fatalf("dims = %dx%d, want 2x7", df.Nrow(), df.Ncol())
	}
	if got := df.Col("arrival_date_year").Elem(1).Val(); got != 2017 {
		t.Fatalf("year = %#v, want 2017", got)
	}
	if !df.Col("avg_adr").Elem(1).IsNA() {
		t.Fatal("missing avg_adr should be NA")
	}
	if got := df.Col("first_arrival").Elem(0).String(); got != "2015-12-31" {
		t.Fatalf("date = %q, want 2015-12-31", got)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, summary()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want header + 2", len(recs))
	}
	if strings.Join(recs[0], ",") != "arrival_date_year,arrival_date_month_num,arrival_date_month,total_bookings,total_revenue,avg_adr" {
		t.Fatalf("header = %v", recs[0])
	}
	if recs[1][0] != "2015" || recs[2][2] != "July" || recs[2][3] != "2" {
		t.Fatalf("rows = %v", recs[1:])
	}
}

func TestExport_XLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	if err := Export(path, summary()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != SheetName {
		t.Fatalf("sheets = %v, want [%s]", got, SheetName)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "arrival_date_year" || rows[1][2] != "December" || rows[2][0] != "2017" || rows[2][4] != "500" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestExport_CSVAndUnsupported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := Export(filepath.Join(dir, "summary.CSV"), summary()); err != nil {
		t.Fatalf("Export csv: %v", err)
	}
	if err := Export(filepath.Join(dir, "summary.json"), summary()); err == nil {
		t.Fatal("expected error for .json export")
	}
}

func TestExport_EmptyTable(t *testing.T) {
	t.Parallel()

	empty := summary()
	empty.Rows = nil
	var buf bytes.Buffer
	if err := WriteCSV(&buf, empty); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); !strings.HasPrefix(got, "arrival_date_year,") || strings.Contains(got, "\n") {
		t.Fatalf("empty csv = %q, want header only", got)
	}
}
