// Package report exports a table (normally the monthly summary) to a local
// file for spreadsheet and dashboard tools. The format follows the file
// extension: .csv or .xlsx.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// SheetName is the worksheet written to .xlsx exports.
const SheetName = "monthly_summary"

// Export writes t to path, choosing the format from the extension.
func Export(path string, t table.Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("report: create %s: %w", path, err)
		}
		if err := WriteCSV(f, t); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("report: close %s: %w", path, err)
		}
		return nil
	case ".xlsx":
		return WriteXLSX(path, t)
	default:
		return fmt.Errorf("report: unsupported export format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ToDataFrame converts t into a gota DataFrame. Missing values become NA;
// dates are rendered as YYYY-MM-DD strings.
func ToDataFrame(t table.Table) dataframe.DataFrame {
	cols := make([]series.Series, len(t.Columns))
	for j, c := range t.Columns {
		vals := make([]interface{}, t.Len())
		for i, r := range t.Rows {
			vals[i] = cell(c.Kind, r[j])
		}
		cols[j] = series.New(vals, seriesType(c.Kind), c.Name)
	}
	return dataframe.New(cols...)
}

func seriesType(k table.Kind) series.Type {
	switch k {
	case table.Int:
		return series.Int
	case table.Float:
		return series.Float
	case table.Bool:
		return series.Bool
	default:
		return series.String
	}
}

// cell maps a table value onto a type gota's elements accept.
func cell(k table.Kind, v any) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		return int(x)
	case time.Time:
		if k == table.Date {
			return x.Format(table.DateLayout)
		}
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

// WriteCSV writes t as CSV with a header row.
func WriteCSV(w io.Writer, t table.Table) error {
	df := ToDataFrame(t)
	if df.Err != nil {
		return fmt.Errorf("report: build frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes t to a workbook at path with a single SheetName sheet.
// NA values are left as empty cells.
func WriteXLSX(path string, t table.Table) error {
	df := ToDataFrame(t)
	if df.Err != nil {
		return fmt.Errorf("report: build frame: %w", df.Err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}

	names := df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("report: header: %w", err)
	}

	for i := 0; i < df.Nrow(); i++ {
		row := make([]interface{}, len(names))
		for j, n := range names {
			e := df.Col(n).Elem(i)
			if e.IsNA() {
				continue
			}
			row[j] = e.Val()
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report: row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(SheetName, addr, &row); err != nil {
			return fmt.Errorf("report: row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
