// Package csv parses a delimited bookings export into a table.Table. The
// whole document is materialised; column kinds are inferred from the values.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

const utf8BOM = "\uFEFF"

// DefaultNullValues are the cell values read as missing.
var DefaultNullValues = []string{"", "NA", "N/A", "n/a", "NULL", "null", "NaN", "nan"}

// Options configures ReadTable. The zero value reads comma-separated input
// with DefaultNullValues and trims surrounding spaces.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// NullValues replaces DefaultNullValues when non-nil.
	NullValues []string

	// KeepSpace disables trimming of cell values.
	KeepSpace bool
}

// ErrNoHeader is returned for an empty document.
var ErrNoHeader = errors.New("csv: missing header row")

const logEveryN = 50_000

// ReadTable reads a header row and every record from r.
//
// Header names are trimmed, lowercased and have inner spaces replaced by
// underscores; a BOM on the first cell is dropped. Every record must have as
// many fields as the header.
//
// Kinds: a column whose non-missing values all parse as integers is Int,
// else Float when they all parse as numbers, else String. A column with no
// values at all is Float.
func ReadTable(ctx context.Context, r io.Reader, opt Options) (table.Table, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.Table{}, ErrNoHeader
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("csv: read header: %w", err)
	}
	names, err := headerNames(hdr)
	if err != nil {
		return table.Table{}, err
	}

	nulls := opt.NullValues
	if nulls == nil {
		nulls = DefaultNullValues
	}
	isNull := make(map[string]bool, len(nulls))
	for _, n := range nulls {
		isNull[n] = true
	}

	var cells [][]*string
	for {
		if len(cells)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return table.Table{}, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Table{}, fmt.Errorf("csv: %w", err)
		}
		row := make([]*string, len(rec))
		for j, v := range rec {
			if !opt.KeepSpace {
				v = strings.TrimSpace(v)
			}
			if isNull[v] {
				continue
			}
			cell := strings.Clone(v)
			row[j] = &cell
		}
		cells = append(cells, row)
		if n := len(cells); n%logEveryN == 0 {
			log.Printf("reader: rows=%d", n)
		}
	}

	out := table.Table{
		Columns: make([]table.Column, len(names)),
		Rows:    make([][]any, len(cells)),
	}
	for i := range out.Rows {
		out.Rows[i] = make([]any, len(names))
	}
	for j, name := range names {
		kind := inferKind(cells, j)
		out.Columns[j] = table.Column{Name: name, Kind: kind}
		for i, row := range cells {
			if row[j] == nil {
				continue
			}
			out.Rows[i][j] = convert(kind, *row[j])
		}
	}
	return out, nil
}

func headerNames(hdr []string) ([]string, error) {
	names := make([]string, len(hdr))
	seen := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if h == "" {
			return nil, fmt.Errorf("csv: header column %d is empty", i+1)
		}
		if prev, dup := seen[h]; dup {
			return nil, fmt.Errorf("csv: header %q repeated in columns %d and %d", h, prev+1, i+1)
		}
		seen[h] = i
		names[i] = h
	}
	return names, nil
}

func inferKind(cells [][]*string, j int) table.Kind {
	kind, found := table.Int, false
	for _, row := range cells {
		v := row[j]
		if v == nil {
			continue
		}
		found = true
		if kind == table.Int {
			if _, err := strconv.ParseInt(*v, 10, 64); err == nil {
				continue
			}
			kind = table.Float
		}
		if _, err := strconv.ParseFloat(*v, 64); err != nil {
			return table.String
		}
	}
	if !found {
		return table.Float
	}
	return kind
}

// convert parses s as kind; inferKind guarantees it succeeds.
func convert(kind table.Kind, s string) any {
	switch kind {
	case table.Int:
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case table.Float:
		f, _ := strconv.ParseFloat(s, 64)
		return f
	default:
		return s
	}
}
