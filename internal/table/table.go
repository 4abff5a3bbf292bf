// Package table defines the in-memory tabular structure that flows between
// pipeline stages: an ordered list of typed columns plus row-major values.
//
// A Table is what the Reader materialises from the source, what the booking
// transformer and aggregator consume and produce, and what storage backends
// write back. Values are always one of the Go types listed on Kind, or nil for
// a missing value.
package table

import (
	"fmt"
	"strings"
)

// Kind is the logical type of a column.
//
//	Int       -> int64
//	Float     -> float64
//	String    -> string
//	Bool      -> bool
//	Date      -> time.Time (UTC midnight)
//	Timestamp -> time.Time
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	Date
	Timestamp
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	default:
		return "string"
	}
}

// Column is a named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Table is a fully materialised result set. Rows[i][j] holds the value of
// Columns[j] for row i.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Names returns the column names in order.
func (t Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column and whether it exists.
func (t Table) Column(name string) (Column, bool) {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

// Clone returns a deep copy of the column list and row slices. Values
// themselves are immutable Go scalars so they are shared.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]Column(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append(make([]any, 0, len(r)), r...)
	}
	return out
}

// AddColumn appends a column and one value per row. len(values) must equal
// t.Len().
func (t *Table) AddColumn(c Column, values []any) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("table: column %s has %d values for %d rows", c.Name, len(values), len(t.Rows))
	}
	if t.Index(c.Name) >= 0 {
		return fmt.Errorf("table: duplicate column %s", c.Name)
	}
	t.Columns = append(t.Columns, c)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// KindFromSQLType maps a database type name (as reported by a driver) onto a
// Kind. Unknown names fall back to String.
func KindFromSQLType(name string) Kind {
	s := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case s == "":
		return String
	case strings.Contains(s, "TIMESTAMP"), strings.Contains(s, "DATETIME"):
		return Timestamp
	case s == "DATE":
		return Date
	case strings.Contains(s, "BOOL"), s == "BIT":
		return Bool
	case strings.Contains(s, "INT"):
		return Int
	case strings.Contains(s, "REAL"), strings.Contains(s, "FLOA"), strings.Contains(s, "DOUB"),
		strings.Contains(s, "NUMERIC"), strings.Contains(s, "DECIMAL"), strings.Contains(s, "MONEY"):
		return Float
	default:
		return String
	}
}
