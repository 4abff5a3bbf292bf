// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE/DROP TABLE statements from that model.
//
// The package does not assume a dialect. Identifier quoting is supplied by the
// caller as a Quoter and column types come from a backend's type mapper, so
// internal/storage/<backend>/ddl packages only carry what actually differs.
package ddl

import (
	"fmt"
	"strings"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// TypeMapper maps a logical column kind to a backend SQL type.
type TypeMapper func(table.Kind) string

// FromTable derives a TableDef from in-memory columns. Every column is
// nullable because missing values are legal in every kind.
func FromTable(schema, name string, cols []table.Column, mapType TypeMapper) (TableDef, error) {
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: nil type mapper")
	}
	def := TableDef{Schema: schema, Name: name, Columns: make([]ColumnDef, 0, len(cols))}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c.Name]; dup {
			return TableDef{}, fmt.Errorf("ddl: duplicate column %s in %s", c.Name, name)
		}
		seen[c.Name] = struct{}{}
		def.Columns = append(def.Columns, ColumnDef{Name: c.Name, SQLType: mapType(c.Kind), Nullable: true})
	}
	return def, nil
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.Name must be non-empty.
//   - Each column must have a non-empty Name and SQLType.
//   - A column is rendered as <Name> <SQLType> [NOT NULL].
//
// The resulting statement has the form:
//
//	CREATE TABLE <FQN> (
//	  <col1-def>,
//	  <col2-def>
//	)
func BuildCreateTableSQL(t TableDef, q Quoter) (string, error) {
	if q == nil {
		q = func(s string) string { return s }
	}
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	fqn := t.FQN(q)

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(q(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", fqn, strings.Join(cols, ",\n  ")), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for t.
func BuildDropTableSQL(t TableDef, q Quoter) string {
	return "DROP TABLE IF EXISTS " + t.FQN(q)
}
