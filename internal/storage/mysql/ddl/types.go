// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import "github.com/sebamyu/Mini-Project-AIE321/internal/table"

// MapType maps a column kind into a MySQL column type.
//
// BOOLEAN is an alias for TINYINT(1) in MySQL, so a Bool column reads back
// as Int.
func MapType(k table.Kind) string {
	switch k {
	case table.Int:
		return "BIGINT"
	case table.Float:
		return "DOUBLE"
	case table.Bool:
		return "BOOLEAN"
	case table.Date:
		return "DATE"
	case table.Timestamp:
		return "DATETIME(6)"
	default:
		return "LONGTEXT"
	}
}
