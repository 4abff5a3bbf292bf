// Package ddl contains MSSQL-specific helpers for generating DDL.
//
// It maps column kinds into SQL Server types. The mapping is conservative and
// biased toward widely-supported choices.
package ddl

import "github.com/sebamyu/Mini-Project-AIE321/internal/table"

// MapType maps a column kind into a SQL Server column type. Strings use
// NVARCHAR(MAX) so pass-through columns never truncate.
func MapType(k table.Kind) string {
	switch k {
	case table.Int:
		return "BIGINT"
	case table.Float:
		return "FLOAT(53)"
	case table.Bool:
		return "BIT"
	case table.Date:
		return "DATE"
	case table.Timestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
