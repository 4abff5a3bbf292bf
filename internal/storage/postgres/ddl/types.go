// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "github.com/sebamyu/Mini-Project-AIE321/internal/table"

// MapType maps a column kind into a Postgres SQL type.
//
//	Int       -> BIGINT
//	Float     -> DOUBLE PRECISION
//	Bool      -> BOOLEAN
//	Date      -> DATE
//	Timestamp -> TIMESTAMPTZ
//	String    -> TEXT
func MapType(k table.Kind) string {
	switch k {
	case table.Int:
		return "BIGINT"
	case table.Float:
		return "DOUBLE PRECISION"
	case table.Bool:
		return "BOOLEAN"
	case table.Date:
		return "DATE"
	case table.Timestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
