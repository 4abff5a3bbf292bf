// Package ddl contains SQLite-specific helpers for generating DDL.
//
// SQLite is dynamically typed, but it keeps the declared type of a column and
// reports it back on SELECT. The names below are chosen so that declared
// types map back onto the same kind when a table is read again.
package ddl

import "github.com/sebamyu/Mini-Project-AIE321/internal/table"

// MapType maps a column kind into a SQLite declared type.
//
//	Int       -> INTEGER
//	Float     -> REAL
//	Bool      -> BOOLEAN   (stored as 0/1)
//	Date      -> DATE      (stored as YYYY-MM-DD text)
//	Timestamp -> TIMESTAMP
//	String    -> TEXT
func MapType(k table.Kind) string {
	switch k {
	case table.Int:
		return "INTEGER"
	case table.Float:
		return "REAL"
	case table.Bool:
		return "BOOLEAN"
	case table.Date:
		return "DATE"
	case table.Timestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
