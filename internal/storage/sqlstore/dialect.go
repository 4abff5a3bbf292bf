// Package sqlstore implements storage.Store on top of database/sql. The
// backend specifics (quoting, placeholders, types, namespace DDL, error
// classification, bulk paths) are supplied by a Dialect; the mysql, mssql and
// sqlite packages each provide one.
package sqlstore

import (
	"context"
	"database/sql"

	"github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// Dialect describes one database/sql backend.
type Dialect interface {
	// Driver is the database/sql driver name.
	Driver() string

	QuoteIdent(id string) string

	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	MapType(k table.Kind) string

	// CreateNamespaceSQL returns an idempotent statement creating ns, or ""
	// when the backend handles namespaces another way.
	CreateNamespaceSQL(ns string) string

	CreateTableSQL(def ddl.TableDef) (string, error)
	DropTableSQL(def ddl.TableDef) string

	// TransactionalDDL reports whether DROP/CREATE can share a transaction
	// with the inserts that follow.
	TransactionalDDL() bool

	// IsUndefinedTable reports whether err means the table or its namespace
	// does not exist.
	IsUndefinedTable(err error) bool

	// BindValue converts a table value into what the driver accepts for a
	// column of kind k.
	BindValue(k table.Kind, v any) any
}

// BulkInserter is implemented by dialects with a native bulk-load path. The
// default path is a prepared INSERT executed once per row.
type BulkInserter interface {
	BulkInsert(ctx context.Context, tx *sql.Tx, fqn string, columns []string, rows [][]any) (int64, error)
}
