// Package storage contains the storage-agnostic contract the pipeline talks
// to, a registry of backend factories, and shared helpers for bulk writes.
//
// Backends (postgres, mysql, mssql, sqlite) live in sub-packages and register
// themselves from init(); import internal/storage/all to enable every one.
package storage

import (
	"context"
	"errors"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// ErrTableNotFound is wrapped by ReadTable when the source table (or its
// namespace) does not exist.
var ErrTableNotFound = errors.New("storage: table not found")

// TableRef names a table inside a namespace (a Postgres/MSSQL schema, a MySQL
// database or an attached SQLite database).
type TableRef struct {
	Namespace string
	Name      string
}

func (r TableRef) String() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}

// Store is what the pipeline needs from a destination/source database.
type Store interface {
	// EnsureNamespace creates the namespace if it is absent. Calling it for an
	// existing namespace is a no-op.
	EnsureNamespace(ctx context.Context, ns string) error

	// ReadTable loads every row of ref in the store's natural order.
	ReadTable(ctx context.Context, ref TableRef) (table.Table, error)

	// ReplaceTable drops ref if it exists, recreates it from t's column kinds
	// and inserts all rows. It returns the number of rows written.
	ReplaceTable(ctx context.Context, ref TableRef, t table.Table) (int64, error)

	Close()
}
