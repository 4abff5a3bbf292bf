// Package mssql implements a Microsoft SQL Server store on top of sqlstore.
// Rows are loaded with the go-mssqldb bulk copy API inside the same
// transaction that drops and recreates the target table.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	msddl "github.com/sebamyu/Mini-Project-AIE321/internal/storage/mssql/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage/sqlstore"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// errInvalidObjectName is SQL Server's "Invalid object name" error number.
const errInvalidObjectName = 208

// Config holds MSSQL store configuration.
type Config struct {
	DSN       string
	BatchSize int
}

// Repository is an MSSQL-backed implementation of storage.Store.
type Repository struct {
	*sqlstore.Store
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	st, err := sqlstore.Open(ctx, dialect{}, cfg.DSN, cfg.BatchSize)
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Store: st, cfg: cfg}, st.Close, nil
}

// dialect is the sqlstore.Dialect for SQL Server.
type dialect struct{}

func (dialect) Driver() string { return "sqlserver" }
func (dialect) QuoteIdent(id string) string { return msddl.QuoteIdent(id) }
func (dialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }
func (dialect) MapType(k table.Kind) string { return msddl.MapType(k) }
func (dialect) TransactionalDDL() bool { return true }
func (dialect) BindValue(_ table.Kind, v any) any { return v }

func (dialect) CreateNamespaceSQL(ns string) string {
	return msddl.BuildCreateSchemaSQL(ns)
}

func (dialect) CreateTableSQL(def ddl.TableDef) (string, error) {
	return msddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(def ddl.TableDef) string {
	return msddl.BuildDropTableSQL(def)
}

func (dialect) IsUndefinedTable(err error) bool {
	var msErr mssql.Error
	return errors.As(err, &msErr) && msErr.Number == errInvalidObjectName
}

// BulkInsert streams rows through mssql.CopyIn on tx.
func (dialect) BulkInsert(ctx context.Context, tx *sql.Tx, fqn string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(fqn, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
