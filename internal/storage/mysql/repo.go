// Package mysql implements a MySQL store on top of sqlstore. A namespace is a
// MySQL database. DDL commits implicitly in MySQL, so DROP/CREATE run before
// the insert transaction rather than inside it.
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	myddl "github.com/sebamyu/Mini-Project-AIE321/internal/storage/mysql/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage/sqlstore"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// MySQL server error numbers for a missing table / database.
const (
	errNoSuchTable     = 1146
	errUnknownDatabase = 1049
)

// Config holds MySQL store configuration.
type Config struct {
	DSN       string
	BatchSize int
}

// Repository is a MySQL-backed implementation of storage.Store.
type Repository struct {
	*sqlstore.Store
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. DATE/DATETIME values are always scanned as time.Time.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	st, err := sqlstore.Open(ctx, dialect{}, dsn, cfg.BatchSize)
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Store: st, cfg: cfg}, st.Close, nil
}

// normalizeDSN forces parseTime on a go-sql-driver DSN.
func normalizeDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	return c.FormatDSN(), nil
}

// dialect is the sqlstore.Dialect for go-sql-driver/mysql.
type dialect struct{}

func (dialect) Driver() string { return "mysql" }
func (dialect) QuoteIdent(id string) string { return myddl.QuoteIdent(id) }
func (dialect) Placeholder(int) string { return "?" }
func (dialect) MapType(k table.Kind) string { return myddl.MapType(k) }
func (dialect) TransactionalDDL() bool { return false }
func (dialect) BindValue(_ table.Kind, v any) any { return v }

func (dialect) CreateNamespaceSQL(ns string) string {
	return myddl.BuildCreateDatabaseSQL(ns)
}

func (dialect) CreateTableSQL(def ddl.TableDef) (string, error) {
	return myddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(def ddl.TableDef) string {
	return myddl.BuildDropTableSQL(def)
}

func (dialect) IsUndefinedTable(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == errNoSuchTable || myErr.Number == errUnknownDatabase
}
