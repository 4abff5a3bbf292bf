package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	sqliteddl "github.com/sebamyu/Mini-Project-AIE321/internal/storage/sqlite/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage/sqlstore"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"

	_ "modernc.org/sqlite"
)

// dialect is the sqlstore.Dialect for modernc.org/sqlite.
type dialect struct{}

func (dialect) Driver() string { return "sqlite" }
func (dialect) QuoteIdent(id string) string { return sqliteddl.QuoteIdent(id) }
func (dialect) Placeholder(int) string { return "?" }
func (dialect) MapType(k table.Kind) string { return sqliteddl.MapType(k) }
func (dialect) CreateNamespaceSQL(string) string { return "" }
func (dialect) TransactionalDDL() bool { return true }

func (dialect) CreateTableSQL(def ddl.TableDef) (string, error) {
	return sqliteddl.BuildCreateTableSQL(def)
}

func (dialect) DropTableSQL(def ddl.TableDef) string {
	return sqliteddl.BuildDropTableSQL(def)
}

func (dialect) IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "unknown database")
}

// BindValue stores dates as YYYY-MM-DD text so they sort and compare as
// dates inside SQLite.
func (dialect) BindValue(k table.Kind, v any) any {
	if t, ok := v.(time.Time); ok && k == table.Date {
		return t.Format(table.DateLayout)
	}
	return v
}

// Repository is a SQLite-backed storage.Store.
type Repository struct {
	*sqlstore.Store
	dir    string
	memory bool
}

// NewRepository opens a SQLite database using cfg.DSN and returns a
// Repository plus a Close function for cleanup.
//
// The pool holds exactly one connection that is never retired: attached
// databases belong to a connection, and an in-memory namespace dies with it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	dir, memory := locate(cfg.DSN)
	r := &Repository{
		Store:  sqlstore.New(db, dialect{}, cfg.BatchSize),
		dir:    dir,
		memory: memory,
	}
	return r, func() { _ = db.Close() }, nil
}

// locate returns the directory holding the main database file, or memory
// when the DSN names an in-memory database.
func locate(dsn string) (dir string, memory bool) {
	p := dsn
	if i := strings.IndexByte(p, '?'); i >= 0 {
		if strings.Contains(p[i+1:], "mode=memory") {
			return "", true
		}
		p = p[:i]
	}
	p = strings.TrimPrefix(p, "file:")
	if p == "" || p == ":memory:" {
		return "", true
	}
	return filepath.Dir(p), false
}

func builtin(ns string) bool {
	return ns == "" || strings.EqualFold(ns, "main") || strings.EqualFold(ns, "temp")
}

// namespacePath is the file attached for ns.
func (r *Repository) namespacePath(ns string) string {
	if r.memory {
		return ":memory:"
	}
	return filepath.Join(r.dir, ns+".db")
}

func (r *Repository) attached(ctx context.Context, ns string) (bool, error) {
	rows, err := r.DB().QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return false, fmt.Errorf("sqlite: database_list: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			seq  int64
			name string
			file sql.NullString
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return false, fmt.Errorf("sqlite: database_list: %w", err)
		}
		if strings.EqualFold(name, ns) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (r *Repository) attach(ctx context.Context, ns string) error {
	q := "ATTACH DATABASE ? AS " + sqliteddl.QuoteIdent(ns)
	if _, err := r.DB().ExecContext(ctx, q, r.namespacePath(ns)); err != nil {
		return fmt.Errorf("sqlite: attach %s: %w", ns, err)
	}
	return nil
}

// EnsureNamespace attaches the database backing ns, creating its file if
// needed. main and temp always exist.
func (r *Repository) EnsureNamespace(ctx context.Context, ns string) error {
	if builtin(ns) {
		return nil
	}
	ok, err := r.attached(ctx, ns)
	if err != nil || ok {
		return err
	}
	return r.attach(ctx, ns)
}

// ReadTable attaches an existing namespace file on demand, then reads ref.
// A namespace without a backing database is reported as ErrTableNotFound.
func (r *Repository) ReadTable(ctx context.Context, ref storage.TableRef) (table.Table, error) {
	if !builtin(ref.Namespace) {
		ok, err := r.attached(ctx, ref.Namespace)
		if err != nil {
			return table.Table{}, err
		}
		if !ok {
			if r.memory {
				return table.Table{}, fmt.Errorf("sqlite: read %s: %w", ref, storage.ErrTableNotFound)
			}
			if _, err := os.Stat(r.namespacePath(ref.Namespace)); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return table.Table{}, fmt.Errorf("sqlite: read %s: %w", ref, storage.ErrTableNotFound)
				}
				return table.Table{}, fmt.Errorf("sqlite: read %s: %w", ref, err)
			}
			if err := r.attach(ctx, ref.Namespace); err != nil {
				return table.Table{}, err
			}
		}
	}
	return r.Store.ReadTable(ctx, ref)
}
