package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// Store is a database/sql-backed storage.Store.
type Store struct {
	db        *sql.DB
	d         Dialect
	batchSize int
}

var _ storage.Store = (*Store)(nil)

// Open opens and pings a database/sql pool for d.
func Open(ctx context.Context, d Dialect, dsn string, batchSize int) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d.Driver())
	}
	db, err := sql.Open(d.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Driver(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Driver(), err)
	}
	return New(db, d, batchSize), nil
}

// New wraps an already-open pool.
func New(db *sql.DB, d Dialect, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}
	return &Store{db: db, d: d, batchSize: batchSize}
}

// DB exposes the pool for backend-specific statements.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the pool.
func (s *Store) Close() { _ = s.db.Close() }

// FQN renders ref with the dialect's quoting.
func (s *Store) FQN(ref storage.TableRef) string {
	return ddl.TableDef{Schema: ref.Namespace, Name: ref.Name}.FQN(s.d.QuoteIdent)
}

// EnsureNamespace runs the dialect's idempotent namespace DDL.
func (s *Store) EnsureNamespace(ctx context.Context, ns string) error {
	q := s.d.CreateNamespaceSQL(ns)
	if q == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("%s: create namespace %s: %w", s.d.Driver(), ns, err)
	}
	return nil
}

// ReadTable runs SELECT * against ref and materialises the result. Column
// kinds come from the driver's declared types; columns without one (e.g.
// SQLite expressions) take the kind of their first non-NULL value.
func (s *Store) ReadTable(ctx context.Context, ref storage.TableRef) (table.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.FQN(ref))
	if err != nil {
		if s.d.IsUndefinedTable(err) {
			return table.Table{}, fmt.Errorf("%s: read %s: %w: %w", s.d.Driver(), ref, storage.ErrTableNotFound, err)
		}
		return table.Table{}, fmt.Errorf("%s: read %s: %w", s.d.Driver(), ref, err)
	}
	defer rows.Close()

	cts, err := rows.ColumnTypes()
	if err != nil {
		return table.Table{}, fmt.Errorf("%s: column types: %w", s.d.Driver(), err)
	}
	out := table.Table{Columns: make([]table.Column, len(cts))}
	declared := make([]bool, len(cts))
	for i, ct := range cts {
		typ := ct.DatabaseTypeName()
		out.Columns[i] = table.Column{Name: ct.Name(), Kind: table.KindFromSQLType(typ)}
		declared[i] = strings.TrimSpace(typ) != ""
	}

	for rows.Next() {
		vals := make([]any, len(cts))
		ptrs := make([]any, len(cts))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return table.Table{}, fmt.Errorf("%s: scan %s: %w", s.d.Driver(), ref, err)
		}
		// Drivers may reuse []byte buffers between rows.
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, fmt.Errorf("%s: read %s: %w", s.d.Driver(), ref, err)
	}

	for j := range out.Columns {
		if !declared[j] {
			for _, r := range out.Rows {
				if k, ok := table.KindOf(r[j]); ok && r[j] != nil {
					out.Columns[j].Kind = k
					break
				}
			}
		}
		for i, r := range out.Rows {
			v, err := table.Normalize(out.Columns[j].Kind, r[j])
			if err != nil {
				return table.Table{}, fmt.Errorf("%s: read %s: row %d column %s: %w",
					s.d.Driver(), ref, i+1, out.Columns[j].Name, err)
			}
			r[j] = v
		}
	}
	return out, nil
}

// ReplaceTable drops and recreates ref from t's column kinds and inserts
// every row. On dialects with transactional DDL the whole replacement
// commits or rolls back as one unit.
func (s *Store) ReplaceTable(ctx context.Context, ref storage.TableRef, t table.Table) (int64, error) {
	def, err := ddl.FromTable(ref.Namespace, ref.Name, t.Columns, s.d.MapType)
	if err != nil {
		return 0, err
	}
	create, err := s.d.CreateTableSQL(def)
	if err != nil {
		return 0, err
	}
	drop := s.d.DropTableSQL(def)

	if !s.d.TransactionalDDL() {
		for _, q := range []string{drop, create} {
			if _, err := s.db.ExecContext(ctx, q); err != nil {
				return 0, fmt.Errorf("%s: replace %s: %w", s.d.Driver(), ref, err)
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", s.d.Driver(), err)
	}
	rollback := func() { _ = tx.Rollback() }

	if s.d.TransactionalDDL() {
		for _, q := range []string{drop, create} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				rollback()
				return 0, fmt.Errorf("%s: replace %s: %w", s.d.Driver(), ref, err)
			}
		}
	}

	n, err := s.insert(ctx, tx, ref, t)
	if err != nil {
		rollback()
		return n, fmt.Errorf("%s: insert %s: %w", s.d.Driver(), ref, err)
	}
	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("%s: commit %s: %w", s.d.Driver(), ref, err)
	}
	return n, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, ref storage.TableRef, t table.Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	names := t.Names()
	fqn := s.FQN(ref)

	bound := make([][]any, t.Len())
	for i, r := range t.Rows {
		b := make([]any, len(r))
		for j, v := range r {
			b[j] = s.d.BindValue(t.Columns[j].Kind, v)
		}
		bound[i] = b
	}

	if bi, ok := s.d.(BulkInserter); ok {
		return storage.CopyBatches(ctx, names, bound, s.batchSize,
			func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
				return bi.BulkInsert(ctx, tx, fqn, cols, rows)
			})
	}

	quoted := make([]string, len(names))
	marks := make([]string, len(names))
	for i, n := range names {
		quoted[i] = s.d.QuoteIdent(n)
		marks[i] = s.d.Placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		fqn, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	return storage.CopyBatches(ctx, names, bound, s.batchSize,
		func(ctx context.Context, _ []string, rows [][]any) (int64, error) {
			var n int64
			for _, r := range rows {
				if _, err := stmt.ExecContext(ctx, r...); err != nil {
					return n, err
				}
				n++
			}
			return n, nil
		})
}
