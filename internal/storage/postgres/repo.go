// Package postgres implements a Postgres store using pgx v5. Reads stream
// SELECT * through the pool; writes drop, recreate and COPY the target table
// inside one transaction so a failed write leaves the previous table intact.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	gddl "github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	pgddl "github.com/sebamyu/Mini-Project-AIE321/internal/storage/postgres/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// Config holds Postgres store configuration.
type Config struct {
	DSN       string // connection string for pgxpool
	BatchSize int    // rows per COPY call; zero uses storage.DefaultBatchSize
}

// Repository is a Postgres-backed implementation of storage.Store.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres ping: %w", err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = storage.DefaultBatchSize
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, close, nil
}

// EnsureNamespace runs CREATE SCHEMA IF NOT EXISTS.
func (r *Repository) EnsureNamespace(ctx context.Context, ns string) error {
	if _, err := r.pool.Exec(ctx, pgddl.BuildCreateSchemaSQL(ns)); err != nil {
		return fmt.Errorf("create schema %s: %w", ns, err)
	}
	return nil
}

// ReadTable runs SELECT * against ref and materialises every row.
func (r *Repository) ReadTable(ctx context.Context, ref storage.TableRef) (table.Table, error) {
	rows, err := r.pool.Query(ctx, "SELECT * FROM "+fqn(ref))
	if err != nil {
		return table.Table{}, readError(ref, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	out := table.Table{Columns: make([]table.Column, len(fds))}
	for i, fd := range fds {
		out.Columns[i] = table.Column{Name: fd.Name, Kind: kindForOID(fd.DataTypeOID)}
	}

	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return table.Table{}, fmt.Errorf("read %s: %w", ref, err)
		}
		row := make([]any, len(raw))
		for j, v := range raw {
			nv, err := table.Normalize(out.Columns[j].Kind, fromPG(v))
			if err != nil {
				return table.Table{}, fmt.Errorf("read %s: row %d column %s: %w", ref, len(out.Rows)+1, out.Columns[j].Name, err)
			}
			row[j] = nv
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, readError(ref, err)
	}
	return out, nil
}

// ReplaceTable drops ref, recreates it from t's column kinds and COPYs the
// rows, all in one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, ref storage.TableRef, t table.Table) (int64, error) {
	def, err := gddl.FromTable(ref.Namespace, ref.Name, t.Columns, pgddl.MapType)
	if err != nil {
		return 0, err
	}
	create, err := pgddl.BuildCreateTableSQL(def)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, pgddl.BuildDropTableSQL(def)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", ref, err)
	}
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", ref, err)
	}

	ident := pgx.Identifier{ref.Name}
	if ref.Namespace != "" {
		ident = pgx.Identifier{ref.Namespace, ref.Name}
	}
	n, err := storage.CopyBatches(ctx, t.Names(), t.Rows, r.cfg.BatchSize,
		func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
			return tx.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(rows))
		})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy into %s: %s (%s): %w", ref, pgErr.Detail, pgErr.SQLState(), err)
		}
		return n, fmt.Errorf("copy into %s: %w", ref, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return n, fmt.Errorf("commit %s: %w", ref, err)
	}
	return n, nil
}

func fqn(ref storage.TableRef) string {
	return gddl.TableDef{Schema: ref.Namespace, Name: ref.Name}.FQN(pgddl.QuoteIdent)
}

// isUndefinedTable reports undefined_table (42P01) and invalid_schema_name
// (3F000).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "42P01" || pgErr.Code == "3F000"
}

func readError(ref storage.TableRef, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("read %s: %w: %w", ref, storage.ErrTableNotFound, err)
	}
	return fmt.Errorf("read %s: %w", ref, err)
}

// kindForOID maps a result column's type OID onto a table kind. Types
// without a dedicated kind are read as text.
func kindForOID(oid uint32) table.Kind {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return table.Int
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return table.Float
	case pgtype.BoolOID:
		return table.Bool
	case pgtype.DateOID:
		return table.Date
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return table.Timestamp
	default:
		return table.String
	}
}

// fromPG unwraps pgx value types that table.Normalize does not know.
func fromPG(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	default:
		return v
	}
}
