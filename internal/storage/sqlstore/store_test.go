package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

// liteDialect is a minimal SQLite dialect; the real one lives in the sqlite
// backend, which depends on this package.
type liteDialect struct {
	transactional bool
	bulk          *int
}

func (liteDialect) Driver() string { return "sqlite" }
func (liteDialect) QuoteIdent(id string) string { return `"` + id + `"` }
func (liteDialect) Placeholder(int) string { return "?" }
func (liteDialect) CreateNamespaceSQL(string) string { return "" }
func (liteDialect) BindValue(_ table.Kind, v any) any {
	return v
}

func (liteDialect) MapType(k table.Kind) string {
	switch k {
	case table.Int:
		return "INTEGER"
	case table.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (d liteDialect) CreateTableSQL(def ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(def, d.QuoteIdent)
}

func (d liteDialect) DropTableSQL(def ddl.TableDef) string {
	return ddl.BuildDropTableSQL(def, d.QuoteIdent)
}

func (d liteDialect) TransactionalDDL() bool { return d.transactional }

func (liteDialect) IsUndefinedTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// bulkDialect adds a BulkInsert that counts calls and delegates to plain
// INSERTs.
type bulkDialect struct{ liteDialect }

func (d bulkDialect) BulkInsert(ctx context.Context, tx *sql.Tx, fqn string, columns []string, rows [][]any) (int64, error) {
	*d.bulk++
	marks := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+fqn+" VALUES ("+marks+")", r...); err != nil {
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

func openMem(t *testing.T, d Dialect, batch int) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	s := New(db, d, batch)
	t.Cleanup(s.Close)
	return s
}

func sample() table.Table {
	return table.Table{
		Columns: []table.Column{
			{Name: "arrival_date_month", Kind: table.String},
			{Name: "total_bookings", Kind: table.Int},
			{Name: "total_revenue", Kind: table.Float},
		},
		Rows: [][]any{
			{"July", int64(2), 500.0},
			{"August", int64(1), nil},
			{nil, nil, 12.5},
		},
	}
}

func TestReplaceAndRead(t *testing.T) {
	t.Parallel()

	for _, transactional := range []bool{true, false} {
		s := openMem(t, liteDialect{transactional: transactional}, 2)
		ctx := context.Background()
		ref := storage.TableRef{Name: "monthly_summary"}

		for i := 0; i < 2; i++ {
			n, err := s.ReplaceTable(ctx, ref, sample())
			if err != nil {
				t.Fatalf("ReplaceTable(transactional=%v) #%d: %v", transactional, i, err)
			}
			if n != 3 {
				t.Fatalf("wrote %d rows, want 3", n)
			}
		}

		got, err := s.ReadTable(ctx, ref)
		if err != nil {
			t.Fatalf("ReadTable: %v", err)
		}
		if table.Fingerprint(got) != table.Fingerprint(sample()) {
			t.Fatalf("round trip mismatch: %v %#v", got.Columns, got.Rows)
		}
	}
}

func TestReadTable_UndeclaredTypes(t *testing.T) {
	t.Parallel()

	s := openMem(t, liteDialect{transactional: true}, 0)
	ctx := context.Background()
	if _, err := s.DB().ExecContext(ctx, `CREATE TABLE raw (a, b, c)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.DB().ExecContext(ctx, `INSERT INTO raw VALUES (NULL, 'x', 1.5), (7, 'y', 2.5)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ReadTable(ctx, storage.TableRef{Name: "raw"})
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	want := []table.Kind{table.Int, table.String, table.Float}
	for i, k := range want {
		if got.Columns[i].Kind != k {
			t.Errorf("column %s kind = %s, want %s", got.Columns[i].Name, got.Columns[i].Kind, k)
		}
	}
	if got.Rows[0][0] != nil || got.Rows[1][0] != int64(7) {
		t.Fatalf("rows = %#v", got.Rows)
	}
}

func TestReadTable_NotFound(t *testing.T) {
	t.Parallel()

	s := openMem(t, liteDialect{}, 0)
	_, err := s.ReadTable(context.Background(), storage.TableRef{Name: "missing"})
	if !errors.Is(err, storage.ErrTableNotFound) {
		t.Fatalf("err = %v, want ErrTableNotFound", err)
	}
}

func TestReplaceTable_UsesBulkInserter(t *testing.T) {
	t.Parallel()

	calls := 0
	s := openMem(t, bulkDialect{liteDialect{transactional: true, bulk: &calls}}, 2)
	n, err := s.ReplaceTable(context.Background(), storage.TableRef{Name: "t"}, sample())
	if err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}
	if n != 3 || calls != 2 {
		t.Fatalf("n=%d bulk calls=%d, want 3 and 2", n, calls)
	}
}

func TestReplaceTable_RollbackKeepsOldTable(t *testing.T) {
	t.Parallel()

	s := openMem(t, liteDialect{transactional: true}, 0)
	ctx := context.Background()
	ref := storage.TableRef{Name: "t"}
	if _, err := s.ReplaceTable(ctx, ref, sample()); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}

	bad := sample()
	bad.Rows = append(bad.Rows, []any{"short row"})
	if _, err := s.ReplaceTable(ctx, ref, bad); err == nil {
		t.Fatalf("expected insert error for short row")
	}

	got, err := s.ReadTable(ctx, ref)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if table.Fingerprint(got) != table.Fingerprint(sample()) {
		t.Fatalf("failed replace changed the table: %#v", got.Rows)
	}
}
