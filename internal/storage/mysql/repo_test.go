package mysql

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sebamyu/Mini-Project-AIE321/internal/storage"
	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	st, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@tcp(db:3306)/hotel", BatchSize: 3})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.DSN != "u:p@tcp(db:3306)/hotel" || gotCfg.BatchSize != 3 {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	st.Close()
	if !closed {
		t.Fatalf("Close did not invoke closeFn")
	}
}

func TestNormalizeDSN(t *testing.T) {
	t.Parallel()

	got, err := normalizeDSN("root:secret@tcp(127.0.0.1:3306)/hotel")
	if err != nil {
		t.Fatalf("normalizeDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("normalizeDSN = %q, want parseTime=true", got)
	}
	c, err := mysql.ParseDSN(got)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if c.User != "root" || c.Passwd != "secret" || c.Addr != "127.0.0.1:3306" || c.DBName != "hotel" {
		t.Fatalf("normalized config lost fields: %+v", c)
	}

	if _, err := normalizeDSN("not a dsn"); err == nil {
		t.Fatalf("expected error for malformed DSN")
	}
}

func TestIsUndefinedTable(t *testing.T) {
	t.Parallel()

	d := dialect{}
	for num, want := range map[uint16]bool{1146: true, 1049: true, 1062: false} {
		err := fmt.Errorf("query: %w", &mysql.MySQLError{Number: num})
		if got := d.IsUndefinedTable(err); got != want {
			t.Errorf("IsUndefinedTable(%d) = %v, want %v", num, got, want)
		}
	}
	if d.IsUndefinedTable(errors.New("Table doesn't exist")) {
		t.Fatalf("plain error classified as undefined table")
	}
	if d.TransactionalDDL() {
		t.Fatalf("MySQL DDL must not be treated as transactional")
	}
}

// TestReplaceAndReadIntegration runs against a real MySQL when
// TEST_MYSQL_DSN is set, e.g. 'root:secret@tcp(127.0.0.1:3306)/'.
func TestReplaceAndReadIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: set TEST_MYSQL_DSN to run")
	}

	ctx := context.Background()
	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	const ns = "hoteletl_it"
	if err := repo.EnsureNamespace(ctx, ns); err != nil {
		t.Fatalf("EnsureNamespace: %v", err)
	}
	defer func() { _, _ = repo.DB().ExecContext(ctx, "DROP DATABASE IF EXISTS `"+ns+"`") }()

	ref := storage.TableRef{Namespace: ns, Name: "monthly_summary"}
	in := table.Table{
		Columns: []table.Column{
			{Name: "arrival_date_year", Kind: table.Int},
			{Name: "arrival_date_month", Kind: table.String},
			{Name: "avg_adr", Kind: table.Float},
			{Name: "arrival_full_date", Kind: table.Date},
		},
		Rows: [][]any{
			{int64(2017), "July", 100.0, time.Date(2017, 7, 15, 0, 0, 0, 0, time.UTC)},
			{int64(2017), "August", nil, nil},
		},
	}
	for i := 0; i < 2; i++ {
		if _, err := repo.ReplaceTable(ctx, ref, in); err != nil {
			t.Fatalf("ReplaceTable #%d: %v", i, err)
		}
	}
	got, err := repo.ReadTable(ctx, ref)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if table.Fingerprint(got) != table.Fingerprint(in) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got.Rows, in.Rows)
	}
	if _, err := repo.ReadTable(ctx, storage.TableRef{Namespace: ns, Name: "missing"}); !errors.Is(err, storage.ErrTableNotFound) {
		t.Fatalf("missing table err = %v", err)
	}
}
