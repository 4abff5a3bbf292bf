package ddl

import (
	"testing"

	"github.com/sebamyu/Mini-Project-AIE321/internal/table"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind table.Kind
		want string
	}{
		{table.Int, "BIGINT"},
		{table.Float, "FLOAT(53)"},
		{table.Bool, "BIT"},
		{table.Date, "DATE"},
		{table.Timestamp, "DATETIME2"},
		{table.String, "NVARCHAR(MAX)"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Errorf("MapType(%s) = %q, want %q", tt.kind, got, tt.want)
		}
		// Read-back must land on the same kind.
		if got := table.KindFromSQLType(tt.want); got != tt.kind {
			t.Errorf("KindFromSQLType(%q) = %s, want %s", tt.want, got, tt.kind)
		}
	}
}
