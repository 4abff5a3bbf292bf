package ddl

import (
	"strings"

	gddl "github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
)

// QuoteIdent double-quotes an identifier segment, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL renders CREATE TABLE with SQLite quoting. A non-empty
// Schema is the name of an attached database.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS with SQLite quoting.
func BuildDropTableSQL(t gddl.TableDef) string {
	return gddl.BuildDropTableSQL(t, QuoteIdent)
}
