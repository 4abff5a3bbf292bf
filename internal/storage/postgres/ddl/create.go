package ddl

import (
	"strings"

	gddl "github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
)

// QuoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	QuoteIdent(`adr`)        => `"adr"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL renders CREATE TABLE with Postgres quoting.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS with Postgres quoting.
func BuildDropTableSQL(t gddl.TableDef) string {
	return gddl.BuildDropTableSQL(t, QuoteIdent)
}

// BuildCreateSchemaSQL renders an idempotent CREATE SCHEMA.
func BuildCreateSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + QuoteIdent(schema)
}
