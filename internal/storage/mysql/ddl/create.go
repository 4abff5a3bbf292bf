package ddl

import (
	"strings"

	gddl "github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
)

// QuoteIdent backtick-quotes an identifier segment.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// BuildCreateTableSQL renders CREATE TABLE with MySQL quoting. Schema is the
// database name.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS with MySQL quoting.
func BuildDropTableSQL(t gddl.TableDef) string {
	return gddl.BuildDropTableSQL(t, QuoteIdent)
}

// BuildCreateDatabaseSQL renders an idempotent CREATE DATABASE. In MySQL a
// schema and a database are the same thing.
func BuildCreateDatabaseSQL(db string) string {
	return "CREATE DATABASE IF NOT EXISTS " + QuoteIdent(db)
}
