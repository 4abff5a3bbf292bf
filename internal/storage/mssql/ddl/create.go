// Package ddl provides MSSQL-specific helpers for generating DDL from the
// generic ddl.TableDef model.
//
// The builders here:
//   - Use SQL Server-style identifier quoting: [schema].[table], [col].
//   - Guard DROP TABLE and CREATE SCHEMA with OBJECT_ID / SCHEMA_ID checks
//     so they work on servers older than 2016.
package ddl

import (
	"fmt"
	"strings"

	gddl "github.com/sebamyu/Mini-Project-AIE321/internal/ddl"
)

// QuoteIdent brackets an identifier segment, escaping closing brackets.
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteString renders an N'...' literal.
func quoteString(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// BuildCreateTableSQL renders CREATE TABLE with T-SQL quoting.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}

// BuildDropTableSQL returns a T-SQL script dropping the table if it exists:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NOT NULL DROP TABLE [schema].[table]
func BuildDropTableSQL(t gddl.TableDef) string {
	fqn := t.FQN(QuoteIdent)
	return fmt.Sprintf("IF OBJECT_ID(%s, N'U') IS NOT NULL DROP TABLE %s", quoteString(fqn), fqn)
}

// BuildCreateSchemaSQL returns a T-SQL script creating schema if it is
// absent. CREATE SCHEMA must be the only statement in its batch, hence EXEC.
func BuildCreateSchemaSQL(schema string) string {
	create := "CREATE SCHEMA " + QuoteIdent(schema)
	return fmt.Sprintf("IF SCHEMA_ID(%s) IS NULL EXEC(%s)", quoteString(schema), quoteString(create))
}
