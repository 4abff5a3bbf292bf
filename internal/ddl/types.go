package ddl

// ColumnDef describes a single column in a table definition.
//
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g. TEXT, BIGINT, DATE)
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the namespace, the table name and an ordered list of
// columns. Schema may be empty for backends without namespaces.
type TableDef struct {
	Schema  string
	Name    string
	Columns []ColumnDef
}

// Quoter quotes one identifier segment for a dialect. A nil Quoter emits
// identifiers as-is.
type Quoter func(string) string

// FQN renders the dotted, quoted table name.
func (t TableDef) FQN(q Quoter) string {
	if q == nil {
		q = func(s string) string { return s }
	}
	if t.Schema == "" {
		return q(t.Name)
	}
	return q(t.Schema) + "." + q(t.Name)
}
