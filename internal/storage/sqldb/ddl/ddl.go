// Package ddl is a small, dialect-neutral model of a table definition with a
// renderer for CREATE TABLE statements. Dialects choose the identifier
// quoting and whether to emit IF NOT EXISTS; anything more exotic (such as
// a T-SQL existence guard) wraps the rendered column list.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes one nullable column. Name is unquoted; quoting
// happens at render time.
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableDef is a possibly schema-qualified table name in dotted form and its
// ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Text builds a table of columns of one SQL type, named after columns.
func Text(fqn, sqlType string, columns []string) TableDef {
	t := TableDef{FQN: fqn, Columns: make([]ColumnDef, len(columns))}
	for i, c := range columns {
		t.Columns[i] = ColumnDef{Name: c, SQLType: sqlType}
	}
	return t
}

// Quoter wraps identifiers in a dialect's delimiters, doubling any closing
// delimiter inside the name.
type Quoter struct {
	Open, Close string
}

// Ident quotes one identifier.
func (q Quoter) Ident(id string) string {
	return q.Open + strings.ReplaceAll(id, q.Close, q.Close+q.Close) + q.Close
}

// FQN quotes every dotted part of a qualified name, e.g. dbo.users becomes
// [dbo].[users]. Empty parts are dropped.
func (q Quoter) FQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, q.Ident(p))
		}
	}
	return strings.Join(out, ".")
}

// ColumnList validates t and renders its column definitions.
func ColumnList(t TableDef, q Quoter) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("ddl: table %s needs at least one column", fqn)
	}
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("ddl: column %s missing SQLType", name)
		}
		cols = append(cols, q.Ident(name)+" "+typ)
	}
	return cols, nil
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE [IF NOT EXISTS] <fqn> (
//	  <col> <type>,
//	  ...
//	);
func BuildCreateTableSQL(t TableDef, q Quoter, ifNotExists bool) (string, error) {
	cols, err := ColumnList(t, q)
	if err != nil {
		return "", err
	}
	guard := ""
	if ifNotExists {
		guard = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (\n  %s\n);", guard, q.FQN(t.FQN), strings.Join(cols, ",\n  ")), nil
}
