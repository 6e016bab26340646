package ddl

import (
	"strings"
	"testing"
)

func TestBuildCreateTableSQL(t *testing.T) {
	def := Text("main.people", "TEXT", []string{"id", "first name"})
	got, err := BuildCreateTableSQL(def, Quoter{`"`, `"`}, true)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"main\".\"people\" (\n" +
		"  \"id\" TEXT,\n" +
		"  \"first name\" TEXT\n);"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQL_Errors(t *testing.T) {
	q := Quoter{"`", "`"}
	tests := []struct {
		name string
		def  TableDef
		want string
	}{
		{"no table", TableDef{Columns: []ColumnDef{{Name: "a", SQLType: "TEXT"}}}, "FQN"},
		{"no columns", TableDef{FQN: "t"}, "at least one column"},
		{"empty name", TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "TEXT"}}}, "empty name"},
		{"no type", TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}}}, "missing SQLType"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildCreateTableSQL(tc.def, q, false)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v; want containing %q", err, tc.want)
			}
		})
	}
}

func TestQuoter(t *testing.T) {
	q := Quoter{"[", "]"}
	if got := q.FQN("dbo. weird]name"); got != "[dbo].[weird]]name]" {
		t.Fatalf("FQN = %q", got)
	}
	if got := (Quoter{`"`, `"`}).Ident(`a"b`); got != `"a""b"` {
		t.Fatalf("Ident = %q", got)
	}
}

func TestText(t *testing.T) {
	def := Text("t", "TEXT", []string{"a", "b"})
	if len(def.Columns) != 2 || def.Columns[1] != (ColumnDef{Name: "b", SQLType: "TEXT"}) {
		t.Fatalf("def=%+v", def)
	}
}
