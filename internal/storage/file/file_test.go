package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"reports/internal/config"
	"reports/internal/dataset"
	"reports/internal/storage"
)

func people(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New([]string{"name", "surname", "age"},
		dataset.Row{"Matteo", "Guadrini", 35},
		dataset.Row{"Arthur", "Dent", 42},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestFactory_BuildsEveryKind(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{"file", "log", "csv", "json", "yaml", "xlsx"} {
		m, err := storage.New(context.Background(), storage.Config{Kind: kind, Filename: filepath.Join(dir, "x")})
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		if m.Kind() != kind {
			t.Fatalf("Kind()=%q; want %q", m.Kind(), kind)
		}
		if _, ok := m.(storage.Readable); !ok {
			t.Fatalf("%s is not Readable", kind)
		}
		if _, ok := m.(storage.Writable); !ok {
			t.Fatalf("%s is not Writable", kind)
		}
		if fb, ok := m.(storage.FileBacked); !ok || fb.Path() == "" {
			t.Fatalf("%s is not FileBacked", kind)
		}
	}
	if _, err := storage.New(context.Background(), storage.Config{Kind: "csv"}); err == nil {
		t.Fatalf("csv without filename succeeded")
	}
}

func TestText_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.txt")
	m := NewText(path)
	if err := m.Write(ctx, [][]any{{"a", 1}, {"b", 2}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "a\n1\nb\n2" {
		t.Fatalf("file = %q", raw)
	}
	d, err := m.Read(ctx, storage.WithHeaders("line"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Len() != 4 || d.Width() != 1 || d.Headers()[0] != "line" || d.Row(3)[0] != "2" {
		t.Fatalf("read=%v", d)
	}
}

func TestLog_Read(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "access.log")
	content := strings.Join([]string{
		`111.222.333.123 HOME - [01/Feb/1998:01:08:39 -0800] "GET /bannerad/ad.htm HTTP/1.0" 200 198`,
		`garbage`,
		`111.222.333.123 AWAY - [01/Feb/1998:01:08:46 -0800] "GET /bannerad/ad7.gif HTTP/1.0" 200 9332`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewLog(path, "")
	d, err := m.Read(ctx, storage.WithPattern(`^(?P<ip>\S+) (?P<tag>\S+) .*" (?P<status>\d+) (?P<bytes>\d+)$`))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("len=%d; want 2 (garbage skipped)", d.Len())
	}
	if h := d.Headers(); len(h) != 4 || h[2] != "status" {
		t.Fatalf("headers=%v", h)
	}
	if !d.Row(1).Equal(dataset.Row{"111.222.333.123", "AWAY", "200", "9332"}) {
		t.Fatalf("row 1 = %v", d.Row(1))
	}

	plain, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read without pattern: %v", err)
	}
	if plain.Len() != 3 || plain.Width() != 1 {
		t.Fatalf("plain %dx%d; want 3x1", plain.Len(), plain.Width())
	}

	if _, err := m.Read(ctx, storage.WithPattern("(")); err == nil {
		t.Fatalf("bad pattern accepted")
	}
}

func TestLog_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := NewLog(path, "").Write(context.Background(), people(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "Matteo Guadrini 35\nArthur Dent 42\n" {
		t.Fatalf("file = %q", raw)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.csv")
	m := NewCSV(path)
	if err := m.Write(ctx, people(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	d, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if h := d.Headers(); len(h) != 3 || h[0] != "name" {
		t.Fatalf("headers=%v", h)
	}
	if !d.Row(1).Equal(dataset.Row{"Arthur", "Dent", "42"}) {
		t.Fatalf("row 1 = %v", d.Row(1))
	}

	raw, _ := m.Read(ctx, storage.NoHeaderRow())
	if raw.Len() != 3 || raw.HasHeaders() {
		t.Fatalf("no header row: len=%d headers=%v", raw.Len(), raw.Headers())
	}
}

func TestCSV_BOMAndDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte("\ufeffid;name\n1;Ford\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := NewCSV(path).Read(context.Background(), storage.WithDelimiter(';'))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Headers()[0] != "id" || !d.Row(0).Equal(dataset.Row{"1", "Ford"}) {
		t.Fatalf("read=%v", d)
	}
}

func TestCSV_Encoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.csv")
	// "città" in ISO-8859-1.
	if err := os.WriteFile(path, []byte("name\ncitt\xe0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := NewCSV(path).Read(context.Background(), storage.WithEncoding("ISO-8859-1"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Row(0)[0] != "città" {
		t.Fatalf("decoded %q", d.Row(0)[0])
	}
	if _, err := NewCSV(path).Read(context.Background(), storage.WithEncoding("no-such-charset")); err == nil {
		t.Fatalf("unknown encoding accepted")
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.json")
	m := NewJSON(path)
	in := people(t)
	if err := m.Write(ctx, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip:\n%v\nwant\n%v", out, in)
	}
	if _, ok := out.Row(0)[2].(int64); !ok {
		t.Fatalf("age decoded as %T; want int64", out.Row(0)[2])
	}
}

func TestJSON_ListsAndMissingKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	lists := filepath.Join(dir, "lists.json")
	os.WriteFile(lists, []byte(`[["a", 1.5], ["b", null]]`), 0o644)
	d, err := NewJSON(lists).Read(ctx)
	if err != nil {
		t.Fatalf("Read lists: %v", err)
	}
	if d.HasHeaders() || !d.Row(0).Equal(dataset.Row{"a", 1.5}) || d.Row(1)[1] != nil {
		t.Fatalf("lists=%v", d.Rows())
	}

	objs := filepath.Join(dir, "objs.json")
	os.WriteFile(objs, []byte(`[{"b": 1, "a": 2}, {"a": 3}]`), 0o644)
	d, err = NewJSON(objs).Read(ctx)
	if err != nil {
		t.Fatalf("Read objects: %v", err)
	}
	if h := d.Headers(); h[0] != "b" || h[1] != "a" {
		t.Fatalf("headers=%v; want document order", h)
	}
	if !d.Row(1).Equal(dataset.Row{nil, 3}) {
		t.Fatalf("row 1 = %v", d.Row(1))
	}

	later := filepath.Join(dir, "later.json")
	os.WriteFile(later, []byte(`[{"a": 1}, {"a": 2, "c": "x"}]`), 0o644)
	d, err = NewJSON(later).Read(ctx)
	if err != nil {
		t.Fatalf("Read later keys: %v", err)
	}
	if h := d.Headers(); len(h) != 2 || h[1] != "c" {
		t.Fatalf("headers=%v; want [a c]", h)
	}
	if !d.Row(0).Equal(dataset.Row{1, nil}) || !d.Row(1).Equal(dataset.Row{2, "x"}) {
		t.Fatalf("rows=%v", d.Rows())
	}

	scalar := filepath.Join(dir, "scalar.json")
	os.WriteFile(scalar, []byte(`{"a": 1}`), 0o644)
	if _, err := NewJSON(scalar).Read(ctx); !errors.Is(err, dataset.ErrDataShape) {
		t.Fatalf("err=%v; want ErrDataShape", err)
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.yaml")
	m := NewYAML(path)
	in := people(t)
	if err := m.Write(ctx, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip:\n%v\nwant\n%v", out, in)
	}

	noHeaders, _ := dataset.New(nil, dataset.Row{"x", true})
	if err := m.Write(ctx, noHeaders); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, _ = m.Read(ctx)
	if out.HasHeaders() || !out.Row(0).Equal(dataset.Row{"x", true}) {
		t.Fatalf("read=%v", out.Rows())
	}
}

func TestXLSX_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	m := NewXLSX(path)
	if err := m.Write(ctx, people(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	d, err := m.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Len() != 2 || d.Headers()[2] != "age" || !d.Row(0).Equal(dataset.Row{"Matteo", "Guadrini", "35"}) {
		t.Fatalf("read=%v", d)
	}
}

func TestWriteBook_SheetTitles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	long := strings.Repeat("x", 40)
	b := dataset.NewBook("all")
	b.Add("People", people(t))
	b.Add("people", people(t))
	b.Add(long, people(t))
	b.Add("a/b:c", people(t))
	if err := NewXLSX(path).WriteBook(context.Background(), b); err != nil {
		t.Fatalf("WriteBook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	got := f.GetSheetList()
	want := []string{"People", "people (2)", strings.Repeat("x", 31), "abc"}
	if len(got) != len(want) {
		t.Fatalf("sheets=%v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets=%v; want %v", got, want)
		}
	}

	d, err := NewXLSX(path).Read(context.Background(), storage.WithSheet("abc"))
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("read sheet: len=%d; want 2", d.Len())
	}
}

func TestFactory_EncodingOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	os.WriteFile(path, []byte("caf\xe9\n"), 0o644)
	m, err := storage.New(context.Background(), storage.Config{
		Kind: "file", Filename: path, Options: config.Options{"encoding": "windows-1252"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err := m.(storage.Readable).Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Row(0)[0] != "café" {
		t.Fatalf("decoded %q", d.Row(0)[0])
	}
}
