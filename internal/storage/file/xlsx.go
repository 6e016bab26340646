package file

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"reports/internal/dataset"
	"reports/internal/storage"
)

const (
	defaultSheet   = "Sheet1"
	maxSheetTitle  = 31
	invalidInTitle = `[]:*?/\`
)

// XLSX reads and writes a single spreadsheet sheet. Headers, when set, fill
// the first row. Read values are the cells' formatted strings.
type XLSX struct {
	base
	sheet string
}

// NewXLSX binds a spreadsheet manager to path.
func NewXLSX(path string) *XLSX { return &XLSX{base: base{kind: "xlsx", path: path}} }

// Write implements storage.Writable.
func (x *XLSX) Write(ctx context.Context, data any) error {
	d, err := dataset.From(data)
	if err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	title := x.sheet
	if title == "" {
		title = defaultSheet
	}
	book := dataset.NewBook("")
	book.Add(title, d)
	return x.WriteBook(ctx, book)
}

// WriteBook writes every sheet of b to the bound path, in order. Sheet
// titles are cut to 31 characters, stripped of characters spreadsheets
// reject and made unique.
func (x *XLSX) WriteBook(ctx context.Context, b *dataset.Book) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	for i, s := range b.Sheets {
		name := uniqueTitle(sheetTitle(s.Title, i), used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("xlsx: sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s.Data); err != nil {
			return fmt.Errorf("xlsx: sheet %q: %w", name, err)
		}
	}
	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", x.path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, d *dataset.Dataset) error {
	if d == nil {
		return nil
	}
	line := 1
	put := func(values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		line++
		return f.SetSheetRow(sheet, cell, &values)
	}
	if d.HasHeaders() {
		h := d.Headers()
		values := make([]any, len(h))
		for i, s := range h {
			values[i] = s
		}
		if err := put(values); err != nil {
			return err
		}
	}
	for _, row := range d.All() {
		if err := put([]any(row.Clone())); err != nil {
			return err
		}
	}
	return nil
}

func sheetTitle(title string, i int) string {
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidInTitle, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	title = strings.Trim(title, "'")
	if title == "" {
		title = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(title); len(r) > maxSheetTitle {
		title = string(r[:maxSheetTitle])
	}
	return title
}

func uniqueTitle(title string, used map[string]bool) string {
	candidate := title
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(title)
		if len(r)+len([]rune(suffix)) > maxSheetTitle {
			r = r[:maxSheetTitle-len([]rune(suffix))]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// Read implements storage.Readable. WithSheet overrides the configured
// sheet; the first sheet is read when neither is set.
func (x *XLSX) Read(ctx context.Context, opts ...storage.ReadOption) (*dataset.Dataset, error) {
	o := storage.ApplyReadOptions(opts...)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read: open %s: %w", x.path, err)
	}
	defer f.Close()

	sheet := o.Sheet
	if sheet == "" {
		sheet = x.sheet
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read %s sheet %q: %w", x.path, sheet, err)
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	d := &dataset.Dataset{}
	for i, r := range rows {
		if i == 0 && !o.NoHeaderRow {
			h := make([]string, width)
			copy(h, r)
			if err := d.SetHeaders(h); err != nil {
				return nil, fmt.Errorf("xlsx: read %s: %w", x.path, err)
			}
			continue
		}
		row := make(dataset.Row, width)
		for j := range row {
			if j < len(r) {
				row[j] = r[j]
			} else {
				row[j] = ""
			}
		}
		if err := d.Append(row); err != nil {
			return nil, fmt.Errorf("xlsx: read %s: %w", x.path, err)
		}
	}
	if len(o.Headers) > 0 {
		if err := d.SetHeaders(o.Headers); err != nil {
			return nil, fmt.Errorf("xlsx: read %s: %w", x.path, err)
		}
	}
	return d, nil
}
