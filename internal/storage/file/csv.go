package file

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"reports/internal/dataset"
	"reports/internal/storage"
)

const utf8BOM = "\ufeff"

// CSV reads and writes delimited text. The first row holds headers when the
// Dataset has them. Read values are strings.
type CSV struct {
	base
	delimiter rune
}

// NewCSV binds a CSV manager to path.
func NewCSV(path string) *CSV { return &CSV{base: base{kind: "csv", path: path}, delimiter: ','} }

// Write implements storage.Writable.
func (c *CSV) Write(ctx context.Context, data any) error {
	return c.save(ctx, data, func(w io.Writer, d *dataset.Dataset) error {
		cw := csv.NewWriter(w)
		cw.Comma = c.comma(0)
		if d.HasHeaders() {
			if err := cw.Write(d.Headers()); err != nil {
				return err
			}
		}
		rec := make([]string, d.Width())
		for _, row := range d.All() {
			for i, v := range row {
				rec[i] = dataset.Format(v)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// Read implements storage.Readable. The first record is the header row
// unless NoHeaderRow is given.
func (c *CSV) Read(ctx context.Context, opts ...storage.ReadOption) (*dataset.Dataset, error) {
	o := storage.ApplyReadOptions(opts...)
	return c.load(ctx, o, func(r io.Reader) (*dataset.Dataset, error) {
		cr := csv.NewReader(r)
		cr.Comma = c.comma(o.Delimiter)
		d := &dataset.Dataset{}
		first := true
		for {
			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return d, nil
			}
			if err != nil {
				return nil, err
			}
			if first {
				first = false
				rec = stripHeaderBOM(rec)
				if !o.NoHeaderRow {
					if err := d.SetHeaders(rec); err != nil {
						return nil, err
					}
					continue
				}
			}
			row := make(dataset.Row, len(rec))
			for i, s := range rec {
				row[i] = s
			}
			if err := d.Append(row); err != nil {
				return nil, err
			}
		}
	})
}

func (c *CSV) comma(override rune) rune {
	switch {
	case override != 0:
		return override
	case c.delimiter != 0:
		return c.delimiter
	}
	return ','
}

// stripHeaderBOM removes a UTF-8 byte order mark from the first field.
func stripHeaderBOM(rec []string) []string {
	if len(rec) > 0 {
		rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
	}
	return rec
}
