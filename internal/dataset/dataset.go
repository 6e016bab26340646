// Package dataset implements the in-memory tabular container shared by every
// source, transformation and sink: an ordered list of fixed-width rows with
// optional column headers.
//
// Invariant: every row has the same width, and when headers are set their
// count equals that width. All mutating methods enforce it and report
// violations as ErrDimension.
package dataset

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"
)

// Row is one ordered record of scalar fields.
type Row []any

// Clone returns a shallow copy of r.
func (r Row) Clone() Row { return slices.Clone(r) }

// Equal reports whether r and o have the same width and pairwise Equal fields.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !Equal(r[i], o[i]) {
			return false
		}
	}
	return true
}

// Dataset is an ordered table of rows with optional headers. The zero value
// is an empty Dataset without headers, ready to use.
type Dataset struct {
	headers []string
	rows    []Row
}

// New builds a Dataset from headers (nil for none) and rows.
func New(headers []string, rows ...Row) (*Dataset, error) {
	d := &Dataset{}
	if err := d.Extend(rows...); err != nil {
		return nil, err
	}
	if err := d.SetHeaders(headers); err != nil {
		return nil, err
	}
	return d, nil
}

// Headers returns a copy of the column names, or nil when none are set.
func (d *Dataset) Headers() []string { return slices.Clone(d.headers) }

// HasHeaders reports whether column names are set.
func (d *Dataset) HasHeaders() bool { return len(d.headers) > 0 }

// SetHeaders replaces the column names. A nil or empty slice removes them.
// When rows exist the header count must match the row width.
func (d *Dataset) SetHeaders(headers []string) error {
	if len(headers) == 0 {
		d.headers = nil
		return nil
	}
	if len(d.rows) > 0 && len(headers) != len(d.rows[0]) {
		return fmt.Errorf("%w: %d headers for rows of width %d", ErrDimension, len(headers), len(d.rows[0]))
	}
	d.headers = slices.Clone(headers)
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Width returns the number of columns.
func (d *Dataset) Width() int {
	if len(d.rows) > 0 {
		return len(d.rows[0])
	}
	return len(d.headers)
}

// Row returns a copy of the i-th row.
func (d *Dataset) Row(i int) Row { return d.rows[i].Clone() }

// Rows returns the rows in order. The returned rows are shared with the
// Dataset and must not be modified.
func (d *Dataset) Rows() []Row { return slices.Clone(d.rows) }

// All iterates rows in order.
func (d *Dataset) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, r := range d.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Append adds one row, normalizing its fields.
func (d *Dataset) Append(row Row) error {
	if w := d.Width(); (len(d.rows) > 0 || len(d.headers) > 0) && len(row) != w {
		return fmt.Errorf("%w: row of width %d appended to dataset of width %d", ErrDimension, len(row), w)
	}
	r := make(Row, len(row))
	for i, v := range row {
		r[i] = Normalize(v)
	}
	d.rows = append(d.rows, r)
	return nil
}

// Extend appends rows in order. It stops at the first row of the wrong width.
func (d *Dataset) Extend(rows ...Row) error {
	for i, r := range rows {
		if err := d.Append(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// ColumnIndex resolves c to a position.
func (d *Dataset) ColumnIndex(c Column) (int, error) {
	if c.IsZero() {
		return 0, fmt.Errorf("%w: empty column reference", ErrColumnNotFound)
	}
	if c.ByName() {
		if !d.HasHeaders() {
			return 0, fmt.Errorf("select %s: %w", c, ErrNoHeaders)
		}
		i := slices.Index(d.headers, c.Name())
		if i < 0 {
			return 0, fmt.Errorf("select %s: %w", c, ErrColumnNotFound)
		}
		return i, nil
	}
	i := c.Index()
	if i < 0 || i >= d.Width() {
		return 0, fmt.Errorf("select %s of %d columns: %w", c, d.Width(), ErrColumnNotFound)
	}
	return i, nil
}

// Column returns the values of one column in row order.
func (d *Dataset) Column(c Column) ([]any, error) {
	i, err := d.ColumnIndex(c)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(d.rows))
	for j, r := range d.rows {
		out[j] = r[i]
	}
	return out, nil
}

// AppendColumn adds a column at the right edge. values must hold one entry
// per row; on a Dataset without rows or columns it creates one row per value.
// name is required when the Dataset has headers and is otherwise only
// accepted on an empty Dataset, where it becomes the first header.
func (d *Dataset) AppendColumn(name string, values []any) error {
	empty := len(d.rows) == 0 && d.Width() == 0
	switch {
	case d.HasHeaders() && name == "":
		return fmt.Errorf("%w: a header name is required to extend a dataset with headers", ErrDataShape)
	case !d.HasHeaders() && name != "" && !empty:
		return fmt.Errorf("add column %q: %w", name, ErrNoHeaders)
	}
	if empty {
		for _, v := range values {
			d.rows = append(d.rows, Row{Normalize(v)})
		}
		if name != "" {
			d.headers = []string{name}
		}
		return nil
	}
	if len(values) != len(d.rows) {
		return fmt.Errorf("%w: column of %d values for %d rows", ErrDimension, len(values), len(d.rows))
	}
	for i := range d.rows {
		d.rows[i] = append(d.rows[i], Normalize(values[i]))
	}
	if d.HasHeaders() {
		d.headers = append(d.headers, name)
	}
	return nil
}

// DeleteColumn removes one column from every row and from the headers.
func (d *Dataset) DeleteColumn(c Column) error {
	i, err := d.ColumnIndex(c)
	if err != nil {
		return err
	}
	for j, r := range d.rows {
		d.rows[j] = slices.Delete(r.Clone(), i, i+1)
	}
	if d.HasHeaders() {
		d.headers = slices.Delete(d.headers, i, i+1)
	}
	return nil
}

// Project returns a new Dataset holding only the given columns, in the order
// given. Headers follow when present.
func (d *Dataset) Project(cols ...Column) (*Dataset, error) {
	if d.Width() == 0 && !slices.ContainsFunc(cols, Column.ByName) {
		// Nothing to index into: a headerless, rowless Dataset projects to
		// an empty one.
		return &Dataset{}, nil
	}
	idx := make([]int, len(cols))
	for k, c := range cols {
		i, err := d.ColumnIndex(c)
		if err != nil {
			return nil, err
		}
		idx[k] = i
	}
	out := &Dataset{rows: make([]Row, 0, len(d.rows))}
	for _, r := range d.rows {
		nr := make(Row, len(idx))
		for k, i := range idx {
			nr[k] = r[i]
		}
		out.rows = append(out.rows, nr)
	}
	if d.HasHeaders() {
		out.headers = make([]string, len(idx))
		for k, i := range idx {
			out.headers[k] = d.headers[i]
		}
	}
	return out, nil
}

// Slice returns rows [from, to) as a new Dataset sharing the headers. Bounds
// are clamped to the row count.
func (d *Dataset) Slice(from, to int) *Dataset {
	from = max(0, min(from, len(d.rows)))
	to = max(from, min(to, len(d.rows)))
	out := &Dataset{headers: slices.Clone(d.headers), rows: make([]Row, 0, to-from)}
	for _, r := range d.rows[from:to] {
		out.rows = append(out.rows, r.Clone())
	}
	return out
}

// Clone returns an independent copy of d.
func (d *Dataset) Clone() *Dataset { return d.Slice(0, len(d.rows)) }

// Equal reports whether d and o have the same headers and equal rows.
func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !slices.Equal(d.headers, o.headers) || len(d.rows) != len(o.rows) {
		return false
	}
	for i := range d.rows {
		if !d.rows[i].Equal(o.rows[i]) {
			return false
		}
	}
	return true
}

// String renders the Dataset as a pipe-separated table, with a dashed rule
// under the headers when they are set.
func (d *Dataset) String() string {
	width := d.Width()
	if width == 0 {
		return ""
	}
	cells := make([][]string, 0, len(d.rows)+1)
	if d.HasHeaders() {
		cells = append(cells, d.headers)
	}
	for _, r := range d.rows {
		line := make([]string, len(r))
		for i, v := range r {
			line[i] = Format(v)
		}
		cells = append(cells, line)
	}
	sizes := make([]int, width)
	for _, line := range cells {
		for i, s := range line {
			sizes[i] = max(sizes[i], utf8.RuneCountInString(s))
		}
	}
	pad := func(line []string) string {
		out := make([]string, len(line))
		for i, s := range line {
			out[i] = s + strings.Repeat(" ", sizes[i]-utf8.RuneCountInString(s))
		}
		return strings.Join(out, "|")
	}
	var b strings.Builder
	for k, line := range cells {
		if k > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pad(line))
		if k == 0 && d.HasHeaders() {
			rule := make([]string, width)
			for i := range rule {
				rule[i] = strings.Repeat("-", sizes[i])
			}
			b.WriteByte('\n')
			b.WriteString(strings.Join(rule, "|"))
		}
	}
	return b.String()
}
