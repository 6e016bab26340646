// Package datatools holds dataset-level utilities: building datasets from
// column vectors, concatenation, chunking, de-duplication, projection,
// sorting and single-column statistics.
package datatools

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"

	"reports/internal/dataset"
)

type aggregateConfig struct {
	fill    bool
	value   any
	valueFn func() any
}

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregateConfig)

// FillEmpty pads columns shorter than the longest one with v.
func FillEmpty(v any) AggregateOption {
	return func(c *aggregateConfig) { c.fill, c.value, c.valueFn = true, v, nil }
}

// FillEmptyFunc pads columns shorter than the longest one with the result
// of fn, called once per missing field.
func FillEmptyFunc(fn func() any) AggregateOption {
	return func(c *aggregateConfig) { c.fill, c.value, c.valueFn = true, nil, fn }
}

// Aggregate transposes two or more column vectors into a Dataset with one
// column per vector. Vectors of unequal length fail with
// dataset.ErrDimension unless a fill option is given. The input slices are
// not modified.
func Aggregate(columns [][]any, opts ...AggregateOption) (*dataset.Dataset, error) {
	if len(columns) < 2 {
		return nil, fmt.Errorf("aggregate: %w: need at least two columns, got %d", dataset.ErrDataShape, len(columns))
	}
	var cfg aggregateConfig
	for _, o := range opts {
		o(&cfg)
	}

	longest := 0
	for _, c := range columns {
		longest = max(longest, len(c))
	}
	padded := make([][]any, len(columns))
	for i, c := range columns {
		if len(c) != longest && !cfg.fill {
			return nil, fmt.Errorf("aggregate: %w: column %d has %d values, want %d", dataset.ErrDimension, i, len(c), longest)
		}
		padded[i] = slices.Grow(slices.Clone(c), longest-len(c))
		for len(padded[i]) < longest {
			if cfg.valueFn != nil {
				padded[i] = append(padded[i], cfg.valueFn())
			} else {
				padded[i] = append(padded[i], cfg.value)
			}
		}
	}

	out := &dataset.Dataset{}
	for r := 0; r < longest; r++ {
		row := make(dataset.Row, len(padded))
		for c := range padded {
			row[c] = padded[c][r]
		}
		if err := out.Append(row); err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
	}
	return out, nil
}

// Merge concatenates the rows of two or more non-empty datasets in argument
// order. Every dataset must share the first one's row width. The result
// carries the first dataset's headers.
func Merge(sets ...*dataset.Dataset) (*dataset.Dataset, error) {
	if len(sets) < 2 {
		return nil, fmt.Errorf("merge: %w: need at least two datasets, got %d", dataset.ErrDataShape, len(sets))
	}
	for i, d := range sets {
		if d == nil || d.Len() == 0 {
			return nil, fmt.Errorf("merge: %w: dataset %d is empty", dataset.ErrDataShape, i)
		}
	}
	width := sets[0].Width()
	out, err := dataset.New(sets[0].Headers())
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	for i, d := range sets {
		if d.Width() != width {
			return nil, fmt.Errorf("merge: %w: dataset %d has rows of width %d, want %d", dataset.ErrDimension, i, d.Width(), width)
		}
		for _, row := range d.All() {
			if err := out.Append(row); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
		}
	}
	return out, nil
}

// Chunks returns a sequence of consecutive sub-datasets of at most length
// rows each. Ranging over the sequence again starts from the first chunk.
func Chunks(d *dataset.Dataset, length int) (iter.Seq[*dataset.Dataset], error) {
	if length < 1 {
		return nil, fmt.Errorf("chunks: %w: length must be positive, got %d", dataset.ErrValidation, length)
	}
	return func(yield func(*dataset.Dataset) bool) {
		for i := 0; i < d.Len(); i += length {
			if !yield(d.Slice(i, i+length)) {
				return
			}
		}
	}, nil
}

// rowHash hashes the equality keys of a row's fields so that rows which
// compare Equal hash alike.
func rowHash(row dataset.Row) uint64 {
	var b strings.Builder
	for _, v := range row {
		k := dataset.Key(v)
		fmt.Fprintf(&b, "%T\x1f%v\x1e", k, k)
	}
	return xxh3.HashString(b.String())
}

// Deduplicate returns d without rows equal to an earlier row, keeping the
// first occurrence of each and the original relative order.
func Deduplicate(d *dataset.Dataset) *dataset.Dataset {
	out, _ := dataset.New(d.Headers())
	seen := make(map[uint64][]dataset.Row)
	for _, row := range d.All() {
		h := rowHash(row)
		if slices.ContainsFunc(seen[h], row.Equal) {
			continue
		}
		seen[h] = append(seen[h], row)
		_ = out.Append(row)
	}
	return out
}

// Subset projects d to the given columns, in the given order.
func Subset(d *dataset.Dataset, cols ...dataset.Column) (*dataset.Dataset, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("subset: %w: no columns given", dataset.ErrDataShape)
	}
	out, err := d.Project(cols...)
	if err != nil {
		return nil, fmt.Errorf("subset: %w", err)
	}
	return out, nil
}

// Sort returns a copy of d stably sorted by one column, ascending unless
// reverse is set. Values of different types order by dataset.Compare.
func Sort(d *dataset.Dataset, col dataset.Column, reverse bool) (*dataset.Dataset, error) {
	idx, err := d.ColumnIndex(col)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	rows := d.Rows()
	slices.SortStableFunc(rows, func(a, b dataset.Row) int {
		if reverse {
			return dataset.Compare(b[idx], a[idx])
		}
		return dataset.Compare(a[idx], b[idx])
	})
	out, err := dataset.New(d.Headers(), rows...)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	return out, nil
}

// Average returns the arithmetic mean of one column. Every value must be
// numeric.
func Average(d *dataset.Dataset, col dataset.Column) (float64, error) {
	values, err := d.Column(col)
	if err != nil {
		return 0, fmt.Errorf("average: %w", err)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("average: %w: column %s is empty", dataset.ErrDataShape, col)
	}
	var sum float64
	for i, v := range values {
		f, ok := dataset.ToFloat(v)
		if !ok {
			return 0, fmt.Errorf("average: %w: row %d of column %s is %T, not a number", dataset.ErrValidation, i, col, v)
		}
		sum += f
	}
	return sum / float64(len(values)), nil
}

// MostCommon returns the most frequent value of one column. Ties go to the
// value seen first.
func MostCommon(d *dataset.Dataset, col dataset.Column) (any, error) {
	c, err := CountColumn(d, col)
	if err != nil {
		return nil, fmt.Errorf("most common: %w", err)
	}
	top := c.MostCommon(1)
	if len(top) == 0 {
		return nil, fmt.Errorf("most common: %w: column %s is empty", dataset.ErrDataShape, col)
	}
	return top[0].Value, nil
}

// Percentage returns 100 * (fields equal to target, across every row) / rows.
func Percentage(d *dataset.Dataset, target any) (float64, error) {
	if d.Len() == 0 {
		return 0, fmt.Errorf("percentage: %w: dataset is empty", dataset.ErrDataShape)
	}
	hits := 0
	for _, row := range d.All() {
		for _, v := range row {
			if dataset.Equal(v, target) {
				hits++
			}
		}
	}
	return float64(hits) / float64(d.Len()) * 100, nil
}

// CountColumn counts the values of one column.
func CountColumn(d *dataset.Dataset, col dataset.Column) (*Counter, error) {
	values, err := d.Column(col)
	if err != nil {
		return nil, fmt.Errorf("counter: %w", err)
	}
	c := NewCounter()
	for _, v := range values {
		c.Add(v)
	}
	return c, nil
}
