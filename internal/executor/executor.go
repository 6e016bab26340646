// Package executor implements a mutable transformation session over one
// Dataset. An Executor keeps the Dataset it was built from as an immutable
// origin; Filter, Map and the column operations rewrite the working copy
// in place and Reset restores it.
package executor

import (
	"fmt"
	"iter"

	"reports/internal/dataset"
)

// MapFunc transforms a single field value.
type MapFunc func(v any) any

// Predicate reports whether a single field value matches.
type Predicate func(v any) bool

// Filter selects rows.
//
// A row hits the match list when any of its fields Equal any of Values, and
// hits the predicate when Predicate returns true for any of its fields. An
// empty Values list or a nil Predicate disables that test.
//
// Without Negate a row is kept when it hits any enabled test. With Negate a
// row is kept when it misses at least one enabled test. Either way a row is
// kept at most once, in its original position.
//
// A non-zero Column projects the filtered rows to that single column.
type Filter struct {
	Values    []any
	Predicate Predicate
	Negate    bool
	Column    dataset.Column
}

func (f Filter) keeps(row dataset.Row) bool {
	listOn, predOn := len(f.Values) > 0, f.Predicate != nil
	listHit := listOn && matchesAny(row, f.Values)
	predHit := predOn && satisfies(row, f.Predicate)
	if !f.Negate {
		return listHit || predHit
	}
	return (listOn && !listHit) || (predOn && !predHit)
}

func matchesAny(row dataset.Row, values []any) bool {
	for _, field := range row {
		for _, v := range values {
			if dataset.Equal(field, v) {
				return true
			}
		}
	}
	return false
}

func satisfies(row dataset.Row, p Predicate) bool {
	for _, field := range row {
		if p(field) {
			return true
		}
	}
	return false
}

// Executor holds a working Dataset and the origin it can be reset to.
type Executor struct {
	data   *dataset.Dataset
	origin *dataset.Dataset
}

// New builds an Executor from a *dataset.Dataset, a flat sequence (one row),
// a sequence of sequences (one row each) or a map of column name to values.
// Unsupported shapes fail with dataset.ErrDataShape. headers, when given,
// replace the column names.
func New(data any, headers ...string) (*Executor, error) {
	d, err := dataset.From(data)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	if len(headers) > 0 {
		if err := d.SetHeaders(headers); err != nil {
			return nil, fmt.Errorf("executor: %w", err)
		}
	}
	return &Executor{data: d, origin: d.Clone()}, nil
}

// Data returns the working Dataset.
func (e *Executor) Data() *dataset.Dataset { return e.data }

// Len returns the number of working rows.
func (e *Executor) Len() int { return e.data.Len() }

// Columns returns the number of working columns.
func (e *Executor) Columns() int { return e.data.Width() }

// All iterates the working rows.
func (e *Executor) All() iter.Seq2[int, dataset.Row] { return e.data.All() }

// SetHeaders replaces the working column names.
func (e *Executor) SetHeaders(headers []string) error { return e.data.SetHeaders(headers) }

// Reset discards every change made since construction.
func (e *Executor) Reset() { e.data = e.origin.Clone() }

// Clone returns a new, independent Executor built from the origin.
func (e *Executor) Clone() *Executor {
	return &Executor{data: e.origin.Clone(), origin: e.origin.Clone()}
}

// Filter keeps the rows selected by f.
func (e *Executor) Filter(f Filter) error {
	out, _ := dataset.New(e.data.Headers())
	for _, row := range e.data.All() {
		if f.keeps(row) {
			if err := out.Append(row); err != nil {
				return fmt.Errorf("executor: filter: %w", err)
			}
		}
	}
	e.data = out
	return e.project(f.Column)
}

// Map replaces every field with fn(field), preserving headers. A non-zero
// column projects the result to that single column.
func (e *Executor) Map(fn MapFunc, column dataset.Column) error {
	if fn == nil {
		return fmt.Errorf("executor: map: %w: transform must not be nil", dataset.ErrValidation)
	}
	out, _ := dataset.New(e.data.Headers())
	for _, row := range e.data.All() {
		mapped := make(dataset.Row, len(row))
		for i, field := range row {
			mapped[i] = fn(field)
		}
		if err := out.Append(mapped); err != nil {
			return fmt.Errorf("executor: map: %w", err)
		}
	}
	e.data = out
	return e.project(column)
}

func (e *Executor) project(column dataset.Column) error {
	if column.IsZero() {
		return nil
	}
	p, err := e.data.Project(column)
	if err != nil {
		return fmt.Errorf("executor: %w", err)
	}
	e.data = p
	return nil
}

// SelectColumn returns one working column in row order.
func (e *Executor) SelectColumn(column dataset.Column) ([]any, error) {
	return e.data.Column(column)
}

// AddColumn appends a column of precomputed values, one per row.
func (e *Executor) AddColumn(name string, values []any) error {
	return e.data.AppendColumn(name, values)
}

// AddColumnFunc appends a column whose value for each row is produced by
// calling gen once per row, in row order.
func (e *Executor) AddColumnFunc(name string, gen func() any) error {
	if gen == nil {
		return fmt.Errorf("executor: add column %q: %w: generator must not be nil", name, dataset.ErrValidation)
	}
	values := make([]any, e.data.Len())
	for i := range values {
		values[i] = gen()
	}
	return e.data.AppendColumn(name, values)
}

// DelColumn removes a working column.
func (e *Executor) DelColumn(column dataset.Column) error {
	return e.data.DeleteColumn(column)
}
