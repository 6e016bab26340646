package datatools

import (
	"fmt"
	"iter"

	"reports/internal/dataset"
)

// Adapters wraps a Dataset and reshapes it in place.
type Adapters struct {
	data *dataset.Dataset
}

// NewAdapters wraps d. A nil d starts an empty Dataset.
func NewAdapters(d *dataset.Dataset) *Adapters {
	if d == nil {
		d = &dataset.Dataset{}
	}
	return &Adapters{data: d}
}

// Data returns the wrapped Dataset.
func (a *Adapters) Data() *dataset.Dataset { return a.data }

// Len returns the number of rows.
func (a *Adapters) Len() int { return a.data.Len() }

// Row returns row i.
func (a *Adapters) Row(i int) dataset.Row { return a.data.Row(i) }

// Column returns one column.
func (a *Adapters) Column(col dataset.Column) ([]any, error) { return a.data.Column(col) }

// All iterates the rows.
func (a *Adapters) All() iter.Seq2[int, dataset.Row] { return a.data.All() }

// Aggregate appends the given column vectors to the wrapped Dataset, which
// must not be empty. Vectors must match its row count unless a fill option
// pads them; padding never shortens the Dataset.
func (a *Adapters) Aggregate(columns [][]any, opts ...AggregateOption) error {
	if a.data.Len() == 0 {
		return fmt.Errorf("aggregate: %w: dataset is empty", dataset.ErrDataShape)
	}
	current := make([][]any, a.data.Width())
	for i := range current {
		current[i], _ = a.data.Column(dataset.ColAt(i))
	}
	agg, err := Aggregate(append(current, columns...), opts...)
	if err != nil {
		return err
	}
	if agg.Len() != a.data.Len() {
		return fmt.Errorf("aggregate: %w: columns have %d values, dataset has %d rows", dataset.ErrDimension, agg.Len(), a.data.Len())
	}
	if a.data.HasHeaders() {
		h := a.data.Headers()
		for i := len(h); i < agg.Width(); i++ {
			h = append(h, fmt.Sprintf("column_%d", i))
		}
		if err := agg.SetHeaders(h); err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
	}
	a.data = agg
	return nil
}

// Merge appends the rows of others to the wrapped Dataset, which must not be
// empty.
func (a *Adapters) Merge(others ...*dataset.Dataset) error {
	if a.data.Len() == 0 {
		return fmt.Errorf("merge: %w: dataset is empty", dataset.ErrDataShape)
	}
	merged, err := Merge(append([]*dataset.Dataset{a.data}, others...)...)
	if err != nil {
		return err
	}
	a.data = merged
	return nil
}

// Counter counts every field of every row.
func (a *Adapters) Counter() *Counter {
	c := NewCounter()
	for _, row := range a.data.All() {
		for _, v := range row {
			c.Add(v)
		}
	}
	return c
}

// Chunks splits the wrapped Dataset into consecutive sub-datasets.
func (a *Adapters) Chunks(length int) (iter.Seq[*dataset.Dataset], error) {
	return Chunks(a.data, length)
}

// Deduplicate drops repeated rows from the wrapped Dataset.
func (a *Adapters) Deduplicate() { a.data = Deduplicate(a.data) }

// Subset returns a projection of the wrapped Dataset.
func (a *Adapters) Subset(cols ...dataset.Column) (*dataset.Dataset, error) {
	return Subset(a.data, cols...)
}

// Sort returns a sorted copy of the wrapped Dataset.
func (a *Adapters) Sort(col dataset.Column, reverse bool) (*dataset.Dataset, error) {
	return Sort(a.data, col, reverse)
}

// Printers wraps a Dataset and computes read-only summaries of it.
type Printers struct {
	data *dataset.Dataset
}

// NewPrinters wraps d.
func NewPrinters(d *dataset.Dataset) *Printers {
	if d == nil {
		d = &dataset.Dataset{}
	}
	return &Printers{data: d}
}

// Data returns the wrapped Dataset.
func (p *Printers) Data() *dataset.Dataset { return p.data }

// Len returns the number of rows.
func (p *Printers) Len() int { return p.data.Len() }

// Average returns the mean of one column.
func (p *Printers) Average(col dataset.Column) (float64, error) { return Average(p.data, col) }

// MostCommon returns the most frequent value of one column.
func (p *Printers) MostCommon(col dataset.Column) (any, error) { return MostCommon(p.data, col) }

// Percentage returns the share of rows per field equal to target.
func (p *Printers) Percentage(target any) (float64, error) { return Percentage(p.data, target) }

// Counter counts the values of one column.
func (p *Printers) Counter(col dataset.Column) (*Counter, error) { return CountColumn(p.data, col) }

// String renders the wrapped Dataset.
func (p *Printers) String() string { return p.data.String() }
