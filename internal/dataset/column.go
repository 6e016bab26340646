package dataset

import (
	"fmt"
	"strconv"
)

// Column addresses a column either by header name or by position. The zero
// Column addresses nothing and is used to mean "no projection".
type Column struct {
	name   string
	index  int
	byName bool
	set    bool
}

// Col addresses the column whose header is name.
func Col(name string) Column { return Column{name: name, byName: true, set: true} }

// ColAt addresses the column at position i (0-based).
func ColAt(i int) Column { return Column{index: i, set: true} }

// IsZero reports whether c addresses no column.
func (c Column) IsZero() bool { return !c.set }

// ByName reports whether c addresses a header name.
func (c Column) ByName() bool { return c.byName }

// Name returns the header name for name references.
func (c Column) Name() string { return c.name }

// Index returns the position for positional references.
func (c Column) Index() int { return c.index }

func (c Column) String() string {
	switch {
	case !c.set:
		return "<none>"
	case c.byName:
		return strconv.Quote(c.name)
	}
	return strconv.Itoa(c.index)
}

// ParseColumn converts a configuration value (string name or integer index)
// into a Column. nil yields the zero Column.
func ParseColumn(v any) (Column, error) {
	switch t := Normalize(v).(type) {
	case nil:
		return Column{}, nil
	case string:
		if t == "" {
			return Column{}, nil
		}
		return Col(t), nil
	case int64:
		return ColAt(int(t)), nil
	case float64:
		if t == float64(int(t)) {
			return ColAt(int(t)), nil
		}
	}
	return Column{}, fmt.Errorf("%w: column must be a name or an index, got %T", ErrDataShape, v)
}
