package executor

import (
	"errors"
	"strconv"
	"testing"

	"reports/internal/dataset"
)

func newPeople(t *testing.T) *Executor {
	t.Helper()
	e, err := New([][]any{
		{"Matteo", "Guadrini", 35},
		{"Arthur", "Dent", 42},
		{"Ford", "Prefect", 42},
	}, "name", "surname", "age")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func isAnswer(v any) bool { return dataset.Equal(v, 42) }

func intToString(v any) any {
	if n, ok := v.(int64); ok {
		return strconv.FormatInt(n, 10)
	}
	return v
}

func TestNew_Shapes(t *testing.T) {
	e, err := New([]any{"Matteo", "Guadrini", 35})
	if err != nil {
		t.Fatalf("flat: %v", err)
	}
	if e.Len() != 1 || e.Columns() != 3 {
		t.Fatalf("flat: %dx%d", e.Len(), e.Columns())
	}

	if _, err := New(3.14); !errors.Is(err, dataset.ErrDataShape) {
		t.Fatalf("scalar err=%v; want ErrDataShape", err)
	}
	if _, err := New([]any{"a"}, "x", "y"); !errors.Is(err, dataset.ErrDimension) {
		t.Fatalf("header mismatch err=%v; want ErrDimension", err)
	}
}

func TestFilter_ByList(t *testing.T) {
	e := newPeople(t)
	if err := e.Filter(Filter{Values: []any{42}}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 2 {
		t.Fatalf("len=%d; want 2", e.Len())
	}
	if !e.Data().Row(0).Equal(dataset.Row{"Arthur", "Dent", 42}) ||
		!e.Data().Row(1).Equal(dataset.Row{"Ford", "Prefect", 42}) {
		t.Fatalf("rows=%v", e.Data().Rows())
	}
}

func TestFilter_ByListNegated(t *testing.T) {
	e, _ := New([][]any{{"Arthur", "Dent", 42}, {"Ford", "Prefect", 42}})
	if err := e.Filter(Filter{Values: []any{"Prefect"}, Negate: true}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 1 || !e.Data().Row(0).Equal(dataset.Row{"Arthur", "Dent", 42}) {
		t.Fatalf("rows=%v", e.Data().Rows())
	}
}

func TestFilter_ByPredicate(t *testing.T) {
	e := newPeople(t)
	if err := e.Filter(Filter{Predicate: isAnswer}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 2 {
		t.Fatalf("len=%d; want 2", e.Len())
	}

	n, _ := New([][]any{{"Arthur", "Dent", 42}, {"Ford", "Prefect", 43}})
	if err := n.Filter(Filter{Predicate: isAnswer, Negate: true}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if n.Len() != 1 || !n.Data().Row(0).Equal(dataset.Row{"Ford", "Prefect", 43}) {
		t.Fatalf("rows=%v", n.Data().Rows())
	}
}

func TestFilter_RowKeptOnceWhenBothTestsHit(t *testing.T) {
	e := newPeople(t)
	err := e.Filter(Filter{Values: []any{"Arthur"}, Predicate: isAnswer})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 2 {
		t.Fatalf("len=%d; want 2 (Arthur once, Ford once)", e.Len())
	}

	e.Reset()
	// Matteo misses both tests; Ford misses only the list; Arthur hits both.
	err = e.Filter(Filter{Values: []any{"Arthur"}, Predicate: isAnswer, Negate: true})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 2 || e.Data().Row(0)[0] != "Matteo" || e.Data().Row(1)[0] != "Ford" {
		t.Fatalf("rows=%v", e.Data().Rows())
	}
}

func TestFilter_EmptyListKeepsNothing(t *testing.T) {
	e := newPeople(t)
	if err := e.Filter(Filter{}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 0 {
		t.Fatalf("len=%d; want 0", e.Len())
	}
}

func TestFilter_WithColumn(t *testing.T) {
	e := newPeople(t)
	if err := e.Filter(Filter{Values: []any{42}, Column: dataset.Col("age")}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Columns() != 1 || !e.Data().Row(0).Equal(dataset.Row{42}) {
		t.Fatalf("rows=%v", e.Data().Rows())
	}
}

func TestFilter_NoMatchHeaderlessWithIndexColumn(t *testing.T) {
	e, err := New([][]any{{"Arthur", "Dent", 42}, {"Ford", "Prefect", 42}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Filter(Filter{Values: []any{99}, Column: dataset.ColAt(2)}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if e.Len() != 0 {
		t.Fatalf("rows=%v; want none", e.Data().Rows())
	}
}

func TestMap(t *testing.T) {
	e := newPeople(t)
	if err := e.Map(intToString, dataset.Column{}); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if e.Len() != 3 || e.Columns() != 3 {
		t.Fatalf("shape %dx%d; want 3x3", e.Len(), e.Columns())
	}
	if !e.Data().Row(1).Equal(dataset.Row{"Arthur", "Dent", "42"}) {
		t.Fatalf("row 1 = %v", e.Data().Row(1))
	}
	if h := e.Data().Headers(); len(h) != 3 {
		t.Fatalf("headers lost: %v", h)
	}
}

func TestMap_NilIsValidationError(t *testing.T) {
	e := newPeople(t)
	if err := e.Map(nil, dataset.Column{}); !errors.Is(err, dataset.ErrValidation) {
		t.Fatalf("err=%v; want ErrValidation", err)
	}
}

func TestSelectColumn(t *testing.T) {
	e := newPeople(t)
	byName, err := e.SelectColumn(dataset.Col("age"))
	if err != nil {
		t.Fatalf("SelectColumn: %v", err)
	}
	byIndex, _ := e.SelectColumn(dataset.ColAt(2))
	if !dataset.Row(byName).Equal(dataset.Row{35, 42, 42}) || !dataset.Row(byIndex).Equal(dataset.Row(byName)) {
		t.Fatalf("byName=%v byIndex=%v", byName, byIndex)
	}
}

func TestAddAndDelColumn(t *testing.T) {
	e := newPeople(t)
	if err := e.AddColumn("planet", []any{"Earth", "Earth", "Betelgeuse"}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	n := 0
	if err := e.AddColumnFunc("seq", func() any { n++; return n }); err != nil {
		t.Fatalf("AddColumnFunc: %v", err)
	}
	if !e.Data().Row(2).Equal(dataset.Row{"Ford", "Prefect", 42, "Betelgeuse", 3}) {
		t.Fatalf("row 2 = %v", e.Data().Row(2))
	}
	if err := e.DelColumn(dataset.Col("planet")); err != nil {
		t.Fatalf("DelColumn: %v", err)
	}
	if e.Columns() != 4 {
		t.Fatalf("columns=%d; want 4", e.Columns())
	}

	bare, _ := New([][]any{{1, 2}})
	if err := bare.DelColumn(dataset.Col("a")); !errors.Is(err, dataset.ErrNoHeaders) {
		t.Fatalf("err=%v; want ErrNoHeaders", err)
	}
}

func TestResetAndClone(t *testing.T) {
	e := newPeople(t)
	if err := e.Filter(Filter{Values: []any{"Matteo"}}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	c := e.Clone()
	if c.Len() != 3 {
		t.Fatalf("clone len=%d; want origin's 3", c.Len())
	}
	if err := c.DelColumn(dataset.ColAt(0)); err != nil {
		t.Fatalf("DelColumn: %v", err)
	}
	e.Reset()
	if e.Len() != 3 || e.Columns() != 3 {
		t.Fatalf("after reset %dx%d; want 3x3", e.Len(), e.Columns())
	}
}
