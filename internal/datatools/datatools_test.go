package datatools

import (
	"errors"
	"math"
	"testing"

	"reports/internal/dataset"
)

func people(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New([]string{"name", "surname", "age"},
		dataset.Row{"Matteo", "Guadrini", 35},
		dataset.Row{"Arthur", "Dent", 42},
		dataset.Row{"Ford", "Prefect", 42},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func TestStatistics(t *testing.T) {
	d := people(t)

	avg, err := Average(d, dataset.Col("age"))
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if round2(avg) != 39.33 {
		t.Fatalf("average=%v; want 39.33", avg)
	}

	mc, err := MostCommon(d, dataset.Col("age"))
	if err != nil {
		t.Fatalf("MostCommon: %v", err)
	}
	if !dataset.Equal(mc, 42) {
		t.Fatalf("most common=%v; want 42", mc)
	}

	pct, err := Percentage(d, 42)
	if err != nil {
		t.Fatalf("Percentage: %v", err)
	}
	if round2(pct) != 66.67 {
		t.Fatalf("percentage=%v; want 66.67", pct)
	}

	c, err := CountColumn(d, dataset.ColAt(2))
	if err != nil {
		t.Fatalf("CountColumn: %v", err)
	}
	top := c.MostCommon(1)
	if len(top) != 1 || !dataset.Equal(top[0].Value, 42) || top[0].N != 2 {
		t.Fatalf("most common entry=%v", top)
	}
}

func TestAverage_RejectsNonNumeric(t *testing.T) {
	_, err := Average(people(t), dataset.Col("name"))
	if !errors.Is(err, dataset.ErrValidation) {
		t.Fatalf("err=%v; want ErrValidation", err)
	}
}

func TestMostCommon_TieGoesToFirstSeen(t *testing.T) {
	d, _ := dataset.New([]string{"v"}, dataset.Row{"b"}, dataset.Row{"a"}, dataset.Row{"a"}, dataset.Row{"b"})
	mc, err := MostCommon(d, dataset.Col("v"))
	if err != nil {
		t.Fatalf("MostCommon: %v", err)
	}
	if mc != "b" {
		t.Fatalf("most common=%v; want b", mc)
	}
}

func TestAggregate(t *testing.T) {
	names := []any{"Matteo", "Arthur", "Ford"}
	ages := []any{35, 42, 42}
	d, err := Aggregate([][]any{names, ages})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if d.Len() != 3 || d.Width() != 2 || !d.Row(1).Equal(dataset.Row{"Arthur", 42}) {
		t.Fatalf("aggregate=%v", d.Rows())
	}

	short := []any{"x"}
	if _, err := Aggregate([][]any{names, short}); !errors.Is(err, dataset.ErrDimension) {
		t.Fatalf("err=%v; want ErrDimension", err)
	}

	d, err = Aggregate([][]any{names, short}, FillEmpty("-"))
	if err != nil {
		t.Fatalf("Aggregate fill: %v", err)
	}
	if !d.Row(2).Equal(dataset.Row{"Ford", "-"}) {
		t.Fatalf("row 2 = %v", d.Row(2))
	}
	if len(short) != 1 {
		t.Fatalf("input column was modified: %v", short)
	}

	n := 0
	d, _ = Aggregate([][]any{names, short}, FillEmptyFunc(func() any { n++; return n }))
	if !d.Row(1).Equal(dataset.Row{"Arthur", 1}) || !d.Row(2).Equal(dataset.Row{"Ford", 2}) {
		t.Fatalf("rows=%v", d.Rows())
	}

	if _, err := Aggregate([][]any{names}); !errors.Is(err, dataset.ErrDataShape) {
		t.Fatalf("single column err=%v; want ErrDataShape", err)
	}
}

func TestMerge(t *testing.T) {
	a, b := people(t), people(t)
	m, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if m.Len() != 6 || m.Width() != 3 {
		t.Fatalf("merged %dx%d; want 6x3", m.Len(), m.Width())
	}

	narrow, _ := dataset.New(nil, dataset.Row{"x", "y"})
	if _, err := Merge(a, narrow); !errors.Is(err, dataset.ErrDimension) {
		t.Fatalf("err=%v; want ErrDimension", err)
	}
	if _, err := Merge(a); !errors.Is(err, dataset.ErrDataShape) {
		t.Fatalf("err=%v; want ErrDataShape", err)
	}
	if _, err := Merge(a, &dataset.Dataset{}); !errors.Is(err, dataset.ErrDataShape) {
		t.Fatalf("empty err=%v; want ErrDataShape", err)
	}
}

func TestChunks(t *testing.T) {
	d := people(t)
	seq, err := Chunks(d, 2)
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	for pass := 0; pass < 2; pass++ {
		var sizes []int
		for c := range seq {
			sizes = append(sizes, c.Len())
		}
		if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
			t.Fatalf("pass %d sizes=%v; want [2 1]", pass, sizes)
		}
	}
	if _, err := Chunks(d, 0); !errors.Is(err, dataset.ErrValidation) {
		t.Fatalf("err=%v; want ErrValidation", err)
	}
}

func TestDeduplicate(t *testing.T) {
	d, _ := dataset.New(nil,
		dataset.Row{"Matteo", "Guadrini", 35},
		dataset.Row{"Arthur", "Dent", 42},
		dataset.Row{"Matteo", "Guadrini", 35.0},
		dataset.Row{"Arthur", "Dent", "42"},
	)
	once := Deduplicate(d)
	if once.Len() != 3 {
		t.Fatalf("len=%d; want 3", once.Len())
	}
	if !once.Row(2).Equal(dataset.Row{"Arthur", "Dent", "42"}) {
		t.Fatalf("row 2 = %v", once.Row(2))
	}
	if twice := Deduplicate(once); !twice.Equal(once) {
		t.Fatalf("deduplicate is not idempotent: %v", twice.Rows())
	}
}

func TestSubsetAndSort(t *testing.T) {
	d := people(t)
	s, err := Subset(d, dataset.Col("age"))
	if err != nil {
		t.Fatalf("Subset: %v", err)
	}
	if s.Width() != 1 || !s.Row(0).Equal(dataset.Row{35}) {
		t.Fatalf("subset=%v", s.Rows())
	}

	asc, err := Sort(d, dataset.Col("age"), false)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if asc.Row(1)[0] != "Arthur" || asc.Row(2)[0] != "Ford" {
		t.Fatalf("ascending=%v; want stable order", asc.Rows())
	}
	desc, _ := Sort(d, dataset.Col("age"), true)
	if desc.Row(0)[0] != "Arthur" || desc.Row(2)[0] != "Matteo" {
		t.Fatalf("descending=%v", desc.Rows())
	}
}

func TestAdapters(t *testing.T) {
	base, _ := dataset.New(nil, dataset.Row{"Arthur", "Dent", 42})
	a := NewAdapters(base)
	if err := a.Merge(people(t)); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := a.Counter().Get("Arthur"); got != 2 {
		t.Fatalf("counter[Arthur]=%d; want 2", got)
	}

	if err := NewAdapters(nil).Merge(people(t)); !errors.Is(err, dataset.ErrDataShape) {
		t.Fatalf("merge into empty err=%v", err)
	}

	a.Deduplicate()
	if a.Len() != 3 {
		t.Fatalf("len after dedupe=%d; want 3", a.Len())
	}

	if err := a.Aggregate([][]any{{1, 2, 3}}); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if a.Data().Width() != 4 || !dataset.Equal(a.Row(2)[3], 3) {
		t.Fatalf("aggregated=%v", a.Data().Rows())
	}
	if err := a.Aggregate([][]any{{1}}); !errors.Is(err, dataset.ErrDimension) {
		t.Fatalf("short column err=%v", err)
	}
}

func TestPrinters(t *testing.T) {
	d, _ := dataset.New([]string{"Name", "Surname", "Age"},
		dataset.Row{"Matteo", "Guadrini", 35},
		dataset.Row{"Arthur", "Dent", 42},
	)
	p := NewPrinters(d)
	if p.Len() != 2 {
		t.Fatalf("len=%d", p.Len())
	}
	avg, err := p.Average(dataset.ColAt(2))
	if err != nil || avg != 38.5 {
		t.Fatalf("average=%v err=%v; want 38.5", avg, err)
	}
	pct, _ := p.Percentage(42)
	if pct != 50 {
		t.Fatalf("percentage=%v; want 50", pct)
	}
}
