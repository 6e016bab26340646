package dataset

import (
	"fmt"
	"reflect"
	"slices"
)

// From coerces v into a new Dataset:
//
//   - *Dataset or Dataset: an independent copy
//   - a sequence whose elements are all sequences: one row per element
//   - any other sequence: a single row
//   - a map keyed by string whose values are sequences: one column per key,
//     headers in sorted key order
//
// Any other shape fails with ErrDataShape; ragged input fails with
// ErrDimension.
func From(v any) (*Dataset, error) {
	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil input", ErrDataShape)
	case *Dataset:
		if t == nil {
			return nil, fmt.Errorf("%w: nil dataset", ErrDataShape)
		}
		return t.Clone(), nil
	case Dataset:
		return t.Clone(), nil
	}

	rv := reflect.ValueOf(v)
	switch {
	case isSequence(rv):
		d := &Dataset{}
		if rv.Len() > 0 && allSequences(rv) {
			for i := 0; i < rv.Len(); i++ {
				if err := d.Append(toRow(elem(rv.Index(i)))); err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
			}
			return d, nil
		}
		if rv.Len() == 0 {
			return d, nil
		}
		if err := d.Append(toRow(rv)); err != nil {
			return nil, err
		}
		return d, nil

	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		d := &Dataset{}
		for _, k := range keys {
			col := elem(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
			if !isSequence(col) {
				return nil, fmt.Errorf("%w: map value for %q is %s, want a sequence", ErrDataShape, k, col.Kind())
			}
			if err := d.appendColumnValues(toRow(col)); err != nil {
				return nil, fmt.Errorf("column %q: %w", k, err)
			}
		}
		if err := d.SetHeaders(keys); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: unsupported input of type %T", ErrDataShape, v)
}

// appendColumnValues adds an unnamed column, building rows on first use.
func (d *Dataset) appendColumnValues(values []any) error {
	headers := d.headers
	d.headers = nil
	err := d.AppendColumn("", values)
	d.headers = headers
	return err
}

func elem(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func isSequence(v reflect.Value) bool {
	v = elem(v)
	switch v.Kind() {
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

func allSequences(v reflect.Value) bool {
	for i := 0; i < v.Len(); i++ {
		if !isSequence(v.Index(i)) {
			return false
		}
	}
	return true
}

func toRow(v reflect.Value) Row {
	v = elem(v)
	r := make(Row, v.Len())
	for i := range r {
		r[i] = v.Index(i).Interface()
	}
	return r
}
