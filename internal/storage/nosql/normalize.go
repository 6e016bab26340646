package nosql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"reports/internal/dataset"
)

// Normalize flattens a decoded document response into a Dataset:
//
//   - a list of objects: one row per object, headers are the sorted union
//     of their keys and absent keys read as nil
//   - a list of lists: one row per inner list
//   - a list of scalars: one single-field row per element
//   - an object: a single row, headers in sorted key order
//   - a scalar: a single single-field row
//
// nil yields an empty Dataset.
func Normalize(resp any) (*dataset.Dataset, error) {
	d := &dataset.Dataset{}
	switch t := resp.(type) {
	case nil:
		return d, nil
	case map[string]any:
		return Normalize([]any{t})
	case []any:
		if len(t) == 0 {
			return d, nil
		}
		if headers, ok := objectKeys(t); ok {
			if err := d.SetHeaders(headers); err != nil {
				return nil, err
			}
			for _, doc := range t {
				obj := doc.(map[string]any)
				row := make(dataset.Row, len(headers))
				for i, h := range headers {
					row[i] = obj[h]
				}
				if err := d.Append(row); err != nil {
					return nil, err
				}
			}
			return d, nil
		}
		for i, v := range t {
			row, ok := v.([]any)
			if !ok {
				row = dataset.Row{v}
			}
			if err := d.Append(row); err != nil {
				return nil, fmt.Errorf("document %d: %w", i, err)
			}
		}
		return d, nil
	}
	if err := d.Append(dataset.Row{resp}); err != nil {
		return nil, err
	}
	return d, nil
}

// objectKeys reports whether every element is an object, and the sorted
// union of their keys.
func objectKeys(docs []any) ([]string, bool) {
	seen := map[string]struct{}{}
	for _, doc := range docs {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, false
		}
		for k := range obj {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, true
}

// decode parses a stored JSON document, keeping integers as int64.
func decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return numbers(v), nil
}

func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = numbers(t[i])
		}
	case map[string]any:
		for k := range t {
			t[k] = numbers(t[k])
		}
	}
	return v
}
