package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"reports/internal/dataset"
	"reports/internal/storage"
)

// JSON stores a Dataset as an array of objects keyed by header, or as an
// array of arrays when the Dataset has no headers. Object key order is kept
// on both write and read.
type JSON struct{ base }

// NewJSON binds a JSON manager to path.
func NewJSON(path string) *JSON { return &JSON{base: base{kind: "json", path: path}} }

// Write implements storage.Writable.
func (j *JSON) Write(ctx context.Context, data any) error {
	return j.save(ctx, data, func(w io.Writer, d *dataset.Dataset) error {
		var buf bytes.Buffer
		buf.WriteByte('[')
		headers := d.Headers()
		for r, row := range d.All() {
			if r > 0 {
				buf.WriteByte(',')
			}
			begin, end := byte('['), byte(']')
			if headers != nil {
				begin, end = '{', '}'
			}
			buf.WriteByte(begin)
			for i, v := range row {
				if i > 0 {
					buf.WriteByte(',')
				}
				if headers != nil {
					k, _ := json.Marshal(headers[i])
					buf.Write(k)
					buf.WriteByte(':')
				}
				b, err := json.Marshal(v)
				if err != nil {
					return fmt.Errorf("row %d field %d: %w", r, i, err)
				}
				buf.Write(b)
			}
			buf.WriteByte(end)
		}
		buf.WriteByte(']')

		var out bytes.Buffer
		if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
			return err
		}
		out.WriteByte('\n')
		_, err := out.WriteTo(w)
		return err
	})
}

// Read implements storage.Readable. Numbers decode to int64 when integral
// and float64 otherwise. The headers of an array of objects are every key
// seen, in first-seen order; a key an object lacks reads as nil.
func (j *JSON) Read(ctx context.Context, opts ...storage.ReadOption) (*dataset.Dataset, error) {
	o := storage.ApplyReadOptions(opts...)
	return j.load(ctx, o, func(r io.Reader) (*dataset.Dataset, error) {
		dec := json.NewDecoder(r)
		dec.UseNumber()
		d := &dataset.Dataset{}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return d, nil
		}
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return nil, fmt.Errorf("%w: top-level JSON value must be an array", dataset.ErrDataShape)
		}
		var (
			rows    []dataset.Row
			rowKeys [][]string
			headers []string
			seen    = map[string]bool{}
		)
		for dec.More() {
			row, keys, err := decodeRow(dec)
			if err != nil {
				return nil, err
			}
			for _, k := range keys {
				if !seen[k] {
					seen[k] = true
					headers = append(headers, k)
				}
			}
			rows = append(rows, row)
			rowKeys = append(rowKeys, keys)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		for i, row := range rows {
			if rowKeys[i] != nil {
				row = alignToHeaders(headers, rowKeys[i], row)
			}
			if err := d.Append(row); err != nil {
				return nil, err
			}
		}
		if headers != nil {
			if err := d.SetHeaders(headers); err != nil {
				return nil, err
			}
		}
		return d, nil
	})
}

// decodeRow reads one array element. Objects return their keys in order.
func decodeRow(dec *json.Decoder) (dataset.Row, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return dataset.Row{jsonValue(tok)}, nil, nil
	}
	var (
		row  dataset.Row
		keys []string
	)
	switch delim {
	case '[':
		for dec.More() {
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, nil, err
			}
			row = append(row, jsonValue(v))
		}
	case '{':
		keys = []string{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, nil, err
			}
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, nil, err
			}
			keys = append(keys, kt.(string))
			row = append(row, jsonValue(v))
		}
	default:
		return nil, nil, fmt.Errorf("unexpected %v", delim)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if row == nil {
		row = dataset.Row{}
	}
	return row, keys, nil
}

func alignToHeaders(headers, keys []string, values dataset.Row) dataset.Row {
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		pos[k] = i
	}
	out := make(dataset.Row, len(headers))
	for i, h := range headers {
		if p, ok := pos[h]; ok {
			out[i] = values[p]
		}
	}
	return out
}

func jsonValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
