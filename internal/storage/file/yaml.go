package file

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"reports/internal/dataset"
	"reports/internal/storage"
)

// YAML stores a Dataset as a sequence of mappings keyed by header, or as a
// sequence of sequences when the Dataset has no headers. Mapping key order
// is kept on both write and read.
type YAML struct{ base }

// NewYAML binds a YAML manager to path.
func NewYAML(path string) *YAML { return &YAML{base: base{kind: "yaml", path: path}} }

// Write implements storage.Writable.
func (y *YAML) Write(ctx context.Context, data any) error {
	return y.save(ctx, data, func(w io.Writer, d *dataset.Dataset) error {
		root := &yaml.Node{Kind: yaml.SequenceNode}
		headers := d.Headers()
		for r, row := range d.All() {
			item := &yaml.Node{Kind: yaml.SequenceNode}
			if headers != nil {
				item.Kind = yaml.MappingNode
			}
			for i, v := range row {
				if headers != nil {
					item.Content = append(item.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: headers[i]})
				}
				var val yaml.Node
				if err := val.Encode(v); err != nil {
					return fmt.Errorf("row %d field %d: %w", r, i, err)
				}
				item.Content = append(item.Content, &val)
			}
			root.Content = append(root.Content, item)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return err
		}
		return enc.Close()
	})
}

// Read implements storage.Readable.
func (y *YAML) Read(ctx context.Context, opts ...storage.ReadOption) (*dataset.Dataset, error) {
	o := storage.ApplyReadOptions(opts...)
	return y.load(ctx, o, func(r io.Reader) (*dataset.Dataset, error) {
		d := &dataset.Dataset{}
		var doc yaml.Node
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return d, nil
			}
			return nil, err
		}
		if len(doc.Content) == 0 {
			return d, nil
		}
		seq := doc.Content[0]
		if seq.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: top-level YAML value must be a sequence", dataset.ErrDataShape)
		}
		for _, item := range seq.Content {
			row, keys, err := yamlRow(item)
			if err != nil {
				return nil, err
			}
			if keys != nil {
				if !d.HasHeaders() {
					if err := d.SetHeaders(keys); err != nil {
						return nil, err
					}
				}
				row = alignToHeaders(d.Headers(), keys, row)
			}
			if err := d.Append(row); err != nil {
				return nil, err
			}
		}
		return d, nil
	})
}

func yamlRow(n *yaml.Node) (dataset.Row, []string, error) {
	switch n.Kind {
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		row := make(dataset.Row, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var v any
			if err := n.Content[i+1].Decode(&v); err != nil {
				return nil, nil, err
			}
			keys = append(keys, n.Content[i].Value)
			row = append(row, v)
		}
		return row, keys, nil
	case yaml.SequenceNode:
		row := make(dataset.Row, 0, len(n.Content))
		for _, c := range n.Content {
			var v any
			if err := c.Decode(&v); err != nil {
				return nil, nil, err
			}
			row = append(row, v)
		}
		return row, nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, nil, err
	}
	return dataset.Row{v}, nil, nil
}
