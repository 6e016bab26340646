// Package file implements the file-family managers: plain text, log, CSV,
// JSON, YAML and XLSX. Each manager is bound to one path; every Read or
// Write opens the file and closes it before returning.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"reports/internal/dataset"
	"reports/internal/storage"
)

type base struct {
	kind     string
	path     string
	encoding string
}

// Kind implements storage.Manager.
func (b *base) Kind() string { return b.kind }

// Path returns the bound file path.
func (b *base) Path() string { return b.path }

// Close implements storage.Manager. Files are not held open between calls.
func (b *base) Close() error { return nil }

func (b *base) String() string { return fmt.Sprintf("%s file %s", b.kind, b.path) }

type readCloser struct {
	io.Reader
	io.Closer
}

// open returns the file decoded from the given charset, or from the
// manager's default when charset is empty.
func (b *base) open(ctx context.Context, charset string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if charset == "" {
		charset = b.encoding
	}
	f, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", b.path, err)
	}
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return f, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		f.Close()
		return nil, fmt.Errorf("open %s: unsupported encoding %q", b.path, charset)
	}
	return readCloser{Reader: enc.NewDecoder().Reader(f), Closer: f}, nil
}

func (b *base) create(ctx context.Context) (*os.File, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Create(b.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", b.path, err)
	}
	return f, nil
}

// save serializes d into the bound path with fn.
func (b *base) save(ctx context.Context, data any, fn func(io.Writer, *dataset.Dataset) error) error {
	d, err := dataset.From(data)
	if err != nil {
		return fmt.Errorf("%s: write: %w", b.kind, err)
	}
	f, err := b.create(ctx)
	if err != nil {
		return fmt.Errorf("%s: write: %w", b.kind, err)
	}
	if err := fn(f, d); err != nil {
		f.Close()
		return fmt.Errorf("%s: write %s: %w", b.kind, b.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: close %s: %w", b.kind, b.path, err)
	}
	return nil
}

// load opens the bound path and parses it with fn.
func (b *base) load(ctx context.Context, o storage.ReadOptions, fn func(io.Reader) (*dataset.Dataset, error)) (*dataset.Dataset, error) {
	rc, err := b.open(ctx, o.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", b.kind, err)
	}
	defer rc.Close()
	d, err := fn(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", b.kind, b.path, err)
	}
	if len(o.Headers) > 0 {
		if err := d.SetHeaders(o.Headers); err != nil {
			return nil, fmt.Errorf("%s: read %s: %w", b.kind, b.path, err)
		}
	}
	return d, nil
}

func newBase(kind string, cfg storage.Config) (base, error) {
	if strings.TrimSpace(cfg.Filename) == "" {
		return base{}, fmt.Errorf("%s: filename must not be empty", kind)
	}
	return base{kind: kind, path: cfg.Filename, encoding: cfg.Options.String("encoding", "")}, nil
}

func register(kind string, build func(base, storage.Config) storage.Manager) {
	storage.Register(kind, func(_ context.Context, cfg storage.Config) (storage.Manager, error) {
		b, err := newBase(kind, cfg)
		if err != nil {
			return nil, err
		}
		return build(b, cfg), nil
	})
}

func init() {
	register("file", func(b base, _ storage.Config) storage.Manager { return &Text{base: b} })
	register("log", func(b base, cfg storage.Config) storage.Manager {
		return &Log{base: b, pattern: cfg.Options.String("pattern", "")}
	})
	register("csv", func(b base, cfg storage.Config) storage.Manager {
		return &CSV{base: b, delimiter: cfg.Options.Rune("delimiter", ',')}
	})
	register("json", func(b base, _ storage.Config) storage.Manager { return &JSON{base: b} })
	register("yaml", func(b base, _ storage.Config) storage.Manager { return &YAML{base: b} })
	register("xlsx", func(b base, cfg storage.Config) storage.Manager {
		return &XLSX{base: b, sheet: cfg.Options.String("sheet", "")}
	})
}
