// Package nosql implements the "nosql" document manager. Documents are JSON
// values stored under string keys in named collections, on top of an
// embedded bolt or leveldb store selected by the "backend" option.
package nosql

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"reports/internal/dataset"
	"reports/internal/storage"
)

// Verbose logs one line per lookup.
var Verbose bool

// Manager looks documents up in a Store.
type Manager struct {
	backend string
	path    string
	store   Store
}

func init() {
	storage.Register("nosql", func(_ context.Context, cfg storage.Config) (storage.Manager, error) {
		return Open(cfg)
	})
}

// Open builds a Manager from the "backend" ("bolt" or "leveldb", default
// "bolt") and "path" options; cfg.Filename is used when path is absent.
func Open(cfg storage.Config) (*Manager, error) {
	backend := strings.ToLower(cfg.Options.String("backend", "bolt"))
	path := cfg.Options.String("path", cfg.Filename)
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("nosql: path option must not be empty")
	}
	var (
		s   Store
		err error
	)
	switch backend {
	case "bolt":
		s, err = OpenBolt(path)
	case "leveldb":
		s, err = OpenLevel(path)
	default:
		return nil, fmt.Errorf("nosql: unknown backend %q (want bolt or leveldb)", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("nosql: %w", err)
	}
	return New(backend, path, s), nil
}

// New wraps an already open Store.
func New(backend, path string, s Store) *Manager {
	return &Manager{backend: backend, path: path, store: s}
}

// Kind implements storage.Manager.
func (m *Manager) Kind() string { return "nosql" }

// Close implements storage.Manager.
func (m *Manager) Close() error { return m.store.Close() }

func (m *Manager) String() string { return fmt.Sprintf("nosql %s %s", m.backend, m.path) }

// Get returns the documents stored under keys, in key order. Missing keys
// are skipped.
func (m *Manager) Get(ctx context.Context, collection string, keys ...string) (*dataset.Dataset, error) {
	docs := make([]any, 0, len(keys))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok, err := m.store.Get(collection, k)
		if err != nil {
			return nil, fmt.Errorf("nosql: get %s/%s: %w", collection, k, err)
		}
		if !ok {
			continue
		}
		doc, err := decode(b)
		if err != nil {
			return nil, fmt.Errorf("nosql: decode %s/%s: %w", collection, k, err)
		}
		docs = append(docs, doc)
	}
	if Verbose {
		log.Printf("nosql: get %s: %d of %d keys found", collection, len(docs), len(keys))
	}
	return Normalize(docs)
}

// Find returns every document in collection whose fields equal all of the
// query's entries. An empty query matches every document.
func (m *Manager) Find(ctx context.Context, collection string, query map[string]any) (*dataset.Dataset, error) {
	var docs []any
	err := m.store.Scan(collection, func(key string, b []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := decode(b)
		if err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
		if matches(doc, query) {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("nosql: find %s: %w", collection, err)
	}
	if Verbose {
		log.Printf("nosql: find %s: %d documents", collection, len(docs))
	}
	return Normalize(docs)
}

// Put stores doc as JSON under key, replacing any previous document.
func (m *Manager) Put(ctx context.Context, collection, key string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("nosql: encode %s/%s: %w", collection, key, err)
	}
	if err := m.store.Put(collection, key, b); err != nil {
		return fmt.Errorf("nosql: put %s/%s: %w", collection, key, err)
	}
	return nil
}

func matches(doc any, query map[string]any) bool {
	if len(query) == 0 {
		return true
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	for k, want := range query {
		got, ok := obj[k]
		if !ok || !dataset.Equal(got, want) {
			return false
		}
	}
	return true
}
