// Package storage defines the capability interfaces every data source or
// sink implements, and a factory that builds one from a kind tag.
//
// A backend package registers a Factory for each kind it serves from init.
// Callers import storage/all for every backend, or a single backend package
// for a smaller binary, and then stay backend-agnostic:
//
//	m, err := storage.New(ctx, storage.Config{Kind: "csv", Filename: "out.csv"})
//	if err != nil { ... }
//	defer m.Close()
//	if w, ok := m.(storage.Writable); ok {
//	    err = w.Write(ctx, data)
//	}
//
// Capabilities are discovered by interface assertion, never by inspecting
// the kind string.
package storage

import (
	"context"

	"reports/internal/dataset"
)

// Manager is a handle on one backend. Constructing it connects; Close
// releases the connection.
type Manager interface {
	// Kind returns the tag the manager was built from.
	Kind() string
	Close() error
}

// Readable managers produce a Dataset on demand.
type Readable interface {
	Manager
	Read(ctx context.Context, opts ...ReadOption) (*dataset.Dataset, error)
}

// Writable managers persist a Dataset. Write accepts anything dataset.From
// accepts.
type Writable interface {
	Manager
	Write(ctx context.Context, data any) error
}

// FileBacked managers write to a single path, which can be attached to mail.
type FileBacked interface {
	Path() string
}

// Executable managers run statements against a relational backend and
// fetch their results as Datasets. The headers of a fetched Dataset come
// from the result columns of the most recent Execute.
type Executable interface {
	Manager
	Execute(ctx context.Context, query string, args ...any) error
	ExecuteMany(ctx context.Context, query string, argSets [][]any) error
	FetchOne(ctx context.Context) (*dataset.Dataset, error)
	FetchMany(ctx context.Context, n int) (*dataset.Dataset, error)
	FetchAll(ctx context.Context) (*dataset.Dataset, error)
	CallProc(ctx context.Context, name string, args ...any) (*dataset.Dataset, error)
	Commit(ctx context.Context) error
}

// TableSink is an Executable manager that can also create a table and
// insert rows in its own SQL dialect.
type TableSink interface {
	Executable
	CreateTable(ctx context.Context, table string, columns []string) error
	InsertRow(ctx context.Context, table string, columns []string, row dataset.Row) error
}

// Findable managers look documents up in a document store.
type Findable interface {
	Manager
	Get(ctx context.Context, collection string, keys ...string) (*dataset.Dataset, error)
	Find(ctx context.Context, collection string, query map[string]any) (*dataset.Dataset, error)
}

// Queryable managers search a directory service.
type Queryable interface {
	Manager
	Query(ctx context.Context, base, filter string, attributes []string) (*dataset.Dataset, error)
}
