// Package sqlite registers the "sqlite" relational kind, backed by the pure
// Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers driver "sqlite"

	"reports/internal/storage"
	"reports/internal/storage/sqldb"
	"reports/internal/storage/sqldb/ddl"
)

// Dialect is the SQLite dialect.
type Dialect struct{}

var quoter = ddl.Quoter{Open: `"`, Close: `"`}

func init() { sqldb.Register(Dialect{}, "sqlite") }

// Name implements sqldb.Dialect.
func (Dialect) Name() string { return "sqlite" }

// DSN returns cfg.DSN, or the "database" option as a file path. ":memory:"
// opens a private in-memory database.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	db := strings.TrimSpace(cfg.Options.String("database", ""))
	if db == "" {
		return "", fmt.Errorf("DSN or database option must not be empty")
	}
	return db, nil
}

// Open implements sqldb.Dialect. The pool is capped at one connection so
// that an in-memory database and the open transaction are seen by every
// statement.
func (Dialect) Open(_ context.Context, dsn string) (*sql.DB, func(), error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil, nil
}

// Quoter implements sqldb.Dialect.
func (Dialect) Quoter() ddl.Quoter { return quoter }

// Placeholder implements sqldb.Dialect.
func (Dialect) Placeholder(int) string { return "?" }

// TextType implements sqldb.Dialect.
func (Dialect) TextType() string { return "TEXT" }

// CreateTableSQL implements sqldb.Dialect.
func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, quoter, true)
}

// CallSQL implements sqldb.Dialect. SQLite has no stored procedures.
func (Dialect) CallSQL(string, int) (string, error) { return "", sqldb.ErrUnsupported }

// Open connects to the SQLite database at dsn.
func Open(ctx context.Context, dsn string) (*sqldb.Manager, error) {
	return sqldb.Open(ctx, Dialect{}, dsn)
}
