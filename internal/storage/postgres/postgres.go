// Package postgres registers the "postgresql" relational kind (alias
// "postgres"). Connections come from a pgx pool exposed through
// database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"reports/internal/storage"
	"reports/internal/storage/sqldb"
	"reports/internal/storage/sqldb/ddl"
)

// DefaultPort is used when the source omits one.
const DefaultPort = 5432

// Dialect is the PostgreSQL dialect.
type Dialect struct{}

var quoter = ddl.Quoter{Open: `"`, Close: `"`}

func init() { sqldb.Register(Dialect{}, "postgresql", "postgres") }

// Name implements sqldb.Dialect.
func (Dialect) Name() string { return "postgresql" }

// DSN returns cfg.DSN, or a postgres:// URL built from the host, port,
// user, password and database options. Either form is parsed to fail fast
// on mistakes.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	dsn := cfg.DSN
	if dsn == "" {
		o := cfg.Options
		host := o.String("host", "")
		if host == "" {
			return "", fmt.Errorf("DSN or host option must not be empty")
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(host, strconv.Itoa(o.Int("port", DefaultPort))),
			Path:   "/" + o.String("database", ""),
		}
		if user := o.String("user", ""); user != "" {
			u.User = url.UserPassword(user, o.String("password", ""))
		}
		if mode := o.String("sslmode", ""); mode != "" {
			u.RawQuery = url.Values{"sslmode": {mode}}.Encode()
		}
		dsn = u.String()
	}
	if _, err := pgxpool.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("dsn: %w", err)
	}
	return dsn, nil
}

// Open implements sqldb.Dialect. The returned release func closes the pool.
func (Dialect) Open(ctx context.Context, dsn string) (*sql.DB, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), pool.Close, nil
}

// Quoter implements sqldb.Dialect.
func (Dialect) Quoter() ddl.Quoter { return quoter }

// Placeholder implements sqldb.Dialect.
func (Dialect) Placeholder(i int) string { return "$" + strconv.Itoa(i) }

// TextType implements sqldb.Dialect.
func (Dialect) TextType() string { return "TEXT" }

// CreateTableSQL implements sqldb.Dialect.
func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, quoter, true)
}

// CallSQL implements sqldb.Dialect. Set-returning functions are selected
// from, so their rows come back as a result set.
func (d Dialect) CallSQL(name string, n int) (string, error) {
	return fmt.Sprintf("SELECT * FROM %s(%s)", quoter.FQN(name), marks(d, n)), nil
}

func marks(d sqldb.Dialect, n int) string {
	m := make([]string, n)
	for i := range m {
		m[i] = d.Placeholder(i + 1)
	}
	return strings.Join(m, ", ")
}
