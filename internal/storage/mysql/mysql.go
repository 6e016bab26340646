// Package mysql registers the "mysql" relational kind, backed by
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	driver "github.com/go-sql-driver/mysql"

	"reports/internal/storage"
	"reports/internal/storage/sqldb"
	"reports/internal/storage/sqldb/ddl"
)

// DefaultPort is used when the source omits one.
const DefaultPort = 3306

// Dialect is the MySQL dialect.
type Dialect struct{}

var quoter = ddl.Quoter{Open: "`", Close: "`"}

func init() { sqldb.Register(Dialect{}, "mysql") }

// Name implements sqldb.Dialect.
func (Dialect) Name() string { return "mysql" }

// DSN returns cfg.DSN, or a driver DSN built from the host, port, user,
// password and database options.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	if cfg.DSN != "" {
		if _, err := driver.ParseDSN(cfg.DSN); err != nil {
			return "", fmt.Errorf("dsn: %w", err)
		}
		return cfg.DSN, nil
	}
	o := cfg.Options
	host := o.String("host", "")
	if host == "" {
		return "", fmt.Errorf("DSN or host option must not be empty")
	}
	c := driver.NewConfig()
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, strconv.Itoa(o.Int("port", DefaultPort)))
	c.User = o.String("user", "")
	c.Passwd = o.String("password", "")
	c.DBName = o.String("database", "")
	c.ParseTime = true
	return c.FormatDSN(), nil
}

// Open implements sqldb.Dialect.
func (Dialect) Open(_ context.Context, dsn string) (*sql.DB, func(), error) {
	db, err := sql.Open("mysql", dsn)
	return db, nil, err
}

// Quoter implements sqldb.Dialect.
func (Dialect) Quoter() ddl.Quoter { return quoter }

// Placeholder implements sqldb.Dialect.
func (Dialect) Placeholder(int) string { return "?" }

// TextType implements sqldb.Dialect.
func (Dialect) TextType() string { return "LONGTEXT" }

// CreateTableSQL implements sqldb.Dialect.
func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, quoter, true)
}

// CallSQL implements sqldb.Dialect.
func (Dialect) CallSQL(name string, n int) (string, error) {
	return fmt.Sprintf("CALL %s(%s)", quoter.FQN(name), strings.TrimSuffix(strings.Repeat("?, ", n), ", ")), nil
}
