// Package mssql registers the "mssql" relational kind, backed by
// github.com/microsoft/go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // registers driver "sqlserver"
	"github.com/microsoft/go-mssqldb/msdsn"

	"reports/internal/storage"
	"reports/internal/storage/sqldb"
	"reports/internal/storage/sqldb/ddl"
)

// DefaultPort is used when the source omits one.
const DefaultPort = 1433

// Dialect is the SQL Server dialect.
type Dialect struct{}

var quoter = ddl.Quoter{Open: "[", Close: "]"}

func init() { sqldb.Register(Dialect{}, "mssql") }

// Name implements sqldb.Dialect.
func (Dialect) Name() string { return "mssql" }

// DSN returns cfg.DSN, or a sqlserver:// URL built from the host, port,
// user, password and database options. Either form is validated with
// msdsn.Parse.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	dsn := cfg.DSN
	if dsn == "" {
		o := cfg.Options
		host := o.String("host", "")
		if host == "" {
			return "", fmt.Errorf("DSN or host option must not be empty")
		}
		u := url.URL{
			Scheme: "sqlserver",
			Host:   net.JoinHostPort(host, strconv.Itoa(o.Int("port", DefaultPort))),
		}
		if user := o.String("user", ""); user != "" {
			u.User = url.UserPassword(user, o.String("password", ""))
		}
		if db := o.String("database", ""); db != "" {
			u.RawQuery = url.Values{"database": {db}}.Encode()
		}
		dsn = u.String()
	}
	if _, err := msdsn.Parse(dsn); err != nil {
		return "", fmt.Errorf("dsn: %w", err)
	}
	return dsn, nil
}

// Open implements sqldb.Dialect.
func (Dialect) Open(_ context.Context, dsn string) (*sql.DB, func(), error) {
	db, err := sql.Open("sqlserver", dsn)
	return db, nil, err
}

// Quoter implements sqldb.Dialect.
func (Dialect) Quoter() ddl.Quoter { return quoter }

// Placeholder implements sqldb.Dialect.
func (Dialect) Placeholder(i int) string { return "@p" + strconv.Itoa(i) }

// TextType implements sqldb.Dialect.
func (Dialect) TextType() string { return "NVARCHAR(MAX)" }

// CreateTableSQL implements sqldb.Dialect. T-SQL has no CREATE TABLE IF NOT
// EXISTS, so the statement is guarded by an OBJECT_ID check:
//
//	IF OBJECT_ID(N'[dbo].[t]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[t] (
//	    ...
//	  );
//	END;
func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := ddl.ColumnList(t, quoter)
	if err != nil {
		return "", err
	}
	fqn := quoter.FQN(t.FQN)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// CallSQL implements sqldb.Dialect.
func (d Dialect) CallSQL(name string, n int) (string, error) {
	args := make([]string, n)
	for i := range args {
		args[i] = d.Placeholder(i + 1)
	}
	q := "EXEC " + quoter.FQN(name)
	if n > 0 {
		q += " " + strings.Join(args, ", ")
	}
	return q, nil
}
