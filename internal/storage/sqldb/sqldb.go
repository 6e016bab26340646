// Package sqldb implements the relational Manager over database/sql. A
// Dialect supplies everything backend specific: how to open a connection,
// identifier quoting, bind placeholders, CREATE TABLE rendering and stored
// procedure calls.
//
// Statements run inside a transaction that is begun lazily by the first
// Execute and ended by Commit. Close rolls back anything uncommitted.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reports/internal/dataset"
	"reports/internal/storage"
	"reports/internal/storage/sqldb/ddl"
)

// ErrNoResultSet is returned by the fetch methods when the most recent
// statement produced no result set.
var ErrNoResultSet = errors.New("sqldb: no result set; execute a query first")

// ErrUnsupported is returned for operations a dialect cannot express.
var ErrUnsupported = errors.New("sqldb: operation not supported by dialect")

// pingTimeout bounds the connectivity check done on open.
const pingTimeout = 5 * time.Second

// Dialect adapts the Manager to one database engine.
type Dialect interface {
	// Name is the manager kind, e.g. "postgresql".
	Name() string

	// DSN returns cfg.DSN when set, or builds one from cfg.Options.
	DSN(cfg storage.Config) (string, error)

	// Open connects. The returned func releases anything beyond the
	// *sql.DB itself and may be nil.
	Open(ctx context.Context, dsn string) (*sql.DB, func(), error)

	// Quoter returns the identifier delimiters.
	Quoter() ddl.Quoter

	// Placeholder returns the bind marker for the i-th argument, from 1.
	Placeholder(i int) string

	// TextType is the unbounded text column type of exported report tables.
	TextType() string

	// CreateTableSQL renders an idempotent CREATE TABLE.
	CreateTableSQL(t ddl.TableDef) (string, error)

	// CallSQL renders a stored procedure call with n arguments that
	// returns a result set.
	CallSQL(name string, n int) (string, error)
}

// Verbose enables one log line per statement.
var Verbose bool

// Manager is a connection to one relational database.
type Manager struct {
	dialect Dialect
	dsn     string

	db      *sql.DB
	release func()
	tx      *sql.Tx
	rows    *sql.Rows
	columns []string

	lastID   int64
	rowCount int64
}

var _ storage.TableSink = (*Manager)(nil)

// Open connects through d and verifies the connection with a ping.
func Open(ctx context.Context, d Dialect, dsn string) (*Manager, error) {
	m := &Manager{dialect: d, dsn: dsn, rowCount: -1}
	if err := m.connect(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Register exposes d as a storage kind under each of names.
func Register(d Dialect, names ...string) {
	f := func(ctx context.Context, cfg storage.Config) (storage.Manager, error) {
		dsn, err := d.DSN(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name(), err)
		}
		return Open(ctx, d, dsn)
	}
	for _, n := range names {
		storage.Register(n, f)
	}
}

func (m *Manager) connect(ctx context.Context) error {
	db, release, err := m.dialect.Open(ctx, m.dsn)
	if err != nil {
		return fmt.Errorf("%s: open: %w", m.dialect.Name(), err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		if release != nil {
			release()
		}
		return fmt.Errorf("%s: ping: %w", m.dialect.Name(), err)
	}
	m.db, m.release = db, release
	return nil
}

// Kind implements storage.Manager.
func (m *Manager) Kind() string { return m.dialect.Name() }

// DB exposes the underlying pool.
func (m *Manager) DB() *sql.DB { return m.db }

// Close discards any open result set, rolls back uncommitted work and
// closes the connection.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	m.closeRows()
	var errs []error
	if m.tx != nil {
		if err := m.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		m.tx = nil
	}
	if err := m.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	if m.release != nil {
		m.release()
	}
	m.db, m.release = nil, nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", m.dialect.Name(), err)
	}
	return nil
}

// Reconnect closes the connection and opens a new one with the same DSN.
func (m *Manager) Reconnect(ctx context.Context) error {
	if err := m.Close(); err != nil {
		return err
	}
	return m.connect(ctx)
}

// Description returns the column names of the current result set.
func (m *Manager) Description() []string { return append([]string(nil), m.columns...) }

// LastRowID returns the id generated by the most recent insert, where the
// driver reports one.
func (m *Manager) LastRowID() int64 { return m.lastID }

// RowCount returns the rows affected by the most recent statement, or -1
// after a query or when the driver does not report it.
func (m *Manager) RowCount() int64 { return m.rowCount }

func (m *Manager) closeRows() {
	if m.rows != nil {
		m.rows.Close()
		m.rows = nil
	}
}

func (m *Manager) begin(ctx context.Context) (*sql.Tx, error) {
	if m.db == nil {
		return nil, fmt.Errorf("%s: connection is closed", m.dialect.Name())
	}
	if m.tx == nil {
		tx, err := m.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: begin: %w", m.dialect.Name(), err)
		}
		m.tx = tx
	}
	return m.tx, nil
}

// Execute runs one statement. Statements that return rows open a result
// set for the fetch methods; others record the affected row count and the
// last insert id.
func (m *Manager) Execute(ctx context.Context, query string, args ...any) error {
	return m.run(ctx, query, args, returnsRows(query))
}

func (m *Manager) run(ctx context.Context, query string, args []any, isQuery bool) error {
	m.closeRows()
	tx, err := m.begin(ctx)
	if err != nil {
		return err
	}
	if Verbose {
		log.Printf("%s: %s", m.dialect.Name(), oneLine(query))
	}
	m.lastID, m.rowCount, m.columns = 0, -1, nil
	if isQuery {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: query: %w", m.dialect.Name(), err)
		}
		cols, err := rows.Columns()
		if err != nil {
			rows.Close()
			return fmt.Errorf("%s: columns: %w", m.dialect.Name(), err)
		}
		m.rows, m.columns = rows, cols
		return nil
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", m.dialect.Name(), err)
	}
	m.record(res)
	return nil
}

func (m *Manager) record(res sql.Result) {
	if n, err := res.RowsAffected(); err == nil {
		m.rowCount = n
	}
	if id, err := res.LastInsertId(); err == nil {
		m.lastID = id
	}
}

// ExecuteMany runs one statement once per argument set through a single
// prepared statement. RowCount afterwards is the total affected.
func (m *Manager) ExecuteMany(ctx context.Context, query string, argSets [][]any) error {
	m.closeRows()
	tx, err := m.begin(ctx)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", m.dialect.Name(), err)
	}
	defer stmt.Close()

	m.lastID, m.columns = 0, nil
	var total int64
	for i, args := range argSets {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("%s: exec set %d: %w", m.dialect.Name(), i, err)
		}
		m.record(res)
		if m.rowCount > 0 {
			total += m.rowCount
		}
	}
	m.rowCount = total
	return nil
}

// FetchOne returns the next row of the current result set. An exhausted
// result set yields an empty Dataset that still carries the headers.
func (m *Manager) FetchOne(ctx context.Context) (*dataset.Dataset, error) {
	return m.fetch(ctx, 1)
}

// FetchMany returns up to n rows of the current result set.
func (m *Manager) FetchMany(ctx context.Context, n int) (*dataset.Dataset, error) {
	if n < 1 {
		n = 1
	}
	return m.fetch(ctx, n)
}

// FetchAll returns every remaining row of the current result set.
func (m *Manager) FetchAll(ctx context.Context) (*dataset.Dataset, error) {
	return m.fetch(ctx, -1)
}

func (m *Manager) fetch(ctx context.Context, limit int) (*dataset.Dataset, error) {
	if m.columns == nil {
		return nil, ErrNoResultSet
	}
	d, err := dataset.New(m.columns)
	if err != nil {
		return nil, err
	}
	if m.rows == nil {
		return d, nil
	}
	for limit < 0 || d.Len() < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !m.rows.Next() {
			err := m.rows.Err()
			m.closeRows()
			if err != nil {
				return nil, fmt.Errorf("%s: fetch: %w", m.dialect.Name(), err)
			}
			break
		}
		vals := make([]any, len(m.columns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := m.rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", m.dialect.Name(), err)
		}
		if err := d.Append(vals); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// CallProc calls a stored procedure and returns its result set.
func (m *Manager) CallProc(ctx context.Context, name string, args ...any) (*dataset.Dataset, error) {
	q, err := m.dialect.CallSQL(name, len(args))
	if err != nil {
		return nil, fmt.Errorf("%s: callproc %s: %w", m.dialect.Name(), name, err)
	}
	if err := m.run(ctx, q, args, true); err != nil {
		return nil, err
	}
	return m.FetchAll(ctx)
}

// Commit commits the open transaction. Without one it does nothing.
func (m *Manager) Commit(ctx context.Context) error {
	m.closeRows()
	if m.tx == nil {
		return nil
	}
	tx := m.tx
	m.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", m.dialect.Name(), err)
	}
	return nil
}

// CreateTable creates table with one text column per name unless it
// already exists.
func (m *Manager) CreateTable(ctx context.Context, table string, columns []string) error {
	q, err := m.dialect.CreateTableSQL(ddl.Text(table, m.dialect.TextType(), columns))
	if err != nil {
		return fmt.Errorf("%s: %w", m.dialect.Name(), err)
	}
	return m.run(ctx, q, nil, false)
}

// InsertRow inserts one row. Values are stored as text; nil stays NULL.
func (m *Manager) InsertRow(ctx context.Context, table string, columns []string, row dataset.Row) error {
	if len(row) != len(columns) {
		return fmt.Errorf("%s: insert: %w: %d values for %d columns", m.dialect.Name(), dataset.ErrDimension, len(row), len(columns))
	}
	q := m.dialect.Quoter()
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = q.Ident(c)
		marks[i] = m.dialect.Placeholder(i + 1)
		if row[i] != nil {
			args[i] = dataset.Format(row[i])
		}
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", q.FQN(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return m.run(ctx, stmt, args, false)
}

// returnsRows reports whether a statement produces a result set, judged by
// its leading keyword.
func returnsRows(query string) bool {
	s := strings.TrimLeft(query, " \t\r\n(")
	for strings.HasPrefix(s, "--") || strings.HasPrefix(s, "/*") {
		if strings.HasPrefix(s, "--") {
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return false
			}
			s = s[i+1:]
		} else {
			i := strings.Index(s, "*/")
			if i < 0 {
				return false
			}
			s = s[i+2:]
		}
		s = strings.TrimLeft(s, " \t\r\n(")
	}
	word := s
	if i := strings.IndexFunc(s, func(r rune) bool { return !isWordRune(r) }); i >= 0 {
		word = s[:i]
	}
	switch strings.ToUpper(word) {
	case "SELECT", "WITH", "PRAGMA", "SHOW", "VALUES", "EXPLAIN", "DESCRIBE", "DESC", "CALL", "EXEC", "EXECUTE", "TABLE":
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func oneLine(q string) string { return strings.Join(strings.Fields(q), " ") }
