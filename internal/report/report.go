// Package report ties a source Dataset, a transformation and a sink
// together. A Report is executed with Exec, then exported to its output
// Manager (or printed) and optionally mailed. A Book runs several Reports
// in order, or gathers them into one workbook.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"reports/internal/dataset"
	"reports/internal/executor"
	"reports/internal/mail"
	"reports/internal/metrics"
	"reports/internal/storage"
)

// ErrManagerType reports an output Manager that lacks the capability an
// operation needs.
var ErrManagerType = errors.New("manager type error")

// Verbose logs one line per export.
var Verbose bool

// Config describes a Report.
type Config struct {
	Title string
	Input *dataset.Dataset

	// Filter selects rows after Map. Its Column is ignored; use Column.
	Filter executor.Filter
	Map    executor.MapFunc

	// Column, when set, limits printed and exported output to one column.
	Column dataset.Column

	// Count enables the row count, available from RowCount after Exec.
	Count bool

	// Output is nil (print), a storage.Writable or a storage.TableSink.
	Output storage.Manager
}

// Report is one source to sink unit. Exec may be called any number of
// times; each run starts again from Input.
type Report struct {
	Config

	// Result holds the transformed Dataset, nil until Exec runs.
	Result *dataset.Dataset
	// RowCount is the number of result rows when Count is enabled.
	RowCount *int

	// Stdout receives printed reports; os.Stdout when nil.
	Stdout io.Writer
	// Mailer delivers Send; an SMTP session when nil.
	Mailer mail.Sender
}

// New validates cfg and returns an unexecuted Report.
func New(cfg Config) (*Report, error) {
	if cfg.Input == nil {
		return nil, fmt.Errorf("report %q: %w: input must be a dataset", cfg.Title, dataset.ErrDataShape)
	}
	if err := checkOutput(cfg.Output); err != nil {
		return nil, fmt.Errorf("report %q: %w", cfg.Title, err)
	}
	return &Report{Config: cfg}, nil
}

func checkOutput(m storage.Manager) error {
	switch m.(type) {
	case nil, storage.Writable, storage.TableSink:
		return nil
	}
	return fmt.Errorf("%w: output %s can neither write nor execute", ErrManagerType, m.Kind())
}

func (r *Report) filtering() bool {
	return len(r.Filter.Values) > 0 || r.Filter.Predicate != nil
}

// Exec applies Map, then Filter, then counts, always starting from Input.
func (r *Report) Exec() (err error) {
	start := time.Now()
	defer func() { metrics.RecordStep(r.Title, "exec", err, time.Since(start)) }()

	ex, err := executor.New(r.Input)
	if err != nil {
		return fmt.Errorf("report %q: %w", r.Title, err)
	}
	if r.Map != nil {
		if err := ex.Map(r.Map, dataset.Column{}); err != nil {
			return fmt.Errorf("report %q: map: %w", r.Title, err)
		}
	}
	if r.filtering() {
		f := r.Filter
		f.Column = dataset.Column{}
		if err := ex.Filter(f); err != nil {
			return fmt.Errorf("report %q: filter: %w", r.Title, err)
		}
	}
	r.Result = ex.Data()
	r.RowCount = nil
	if r.Count {
		n := r.Result.Len()
		r.RowCount = &n
	}
	metrics.RecordRows(r.Title, "produced", r.Result.Len())
	return nil
}

// View returns the Result as it is printed and exported: projected to
// Column when one is set. A column name is ignored when the Result has no
// headers.
func (r *Report) View() (*dataset.Dataset, error) {
	if r.Result == nil {
		return nil, fmt.Errorf("report %q: %w: not executed", r.Title, dataset.ErrDataShape)
	}
	if r.Column.IsZero() || (r.Column.ByName() && !r.Result.HasHeaders()) {
		return r.Result, nil
	}
	d, err := r.Result.Project(r.Column)
	if err != nil {
		return nil, fmt.Errorf("report %q: column %v: %w", r.Title, r.Column, err)
	}
	return d, nil
}

// Export re-runs Exec and delivers the result: printed when there is no
// Output, written by a Writable Output, or inserted into a table named
// after the title by a TableSink Output.
func (r *Report) Export(ctx context.Context) (err error) {
	if err := r.Exec(); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordStep(r.Title, "export", err, time.Since(start)) }()

	out, err := r.View()
	if err != nil {
		return err
	}
	switch o := r.Output.(type) {
	case nil:
		_, err := fmt.Fprintln(r.stdout(), r.String())
		return err
	case storage.Writable:
		if err := o.Write(ctx, out); err != nil {
			return fmt.Errorf("report %q: export: %w", r.Title, err)
		}
	case storage.TableSink:
		if err := r.insert(ctx, o, out); err != nil {
			return fmt.Errorf("report %q: export: %w", r.Title, err)
		}
	default:
		return fmt.Errorf("report %q: %w", r.Title, checkOutput(o))
	}
	if Verbose {
		log.Printf("report: %q: exported %d rows to %s", r.Title, out.Len(), r.Output.Kind())
	}
	metrics.RecordRows(r.Title, "exported", out.Len())
	return nil
}

// TableName derives the export table from a title: lower-cased, with
// spaces and dots replaced by underscores. A dot would otherwise read as a
// schema qualifier.
func TableName(title string) string {
	return tableNameReplacer.Replace(strings.ToLower(strings.TrimSpace(title)))
}

var tableNameReplacer = strings.NewReplacer(" ", "_", ".", "_")

func (r *Report) insert(ctx context.Context, sink storage.TableSink, d *dataset.Dataset) error {
	table := TableName(r.Title)
	if table == "" {
		return fmt.Errorf("%w: a table export needs a title", dataset.ErrDataShape)
	}
	if !d.HasHeaders() {
		return fmt.Errorf("%w: a table export needs headers", dataset.ErrDataShape)
	}
	cols := d.Headers()
	if err := sink.CreateTable(ctx, table, cols); err != nil {
		return err
	}
	for i, row := range d.All() {
		if err := sink.InsertRow(ctx, table, cols, row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return sink.Commit(ctx)
}

// Send exports the report and mails the exported file. The Output must be
// file backed.
func (r *Report) Send(ctx context.Context, p mail.Params) (err error) {
	fb, ok := r.Output.(storage.FileBacked)
	if !ok {
		return fmt.Errorf("report %q: %w: mail needs a file output", r.Title, ErrManagerType)
	}
	if err := r.Export(ctx); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordStep(r.Title, "send", err, time.Since(start)) }()

	msg, err := mail.Build(p, fb.Path(), r.Title)
	if err != nil {
		return fmt.Errorf("report %q: %w", r.Title, err)
	}
	if err := r.mailer().Send(ctx, p, msg); err != nil {
		return fmt.Errorf("report %q: %w", r.Title, err)
	}
	return nil
}

func (r *Report) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Report) mailer() mail.Sender {
	if r.Mailer == nil {
		return mail.SMTP{}
	}
	return r.Mailer
}

// String renders the output view followed by a "rows: N" line when
// counting. An unexecuted Report renders empty.
func (r *Report) String() string {
	d, err := r.View()
	if err != nil {
		return ""
	}
	s := d.String()
	if r.RowCount != nil {
		s += fmt.Sprintf("\nrows: %d", *r.RowCount)
	}
	return s
}
