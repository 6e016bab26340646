package report

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"reports/internal/dataset"
	"reports/internal/mail"
	"reports/internal/storage/file"
)

// Book is an ordered collection of Reports.
type Book struct {
	Title   string
	Reports []*Report
}

// NewBook returns a Book holding reports in order.
func NewBook(title string, reports ...*Report) *Book {
	return &Book{Title: title, Reports: reports}
}

// Len returns the number of reports.
func (b *Book) Len() int { return len(b.Reports) }

// Add appends r.
func (b *Book) Add(r *Report) { b.Reports = append(b.Reports, r) }

// Extend appends every report of o.
func (b *Book) Extend(o *Book) { b.Reports = append(b.Reports, o.Reports...) }

// Remove drops the last report.
func (b *Book) Remove() error {
	if len(b.Reports) == 0 {
		return fmt.Errorf("book: %w: remove from empty book", dataset.ErrValidation)
	}
	b.Reports = b.Reports[:len(b.Reports)-1]
	return nil
}

// RemoveAt drops the report at index i.
func (b *Book) RemoveAt(i int) error {
	if i < 0 || i >= len(b.Reports) {
		return fmt.Errorf("book: %w: index %d out of range [0,%d)", dataset.ErrValidation, i, len(b.Reports))
	}
	b.Reports = slices.Delete(b.Reports, i, i+1)
	return nil
}

// Export writes every report. With a path, all reports are executed and
// saved as sheets of one workbook, in order. Without one, each report runs
// its own Export. The first failure stops the batch.
func (b *Book) Export(ctx context.Context, path string) error {
	if path == "" {
		for _, r := range b.Reports {
			if err := r.Export(ctx); err != nil {
				return err
			}
		}
		return nil
	}
	wb := dataset.NewBook(b.Title)
	for _, r := range b.Reports {
		if err := r.Exec(); err != nil {
			return err
		}
		v, err := r.View()
		if err != nil {
			return err
		}
		wb.Add(r.Title, v)
	}
	if err := file.NewXLSX(path).WriteBook(ctx, wb); err != nil {
		return fmt.Errorf("book %q: %w", b.Title, err)
	}
	return nil
}

// Send mails every report in order with the same parameters.
func (b *Book) Send(ctx context.Context, p mail.Params) error {
	for _, r := range b.Reports {
		if err := r.Send(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// String lists the book title and one tab-indented report title per line.
func (b *Book) String() string {
	var sb strings.Builder
	sb.WriteString("ReportBook " + b.Title)
	for _, r := range b.Reports {
		sb.WriteString("\n\t" + r.Title)
	}
	return sb.String()
}
