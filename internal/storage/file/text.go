package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"reports/internal/dataset"
	"reports/internal/storage"
)

const maxLine = 1 << 20

// Text stores every field on its own line and reads every line back as a
// one-field row.
type Text struct{ base }

// NewText binds a plain text manager to path.
func NewText(path string) *Text { return &Text{base: base{kind: "file", path: path}} }

// Write implements storage.Writable.
func (t *Text) Write(ctx context.Context, data any) error {
	return t.save(ctx, data, func(w io.Writer, d *dataset.Dataset) error {
		bw := bufio.NewWriter(w)
		first := true
		for _, row := range d.All() {
			for _, v := range row {
				if !first {
					bw.WriteByte('\n')
				}
				first = false
				bw.WriteString(dataset.Format(v))
			}
		}
		return bw.Flush()
	})
}

// Read implements storage.Readable.
func (t *Text) Read(ctx context.Context, opts ...storage.ReadOption) (*dataset.Dataset, error) {
	o := storage.ApplyReadOptions(opts...)
	return t.load(ctx, o, func(r io.Reader) (*dataset.Dataset, error) {
		d := &dataset.Dataset{}
		err := eachLine(r, func(line string) error { return d.Append(dataset.Row{line}) })
		return d, err
	})
}

func eachLine(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		if err := fn(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Log reads free-form log lines. With a pattern, each matching line becomes
// a row of the pattern's capture groups and other lines are skipped; without
// one, each line becomes a one-field row.
type Log struct {
	base
	pattern string
}

// NewLog binds a log manager to path. pattern may be empty.
func NewLog(path, pattern string) *Log {
	return &Log{base: base{kind: "log", path: path}, pattern: pattern}
}

// Write implements storage.Writable. Fields are joined with single spaces,
// one row per line.
func (l *Log) Write(ctx context.Context, data any) error {
	return l.save(ctx, data, func(w io.Writer, d *dataset.Dataset) error {
		bw := bufio.NewWriter(w)
		for _, row := range d.All() {
			parts := make([]string, len(row))
			for i, v := range row {
				parts[i] = dataset.Format(v)
			}
			bw.WriteString(strings.Join(parts, " "))
			bw.WriteByte('\n')
		}
		return bw.Flush()
	})
}

// Read implements storage.Readable. WithPattern overrides the configured
// pattern. Named groups supply headers unless WithHeaders is given.
func (l *Log) Read(ctx context.Context, opts ...storage.ReadOption) (*dataset.Dataset, error) {
	o := storage.ApplyReadOptions(opts...)
	pattern := l.pattern
	if o.Pattern != "" {
		pattern = o.Pattern
	}
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("log: pattern: %w", err)
		}
	}
	return l.load(ctx, o, func(r io.Reader) (*dataset.Dataset, error) {
		d := &dataset.Dataset{}
		if re != nil {
			if names := groupNames(re); names != nil {
				_ = d.SetHeaders(names)
			}
		}
		err := eachLine(r, func(line string) error {
			if re == nil {
				return d.Append(dataset.Row{line})
			}
			m := re.FindStringSubmatch(line)
			if m == nil {
				return nil
			}
			if len(m) > 1 {
				m = m[1:]
			}
			row := make(dataset.Row, len(m))
			for i, s := range m {
				row[i] = s
			}
			return d.Append(row)
		})
		return d, err
	})
}

// groupNames returns the capture group names when every group is named.
func groupNames(re *regexp.Regexp) []string {
	names := re.SubexpNames()[1:]
	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if n == "" {
			return nil
		}
	}
	return names
}
