package main

import (
	"context"
	"fmt"
	"strings"

	"reports/internal/config"
	"reports/internal/dataset"
	"reports/internal/executor"
	"reports/internal/mail"
	"reports/internal/report"
	"reports/internal/storage"
	"reports/internal/storage/ldap"
	"reports/internal/storage/nosql"
	"reports/internal/storage/sqldb"
	"reports/internal/transform"
)

func setVerbose(v bool) {
	sqldb.Verbose = v
	nosql.Verbose = v
	ldap.Verbose = v
	report.Verbose = v
}

func managerConfig(e *config.Endpoint) storage.Config {
	return storage.Config{
		Kind:     e.Manager,
		Filename: e.Filename,
		DSN:      e.DSN,
		Options:  e.Source,
	}
}

func (m *Main) runReport(ctx context.Context, rc config.Report) error {
	m.info.Printf("make an input manager of type %s", rc.Input.Manager)
	in, err := storage.New(ctx, managerConfig(rc.Input))
	if err != nil {
		return err
	}
	m.info.Printf("get data from manager %v", in)
	data, err := readInput(ctx, in, rc.Input.Params)
	in.Close()
	if err != nil {
		return fmt.Errorf("report %q: input: %w", rc.Title, err)
	}

	cfg := report.Config{
		Title: rc.Title,
		Input: data,
		Count: rc.Count,
		Filter: executor.Filter{
			Values: rc.Filters.Values,
			Negate: rc.Filters.Negation,
		},
	}
	if rc.Map != "" {
		if cfg.Map, err = transform.Lookup(rc.Map); err != nil {
			return err
		}
	}
	if rc.Filters.Predicate != "" {
		if cfg.Filter.Predicate, err = transform.LookupPredicate(rc.Filters.Predicate); err != nil {
			return err
		}
	}
	if cfg.Column, err = dataset.ParseColumn(rc.Column); err != nil {
		return err
	}
	if rc.Output != nil {
		out, err := storage.New(ctx, managerConfig(rc.Output))
		if err != nil {
			return err
		}
		defer out.Close()
		cfg.Output = out
	}

	r, err := report.New(cfg)
	if err != nil {
		return err
	}
	r.Stdout = m.stdout
	m.info.Printf("created report %s", r.Title)

	switch {
	case rc.Mail != nil:
		m.info.Printf("send report to %s", strings.Join(rc.Mail.To, ", "))
		return r.Send(ctx, mailParams(rc.Mail))
	case cfg.Output != nil:
		m.info.Printf("export report to %v", cfg.Output)
		return r.Export(ctx)
	}
	m.info.Printf("print report to stdout")
	fmt.Fprintf(m.stdout, "%s\n%s\n\n", r.Title, strings.Repeat("=", len([]rune(r.Title))))
	return r.Export(ctx)
}

func mailParams(c *config.Mail) mail.Params {
	p := mail.Params{
		Server:  c.Server,
		From:    c.From,
		To:      c.To,
		Cc:      c.Cc,
		Bcc:     c.Bcc,
		Subject: c.Subject,
		Body:    c.Body,
		SSL:     c.SSL,
		Headers: c.Headers,
	}
	if len(c.Auth) == 2 {
		p.User, p.Password = c.Auth[0], c.Auth[1]
	}
	return p
}

// readInput calls the read operation the manager supports with params.
func readInput(ctx context.Context, m storage.Manager, p config.Params) (*dataset.Dataset, error) {
	switch mm := m.(type) {
	case storage.Readable:
		return mm.Read(ctx, readOptions(p)...)
	case storage.Executable:
		query := p.Map.String("query", "")
		args, _ := p.Map.Any("args").([]any)
		if len(p.List) > 0 {
			query, _ = p.List[0].(string)
			args = p.List[1:]
		}
		if strings.TrimSpace(query) == "" {
			return nil, fmt.Errorf("%w: params need a query", dataset.ErrValidation)
		}
		if err := mm.Execute(ctx, query, args...); err != nil {
			return nil, err
		}
		return mm.FetchAll(ctx)
	case storage.Queryable:
		base, filter := p.Map.String("base", ""), p.Map.String("filter", "")
		attrs := p.Map.StringSlice("attributes")
		if len(p.List) >= 3 {
			base, _ = p.List[0].(string)
			filter, _ = p.List[1].(string)
			attrs = config.Options{"a": p.List[2]}.StringSlice("a")
		}
		return mm.Query(ctx, base, filter, attrs)
	case storage.Findable:
		coll := p.Map.String("collection", "")
		query, _ := p.Map.Any("query").(map[string]any)
		if len(p.List) > 0 {
			coll, _ = p.List[0].(string)
			if len(p.List) > 1 {
				query, _ = p.List[1].(map[string]any)
			}
		}
		if keys := p.Map.StringSlice("keys"); len(keys) > 0 {
			return mm.Get(ctx, coll, keys...)
		}
		return mm.Find(ctx, coll, query)
	}
	return nil, fmt.Errorf("%w: %s manager cannot be read", report.ErrManagerType, m.Kind())
}

// readOptions maps file params: a list names the headers, a mapping sets
// headers, pattern, delimiter, sheet, encoding and no_header_row.
func readOptions(p config.Params) []storage.ReadOption {
	var opts []storage.ReadOption
	if len(p.List) > 0 {
		return append(opts, storage.WithHeaders(config.Options{"h": p.List}.StringSlice("h")...))
	}
	o := p.Map
	if h := o.StringSlice("headers"); len(h) > 0 {
		opts = append(opts, storage.WithHeaders(h...))
	}
	if s := o.String("pattern", ""); s != "" {
		opts = append(opts, storage.WithPattern(s))
	}
	if r := o.Rune("delimiter", 0); r != 0 {
		opts = append(opts, storage.WithDelimiter(r))
	}
	if s := o.String("sheet", ""); s != "" {
		opts = append(opts, storage.WithSheet(s))
	}
	if s := o.String("encoding", ""); s != "" {
		opts = append(opts, storage.WithEncoding(s))
	}
	if o.Bool("no_header_row", false) {
		opts = append(opts, storage.NoHeaderRow())
	}
	return opts
}
