// Package config defines the YAML model of a reports file, loads it, and
// lints it before anything connects to a backend.
//
// Example (trimmed):
//
//	reports:
//	  - report:
//	      title: Hitchhikers
//	      input:
//	        manager: sqlite
//	        source: { database: people.db }
//	        params: [ "SELECT * FROM people WHERE age > ?", 40 ]
//	      filters: { values: [42], negation: false }
//	      map: str_if_int
//	      column: age
//	      count: true
//	      output: { manager: csv, filename: people.csv }
//	      mail: { server: smtp.example.com, from: r@example.com, to: [a@example.com] }
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top-level document.
type File struct {
	Reports []Entry `yaml:"reports"`
}

// Entry wraps one report, mirroring the "- report:" list item.
type Entry struct {
	Report Report `yaml:"report"`
}

// Report configures one report.
type Report struct {
	Title   string    `yaml:"title"`
	Input   *Endpoint `yaml:"input"`
	Filters Filters   `yaml:"filters"`

	// Map names a function registered in the transform package. Several
	// names can be chained with "|".
	Map string `yaml:"map"`

	// Column is a column name or a zero-based index.
	Column any `yaml:"column"`

	Count  bool      `yaml:"count"`
	Output *Endpoint `yaml:"output"`
	Mail   *Mail     `yaml:"mail"`
}

// Endpoint configures a Manager and, for inputs, the call that produces
// the Dataset.
type Endpoint struct {
	// Manager is the storage kind, e.g. "csv", "sqlite", "ldap".
	Manager string `yaml:"manager"`

	// Filename is the path for file kinds.
	Filename string `yaml:"filename"`

	// DSN is passed verbatim to relational drivers.
	DSN string `yaml:"dsn"`

	// Source holds backend connection options (host, port, database, ...).
	Source Options `yaml:"source"`

	// Params are the read arguments: a query and its arguments, a search
	// base and filter, a collection, or file read options.
	Params Params `yaml:"params"`
}

// Params accepts either a sequence or a mapping. A lone scalar is read as
// a one-element sequence.
type Params struct {
	List []any
	Map  Options
}

// IsZero reports whether no params were given.
func (p Params) IsZero() bool { return len(p.List) == 0 && len(p.Map) == 0 }

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Params) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		return n.Decode(&p.List)
	case yaml.MappingNode:
		return n.Decode(&p.Map)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		if v != nil {
			p.List = []any{v}
		}
		return nil
	}
	return fmt.Errorf("line %d: params must be a list or a mapping", n.Line)
}

// Filters accepts a plain list of values, or a mapping with values, a
// predicate name and a negation flag.
type Filters struct {
	Values    []any  `yaml:"values"`
	Predicate string `yaml:"predicate"`
	Negation  bool   `yaml:"negation"`
}

// IsZero reports whether no filter was configured.
func (f Filters) IsZero() bool { return len(f.Values) == 0 && f.Predicate == "" && !f.Negation }

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Filters) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		return n.Decode(&f.Values)
	}
	type plain Filters
	return n.Decode((*plain)(f))
}

// Mail configures delivery of an exported report.
type Mail struct {
	Server  string            `yaml:"server"`
	From    string            `yaml:"from"`
	To      StringList        `yaml:"to"`
	Cc      StringList        `yaml:"cc"`
	Bcc     StringList        `yaml:"bcc"`
	Subject string            `yaml:"subject"`
	Body    string            `yaml:"body"`
	Auth    []string          `yaml:"auth"` // [user, password]
	SSL     bool              `yaml:"ssl"`
	Headers map[string]string `yaml:"headers"`
}

// StringList accepts a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v string
		if err := n.Decode(&v); err != nil {
			return err
		}
		*s = StringList{v}
		return nil
	}
	return n.Decode((*[]string)(s))
}

// Parse decodes a reports file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	return &f, nil
}

// Load reads and decodes the reports file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
