package config

import (
	"fmt"
	"strings"

	"reports/internal/dataset"
	"reports/internal/transform"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the file, e.g. "reports[1].report.input.manager".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Manager kinds grouped by capability.
var (
	FileKinds       = []string{"file", "log", "csv", "json", "yaml", "xlsx"}
	RelationalKinds = []string{"sqlite", "mysql", "mssql", "postgresql", "postgres"}
	DocumentKinds   = []string{"nosql"}
	DirectoryKinds  = []string{"ldap"}
)

func isKind(kinds []string, k string) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// Validate lints f without touching any backend.
func Validate(f File) []Issue {
	var issues []Issue
	if len(f.Reports) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reports",
			Message:  `"reports" must list at least one report`,
		})
	}
	titles := map[string]int{}
	for i, e := range f.Reports {
		path := fmt.Sprintf("reports[%d].report", i)
		r := e.Report
		if strings.TrimSpace(r.Title) == "" {
			issues = append(issues, Issue{SeverityWarning, path + ".title", "title is empty; it is used as mail subject, sheet and table name"})
		} else if j, dup := titles[r.Title]; dup {
			issues = append(issues, Issue{SeverityWarning, path + ".title", fmt.Sprintf("title duplicates reports[%d]; --exclude will skip both", j)})
		} else {
			titles[r.Title] = i
		}
		issues = append(issues, validateInput(path+".input", r.Input)...)
		issues = append(issues, validateTransform(path, r)...)
		issues = append(issues, validateOutput(path+".output", r.Output)...)
		issues = append(issues, validateMail(path, r)...)
	}
	return issues
}

func validateEndpoint(path string, e *Endpoint) []Issue {
	k := strings.TrimSpace(e.Manager)
	if k == "" {
		return []Issue{{SeverityError, path + ".manager", "manager must not be empty"}}
	}
	switch {
	case isKind(FileKinds, k):
		if strings.TrimSpace(e.Filename) == "" {
			return []Issue{{SeverityError, path + ".filename", fmt.Sprintf("%s manager requires a filename", k)}}
		}
	case isKind(RelationalKinds, k), isKind(DirectoryKinds, k):
		if e.DSN == "" && len(e.Source) == 0 {
			return []Issue{{SeverityError, path + ".source", fmt.Sprintf("%s manager requires a source or dsn", k)}}
		}
	case isKind(DocumentKinds, k):
		if e.Source.String("path", e.Filename) == "" {
			return []Issue{{SeverityError, path + ".source.path", "nosql manager requires a path"}}
		}
	default:
		return []Issue{{SeverityError, path + ".manager", fmt.Sprintf("unknown manager %q", k)}}
	}
	return nil
}

func validateInput(path string, e *Endpoint) []Issue {
	if e == nil {
		return []Issue{{SeverityError, path, "input section is required"}}
	}
	issues := validateEndpoint(path, e)
	if len(issues) > 0 {
		return issues
	}
	switch k := e.Manager; {
	case isKind(RelationalKinds, k):
		if e.Params.IsZero() {
			issues = append(issues, Issue{SeverityError, path + ".params", "relational input requires a query in params"})
		}
	case isKind(DirectoryKinds, k):
		if len(e.Params.List) < 3 && !(e.Params.Map.Has("base") && e.Params.Map.Has("filter")) {
			issues = append(issues, Issue{SeverityError, path + ".params", "ldap input requires base, filter and attributes"})
		}
	case isKind(DocumentKinds, k):
		if len(e.Params.List) == 0 && !e.Params.Map.Has("collection") {
			issues = append(issues, Issue{SeverityError, path + ".params", "nosql input requires a collection"})
		}
	}
	return issues
}

func validateTransform(path string, r Report) []Issue {
	var issues []Issue
	if r.Map != "" {
		if _, err := transform.Lookup(r.Map); err != nil {
			issues = append(issues, Issue{SeverityError, path + ".map", err.Error()})
		}
	}
	if r.Filters.Predicate != "" {
		if _, err := transform.LookupPredicate(r.Filters.Predicate); err != nil {
			issues = append(issues, Issue{SeverityError, path + ".filters.predicate", err.Error()})
		}
	}
	if r.Filters.Negation && len(r.Filters.Values) == 0 && r.Filters.Predicate == "" {
		issues = append(issues, Issue{SeverityWarning, path + ".filters.negation", "negation without values or predicate has no effect"})
	}
	if _, err := dataset.ParseColumn(r.Column); err != nil {
		issues = append(issues, Issue{SeverityError, path + ".column", err.Error()})
	}
	return issues
}

func validateOutput(path string, e *Endpoint) []Issue {
	if e == nil {
		return nil
	}
	issues := validateEndpoint(path, e)
	if len(issues) > 0 {
		return issues
	}
	if !isKind(FileKinds, e.Manager) && !isKind(RelationalKinds, e.Manager) {
		issues = append(issues, Issue{SeverityError, path + ".manager", fmt.Sprintf("%s manager cannot be an output", e.Manager)})
	}
	return issues
}

func validateMail(path string, r Report) []Issue {
	m := r.Mail
	if m == nil {
		return nil
	}
	path += ".mail"
	var issues []Issue
	if r.Output == nil || !isKind(FileKinds, r.Output.Manager) {
		issues = append(issues, Issue{SeverityError, path, "mail requires a file output to attach"})
	}
	if strings.TrimSpace(m.Server) == "" {
		issues = append(issues, Issue{SeverityError, path + ".server", "server must not be empty"})
	}
	if strings.TrimSpace(m.From) == "" {
		issues = append(issues, Issue{SeverityError, path + ".from", "from must not be empty"})
	}
	if len(m.To)+len(m.Cc)+len(m.Bcc) == 0 {
		issues = append(issues, Issue{SeverityError, path + ".to", "at least one recipient is required"})
	}
	if n := len(m.Auth); n != 0 && n != 2 {
		issues = append(issues, Issue{SeverityError, path + ".auth", "auth must be [user, password]"})
	}
	return issues
}
