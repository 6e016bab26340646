package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const people = "name,surname,age\nArthur,Dent,42\nFord,Prefect,42\nMarvin,Android,99999\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func configYAML(in, out string) string {
	return `reports:
  - report:
      title: Dent report
      input:
        manager: csv
        filename: ` + in + `
      filters: [Arthur]
      count: true
  - report:
      title: Upper report
      input:
        manager: csv
        filename: ` + in + `
      map: upper
      output:
        manager: csv
        filename: ` + out + `
`
}

func TestRunPrintsAndExports(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	out := filepath.Join(dir, "upper.csv")
	cfg := writeFile(t, dir, "reports.yml", configYAML(in, out))

	var stdout, stderr bytes.Buffer
	if code := run([]string{cfg}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	got := stdout.String()
	if !strings.Contains(got, "Dent report\n===========\n") {
		t.Fatalf("missing title underline:\n%s", got)
	}
	if !strings.Contains(got, "Arthur") || strings.Contains(got, "Ford") {
		t.Fatalf("filter not applied:\n%s", got)
	}
	if !strings.Contains(got, "rows: 1") {
		t.Fatalf("missing row count:\n%s", got)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), "ARTHUR,DENT,42") {
		t.Fatalf("export=%q", b)
	}
}

func TestRunFromStdin(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-"}, strings.NewReader(configYAML(in, filepath.Join(dir, "o.csv"))), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Dent report") {
		t.Fatalf("stdout=%s", stdout.String())
	}
}

func TestRunValidateOnly(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	out := filepath.Join(dir, "upper.csv")
	cfg := writeFile(t, dir, "reports.yml", configYAML(in, out))

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--validate", cfg}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "is valid") {
		t.Fatalf("stdout=%s", stdout.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("validate wrote the export: %v", err)
	}
}

func TestRunExclude(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	out := filepath.Join(dir, "upper.csv")
	cfg := writeFile(t, dir, "reports.yml", configYAML(in, out))

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-e", "Upper report", "-v", cfg}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("excluded report was exported: %v", err)
	}
	if !strings.Contains(stderr.String(), "info: skip report Upper report") {
		t.Fatalf("stderr=%s", stderr.String())
	}
}

func TestRunExcludeFromEnv(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	out := filepath.Join(dir, "upper.csv")
	cfg := writeFile(t, dir, "reports.yml", configYAML(in, out))
	t.Setenv("REPORTS_EXCLUDE", "Upper report")

	var stdout, stderr bytes.Buffer
	if code := run([]string{cfg}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("excluded report was exported: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{filepath.Join(dir, "nope.yml")}, "error:"},
		{"invalid config", []string{writeFile(t, dir, "bad.yml", "reports:\n  - report:\n      title: x\n")}, "is invalid"},
		{"unknown field", []string{writeFile(t, dir, "typo.yml", "report: []\n")}, "error:"},
		{"too many args", []string{"a", "b"}, "error:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tc.args, nil, &stdout, &stderr); code != 1 {
				t.Fatalf("exit=%d; want 1", code)
			}
			if !strings.Contains(stderr.String(), tc.want) {
				t.Fatalf("stderr=%s; want %q", stderr.String(), tc.want)
			}
		})
	}
}
