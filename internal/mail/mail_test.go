package mail

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	att := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(att, []byte("name\nArthur\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	msg, err := Build(Params{
		From:    "reports@example.com",
		To:      []string{"arthur@example.com"},
		Cc:      []string{"ford@example.com"},
		Bcc:     []string{"zaphod@example.com"},
		Body:    "<h1>Hitchhikers</h1>",
		Headers: map[string]string{"X-Report": "people"},
	}, att, "People report")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Subject: People report",
		"X-Report: people",
		"text/html",
		`filename="people.csv"`,
		"base64",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("message lacks %q:\n%s", want, out)
		}
	}
	rcpt, err := msg.GetRecipients()
	if err != nil || len(rcpt) != 3 {
		t.Fatalf("recipients=%v err=%v; want 3", rcpt, err)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(Params{From: "not an address", To: []string{"a@b.c"}}, "", "s"); err == nil {
		t.Fatalf("bad from accepted")
	}
	if _, err := Build(Params{From: "a@b.c"}, "", "s"); err == nil {
		t.Fatalf("message without recipients accepted")
	}
}

func TestSplitServer(t *testing.T) {
	tests := []struct {
		server string
		ssl    bool
		host   string
		port   int
	}{
		{"smtp.example.com", false, "smtp.example.com", 25},
		{"smtp.example.com", true, "smtp.example.com", 465},
		{"smtp.example.com:587", false, "smtp.example.com", 587},
	}
	for _, tc := range tests {
		host, port, err := splitServer(tc.server, tc.ssl)
		if err != nil || host != tc.host || port != tc.port {
			t.Fatalf("splitServer(%q, %v) = %q, %d, %v", tc.server, tc.ssl, host, port, err)
		}
	}
	if _, _, err := splitServer("", false); err == nil {
		t.Fatalf("empty server accepted")
	}
}
