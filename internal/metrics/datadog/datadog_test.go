package datadog

import (
	"strings"
	"testing"

	"reports/internal/metrics"
)

type fakeClient struct {
	calls  []string
	closed bool
}

func (f *fakeClient) Count(name string, v int64, tags []string, _ float64) error {
	f.calls = append(f.calls, name+" count "+strings.Join(tags, ","))
	return nil
}

func (f *fakeClient) Histogram(name string, v float64, tags []string, _ float64) error {
	f.calls = append(f.calls, name+" hist "+strings.Join(tags, ","))
	return nil
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func TestBackend(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{client: fc}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "exec", "report": "r"})
	b.ObserveHistogram(metrics.StepDuration, 0.5, nil)
	if err := b.Flush(); err != nil || !fc.closed {
		t.Fatalf("Flush err=%v closed=%v", err, fc.closed)
	}
	want := []string{
		"reports_step_total count report:r,step:exec",
		"reports_step_duration_seconds hist ",
	}
	if len(fc.calls) != 2 || fc.calls[0] != want[0] || fc.calls[1] != want[1] {
		t.Fatalf("calls=%q; want %q", fc.calls, want)
	}
}

func TestNewBackend(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend without Addr succeeded")
	}
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "reports.", GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.Flush()
}
