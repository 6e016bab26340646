package main

import (
	"log"

	"reports/internal/metrics"
	"reports/internal/metrics/datadog"
	"reports/internal/metrics/prompush"
)

// setupMetrics installs the selected backend and returns the func that
// flushes it. A backend that fails to start leaves metrics disabled.
func (m *Main) setupMetrics() (flush func()) {
	var (
		b   metrics.Backend
		err error
	)
	switch m.MetricsBackend {
	case "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
		if err == nil {
			m.info.Printf("metrics: url=%v, backend=%v, job_name=%v", m.PushgatewayURL, m.MetricsBackend, m.Job)
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: m.DatadogAddr, Namespace: "reports.", GlobalTags: []string{"job:" + m.Job}})
		if err == nil {
			m.info.Printf("metrics: addr=%v, backend=%v", m.DatadogAddr, m.MetricsBackend)
		}
	case "", "none":
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.MetricsBackend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", m.MetricsBackend, err)
		return func() {}
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}
