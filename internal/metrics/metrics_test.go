package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", "GET /reports", 200, 0.01)
	m.ObserveRequest("GET", "GET /reports", 200, 0.02)
	m.ObserveRequest("POST", "POST /login", 303, 0.01)
	m.ReportGenerated("pdf")

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "GET /reports", "2xx")); got != 2 {
		t.Errorf("requests{GET /reports,2xx} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "POST /login", "3xx")); got != 1 {
		t.Errorf("requests{POST /login,3xx} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.reports.WithLabelValues("pdf")); got != 1 {
		t.Errorf("reports{pdf} = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, 0)
	m.ReportGenerated("html")
	m.Registration("ok")
	m.Login("ok")
}
