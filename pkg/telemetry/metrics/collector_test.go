package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kiira-hq/triton/pkg/config"
)

func TestCollector_RecordsAndServes(t *testing.T) {
	collector := NewCollector(config.MetricsConfig{Namespace: "triton"}, nil)
	collector.RegisterSessionGauge(func() float64 { return 3 })

	collector.RecordRequest("Test Agent", "ok", 250*time.Millisecond)
	collector.RecordRequest("Test Agent", "error", time.Second)
	collector.RecordStreamChunk()
	collector.RecordStreamChunk()
	collector.RecordUpload()

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`triton_requests_total{model="Test Agent",status="ok"} 1`,
		`triton_requests_total{model="Test Agent",status="error"} 1`,
		`triton_stream_chunks_total 2`,
		`triton_uploads_total 1`,
		`triton_active_sessions 3`,
		"triton_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollector_DefaultNamespace(t *testing.T) {
	collector := NewCollector(config.MetricsConfig{}, nil)
	collector.RecordRequest("a", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), config.DefaultMetricsNamespace+"_requests_total") {
		t.Errorf("default namespace not applied:\n%s", rec.Body.String())
	}
}
