package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	c := NewCollector("test")

	c.ObserveOperation("deposit", "ok", 10*time.Millisecond)
	c.ObserveOperation("deposit", "ok", 20*time.Millisecond)
	c.ObserveOperation("deposit", "ValidationError", time.Millisecond)

	if got := testutil.ToFloat64(c.operations.WithLabelValues("deposit", "ok")); got != 2 {
		t.Errorf("ok deposits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.operations.WithLabelValues("deposit", "ValidationError")); got != 1 {
		t.Errorf("rejected deposits = %v, want 1", got)
	}
}

func TestEventPublishFailed(t *testing.T) {
	c := NewCollector("test")
	c.EventPublishFailed()

	if got := testutil.ToFloat64(c.publishFailures); got != 1 {
		t.Errorf("publish failures = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("test")
	c.ObserveHTTP(http.MethodPost, "/transactions/deposit", http.StatusCreated, 5*time.Millisecond)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	want := `test_http_requests_total{method="POST",route="/transactions/deposit",status="201"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("missing %q in exposition", want)
	}
}
