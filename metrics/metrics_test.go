package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/food", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "/food", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/food", nil))
	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "/food", "200"))

	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
	if got := testutil.ToFloat64(HTTPRequestInFlight); got != 0 {
		t.Errorf("Expected no in-flight requests after completion, got %v", got)
	}
}

func TestMetricsMiddlewareUnmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "unmatched", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "unmatched", "404"))

	if after-before != 1 {
		t.Errorf("Expected unmatched counter to increase by 1, got %v", after-before)
	}
}

func TestMetricsWithoutRouter(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "unmatched", "418"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues(http.MethodGet, "unmatched", "418"))

	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordFormAction(t *testing.T) {
	counter := FormActionsTotal.WithLabelValues("/food", "add", OutcomeApplied)
	before := testutil.ToFloat64(counter)

	RecordFormAction("/food", "add", OutcomeApplied)
	RecordFormAction("/food", "add", OutcomeApplied)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("Expected 2 recorded actions, got %v", got)
	}
}

func TestSetChatReady(t *testing.T) {
	SetChatReady(true)
	if got := testutil.ToFloat64(ChatReady); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}
	SetChatReady(false)
	if got := testutil.ToFloat64(ChatReady); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}
