package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/pets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pets/abc", nil))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got, err := fetchCounterValue(mfs, "pawfund_http_requests_total", "route", "/api/pets/{id}")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 request, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "pawfund_http_requests_total", "status", "404"); err != nil {
		t.Fatalf("expected status label: %v", err)
	}
}

func TestAdmissionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAdmissionMetrics(reg)
	m.IncCreated("cart", "PENDING")
	m.IncCreated("cart", "PENDING")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got, err := fetchCounterValue(mfs, "pawfund_adoptions_created_total", "path", "cart")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}

	var nilMetrics *AdmissionMetrics
	nilMetrics.IncCreated("single", "APPROVED")
}
