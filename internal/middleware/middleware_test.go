// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/quizcore/internal/logging"
	"github.com/tomtom215/quizcore/internal/metrics"
)

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/mwtest/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/mwtest/items/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mwtest/items/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests under route pattern = %v, want 3", got)
	}
}

func TestPrometheusMetrics_ImplicitOK(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/mwtest/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/mwtest/ok", "200")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mwtest/ok", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("ok requests = %v, want 1", got)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		requestID       string
		correlationID   string
		wantRequestID   string
		wantCorrelation string
	}{
		{"generated", "", "", "", ""},
		{"propagated", "req-123", "corr.456", "req-123", "corr.456"},
		{"unsafe replaced", "bad id\nforged", "ok-1", "", "ok-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seenRequest, seenCorrelation string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seenRequest = logging.RequestIDFromContext(r.Context())
				seenCorrelation = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}
			if tt.correlationID != "" {
				req.Header.Set(CorrelationIDHeader, tt.correlationID)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seenRequest == "" || seenCorrelation == "" {
				t.Fatalf("context IDs = %q / %q, want both set", seenRequest, seenCorrelation)
			}
			if tt.wantRequestID != "" && seenRequest != tt.wantRequestID {
				t.Errorf("request ID = %q, want %q", seenRequest, tt.wantRequestID)
			}
			if tt.wantRequestID == "" && seenRequest == tt.requestID {
				t.Errorf("request ID %q was not regenerated", seenRequest)
			}
			if tt.wantCorrelation != "" && seenCorrelation != tt.wantCorrelation {
				t.Errorf("correlation ID = %q, want %q", seenCorrelation, tt.wantCorrelation)
			}
			if rec.Header().Get(RequestIDHeader) != seenRequest {
				t.Errorf("response header %q does not match context %q", rec.Header().Get(RequestIDHeader), seenRequest)
			}
		})
	}
}
