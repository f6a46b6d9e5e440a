package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelbook/airports/internal/auth"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("Expected generated id in context and header, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Errorf("Expected incoming id to be kept, got %q", seen)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Get("/airports/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/airports/DAC", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/airports/CGP", nil))

	got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/airports/{code}", http.MethodGet, "404"))
	if got != 2 {
		t.Errorf("Expected 2 requests under the route pattern, got %v", got)
	}
}

func TestIPRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(1, 1).WithClock(func() time.Time { return now })

	limiter.getLimiter("10.0.0.1")
	now = now.Add(limiterIdleTTL / 2)
	limiter.getLimiter("10.0.0.2")

	now = now.Add(limiterIdleTTL / 2)
	limiter.getLimiter("10.0.0.3")

	if _, ok := limiter.visitors["10.0.0.1"]; ok {
		t.Error("Expected idle client to be swept")
	}
	if len(limiter.visitors) != 2 {
		t.Errorf("Expected 2 tracked clients, got %d", len(limiter.visitors))
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2, "10.0.0.9")
	handler := limiter.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected burst of 2 then 429, got %v", codes)
	}

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected whitelisted IP to pass, got %d", rec.Code)
		}
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	signer := common.NewAdminTokenSigner([]byte("secret"))
	operator, _ := signer.Generate("ops", constants.RoleOperator, time.Hour)
	admin, _ := signer.Generate("root", constants.RoleAdmin, time.Hour)

	syncHandler := AdminAuthMiddleware(signer)(RequireRole(constants.Role.CanSync)(http.HandlerFunc(okHandler)))
	deactivateHandler := AdminAuthMiddleware(signer)(RequireRole(constants.Role.CanDeactivate)(http.HandlerFunc(okHandler)))

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		want    int
	}{
		{"missing header", syncHandler, "", http.StatusUnauthorized},
		{"garbage token", syncHandler, "Bearer nope", http.StatusUnauthorized},
		{"operator may sync", syncHandler, "Bearer " + operator, http.StatusOK},
		{"operator may not deactivate", deactivateHandler, "Bearer " + operator, http.StatusForbidden},
		{"admin may deactivate", deactivateHandler, "Bearer " + admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
