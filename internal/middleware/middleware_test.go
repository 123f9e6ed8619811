package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/recipe-share/internal/metrics"
)

func TestLogger_RecordsRoutePatternAndStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(Logger(logger, m))
	r.Get("/api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("gone"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/recipes/abc123", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/recipes/{id}", "404")))

	line := buf.String()
	assert.Contains(t, line, "status=404")
	assert.Contains(t, line, "path=/api/recipes/abc123")
	assert.Contains(t, line, "route=/api/recipes/{id}")
	assert.Contains(t, line, "bytes=4")
	assert.NotContains(t, line, "requestID=\"\"", "request ID should be set by chi's RequestID")
}

func TestLogger_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "route=unmatched")
}

func TestRateLimiter_RejectsBurstOverflow(t *testing.T) {
	m := metrics.New()
	limiter := NewRateLimiter(1, 3)
	h := limiter.Middleware("suggest", m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 5)
	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/api/ingredients/suggest?q=to", nil)
		req.RemoteAddr = "203.0.113.7:54321"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
		if rr.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rr.Header().Get("Retry-After"))
			assert.True(t, strings.Contains(rr.Body.String(), "rate_limited"))
		}
	}

	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("suggest")))
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	assert.True(t, limiter.Allow("198.51.100.1"))
	assert.False(t, limiter.Allow("198.51.100.1"))
	assert.True(t, limiter.Allow("198.51.100.2"), "another client has its own bucket")
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	limiter := NewRateLimiter(2, 1)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("ip"))
	assert.False(t, limiter.Allow("ip"))

	now = now.Add(600 * time.Millisecond)
	assert.True(t, limiter.Allow("ip"), "half a second at 2 rps refills one token")
}

func TestRateLimiter_Sweep(t *testing.T) {
	limiter := NewRateLimiter(5, 5)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("old")
	now = now.Add(idleLimiterTTL + time.Minute)
	limiter.Allow("fresh")

	assert.Equal(t, 1, limiter.Sweep())
	assert.Len(t, limiter.clients, 1)
	assert.Contains(t, limiter.clients, "fresh")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.RemoteAddr = "192.0.2.9" // after chi RealIP
	assert.Equal(t, "192.0.2.9", clientIP(req))
}
