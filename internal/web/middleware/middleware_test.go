package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/foxzi/tweetsift/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimiterAllow(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter()
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4", 2, 0))
	assert.True(t, rl.Allow("1.2.3.4", 2, 0))
	assert.False(t, rl.Allow("1.2.3.4", 2, 0))

	// other keys have their own window
	assert.True(t, rl.Allow("5.6.7.8", 2, 0))

	// hour limit applies too
	assert.True(t, rl.Allow("9.9.9.9", 0, 1))
	assert.False(t, rl.Allow("9.9.9.9", 0, 1))

	// zero limits never block
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("0.0.0.0", 0, 0))
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter()
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimit(t *testing.T) {
	m := metrics.New()
	metrics.SetGlobal(m)
	defer metrics.SetGlobal(nil)

	rl := NewRateLimiter()
	defer rl.Stop()

	r := chi.NewRouter()
	r.With(RateLimit(rl, 1, 0, testLogger())).Post("/search", ok)

	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	req.RemoteAddr = "10.0.0.1:4321"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitExceededTotal.WithLabelValues("/search")))

	// another client is unaffected
	req2 := httptest.NewRequest(http.MethodPost, "/search", nil)
	req2.RemoteAddr = "10.0.0.2:4321"
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req2)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Stop()

	h := RateLimit(rl, 0, 0, testLogger())(http.HandlerFunc(ok))
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggerPassesStatus(t *testing.T) {
	h := Logger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIPFilter(t *testing.T) {
	h := IPFilter([]string{"127.0.0.1", "10.0.0.0/8", "bogus"}, testLogger())(http.HandlerFunc(ok))

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:1000", http.StatusOK},
		{"10.1.2.3:1000", http.StatusOK},
		{"192.168.1.1:1000", http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.remote)
	}
}

func TestIPFilterEmptyAllowsAll(t *testing.T) {
	h := IPFilter(nil, testLogger())(http.HandlerFunc(ok))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	// forwarding headers never override the peer address
	req.Header.Set("X-Real-IP", "198.51.100.7")
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", ClientIP(req))
}

func TestIPFilterIgnoresForwardedHeaders(t *testing.T) {
	h := IPFilter([]string{"127.0.0.1"}, testLogger())(http.HandlerFunc(ok))

	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set(header, "127.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, header)
	}
}

func TestRateLimitIgnoresForwardedHeaders(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Stop()

	h := RateLimit(rl, 1, 0, testLogger())(http.HandlerFunc(ok))

	accepted := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/search", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestTrustedRealIP(t *testing.T) {
	var seen string
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIP(r)
	})
	h := TrustedRealIP([]string{"10.0.0.0/8"}, testLogger())(echo)

	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{"trusted proxy", "10.1.2.3:5000", "198.51.100.7"},
		{"untrusted peer", "203.0.113.9:5000", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "198.51.100.7")
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestTrustedRealIPWithoutProxies(t *testing.T) {
	var seen string
	h := TrustedRealIP(nil, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIP(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5000"
	req.Header.Set("X-Real-IP", "127.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.9", seen)
}
