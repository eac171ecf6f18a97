package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/foxzi/tweetsift/internal/metrics"
)

// RateLimiter provides in-memory per-key rate limiting over a minute and
// an hour window
type RateLimiter struct {
	mu       sync.Mutex
	counters map[string]*rateLimitCounter
	stopCh   chan struct{}
	stopOnce sync.Once
}

type rateLimitCounter struct {
	minuteCount int
	hourCount   int
	minuteReset time.Time
	hourReset   time.Time
}

// NewRateLimiter creates a new rate limiter. Stop must be called to end
// its cleanup goroutine.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		counters: make(map[string]*rateLimitCounter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

// Allow checks if a request is allowed and increments counters
func (rl *RateLimiter) Allow(key string, limitMinute, limitHour int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	counter, exists := rl.counters[key]
	if !exists {
		counter = &rateLimitCounter{
			minuteReset: now.Add(time.Minute),
			hourReset:   now.Add(time.Hour),
		}
		rl.counters[key] = counter
	}

	// Reset counters if window expired
	if now.After(counter.minuteReset) {
		counter.minuteCount = 0
		counter.minuteReset = now.Add(time.Minute)
	}
	if now.After(counter.hourReset) {
		counter.hourCount = 0
		counter.hourReset = now.Add(time.Hour)
	}

	if limitMinute > 0 && counter.minuteCount >= limitMinute {
		return false
	}
	if limitHour > 0 && counter.hourCount >= limitHour {
		return false
	}

	counter.minuteCount++
	counter.hourCount++
	return true
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// cleanup removes expired counters periodically
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, counter := range rl.counters {
				if now.After(counter.minuteReset) && now.After(counter.hourReset) {
					delete(rl.counters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimit rejects requests beyond the limits with 429, keyed by client IP.
// With both limits at zero it passes everything through.
func RateLimit(rl *RateLimiter, perMinute, perHour int, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if perMinute <= 0 && perHour <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !rl.Allow(ip, perMinute, perHour) {
				route := routeOf(r)
				logger.Warn("rate limit exceeded", "ip", ip, "route", route)
				metrics.IncRateLimitExceeded(route)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logger middleware logs HTTP requests
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
				"ip", ClientIP(r),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

// Recovery middleware recovers from panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"request_id", chimw.GetReqID(r.Context()),
						"stack", string(debug.Stack()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ipList is a parsed set of addresses and CIDR ranges
type ipList struct {
	nets  []*net.IPNet
	addrs []net.IP
}

func parseIPList(entries []string, setting string, logger *slog.Logger) ipList {
	var l ipList
	for _, ip := range entries {
		if strings.Contains(ip, "/") {
			_, ipNet, err := net.ParseCIDR(ip)
			if err != nil {
				logger.Warn("invalid CIDR in "+setting, "cidr", ip, "error", err)
				continue
			}
			l.nets = append(l.nets, ipNet)
		} else {
			parsed := net.ParseIP(ip)
			if parsed == nil {
				logger.Warn("invalid IP in "+setting, "ip", ip)
				continue
			}
			l.addrs = append(l.addrs, parsed)
		}
	}
	return l
}

func (l ipList) empty() bool {
	return len(l.nets) == 0 && len(l.addrs) == 0
}

func (l ipList) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range l.addrs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, ipNet := range l.nets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// IPFilter middleware restricts access to allowed IPs. Only the peer
// address is checked; forwarding headers are ignored.
func IPFilter(allowedIPs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	allowed := parseIPList(allowedIPs, "allowed_ips", logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// If no IPs configured, allow all
			if allowed.empty() {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := ClientIP(r)
			ip := net.ParseIP(clientIP)
			if ip == nil {
				logger.Warn("could not parse client IP", "ip", clientIP)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if allowed.contains(ip) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("access denied by IP filter", "ip", clientIP, "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// TrustedRealIP applies chi's RealIP only to requests whose peer is one of
// trustedProxies. Everyone else keeps their socket address, so forwarding
// headers from untrusted clients are ignored. No proxies means no rewrite.
func TrustedRealIP(trustedProxies []string, logger *slog.Logger) func(http.Handler) http.Handler {
	trusted := parseIPList(trustedProxies, "trusted_proxies", logger)

	return func(next http.Handler) http.Handler {
		if trusted.empty() {
			return next
		}
		realIP := chimw.RealIP(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if trusted.contains(net.ParseIP(ClientIP(r))) {
				realIP.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr. Forwarded addresses only
// reach it through TrustedRealIP.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
