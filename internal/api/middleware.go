package api

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"routeengine/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack keeps WebSocket upgrades working through the wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Instrument wraps a handler with request logging and Prometheus metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)
		path := metricPath(r.URL.Path)
		status := strconv.Itoa(rec.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, path, status).Observe(dur.Seconds())
		log.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, rec.status, dur)
	})
}

// metricPath collapses id segments so label cardinality stays bounded.
func metricPath(p string) string {
	switch {
	case strings.HasPrefix(p, "/v1/plans/events/"):
		return p
	case strings.HasPrefix(p, "/v1/plans/"):
		return "/v1/plans/{id}"
	case strings.HasPrefix(p, "/v1/subscriptions/"):
		return "/v1/subscriptions/{id}"
	case strings.HasPrefix(p, "/v1/admin/webhook-deliveries/"):
		return "/v1/admin/webhook-deliveries/{id}"
	}
	return p
}

// RateLimit applies a per-client token-bucket limit; excess requests get 429.
// Clients are keyed by tenant header when present, remote address otherwise.
// Streaming endpoints are exempt since they hold one long request open.
func RateLimit(rps float64, burst int, next http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}
	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = l
		}
		return l
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/plans/events/") {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-Tenant-Id")
		if key == "" {
			key = r.RemoteAddr
		}
		if !get(key).Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
