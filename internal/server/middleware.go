package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/session"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/karlseguin/ccache/v3"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID assigned by [RequestID], or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Recover turns a panicking handler into a 500 response.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error("panic serving request", "path", r.URL.Path, "panic", v, "request_id", RequestIDFromContext(r.Context()))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID tags each request with a UUID, echoed in the [RequestIDHeader] response header.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.GenerateID()
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", RequestIDFromContext(r.Context()),
			}
			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

// Client limiter defaults.
const (
	DefaultClientIdle = 10 * time.Minute
	DefaultMaxClients = 10_000
)

// ClientLimiter hands out one token bucket per client key.
//
// Buckets live in a bounded LRU cache; a bucket unused for longer than idle is replaced with a full one.
type ClientLimiter struct {
	rps   rate.Limit
	burst int
	idle  time.Duration
	mu    sync.Mutex
	cache *ccache.Cache[*rate.Limiter]
}

// NewClientLimiter allows each client rps requests per second with the given burst.
// Non-positive idle and maxClients mean [DefaultClientIdle] and [DefaultMaxClients].
func NewClientLimiter(rps float64, burst int, idle time.Duration, maxClients int) *ClientLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = DefaultClientIdle
	}
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &ClientLimiter{
		rps:   rate.Limit(rps),
		burst: burst,
		idle:  idle,
		cache: ccache.New(
			ccache.Configure[*rate.Limiter]().
				MaxSize(int64(maxClients)).
				ItemsToPrune(uint32(max(1, maxClients/100))),
		),
	}
}

// Allow reports whether key may make a request now.
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	item, _ := l.cache.Fetch(key, l.idle, func() (*rate.Limiter, error) {
		return rate.NewLimiter(l.rps, l.burst), nil
	})
	item.Extend(l.idle)
	l.mu.Unlock()

	return item.Value().Allow()
}

// Stop releases the cache's background worker.
func (l *ClientLimiter) Stop() {
	l.cache.Stop()
}

// RateLimit rejects requests from clients that exceed their bucket in l. A nil l disables limiting.
func RateLimit(l *ClientLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too many requests, slow down.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoadSession attaches the request's session, if any, to its context.
func LoadSession(m *session.Manager, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r)
			switch {
			case err == nil:
				r = r.WithContext(session.WithSession(r.Context(), s))
			case !errors.Is(err, shared.ErrSessionNotFound):
				logger.Warn("session lookup failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession redirects requests without a session to the login form.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
