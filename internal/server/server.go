package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/session"
	"github.com/desertthunder/spotlist/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options configures a [Server].
type Options struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Server is the web relay: a login form, a lookup form and the result pages.
type Server struct {
	opts     Options
	router   *BasicRouter
	engine   tasks.Engine
	sessions *session.Manager
	pages    *pages
	limiter  *ClientLimiter
	logger   *log.Logger
}

// New creates a Server and registers its routes.
func New(engine tasks.Engine, sessions *session.Manager, logger *log.Logger, opts Options) (*Server, error) {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		router:   NewBasicRouter(),
		engine:   engine,
		sessions: sessions,
		pages:    p,
		logger:   logger,
	}
	if opts.RequestsPerSecond > 0 {
		s.limiter = NewClientLimiter(opts.RequestsPerSecond, opts.Burst, 0, 0)
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.NotFound = http.HandlerFunc(s.notFound)
	r.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowed)

	r.Use(
		Recover(s.logger),
		RequestID(),
		RequestLogger(s.logger),
		RateLimit(s.limiter),
		LoadSession(s.sessions, s.logger),
	)

	r.HandleFunc(http.MethodGet, "/login", s.loginForm)
	r.HandleFunc(http.MethodPost, "/login", s.login)
	r.HandleFunc(http.MethodGet, "/logout", s.logout)
	r.Handle(http.MethodGet, "/{$}", RequireSession(http.HandlerFunc(s.index)))
	r.Handle(http.MethodPost, "/top10", RequireSession(http.HandlerFunc(s.topTracks)))
	r.Handle(http.MethodPost, "/recommendations", RequireSession(http.HandlerFunc(s.recommendations)))
	r.Handle(http.MethodGet, "/new", RequireSession(http.HandlerFunc(s.newReleases)))
	r.Handler(newStaticHandler())
}

// Close releases background workers started by [New].
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is canceled, then shuts down gracefully.
//
// ready, when non-nil, receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, ready chan<- string) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errs <- srv.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
