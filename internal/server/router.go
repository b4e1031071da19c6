package server

import (
	"net/http"
	"slices"
	"strings"
	"sync"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for path matching and dispatches on method itself,
// so one path can serve several methods and unknown methods get the router's 405 handler.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      map[string]map[string]http.Handler
	once        sync.Once
	chain       http.Handler

	// NotFound and MethodNotAllowed render the error pages. Both run behind the middleware stack.
	NotFound         http.Handler
	MethodNotAllowed http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	r := &BasicRouter{
		mux:              http.NewServeMux(),
		middlewares:      []Middleware{},
		routes:           make(map[string]map[string]http.Handler),
		NotFound:         http.NotFoundHandler(),
		MethodNotAllowed: http.HandlerFunc(defaultMethodNotAllowed),
	}

	r.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.NotFound.ServeHTTP(w, req)
	}))
	return r
}

func defaultMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// Registering GET also answers HEAD. The path may use [http.ServeMux] patterns such as "/{$}".
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)

	methods, exists := r.routes[path]
	if !exists {
		methods = make(map[string]http.Handler)
		r.routes[path] = methods
		r.mux.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.dispatch(methods, w, req)
		}))
	}
	methods[method] = handler
}

// HandleFunc is the [http.HandlerFunc] form of [BasicRouter.Handle].
func (r *BasicRouter) HandleFunc(method, path string, handler http.HandlerFunc) {
	r.Handle(method, path, handler)
}

func (r *BasicRouter) dispatch(methods map[string]http.Handler, w http.ResponseWriter, req *http.Request) {
	h, ok := methods[req.Method]
	if !ok && req.Method == http.MethodHead {
		h, ok = methods[http.MethodGet]
	}
	if ok {
		h.ServeHTTP(w, req)
		return
	}

	allowed := make([]string, 0, len(methods))
	for m := range methods {
		allowed = append(allowed, m)
	}
	if _, ok := methods[http.MethodGet]; ok && !slices.Contains(allowed, http.MethodHead) {
		allowed = append(allowed, http.MethodHead)
	}
	slices.Sort(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	r.MethodNotAllowed.ServeHTTP(w, req)
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler, for every method.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.mux.Handle(route, handler)
	}
}

// ServeHTTP implements [http.Handler] for the entire router, behind the middleware stack.
//
// The stack is built on the first request; middleware added afterwards is ignored.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.once.Do(func() { r.chain = r.Apply(r.mux) })
	r.chain.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
