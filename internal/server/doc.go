// Package server provides HTTP routing, middleware and the page handlers of the lookup web relay.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally for path matching and dispatches on
// the request method itself, so that unknown paths and wrong methods both reach custom error pages.
//
// # Middleware
//
// [Server] installs, outermost first:
//   - [Recover], which turns panics into a 500
//   - [RequestID], which tags the request with a UUID
//   - [RequestLogger], one log line per request
//   - [RateLimit], a token bucket per client IP held in a [ClientLimiter]
//   - [LoadSession], which attaches the session named by the cookie
//
// Lookup routes are wrapped with [RequireSession] and redirect to /login without one.
//
// # Pages
//
// Templates are embedded and parsed once per page together with the base layout.
// Result tables arrive pre-rendered from the formatter and are inserted as trusted HTML.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
