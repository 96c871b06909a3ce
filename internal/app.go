package internal

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gate/pkg/cookie"
	"github.com/dmitrymomot/gate/pkg/health"
	"github.com/dmitrymomot/gate/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second

	panicStackSize = 4096
)

// App owns the route table and runs the dispatch pipeline: global
// middleware, route middleware, terminal handler, error conversion, and
// per-request teardown. App is immutable after creation - all configuration
// is done via New(). It implements http.Handler; the handler is the single
// top-level fault boundary: panics from any middleware or handler are
// logged with full detail and converted to a server-fault envelope, and
// identity/tenant state is cleared before ServeHTTP returns on every path.
type App struct {
	mux           chi.Router
	registry      *registry
	errorHandler  ErrorHandler
	healthConfig  *healthConfig
	logger        *slog.Logger
	cookieManager *cookie.Manager
	middlewares   []Middleware
	handlers      []Handler
	debug         bool
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := gate.New(
//	    gate.WithMiddleware(middlewares.Logging(), middlewares.CORS()),
//	    gate.WithHandlers(handlers.NewAuth(signer, store)),
//	)
func New(opts ...Option) *App {
	a := &App{
		mux:           chi.NewRouter(),
		registry:      &registry{},
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns a Router bound to this app for late route declaration in
// tests and composition helpers. Routes must be declared before the first
// request is served.
func (a *App) Router() Router {
	return &routerAdapter{app: a}
}

// ServeHTTP implements http.Handler and is the dispatch boundary.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)
	ctx, sc := newScope(r.Context())
	r = r.WithContext(ctx)

	defer func() {
		// Teardown runs on every exit path. A worker process serves many
		// requests; stale identity or tenant state leaking into the next
		// request is a security defect.
		sc.identity = nil
		sc.tenant = nil

		if rec := recover(); rec != nil {
			stack := make([]byte, panicStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			a.logger.ErrorContext(r.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("stack", string(stack)),
			)
			if !rw.Written() {
				a.renderError(rw, r, ErrInternal("internal server error"))
			}
		}
	}()

	a.mux.ServeHTTP(rw, r)
}

// setupRoutes configures the mux with middleware and handlers.
func (a *App) setupRoutes() {
	// Global middleware participates in the mux chain, so it also runs on
	// requests that match no route.
	r := &routerAdapter{app: a}
	r.Use(a.middlewares...)

	a.mux.NotFound(a.wrapHandler(func(c Context) error {
		return ErrNotFound("route not found")
	}))
	// An unregistered method on a known path is reported the same as an
	// unknown path.
	a.mux.MethodNotAllowed(a.wrapHandler(func(c Context) error {
		return ErrNotFound("route not found")
	}))

	if a.healthConfig != nil {
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
	}

	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's
// error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError converts an error returned by a handler or middleware into an
// envelope response. Expected failures arrive as *HTTPError; anything else
// is a server fault, logged with full detail and reported to the client
// with a generic message unless debug mode is on.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr == nil {
			return
		}
	}
	a.renderError(c.Response(), c.Request(), a.faultToHTTPError(c, err))
}

func (a *App) faultToHTTPError(c Context, err error) *HTTPError {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		c.LogError("unhandled error",
			slog.Any("error", err),
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
		)
		httpErr = ErrInternal("internal server error", WithError(err))
		if a.debug {
			httpErr.Detail = err.Error()
		}
		return httpErr
	}
	if httpErr.Err != nil {
		c.LogWarn("request failed",
			slog.Int("status", httpErr.Code),
			slog.String("error_code", httpErr.ErrorCode),
			slog.Any("error", httpErr.Err),
		)
	}
	return httpErr
}

// renderError writes the envelope for an HTTPError directly on the response
// writer, bypassing Context. Used from the panic boundary where no Context
// is in scope.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, httpErr *HTTPError) {
	env := Envelope{Status: StatusError, Message: httpErr.Message}
	if a.debug && httpErr.Detail != "" {
		env.Data = map[string]any{"detail": httpErr.Detail}
	}
	writeJSON(w, httpErr.Code, env)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during the readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
