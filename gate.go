package gate

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/pkg/cookie"
	"github.com/dmitrymomot/gate/pkg/health"
	"github.com/dmitrymomot/gate/pkg/logger"
)

// Type aliases - public API
type (
	// App owns the route table and runs the dispatch pipeline.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HealthCheck probes one dependency for the readiness endpoint.
	HealthCheck = health.CheckFunc

	// HTTPError is an expected HTTP failure with envelope data.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Identity is the authenticated principal for the current request.
	Identity = internal.Identity

	// Tenant identifies the active customer boundary for the request.
	Tenant = internal.Tenant

	// Envelope is the uniform response body shape.
	Envelope = internal.Envelope

	// ResponseWriter wraps http.ResponseWriter with status and size capture.
	ResponseWriter = internal.ResponseWriter

	// Extractor locates a credential across configured request sources.
	Extractor = internal.Extractor

	// ExtractorSource extracts a credential value from the request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context. Used with
	// logger.New to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// CookieWriteOption adjusts a single cookie write.
	CookieWriteOption = cookie.WriteOption
)

// Envelope status values.
const (
	StatusOK    = internal.StatusOK
	StatusError = internal.StatusError
)

// Application error codes carried on HTTPError.ErrorCode.
const (
	CodeRouteNotFound     = internal.CodeRouteNotFound
	CodeValidationFailure = internal.CodeValidationFailure
	CodeUnauthorized      = internal.CodeUnauthorized
	CodeForbidden         = internal.CodeForbidden
	CodeRateLimited       = internal.CodeRateLimited
	CodeServerFault       = internal.CodeServerFault
)

// Tenant resolution sources.
const (
	TenantSourceClaim     = internal.TenantSourceClaim
	TenantSourceHeader    = internal.TenantSourceHeader
	TenantSourceSubdomain = internal.TenantSourceSubdomain
)

// Registration-time router errors, surfaced via panic during startup.
var (
	ErrDuplicateRoute = internal.ErrDuplicateRoute
	ErrAmbiguousRoute = internal.ErrAmbiguousRoute
	ErrInvalidPattern = internal.ErrInvalidPattern
)

// ErrNextCalledTwice is returned when a middleware invokes its next
// continuation more than once.
var ErrNextCalledTwice = internal.ErrNextCalledTwice

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := gate.New(
//	    gate.WithMiddleware(middlewares.RequestID(), middlewares.Logging()),
//	    gate.WithHandlers(handlers.NewAuth(signer, store)),
//	)
//
//	err := app.Run(":8080", gate.RunLogger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware adds global middleware, applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes registers a method → path → handler table.
func WithRoutes(routes map[string]map[string]HandlerFunc) Option {
	return internal.WithRoutes(routes)
}

// WithLogger sets the application logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return internal.WithLogger(log)
}

// WithCookieManager sets the cookie manager used by the Context cookie
// helpers and the auth handlers.
func WithCookieManager(m *cookie.Manager) Option {
	return internal.WithCookieManager(m)
}

// WithErrorHandler sets a custom error handler for handler errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithDebug enables debug mode: server-fault responses include the
// underlying error detail. Never enable in production.
func WithDebug() Option {
	return internal.WithDebug()
}

// WithHealth enables liveness/readiness endpoints.
//
// Example:
//
//	gate.WithHealth(
//	    gate.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealth(opts ...HealthOption) Option {
	return internal.WithHealth(opts...)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn HealthCheck) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Runtime options

// RunLogger sets the logger for server lifecycle events.
func RunLogger(log *slog.Logger) RunOption {
	return internal.RunLogger(log)
}

// ShutdownTimeout bounds graceful shutdown. Default 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// WithStartupHook runs fn before the server starts accepting requests.
// A failing hook aborts startup.
func WithStartupHook(fn func(context.Context) error) RunOption {
	return internal.WithStartupHook(fn)
}

// WithShutdownHook runs fn during graceful shutdown.
func WithShutdownHook(fn func(context.Context) error) RunOption {
	return internal.WithShutdownHook(fn)
}

// Middleware composition

// Chain wraps a handler with middleware, first middleware outermost. Each
// middleware's next continuation is single-shot.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	return internal.Chain(h, mw...)
}

// Credential extraction

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a credential from a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a credential from a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie reads a credential from a plain cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromCookieSigned reads a credential from a signed cookie.
func FromCookieSigned(name string) ExtractorSource { return internal.FromCookieSigned(name) }

// FromBearerToken reads a Bearer credential from the Authorization header.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// Error taxonomy

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrBadRequest returns a 400 validation_failure error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized returns a 401 unauthorized error.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden returns a 403 forbidden error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound returns a 404 route_not_found error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrTooManyRequests returns a 429 rate_limited error.
func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrTooManyRequests(message, opts...)
}

// ErrInternal returns a 500 server_fault error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithDetail attaches debug-only detail to an HTTPError.
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

// WithErrorCode sets the application error code on an HTTPError.
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }

// WithError attaches an underlying error for logging.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// AsHTTPError extracts an HTTPError from an error chain, or nil.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

// ContextValue retrieves a typed value from the request context.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}
