package internal

import (
	"log/slog"

	"github.com/dmitrymomot/gate/pkg/cookie"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutes registers a method → path → handler table.
// Shorthand for a Handler that only calls LoadRoutes.
func WithRoutes(routes map[string]map[string]HandlerFunc) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, routeTable(routes))
	}
}

// routeTable adapts a plain route map to the Handler interface.
type routeTable map[string]map[string]HandlerFunc

func (rt routeTable) Routes(r Router) {
	r.LoadRoutes(rt)
}

// WithLogger sets the application logger.
// Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithCookieManager sets the cookie manager used by Context cookie helpers
// and the auth handlers. Defaults to an unsigned manager with Lax SameSite.
func WithCookieManager(m *cookie.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.cookieManager = m
		}
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// The handler may write a response and return nil to consume the error, or
// return it for default envelope rendering.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithDebug enables debug mode: server-fault responses include the
// underlying error detail. Never enable in production.
func WithDebug() Option {
	return func(a *App) {
		a.debug = true
	}
}

// WithHealth enables liveness/readiness endpoints.
//
// Example:
//
//	gate.WithHealth(
//	    gate.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealth(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
