package internal

// Handler declares routes on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    signer *token.Service
//	}
//
//	func (h *AuthHandler) Routes(r gate.Router) {
//	    r.POST("/auth/refresh", h.handleRefresh)
//	    r.POST("/auth/logout", h.handleLogout)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the app's error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// A middleware may inspect/modify the request, short-circuit by not
// invoking next, or post-process the response after next returns.
// The next function handed to a middleware is single-shot: a second
// invocation fails fast with ErrNextCalledTwice.
//
// Example:
//
//	func RequireAuth(next gate.HandlerFunc) gate.HandlerFunc {
//	    return func(c gate.Context) error {
//	        if !c.IsAuthenticated() {
//	            return gate.ErrUnauthorized("authentication required")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
