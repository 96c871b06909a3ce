// Package middlewares provides the request-processing middleware set:
// request IDs, structured request logging, CORS, security headers, JWT
// bearer authentication, tenant resolution, JSON body enforcement, rate
// limiting, and per-request timeouts.
//
// Each middleware follows the same shape: a constructor with functional
// options returning a gate Middleware. Order matters; a typical stack is
//
//	gate.WithMiddleware(
//		middlewares.RequestID(),
//		middlewares.Logging(),
//		middlewares.SecurityHeaders(),
//		middlewares.CORS(),
//		middlewares.RateLimit(limiter),
//		middlewares.JWTAuth(verifier),
//		middlewares.Tenant(),
//	)
package middlewares
