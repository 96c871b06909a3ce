package middlewares

import (
	"errors"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/pkg/token"
)

type userIDKey struct{}

// JWTAuthConfig configures the bearer authentication middleware.
type JWTAuthConfig struct {
	// Extractor locates the credential. Defaults to the Authorization
	// bearer header.
	Extractor internal.Extractor
}

// JWTAuthOption configures JWTAuthConfig.
type JWTAuthOption func(*JWTAuthConfig)

// WithTokenExtractor overrides where the middleware looks for the token.
func WithTokenExtractor(e internal.Extractor) JWTAuthOption {
	return func(cfg *JWTAuthConfig) { cfg.Extractor = e }
}

// JWTAuth verifies bearer access tokens and attaches the resulting
// identity to the request. A request with no credential proceeds as
// anonymous; downstream handlers that need authentication pair this with
// RequireAuth. A present-but-invalid credential is rejected immediately
// with 401, never downgraded to anonymous.
func JWTAuth(verifier *token.Service, opts ...JWTAuthOption) internal.Middleware {
	cfg := &JWTAuthConfig{
		Extractor: internal.NewExtractor(internal.FromBearerToken()),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			raw, ok := cfg.Extractor.Extract(c)
			if !ok {
				return next(c)
			}

			claims, err := verifier.Verify(raw, token.WithTokenType(token.TypeAccess))
			if err != nil {
				return internal.ErrUnauthorized(authFailureMessage(err), internal.WithError(err))
			}

			c.SetIdentity(&internal.Identity{
				UserID: claims.Subject,
				Claims: claims.Custom,
			})
			c.Set(userIDKey{}, claims.Subject)
			return next(c)
		}
	}
}

// authFailureMessage maps verification failures to stable client-facing
// messages without leaking key or parser internals.
func authFailureMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "token expired"
	case errors.Is(err, token.ErrWrongTokenType):
		return "wrong token type"
	default:
		return "invalid token"
	}
}

// RequireAuth rejects anonymous requests with 401. Place it after JWTAuth
// on routes that need a verified identity.
func RequireAuth(next internal.HandlerFunc) internal.HandlerFunc {
	return func(c internal.Context) error {
		if c.IsGuest() {
			return internal.ErrUnauthorized("authentication required")
		}
		return next(c)
	}
}
