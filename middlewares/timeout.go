package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/gate/internal"
)

// DefaultTimeout is the default request deadline.
const DefaultTimeout = 30 * time.Second

// Timeout bounds handler execution. When the deadline passes, the request
// fails with 503 and the handler goroutine keeps running until it observes
// cancellation via the request context, so slow handlers must be
// context-aware to benefit.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					c.LogWarn("request timeout", "timeout", timeout.String())
					return internal.NewHTTPError(http.StatusServiceUnavailable, "request timed out")
				}
				return ctx.Err()
			}
		}
	}
}

type timeoutContextKey struct{}

// GetTimeoutContext returns the deadline-bound context installed by
// Timeout, falling back to the request context.
func GetTimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c.Context()
}
