package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/gate/internal"
)

// Logging emits one structured record per request with method, path,
// status, duration, and client address. Handler errors are logged here at
// warn or error level depending on the status class, then passed through
// unchanged for the error handler to render.
func Logging() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := 0
			if rw := c.ResponseWriter(); rw != nil {
				status = rw.Status()
			}
			if status == 0 {
				if httpErr := internal.AsHTTPError(err); httpErr != nil {
					status = httpErr.Code
				} else if err != nil {
					status = http.StatusInternalServerError
				} else {
					status = http.StatusOK
				}
			}

			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", c.ClientIP()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			switch {
			case status >= http.StatusInternalServerError:
				c.LogError("request failed", attrs...)
			case status >= http.StatusBadRequest:
				c.LogWarn("request rejected", attrs...)
			default:
				c.LogInfo("request served", attrs...)
			}

			return err
		}
	}
}
