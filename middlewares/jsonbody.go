package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/dmitrymomot/gate/internal"
)

// JSONBody enforces an application/json content type and a well-formed
// JSON payload on requests that carry a body. The body is buffered for
// the syntax check and restored, so handlers can still read it. GET,
// HEAD, DELETE, and OPTIONS pass through, as do bodied requests with
// Content-Length zero.
func JSONBody() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
				return next(c)
			}
			if c.Request().ContentLength == 0 {
				return next(c)
			}

			ct := c.Header("Content-Type")
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				return internal.ErrBadRequest("content type must be application/json")
			}

			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return internal.ErrBadRequest("unreadable request body", internal.WithError(err))
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			if !json.Valid(body) {
				return internal.ErrBadRequest("malformed JSON body")
			}
			return next(c)
		}
	}
}
