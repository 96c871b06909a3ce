package internal_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/internal"
)

func TestAppSuccessEnvelope(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/ping": func(c internal.Context) error {
			return c.OK(http.StatusOK, map[string]string{"pong": "true"})
		}},
	}))

	rec := serve(t, app, http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
	require.Contains(t, rec.Body.String(), `"pong":"true"`)
}

func TestAppUnknownRoute(t *testing.T) {
	t.Parallel()

	app := internal.New()

	rec := serve(t, app, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"error"`)
	require.Contains(t, rec.Body.String(), "route not found")
}

func TestAppGlobalMiddlewareRunsOnUnmatchedRoutes(t *testing.T) {
	t.Parallel()

	var hits []string
	mark := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			hits = append(hits, c.Request().URL.Path)
			c.SetHeader("X-Seen", "1")
			return next(c)
		}
	}

	app := internal.New(internal.WithMiddleware(mark))

	rec := serve(t, app, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Seen"))
	require.Equal(t, []string{"/missing"}, hits)
}

func TestAppRouteMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	app := internal.New(internal.WithMiddleware(tag("global")))
	app.Router().GET("/x", func(c internal.Context) error {
		order = append(order, "handler")
		return c.NoContent(http.StatusNoContent)
	}, tag("route"))

	serve(t, app, http.MethodGet, "/x")
	require.Equal(t, []string{"global", "route", "handler"}, order)
}

func TestAppHandlerErrorEnvelope(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/forbidden": func(c internal.Context) error {
			return internal.ErrForbidden("no access")
		}},
	}))

	rec := serve(t, app, http.MethodGet, "/forbidden")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"error"`)
	require.Contains(t, rec.Body.String(), "no access")
}

func TestAppUnexpectedErrorIsServerFault(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/boom": func(c internal.Context) error {
			return errors.New("pg: connection reset")
		}},
	}))

	rec := serve(t, app, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
	// Internal detail never leaks outside debug mode.
	require.NotContains(t, rec.Body.String(), "connection reset")
}

func TestAppDebugExposesDetail(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithDebug(),
		internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
			"GET": {"/boom": func(c internal.Context) error {
				return errors.New("pg: connection reset")
			}},
		}),
	)

	rec := serve(t, app, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "connection reset")
}

func TestAppPanicRecovery(t *testing.T) {
	t.Parallel()

	var logs strings.Builder
	log := slog.New(slog.NewTextHandler(&logs, nil))

	app := internal.New(
		internal.WithLogger(log),
		internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
			"GET": {"/panic": func(c internal.Context) error {
				panic("handler exploded")
			}},
		}),
	)

	rec := serve(t, app, http.MethodGet, "/panic")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
	require.NotContains(t, rec.Body.String(), "handler exploded")
	require.Contains(t, logs.String(), "panic recovered")
	require.Contains(t, logs.String(), "handler exploded")
}

func TestAppPanicAfterWriteLeavesResponse(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/late": func(c internal.Context) error {
			if err := c.String(http.StatusAccepted, "partial"); err != nil {
				return err
			}
			panic("after write")
		}},
	}))

	// No second status line once the handler already wrote.
	rec := serve(t, app, http.MethodGet, "/late")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "partial", rec.Body.String())
}

func TestAppCustomErrorHandlerConsumesError(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			return c.JSON(http.StatusTeapot, map[string]string{"custom": err.Error()})
		}),
		internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
			"GET": {"/x": func(c internal.Context) error {
				return internal.ErrBadRequest("bad input")
			}},
		}),
	)

	rec := serve(t, app, http.MethodGet, "/x")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Contains(t, rec.Body.String(), `"custom":"bad input"`)
}

func TestAppCustomErrorHandlerPassesThrough(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			return err
		}),
		internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
			"GET": {"/x": func(c internal.Context) error {
				return internal.ErrTooManyRequests("slow down")
			}},
		}),
	)

	rec := serve(t, app, http.MethodGet, "/x")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "slow down")
}

func TestAppIdentityVisibleAcrossLayers(t *testing.T) {
	t.Parallel()

	authn := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetIdentity(&internal.Identity{UserID: "user-9"})
			return next(c)
		}
	}

	app := internal.New(internal.WithMiddleware(authn))
	app.Router().GET("/me", func(c internal.Context) error {
		require.True(t, c.IsAuthenticated())
		require.False(t, c.IsGuest())
		return c.String(http.StatusOK, c.UserID())
	})

	rec := serve(t, app, http.MethodGet, "/me")
	require.Equal(t, "user-9", rec.Body.String())
}

func TestAppTenantVisibleAcrossLayers(t *testing.T) {
	t.Parallel()

	resolve := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetTenant(&internal.Tenant{ID: "acme", Source: internal.TenantSourceHeader})
			return next(c)
		}
	}

	app := internal.New(internal.WithMiddleware(resolve))
	app.Router().GET("/t", func(c internal.Context) error {
		return c.String(http.StatusOK, c.TenantID())
	})

	rec := serve(t, app, http.MethodGet, "/t")
	require.Equal(t, "acme", rec.Body.String())
}

func TestAppIdentityDoesNotLeakBetweenRequests(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"POST": {"/login": func(c internal.Context) error {
			c.SetIdentity(&internal.Identity{UserID: "user-1"})
			return c.NoContent(http.StatusNoContent)
		}},
		"GET": {"/whoami": func(c internal.Context) error {
			if c.IsGuest() {
				return c.String(http.StatusOK, "guest")
			}
			return c.String(http.StatusOK, c.UserID())
		}},
	}))

	serve(t, app, http.MethodPost, "/login")
	rec := serve(t, app, http.MethodGet, "/whoami")
	require.Equal(t, "guest", rec.Body.String())
}

func TestAppPanicDoesNotLeakScope(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
			"GET": {
				"/boom": func(c internal.Context) error {
					c.SetIdentity(&internal.Identity{UserID: "user-7"})
					c.SetTenant(&internal.Tenant{ID: "acme", Source: internal.TenantSourceHeader})
					panic("after scope was populated")
				},
				"/whoami": func(c internal.Context) error {
					if !c.IsGuest() || c.Tenant() != nil {
						return c.String(http.StatusOK, "leaked")
					}
					return c.String(http.StatusOK, "guest")
				},
			},
		}),
	)

	rec := serve(t, app, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// the next request starts from a clean scope
	rec = serve(t, app, http.MethodGet, "/whoami")
	require.Equal(t, "guest", rec.Body.String())
}

func TestAppHealthEndpoints(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealth(
		internal.WithReadinessCheck("always", func(ctx context.Context) error {
			return nil
		}),
	))

	rec := serve(t, app, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAppClientIP(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/ip": func(c internal.Context) error {
			return c.String(http.StatusOK, c.ClientIP())
		}},
	}))

	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "socket peer", remoteAddr: "10.1.2.3:5555", want: "10.1.2.3"},
		{name: "bare remote addr", remoteAddr: "10.1.2.3", want: "10.1.2.3"},
		{
			name:       "forwarded for takes first hop",
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 70.41.3.18"},
			want:       "203.0.113.7",
		},
		{
			name:       "real ip fallback",
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestAppContextValue(t *testing.T) {
	t.Parallel()

	type traceKey struct{}

	inject := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Set(traceKey{}, "trace-123")
			return next(c)
		}
	}

	app := internal.New(
		internal.WithMiddleware(inject),
		internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
			"GET": {"/v": func(c internal.Context) error {
				got := internal.ContextValue[string](c, traceKey{})
				missing := internal.ContextValue[string](c, "absent")
				wrongType := internal.ContextValue[int](c, traceKey{})
				require.Empty(t, missing)
				require.Zero(t, wrongType)
				return c.String(http.StatusOK, got)
			}},
		}),
	)

	rec := serve(t, app, http.MethodGet, "/v")
	require.Equal(t, "trace-123", rec.Body.String())
}
