package internal_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/internal"
)

func serve(t *testing.T, app *internal.App, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouterParamRoutes(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {
			"/users/:id/posts/:post_id": func(c internal.Context) error {
				return c.OK(http.StatusOK, map[string]string{
					"id":      c.Param("id"),
					"post_id": c.Param("post_id"),
				})
			},
		},
	}))

	rec := serve(t, app, http.MethodGet, "/users/42/posts/7")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":"42"`)
	require.Contains(t, rec.Body.String(), `"post_id":"7"`)
}

func TestRouterTrailingSlashNormalized(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/users/": func(c internal.Context) error { return c.NoContent(http.StatusNoContent) }},
	}))

	// "/users/" and "/users" are the same route once normalized.
	rec := serve(t, app, http.MethodGet, "/users")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouterRootPattern(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/": func(c internal.Context) error { return c.String(http.StatusOK, "root") }},
	}))

	rec := serve(t, app, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "root", rec.Body.String())
}

func TestRouterDuplicateRoutePanics(t *testing.T) {
	t.Parallel()

	noop := func(c internal.Context) error { return nil }

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, internal.ErrDuplicateRoute)
	}()

	app := internal.New()
	r := app.Router()
	r.GET("/users/:id", noop)
	r.GET("/users/:id", noop)
}

func TestRouterAmbiguousRoutePanics(t *testing.T) {
	t.Parallel()

	noop := func(c internal.Context) error { return nil }

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, internal.ErrAmbiguousRoute)
	}()

	app := internal.New()
	r := app.Router()
	r.GET("/users/:id", noop)
	// Could match the same concrete path as /users/:id.
	r.GET("/users/me", noop)
}

func TestRouterAmbiguityIsPerMethod(t *testing.T) {
	t.Parallel()

	noop := func(c internal.Context) error { return nil }

	app := internal.New()
	r := app.Router()
	require.NotPanics(t, func() {
		r.GET("/users/:id", noop)
		r.DELETE("/users/me", noop)
	})
}

func TestRouterInvalidPatternPanics(t *testing.T) {
	t.Parallel()

	noop := func(c internal.Context) error { return nil }

	for _, path := range []string{"", "users", "/users//posts", "/users/:"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			defer func() {
				rec := recover()
				require.NotNil(t, rec, "pattern %q must be rejected", path)
				err, ok := rec.(error)
				require.True(t, ok)
				require.ErrorIs(t, err, internal.ErrInvalidPattern)
			}()

			internal.New().Router().GET(path, noop)
		})
	}
}

func TestRouterMethodNotAllowedIsNotFound(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/users": func(c internal.Context) error { return c.NoContent(http.StatusNoContent) }},
	}))

	// Wrong method on a known path must not reveal that the path exists.
	rec := serve(t, app, http.MethodDelete, "/users")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "route not found")
}

func TestChainOrder(t *testing.T) {
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

	h := internal.Chain(func(c internal.Context) error {
		order = append(order, "handler")
		return nil
	}, tag("outer"), tag("inner"))

	require.NoError(t, h(nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestChainNextCalledTwice(t *testing.T) {
	t.Parallel()

	greedy := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if err := next(c); err != nil {
				return err
			}
			return next(c)
		}
	}

	calls := 0
	h := internal.Chain(func(c internal.Context) error {
		calls++
		return nil
	}, greedy)

	err := h(nil)
	require.ErrorIs(t, err, internal.ErrNextCalledTwice)
	require.Equal(t, 1, calls, "handler must not re-run on the second next call")
}

func TestChainReusableAcrossRequests(t *testing.T) {
	t.Parallel()

	passthrough := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error { return next(c) }
	}

	h := internal.Chain(func(c internal.Context) error { return nil }, passthrough)

	// The single-shot guard is per invocation, not per composed chain.
	require.NoError(t, h(nil))
	require.NoError(t, h(nil))
}

func TestChainErrorPropagates(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	h := internal.Chain(func(c internal.Context) error { return sentinel },
		func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error { return next(c) }
		})

	require.ErrorIs(t, h(nil), sentinel)
}
