package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/middlewares"
)

func TestCORSNonCORSRequestUntouched(t *testing.T) {
	t.Parallel()

	c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	handler := middlewares.CORS()(func(c internal.Context) error { return nil })
	require.NoError(t, handler(c))
	require.Empty(t, c.Response().Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	c := newTestContext(httptest.NewRecorder(), req)

	handler := middlewares.CORS()(func(c internal.Context) error { return nil })
	require.NoError(t, handler(c))
	require.Equal(t, "*", c.Response().Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	c := newTestContext(rec, req)

	called := false
	handler := middlewares.CORS(
		middlewares.WithAllowOrigins("https://app.example.com"),
		middlewares.WithAllowCredentials(),
	)(func(c internal.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(c))
	require.False(t, called)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	c := newTestContext(httptest.NewRecorder(), req)

	handler := middlewares.CORS(
		middlewares.WithAllowOrigins("https://app.example.com"),
	)(func(c internal.Context) error { return nil })

	require.NoError(t, handler(c))
	require.Empty(t, c.Response().Header().Get("Access-Control-Allow-Origin"))
}
