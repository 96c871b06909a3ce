package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/middlewares"
)

func TestRequestIDGenerated(t *testing.T) {
	t.Parallel()

	c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var seen string
	handler := middlewares.RequestID()(func(c internal.Context) error {
		seen = middlewares.GetRequestID(c)
		return nil
	})

	require.NoError(t, handler(c))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, c.Response().Header().Get("X-Request-ID"))
}

func TestRequestIDPreservesInbound(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "upstream-77")
	c := newTestContext(httptest.NewRecorder(), req)

	handler := middlewares.RequestID()(func(c internal.Context) error {
		require.Equal(t, "upstream-77", middlewares.GetRequestID(c))
		return nil
	})
	require.NoError(t, handler(c))
}

func TestRequestIDCustomGenerator(t *testing.T) {
	t.Parallel()

	c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	handler := middlewares.RequestID(
		middlewares.WithRequestIDGenerator(func() string { return "fixed-id" }),
	)(func(c internal.Context) error { return nil })

	require.NoError(t, handler(c))
	require.Equal(t, "fixed-id", c.Response().Header().Get("X-Request-ID"))
}
