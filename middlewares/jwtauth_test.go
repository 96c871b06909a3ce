package middlewares_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/middlewares"
	"github.com/dmitrymomot/gate/pkg/token"
)

func newSigner(t *testing.T) *token.Service {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	priv := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	svc, err := token.New("gate-test", priv)
	require.NoError(t, err)
	return svc
}

func TestJWTAuthValidToken(t *testing.T) {
	t.Parallel()

	signer := newSigner(t)
	raw, err := signer.Generate("user-9", map[string]any{"tenant_id": "acme"}, time.Minute, token.TypeAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := newTestContext(httptest.NewRecorder(), req)

	handler := middlewares.JWTAuth(signer)(func(c internal.Context) error {
		require.True(t, c.IsAuthenticated())
		require.Equal(t, "user-9", c.UserID())
		require.Equal(t, "acme", c.Identity().StringClaim("tenant_id"))
		return nil
	})
	require.NoError(t, handler(c))
}

func TestJWTAuthNoTokenIsAnonymous(t *testing.T) {
	t.Parallel()

	signer := newSigner(t)
	c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	handler := middlewares.JWTAuth(signer)(func(c internal.Context) error {
		require.True(t, c.IsGuest())
		return nil
	})
	require.NoError(t, handler(c))
}

func TestJWTAuthInvalidTokenRejected(t *testing.T) {
	t.Parallel()

	signer := newSigner(t)

	for name, raw := range map[string]string{
		"garbage": "not.a.jwt",
		"expired": mustGenerate(t, signer, -time.Minute, token.TypeAccess),
		"refresh": mustGenerate(t, signer, time.Minute, token.TypeRefresh),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+raw)
			c := newTestContext(httptest.NewRecorder(), req)

			called := false
			handler := middlewares.JWTAuth(signer)(func(c internal.Context) error {
				called = true
				return nil
			})
			err := handler(c)
			require.False(t, called, "invalid credential must not fall through to the handler")
			httpErr := internal.AsHTTPError(err)
			require.NotNil(t, httpErr)
			require.Equal(t, http.StatusUnauthorized, httpErr.Code)
			require.Equal(t, internal.CodeUnauthorized, httpErr.ErrorCode)
		})
	}
}

func mustGenerate(t *testing.T, signer *token.Service, ttl time.Duration, typ token.Type) string {
	t.Helper()
	raw, err := signer.Generate("user-9", nil, ttl, typ)
	require.NoError(t, err)
	return raw
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	err := middlewares.RequireAuth(func(c internal.Context) error { return nil })(c)
	httpErr := internal.AsHTTPError(err)
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)

	c.SetIdentity(&internal.Identity{UserID: "user-1"})
	require.NoError(t, middlewares.RequireAuth(func(c internal.Context) error { return nil })(c))
}
