package middlewares_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/pkg/cookie"
)

// testContext is a minimal Context implementation for exercising
// middlewares without a full app.
type testContext struct {
	response *internal.ResponseWriter
	request  *http.Request
	values   map[any]any
	identity *internal.Identity
	tenant   *internal.Tenant
	logger   *slog.Logger
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{
		response: internal.NewResponseWriter(w),
		request:  r,
		values:   make(map[any]any),
		logger:   slog.New(slog.DiscardHandler),
	}
}

func (c *testContext) Request() *http.Request        { return c.request }
func (c *testContext) Response() http.ResponseWriter { return c.response }
func (c *testContext) Context() context.Context      { return c.request.Context() }

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.request.Context().Value(key)
}

func (c *testContext) Param(name string) string { return "" }
func (c *testContext) Query(name string) string { return c.request.URL.Query().Get(name) }
func (c *testContext) QueryDefault(name, defaultValue string) string {
	if v := c.request.URL.Query().Get(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *testContext) Header(name string) string    { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }
func (c *testContext) ClientIP() string             { return c.request.RemoteAddr }

func (c *testContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) OK(code int, data any) error {
	return c.JSON(code, internal.Envelope{Status: internal.StatusOK, Data: data})
}

func (c *testContext) String(code int, s string) error {
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *testContext) BindJSON(v any) error {
	return json.NewDecoder(c.request.Body).Decode(v)
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	err := internal.NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *testContext) Identity() *internal.Identity      { return c.identity }
func (c *testContext) SetIdentity(id *internal.Identity) { c.identity = id }
func (c *testContext) ClearIdentity()                    { c.identity = nil }
func (c *testContext) IsAuthenticated() bool {
	return c.identity != nil && c.identity.UserID != ""
}
func (c *testContext) IsGuest() bool { return !c.IsAuthenticated() }
func (c *testContext) UserID() string {
	if c.identity == nil {
		return ""
	}
	return c.identity.UserID
}

func (c *testContext) Tenant() *internal.Tenant     { return c.tenant }
func (c *testContext) SetTenant(t *internal.Tenant) { c.tenant = t }
func (c *testContext) ClearTenant()                 { c.tenant = nil }
func (c *testContext) TenantID() string {
	if c.tenant == nil {
		return ""
	}
	return c.tenant.ID
}

func (c *testContext) Set(key, value any) { c.values[key] = value }
func (c *testContext) Get(key any) any    { return c.Value(key) }

func (c *testContext) Cookie(name string) (string, error) {
	ck, err := c.request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

func (c *testContext) SetCookie(name, value string, maxAge int, opts ...cookie.WriteOption) {
	http.SetCookie(c.response, &http.Cookie{Name: name, Value: value, MaxAge: maxAge})
}

func (c *testContext) DeleteCookie(name string, opts ...cookie.WriteOption) {
	http.SetCookie(c.response, &http.Cookie{Name: name, Value: "", MaxAge: -1})
}

func (c *testContext) CookieSigned(name string) (string, error) {
	return "", cookie.ErrNoSecret
}

func (c *testContext) SetCookieSigned(name, value string, maxAge int, opts ...cookie.WriteOption) error {
	return cookie.ErrNoSecret
}

func (c *testContext) Written() bool                             { return c.response.Written() }
func (c *testContext) ResponseWriter() *internal.ResponseWriter  { return c.response }
func (c *testContext) Logger() *slog.Logger                      { return c.logger }
func (c *testContext) LogDebug(msg string, attrs ...any)         {}
func (c *testContext) LogInfo(msg string, attrs ...any)          {}
func (c *testContext) LogWarn(msg string, attrs ...any)          {}
func (c *testContext) LogError(msg string, attrs ...any)         {}
