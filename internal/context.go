package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gate/pkg/cookie"
)

// Envelope is the uniform response body shape.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Envelope status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying
// request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// ClientIP returns the client address, honoring X-Forwarded-For and
	// X-Real-IP for proxied requests.
	ClientIP() string

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// OK writes an envelope response with status "ok" and the given data.
	OK(code int, data any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// BindJSON decodes the JSON request body into v.
	BindJSON(v any) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the handler to trigger the error
	// handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Identity returns the authenticated identity for this request.
	// Returns nil for anonymous requests.
	Identity() *Identity

	// SetIdentity associates an authenticated identity with this request.
	SetIdentity(id *Identity)

	// ClearIdentity removes the identity. Called by the dispatch boundary
	// at teardown; safe to call multiple times.
	ClearIdentity()

	// IsAuthenticated returns true if an identity is set.
	IsAuthenticated() bool

	// IsGuest returns true if no identity is set.
	IsGuest() bool

	// UserID returns the authenticated user's ID, or empty string.
	UserID() string

	// Tenant returns the resolved tenant for this request, or nil.
	Tenant() *Tenant

	// SetTenant associates a tenant with this request.
	SetTenant(t *Tenant)

	// ClearTenant removes the tenant. Same teardown rules as ClearIdentity.
	ClearTenant()

	// TenantID returns the resolved tenant's ID, or empty string.
	TenantID() string

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not found.
	Get(key any) any

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie using the app's cookie defaults,
	// optionally overridden per call.
	SetCookie(name, value string, maxAge int, opts ...cookie.WriteOption)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string, opts ...cookie.WriteOption)

	// CookieSigned returns a signed cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieSigned(name string) (string, error)

	// SetCookieSigned sets a signed cookie.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetCookieSigned(name, value string, maxAge int, opts ...cookie.WriteOption) error

	// Written returns true if a response has already been written.
	Written() bool

	// ResponseWriter returns the wrapped response writer for status/size
	// inspection, or nil when unavailable.
	ResponseWriter() *ResponseWriter

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	// LogDebug logs a debug message with optional attributes.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with optional attributes.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with optional attributes.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with optional attributes.
	LogError(msg string, attrs ...any)
}

// scope holds per-request mutable state shared by every Context created for
// the same request. It lives in the request context so state written by a
// middleware layer is visible to downstream layers and to the dispatch
// boundary for teardown. Requests are processed by a single goroutine, so
// no locking is needed (rate-limit counters are the only cross-request
// shared state, handled in the middlewares package).
type scope struct {
	identity *Identity
	tenant   *Tenant
}

// scopeKey is the context key for the per-request scope.
type scopeKey struct{}

// newScope injects a fresh scope into ctx. Called once per request by the
// dispatch boundary.
func newScope(ctx context.Context) (context.Context, *scope) {
	s := &scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// scopeFrom returns the request scope, or nil if the request did not pass
// through the dispatch boundary (e.g. bare test contexts).
func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}

// requestContext implements the Context interface.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	cookieManager  *cookie.Manager
	scope          *scope
}

// newContext creates a context for the current middleware layer or handler.
// The response writer and request scope are shared across layers.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}

	sc := scopeFrom(r.Context())
	if sc == nil {
		sc = &scope{}
	}

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		cookieManager:  app.cookieManager,
		scope:          sc,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) ClientIP() string {
	return clientIP(c.request)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) OK(code int, data any) error {
	return c.JSON(code, Envelope{Status: StatusOK, Data: data})
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) BindJSON(v any) error {
	return json.NewDecoder(c.request.Body).Decode(v)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	err := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *requestContext) Identity() *Identity {
	return c.scope.identity
}

func (c *requestContext) SetIdentity(id *Identity) {
	c.scope.identity = id
}

func (c *requestContext) ClearIdentity() {
	c.scope.identity = nil
}

func (c *requestContext) IsAuthenticated() bool {
	return c.scope.identity != nil && c.scope.identity.UserID != ""
}

func (c *requestContext) IsGuest() bool {
	return !c.IsAuthenticated()
}

func (c *requestContext) UserID() string {
	if c.scope.identity == nil {
		return ""
	}
	return c.scope.identity.UserID
}

func (c *requestContext) Tenant() *Tenant {
	return c.scope.tenant
}

func (c *requestContext) SetTenant(t *Tenant) {
	c.scope.tenant = t
}

func (c *requestContext) ClearTenant() {
	c.scope.tenant = nil
}

func (c *requestContext) TenantID() string {
	if c.scope.tenant == nil {
		return ""
	}
	return c.scope.tenant.ID
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int, opts ...cookie.WriteOption) {
	c.cookieManager.Set(c.response, name, value, maxAge, opts...)
}

func (c *requestContext) DeleteCookie(name string, opts ...cookie.WriteOption) {
	c.cookieManager.Delete(c.response, name, opts...)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int, opts ...cookie.WriteOption) error {
	return c.cookieManager.SetSigned(c.response, name, value, maxAge, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}
