package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoSecret = errors.New("cookie: secret required")
	ErrBadSig   = errors.New("cookie: invalid signature")
)

// Manager handles cookie operations with app-wide defaults. Individual
// writes can override the defaults; the auth handlers rely on this to keep
// the refresh cookie httpOnly and path-scoped while the CSRF cookie stays
// readable for the double-submit echo.
type Manager struct {
	secret   []byte // nil = signing unavailable
	defaults WriteOptions
}

// WriteOptions are the attributes applied to a written cookie.
type WriteOptions struct {
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// WriteOption overrides a single attribute for one write.
type WriteOption func(*WriteOptions)

// WithPath scopes the cookie to a path.
func WithPath(path string) WriteOption {
	return func(o *WriteOptions) {
		o.Path = path
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) WriteOption {
	return func(o *WriteOptions) {
		o.Domain = domain
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) WriteOption {
	return func(o *WriteOptions) {
		o.Secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) WriteOption {
	return func(o *WriteOptions) {
		o.HTTPOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) WriteOption {
	return func(o *WriteOptions) {
		o.SameSite = ss
	}
}

// Option configures the Manager defaults.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		defaults: WriteOptions{
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the secret for cookie signing.
// Must be at least 32 bytes; shorter secrets are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDefaults replaces the manager's default write options.
func WithDefaults(defaults WriteOptions) Option {
	return func(m *Manager) {
		m.defaults = defaults
	}
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int, opts ...WriteOption) {
	http.SetCookie(w, m.cookie(name, value, maxAge, opts))
}

// Delete removes a cookie. The write options must match the ones used when
// setting it, or browsers will keep the original.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...WriteOption) {
	http.SetCookie(w, m.cookie(name, "", -1, opts))
}

// GetSigned returns a signed cookie value.
// Returns ErrNoSecret if no secret is configured.
// Returns ErrBadSig if signature verification fails.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	// Format: base64(value).base64(signature)
	encoded, sigPart, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}

	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSig
	}

	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return "", ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}

	return string(value), nil
}

// SetSigned sets a signed cookie.
// Returns ErrNoSecret if no secret is configured.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int, opts ...WriteOption) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	sig := mac.Sum(nil)

	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(sig)

	http.SetCookie(w, m.cookie(name, encoded, maxAge, opts))
	return nil
}

// cookie creates a cookie from the manager's defaults plus per-call
// overrides.
func (m *Manager) cookie(name, value string, maxAge int, opts []WriteOption) *http.Cookie {
	wo := m.defaults
	for _, opt := range opts {
		opt(&wo)
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     wo.Path,
		Domain:   wo.Domain,
		MaxAge:   maxAge,
		Secure:   wo.Secure,
		HttpOnly: wo.HTTPOnly,
		SameSite: wo.SameSite,
	}
}
