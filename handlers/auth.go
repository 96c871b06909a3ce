package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/pkg/cookie"
	"github.com/dmitrymomot/gate/pkg/token"
	"github.com/dmitrymomot/gate/pkg/tokenstore"
)

// RefreshCookieName holds the refresh token. Always httpOnly; scripts
// never see the raw token.
const RefreshCookieName = "refresh_token"

// TokenResponse is the envelope data for a successful token issuance.
// The refresh token travels only in the cookie, never in the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Auth serves the token rotation endpoints. The store may be nil, which
// drops rotation to signature-only: refresh tokens are not tracked, so
// they cannot be revoked and are not single-use. Only deployments that
// can live with that should run without storage.
type Auth struct {
	signer     *token.Service
	store      tokenstore.Store
	accessTTL  time.Duration
	refreshTTL time.Duration
	cookiePath string
	secure     bool
}

// AuthOption configures the Auth handler.
type AuthOption func(*Auth)

// WithAccessTTL sets the access token lifetime. Default 15m.
func WithAccessTTL(d time.Duration) AuthOption {
	return func(h *Auth) { h.accessTTL = d }
}

// WithRefreshTTL sets the refresh token and cookie lifetime. Default 30
// days.
func WithRefreshTTL(d time.Duration) AuthOption {
	return func(h *Auth) { h.refreshTTL = d }
}

// WithCookiePath scopes the session cookies. Default "/".
func WithCookiePath(path string) AuthOption {
	return func(h *Auth) { h.cookiePath = path }
}

// WithInsecureCookies drops the Secure flag from the session cookies so
// they work over plain HTTP in local development. Never use in
// production.
func WithInsecureCookies() AuthOption {
	return func(h *Auth) { h.secure = false }
}

// NewAuth builds the handler around a signing service and a token store.
func NewAuth(signer *token.Service, store tokenstore.Store, opts ...AuthOption) *Auth {
	h := &Auth{
		signer:     signer,
		store:      store,
		accessTTL:  15 * time.Minute,
		refreshTTL: 30 * 24 * time.Hour,
		cookiePath: "/",
		secure:     true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Auth) Routes(r internal.Router) {
	r.POST("/auth/refresh", h.handleRefresh)
	r.POST("/auth/logout", h.handleLogout)
}

// handleRefresh rotates a refresh token: the presented token is consumed
// and a fresh access/refresh/CSRF set is issued. Order matters here; the
// CSRF gate runs first so forged requests leave storage untouched, and
// storage is consulted only after the signature checks out.
func (h *Auth) handleRefresh(c internal.Context) error {
	if err := checkCSRF(c); err != nil {
		return err
	}

	raw, err := c.Cookie(RefreshCookieName)
	if err != nil || raw == "" {
		return internal.ErrUnauthorized("missing refresh token")
	}

	claims, err := h.signer.Verify(raw, token.WithTokenType(token.TypeRefresh))
	if err != nil {
		return internal.ErrUnauthorized(refreshFailureMessage(err), internal.WithError(err))
	}

	if h.store != nil {
		// Consume is atomic in the store: validate, revoke, and stamp
		// last-used in one step, so two refreshes racing on the same
		// cookie cannot both succeed.
		rec, err := h.store.Consume(c.Context(), tokenstore.Hash(raw))
		switch {
		case errors.Is(err, tokenstore.ErrRevoked):
			// A revoked token arriving with a valid signature means the
			// original was already rotated: either a replayed request or a
			// stolen token. Kill the whole session family.
			if n, revokeErr := h.store.RevokeAllForUser(c.Context(), claims.Subject); revokeErr == nil {
				c.LogWarn("refresh token reuse detected, revoking all sessions",
					"user_id", claims.Subject, "revoked", n)
			}
			return internal.ErrUnauthorized("refresh token revoked", internal.WithError(err))
		case errors.Is(err, tokenstore.ErrNotFound), errors.Is(err, tokenstore.ErrExpired):
			return internal.ErrUnauthorized("refresh token invalid", internal.WithError(err))
		case err != nil:
			return err
		}

		if rec.UserID != claims.Subject {
			return internal.ErrUnauthorized("refresh token invalid")
		}
	}

	return h.IssueSession(c, claims.Subject, claims.Custom)
}

func refreshFailureMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "refresh token expired"
	default:
		return "refresh token invalid"
	}
}

// handleLogout ends the session. It is idempotent: a request with no
// session cookies still clears cookies and succeeds. A body of
// {"all": true} revokes every session of the user ("logout everywhere").
func (h *Auth) handleLogout(c internal.Context) error {
	raw, err := c.Cookie(RefreshCookieName)
	if err != nil || raw == "" {
		h.clearSessionCookies(c)
		return c.NoContent(http.StatusNoContent)
	}

	if err := checkCSRF(c); err != nil {
		return err
	}

	var body struct {
		All bool `json:"all"`
	}
	if c.Request().ContentLength > 0 {
		if err := c.BindJSON(&body); err != nil {
			return internal.ErrBadRequest("malformed request body", internal.WithError(err))
		}
	}

	// An unverifiable token still logs out locally; there is nothing in
	// storage worth keeping for it.
	if claims, err := h.signer.Verify(raw, token.WithTokenType(token.TypeRefresh)); err == nil && h.store != nil {
		if body.All {
			if _, err := h.store.RevokeAllForUser(c.Context(), claims.Subject); err != nil {
				return err
			}
		} else if err := h.store.Revoke(c.Context(), tokenstore.Hash(raw)); err != nil &&
			!errors.Is(err, tokenstore.ErrNotFound) {
			return err
		}
	}

	h.clearSessionCookies(c)
	return c.NoContent(http.StatusNoContent)
}

// IssueSession mints the access/refresh/CSRF set for userID and writes
// the response. Login handlers call this after verifying credentials;
// custom claims survive rotation because the refresh handler passes them
// back in.
func (h *Auth) IssueSession(c internal.Context, userID string, customClaims map[string]any) error {
	access, err := h.signer.Generate(userID, customClaims, h.accessTTL, token.TypeAccess)
	if err != nil {
		return err
	}
	refresh, err := h.signer.Generate(userID, customClaims, h.refreshTTL, token.TypeRefresh)
	if err != nil {
		return err
	}
	csrf, err := newCSRFToken()
	if err != nil {
		return err
	}

	if h.store != nil {
		if err := h.store.Save(c.Context(), tokenstore.Record{
			TokenHash: tokenstore.Hash(refresh),
			UserID:    userID,
			ExpiresAt: time.Now().Add(h.refreshTTL),
			IP:        c.ClientIP(),
			UserAgent: c.Header("User-Agent"),
		}); err != nil {
			return err
		}
	}

	maxAge := int(h.refreshTTL.Seconds())
	c.SetCookie(RefreshCookieName, refresh, maxAge,
		cookie.WithPath(h.cookiePath), cookie.WithHTTPOnly(true), cookie.WithSecure(h.secure))
	c.SetCookie(CSRFCookieName, csrf, maxAge,
		cookie.WithPath(h.cookiePath), cookie.WithHTTPOnly(false), cookie.WithSecure(h.secure))

	return c.OK(http.StatusOK, TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accessTTL.Seconds()),
	})
}

func (h *Auth) clearSessionCookies(c internal.Context) {
	c.DeleteCookie(RefreshCookieName, cookie.WithPath(h.cookiePath), cookie.WithSecure(h.secure))
	c.DeleteCookie(CSRFCookieName, cookie.WithPath(h.cookiePath), cookie.WithSecure(h.secure))
}
