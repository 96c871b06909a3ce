// Package cookie provides a cookie manager with app-wide write defaults,
// per-write overrides, and HMAC-signed values.
//
// The manager is configured once with defaults (path, HttpOnly, SameSite)
// and used for every cookie the app writes. Writes that need different
// attributes pass WriteOptions:
//
//	m := cookie.New(cookie.WithSecret(secret))
//	m.Set(w, "refresh_token", tok, maxAge,
//	    cookie.WithPath("/auth"),
//	    cookie.WithSecure(true),
//	)
//
// Signed cookies carry an HMAC-SHA256 signature so tampering is detectable
// without server-side state. Signing requires a secret of at least 32
// bytes.
package cookie
