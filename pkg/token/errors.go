package token

import "errors"

// Verification failures are returned as values, never panics: tokens cross
// a trust boundary and failure is an expected outcome.
var (
	// ErrKeyLoad is returned when key material is unreadable, not RSA, or
	// passphrase-protected (encrypted PEM is not supported; decrypt the key
	// before loading).
	ErrKeyLoad = errors.New("token: failed to load key")

	// ErrNoPrivateKey is returned by Generate on a verify-only service.
	ErrNoPrivateKey = errors.New("token: private key required for signing")

	// ErrMalformed is returned for structurally invalid tokens.
	ErrMalformed = errors.New("token: malformed")

	// ErrInvalidSignature is returned when the signature does not verify.
	// Tokens signed with any algorithm other than RS256 are rejected before
	// signature verification and also surface as ErrInvalidSignature.
	ErrInvalidSignature = errors.New("token: invalid signature")

	// ErrExpired is returned for structurally valid tokens past their
	// expiry.
	ErrExpired = errors.New("token: expired")

	// ErrIssuerMismatch is returned when the iss claim does not match the
	// service issuer and the issuer check is enabled.
	ErrIssuerMismatch = errors.New("token: issuer mismatch")

	// ErrWrongTokenType is returned when the type claim does not match the
	// type the caller requires (access vs refresh).
	ErrWrongTokenType = errors.New("token: wrong token type")
)
