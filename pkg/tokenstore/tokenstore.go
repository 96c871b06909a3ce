// Package tokenstore persists refresh-token state for single-use rotation.
//
// Raw refresh tokens are never stored. Callers hash the signed token with
// Hash and the store only ever sees the digest, so a database leak cannot
// be replayed against the refresh endpoint.
package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"
)

var (
	// ErrNotFound means the token hash has no record, either because it
	// was never issued or the janitor already swept it.
	ErrNotFound = errors.New("tokenstore: token not found")

	// ErrRevoked means the token was explicitly invalidated, by rotation
	// or by logout.
	ErrRevoked = errors.New("tokenstore: token revoked")

	// ErrExpired means the record outlived its expiry but has not been
	// swept yet.
	ErrExpired = errors.New("tokenstore: token expired")
)

// Record is the stored state of one refresh token.
type Record struct {
	TokenHash  string
	UserID     string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastUsedAt *time.Time
	IP         string
	UserAgent  string
	Revoked    bool
}

// Store is the persistence contract for refresh tokens. Validate reports
// why a token is unusable via the package sentinel errors; a nil error
// means the token may be rotated exactly once.
type Store interface {
	// Save persists a new record. CreatedAt is set by the store when zero.
	Save(ctx context.Context, rec Record) error

	// Validate looks up the hash and checks revocation and expiry.
	Validate(ctx context.Context, tokenHash string) (*Record, error)

	// Consume validates and revokes in a single atomic step, stamping
	// last-used. Of any set of concurrent Consume calls for the same
	// hash, exactly one returns the record; the rest get ErrRevoked.
	// Rotation must use this, never a Validate/Revoke sequence.
	Consume(ctx context.Context, tokenHash string) (*Record, error)

	// TouchLastUsed stamps the record's last-used time.
	TouchLastUsed(ctx context.Context, tokenHash string) error

	// Revoke marks a single token unusable. Revoking an already-revoked
	// token is a no-op.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllForUser invalidates every live token of one user and
	// returns how many were affected.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes records past their expiry and returns how
	// many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}

// Hash digests a raw token for storage lookup.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
