package tokenstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/gate/pkg/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore persists refresh tokens in a refresh_tokens table. All
// lookups go through the token_hash primary key.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the store's schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	return db.Migrate(ctx, pool, migrations, table, log)
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at, ip, user_agent, revoked)
		VALUES ($1, $2, $3, $4, $5, $6, false)`,
		rec.TokenHash, rec.UserID, rec.ExpiresAt, createdAt, rec.IP, rec.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("tokenstore: save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Validate(ctx context.Context, tokenHash string) (*Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT token_hash, user_id, expires_at, created_at, last_used_at, ip, user_agent, revoked
		FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&rec.TokenHash, &rec.UserID, &rec.ExpiresAt, &rec.CreatedAt, &rec.LastUsedAt, &rec.IP, &rec.UserAgent, &rec.Revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore: validate: %w", err)
	}
	if rec.Revoked {
		return nil, ErrRevoked
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, ErrExpired
	}
	return &rec, nil
}

// Consume validates and revokes inside one transaction. The row lock
// serializes concurrent rotations of the same token: the loser sees the
// revoked flag already set and gets ErrRevoked.
func (s *PostgresStore) Consume(ctx context.Context, tokenHash string) (*Record, error) {
	var rec Record
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT token_hash, user_id, expires_at, created_at, last_used_at, ip, user_agent, revoked
			FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`,
			tokenHash,
		).Scan(&rec.TokenHash, &rec.UserID, &rec.ExpiresAt, &rec.CreatedAt, &rec.LastUsedAt, &rec.IP, &rec.UserAgent, &rec.Revoked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("tokenstore: consume: %w", err)
		}
		if rec.Revoked {
			return ErrRevoked
		}
		if time.Now().After(rec.ExpiresAt) {
			return ErrExpired
		}
		if _, err := tx.Exec(ctx, `
			UPDATE refresh_tokens SET revoked = true, last_used_at = now() WHERE token_hash = $1`,
			tokenHash,
		); err != nil {
			return fmt.Errorf("tokenstore: consume: %w", err)
		}
		rec.Revoked = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) TouchLastUsed(ctx context.Context, tokenHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_tokens SET last_used_at = now() WHERE token_hash = $1`,
		tokenHash,
	)
	if err != nil {
		return fmt.Errorf("tokenstore: touch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Revoke(ctx context.Context, tokenHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1`,
		tokenHash,
	)
	if err != nil {
		return fmt.Errorf("tokenstore: revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND NOT revoked`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("tokenstore: revoke all: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM refresh_tokens WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("tokenstore: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
