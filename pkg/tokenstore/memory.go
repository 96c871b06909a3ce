package tokenstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It backs tests and
// single-instance deployments; anything multi-instance needs the postgres
// store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	clock   func() time.Time
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		clock:   time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock()
	}
	s.records[rec.TokenHash] = &rec
	return nil
}

func (s *MemoryStore) Validate(ctx context.Context, tokenHash string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Revoked {
		return nil, ErrRevoked
	}
	if s.clock().After(rec.ExpiresAt) {
		return nil, ErrExpired
	}
	out := *rec
	return &out, nil
}

// Consume runs the whole check-and-revoke under the write lock, so two
// concurrent rotations of the same token cannot both succeed.
func (s *MemoryStore) Consume(ctx context.Context, tokenHash string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Revoked {
		return nil, ErrRevoked
	}
	now := s.clock()
	if now.After(rec.ExpiresAt) {
		return nil, ErrExpired
	}
	rec.Revoked = true
	rec.LastUsedAt = &now
	out := *rec
	return &out, nil
}

func (s *MemoryStore) TouchLastUsed(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tokenHash]
	if !ok {
		return ErrNotFound
	}
	now := s.clock()
	rec.LastUsedAt = &now
	return nil
}

func (s *MemoryStore) Revoke(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tokenHash]
	if !ok {
		return ErrNotFound
	}
	rec.Revoked = true
	return nil
}

func (s *MemoryStore) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.records {
		if rec.UserID == userID && !rec.Revoked {
			rec.Revoked = true
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	var n int64
	for hash, rec := range s.records {
		if now.After(rec.ExpiresAt) {
			delete(s.records, hash)
			n++
		}
	}
	return n, nil
}
