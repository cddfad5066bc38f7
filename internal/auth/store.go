package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/the-press/internal/db"
)

// TokenStore keeps the bearer token in the credentials table, so the
// console and cmd/signin share one sign-in. It satisfies api.TokenSource.
type TokenStore struct {
	db db.DB

	mu     sync.RWMutex
	loaded bool
	token  string
	email  string
}

func NewTokenStore(db db.DB) *TokenStore {
	return &TokenStore{db: db}
}

type credentials struct {
	Token     string    `db:"token"`
	Email     string    `db:"email"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *TokenStore) load(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	var c credentials
	err := s.db.Get().GetContext(ctx, &c, `SELECT token, email, updated_at FROM credentials WHERE id = 1`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error reading credentials: %w", err)
	}

	s.mu.Lock()
	s.loaded = true
	s.token, s.email = c.Token, c.Email
	s.mu.Unlock()
	return nil
}

// Token returns the stored token, or an empty string when signed out.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	if err := s.load(ctx); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenStore) Email(ctx context.Context) (string, error) {
	if err := s.load(ctx); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email, nil
}

func (s *TokenStore) Save(ctx context.Context, token, email string) error {
	_, err := s.db.Get().ExecContext(ctx, `
		INSERT INTO credentials (id, token, email, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, email = excluded.email, updated_at = excluded.updated_at`,
		token, email, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving credentials: %w", err)
	}

	s.mu.Lock()
	s.loaded = true
	s.token, s.email = token, email
	s.mu.Unlock()
	authLogger.Info().Str("email", email).Msg("Credentials stored")
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.Get().ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("error clearing credentials: %w", err)
	}

	s.mu.Lock()
	s.loaded = true
	s.token, s.email = "", ""
	s.mu.Unlock()
	authLogger.Info().Msg("Credentials cleared")
	return nil
}
