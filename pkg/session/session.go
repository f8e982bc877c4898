// Package session holds the signed-in user's bearer token. A Session is
// opened once at startup from its Store and passed explicitly to whatever
// needs the token; logging out clears both.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when a signed-in session is required but absent.
var ErrNoToken = errors.New("not signed in")

// Session is the current authentication state.
type Session struct {
	mu    sync.RWMutex
	token string
	store Store
}

// Open reads the persisted token from store.
func Open(store Store) (*Session, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &Session{token: strings.TrimSpace(token), store: store}, nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SignedIn reports whether a token is held.
func (s *Session) SignedIn() bool {
	return s.Token() != ""
}

// Require returns ErrNoToken when signed out.
func (s *Session) Require() error {
	if !s.SignedIn() {
		return ErrNoToken
	}
	return nil
}

// Set stores a new token and persists it.
func (s *Session) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.token = token
	return nil
}

// Clear drops the token from memory and from the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Claims is what the client can read from the token without the signing
// key. The backend remains the only authority on validity.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	ID    string `json:"id"`
	jwt.RegisteredClaims
}

// Claims decodes the token payload without verifying its signature.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, ErrNoToken
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("decode token: %w", err)
	}

	c := Claims{
		Subject: tc.Subject,
		Email:   tc.Email,
		Role:    tc.Role,
	}
	if c.Subject == "" {
		c.Subject = tc.ID
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
