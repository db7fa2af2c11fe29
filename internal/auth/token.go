package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
)

// TokenManager manages access tokens for API calls.
type TokenManager interface {
	// GetToken returns an access token that is valid beyond the manager's
	// safety margin, refreshing it first when needed.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken forces a refresh.
	RefreshToken(ctx context.Context) error
	// SetToken installs a token obtained elsewhere.
	SetToken(token string, expiresAt time.Time)
}

// TokenSource exposes a copy of the manager's current token.
type TokenSource interface {
	Token() *Token
}

// Token is an access credential and its expiry.
type Token struct {
	AccessToken  string    `json:"access_token"            yaml:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"    yaml:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"-"                       yaml:"expires_at"`
}

// Valid reports whether the token can be used outside the default safety
// margin.
func (t *Token) Valid() bool {
	return t.ValidFor(constants.TokenRefreshMargin)
}

// ValidFor reports whether the token remains valid for longer than margin.
// A token without an expiry never expires.
func (t *Token) ValidFor(margin time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(margin).Before(t.ExpiresAt)
}

// TokenStore holds the current token. Tokens are replaced whole and handed
// out as copies, so a reader never observes a partial update.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore creates a new token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns a copy of the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.token == nil {
		return nil
	}

	token := *s.token

	return &token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token == nil {
		s.token = nil

		return
	}

	stored := *token
	s.token = &stored
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.Set(nil)
}
