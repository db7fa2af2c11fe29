package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

// StaticTokenManager hands out a fixed bearer token.
type StaticTokenManager struct {
	mutex sync.RWMutex
	token Token
}

// NewStaticTokenManager creates a manager for a pre-issued token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: Token{AccessToken: token, TokenType: "bearer"}}
}

// GetToken returns the configured token.
func (m *StaticTokenManager) GetToken(_ context.Context) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.token.AccessToken == "" {
		return "", &schematics.AuthError{Message: "static token", Cause: schematics.ErrEmptyAccessToken}
	}

	return m.token.AccessToken, nil
}

// RefreshToken always fails: a static token has no way to be renewed.
func (m *StaticTokenManager) RefreshToken(_ context.Context) error {
	return schematics.ErrStaticTokenCannotRefresh
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.token = Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt}
}

// Token returns a copy of the current token.
func (m *StaticTokenManager) Token() *Token {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	token := m.token

	return &token
}
