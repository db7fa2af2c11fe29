package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenPersister = errors.New("no token persister configured")
)

// TokenPersister stores tokens between process runs.
type TokenPersister interface {
	LoadToken(key string) (*Token, error)
	SaveToken(key string, token *Token) error
}

// ManagedTokenSource is a token manager that exposes its current token.
type ManagedTokenSource interface {
	TokenManager
	TokenSource
}

// PersistingTokenManager wraps a token manager and persists every token it
// obtains. A failure to persist is logged and never fails the call.
type PersistingTokenManager struct {
	inner     ManagedTokenSource
	persister TokenPersister
	key       string
	logger    schematics.Logger

	mutex     sync.Mutex
	persisted string
}

// NewPersistingTokenManager creates a persisting manager. A still valid token
// previously saved under key is installed into inner.
func NewPersistingTokenManager(inner ManagedTokenSource, persister TokenPersister, key string, logger schematics.Logger) *PersistingTokenManager {
	manager := &PersistingTokenManager{
		inner:     inner,
		persister: persister,
		key:       key,
		logger:    logger,
	}

	if persister == nil {
		return manager
	}

	cached, err := persister.LoadToken(key)
	if err == nil && cached.Valid() {
		inner.SetToken(cached.AccessToken, cached.ExpiresAt)
		manager.persisted = cached.AccessToken
	}

	return manager
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *PersistingTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.inner.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a token refresh.
func (m *PersistingTokenManager) RefreshToken(ctx context.Context) error {
	err := m.inner.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token.
func (m *PersistingTokenManager) SetToken(token string, expiresAt time.Time) {
	m.inner.SetToken(token, expiresAt)
	m.persistIfChanged()
}

// Token returns a copy of the current token.
func (m *PersistingTokenManager) Token() *Token {
	return m.inner.Token()
}

// IsTokenExpiringSoon returns true if the token expires within the given duration.
func (m *PersistingTokenManager) IsTokenExpiringSoon(within time.Duration) bool {
	return !m.inner.Token().ValidFor(within)
}

func (m *PersistingTokenManager) persistIfChanged() {
	current := m.inner.Token()
	if current == nil || current.AccessToken == "" {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current.AccessToken == m.persisted {
		return
	}

	err := m.persistToken(current)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("failed to persist refreshed token", map[string]interface{}{
				"key":   m.key,
				"error": err.Error(),
			})
		}

		return
	}

	m.persisted = current.AccessToken
}

func (m *PersistingTokenManager) persistToken(token *Token) error {
	if m.persister == nil {
		return ErrNoTokenPersister
	}

	err := m.persister.SaveToken(m.key, token)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}
