package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Config holds the settings of a client-credentials token manager.
type OAuth2Config struct {
	TokenURL      string
	ClientID      string
	ClientSecret  string
	Scopes        []string
	AccessToken   string
	RefreshMargin time.Duration
	HTTPClient    *http.Client
}

// OAuth2TokenManager obtains tokens with the OAuth2 client_credentials grant.
type OAuth2TokenManager struct {
	config      *OAuth2Config
	credentials *clientcredentials.Config
	*refresher
}

// NewOAuth2TokenManager creates a new OAuth2 token manager.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config: config,
		credentials: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			Scopes:       config.Scopes,
		},
	}
	manager.refresher = newRefresher(config.RefreshMargin, manager.exchange)

	if config.AccessToken != "" {
		manager.store.Set(&Token{AccessToken: config.AccessToken, TokenType: "bearer"})
	}

	return manager
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	return m.accessToken(ctx)
}

// RefreshToken forces a token refresh.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	_, err := m.refresh(ctx, true)

	return err
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.set(token, expiresAt)
}

// Token returns a copy of the current token.
func (m *OAuth2TokenManager) Token() *Token {
	return m.store.Get()
}

func (m *OAuth2TokenManager) exchange(ctx context.Context, _ *Token) (*Token, error) {
	if m.config.ClientID == "" || m.config.ClientSecret == "" {
		return nil, &schematics.AuthError{
			Endpoint: m.config.TokenURL,
			Message:  "no credentials available",
			Cause:    schematics.ErrMissingClientCredentials,
		}
	}

	if m.config.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.config.HTTPClient)
	}

	token, err := m.credentials.Token(ctx)
	if err != nil {
		return nil, retrieveError(m.config.TokenURL, err)
	}

	return &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}, nil
}
