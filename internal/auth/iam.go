package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// IAMConfig holds the settings of an IAM api-key token manager.
type IAMConfig struct {
	TokenURL string
	APIKey   string
	// ClientID and ClientSecret, when both set, authenticate the token
	// request with basic auth.
	ClientID     string
	ClientSecret string
	// RefreshToken seeds the manager for the refresh_token grant.
	RefreshToken string
	// AccessToken seeds the manager with a token of unknown expiry.
	AccessToken string
	// RefreshMargin is the safety margin before expiry inside which a token
	// is no longer handed out.
	RefreshMargin time.Duration
	HTTPClient    *http.Client
}

// IAMTokenManager exchanges an api key (or a refresh token) for bearer
// tokens at an IAM-style token endpoint.
type IAMTokenManager struct {
	config     *IAMConfig
	httpClient *http.Client
	*refresher
}

// iamErrorResponse covers both IAM and plain OAuth2 error bodies.
type iamErrorResponse struct {
	ErrorCode        string `json:"errorCode"`
	ErrorMessage     string `json:"errorMessage"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// NewIAMTokenManager creates a new IAM token manager.
func NewIAMTokenManager(config *IAMConfig) *IAMTokenManager {
	if config.TokenURL == "" {
		config.TokenURL = constants.DefaultIAMTokenURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.TokenRequestTimeout}
	}

	manager := &IAMTokenManager{
		config:     config,
		httpClient: httpClient,
	}
	manager.refresher = newRefresher(config.RefreshMargin, manager.exchange)

	if config.AccessToken != "" || config.RefreshToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *IAMTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.accessToken(ctx)
}

// RefreshToken forces a token refresh.
func (m *IAMTokenManager) RefreshToken(ctx context.Context) error {
	_, err := m.refresh(ctx, true)

	return err
}

// SetToken manually sets the access token.
func (m *IAMTokenManager) SetToken(token string, expiresAt time.Time) {
	m.set(token, expiresAt)
}

// Token returns a copy of the current token.
func (m *IAMTokenManager) Token() *Token {
	return m.store.Get()
}

func (m *IAMTokenManager) exchange(ctx context.Context, current *Token) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	var source oauth2.TokenSource

	switch {
	case m.config.APIKey != "":
		source = m.apiKeyGrant().TokenSource(ctx)
	case current != nil && current.RefreshToken != "":
		source = m.refreshGrant().TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken})
	default:
		return nil, &schematics.AuthError{
			Endpoint: m.config.TokenURL,
			Message:  "no credentials available",
			Cause:    schematics.ErrMissingAPIKey,
		}
	}

	token, err := source.Token()
	if err != nil {
		return nil, retrieveError(m.config.TokenURL, err)
	}

	return &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    tokenExpiry(token, time.Now()),
	}, nil
}

// apiKeyGrant overrides the client_credentials grant type with the IAM
// api-key grant.
func (m *IAMTokenManager) apiKeyGrant() *clientcredentials.Config {
	grant := &clientcredentials.Config{
		TokenURL:  m.config.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"grant_type": {constants.IAMAPIKeyGrantType},
			"apikey":     {m.config.APIKey},
		},
	}

	if m.config.ClientID != "" && m.config.ClientSecret != "" {
		grant.ClientID = m.config.ClientID
		grant.ClientSecret = m.config.ClientSecret
		grant.AuthStyle = oauth2.AuthStyleInHeader
	}

	return grant
}

func (m *IAMTokenManager) refreshGrant() *oauth2.Config {
	grant := &oauth2.Config{
		ClientID:     constants.IAMClientID,
		ClientSecret: constants.IAMClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  m.config.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	if m.config.ClientID != "" && m.config.ClientSecret != "" {
		grant.ClientID = m.config.ClientID
		grant.ClientSecret = m.config.ClientSecret
	}

	return grant
}

// retrieveError maps a failed token exchange onto an AuthError.
func retrieveError(endpoint string, err error) error {
	var endpointErr *oauth2.RetrieveError
	if errors.As(err, &endpointErr) && endpointErr.Response != nil {
		authErr, _ := tokenEndpointError(endpoint, endpointErr.Response.StatusCode, endpointErr.Body).(*schematics.AuthError)
		authErr.Cause = err

		return authErr
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &schematics.AuthError{Endpoint: endpoint, Message: "token endpoint unreachable", Cause: err}
	}

	return &schematics.AuthError{Endpoint: endpoint, Message: "malformed token response", Cause: err}
}

// tokenExpiry prefers the absolute IAM expiration over expires_in. A
// response reporting neither gets the default lifetime.
func tokenExpiry(token *oauth2.Token, now time.Time) time.Time {
	var expiration int64

	switch value := token.Extra("expiration").(type) {
	case float64:
		expiration = int64(value)
	case int64:
		expiration = value
	case string:
		expiration, _ = strconv.ParseInt(value, 10, 64)
	}

	switch {
	case expiration > 0:
		return time.Unix(expiration, 0)
	case !token.Expiry.IsZero():
		return token.Expiry
	default:
		return now.Add(constants.DefaultTokenLifetime)
	}
}

func tokenEndpointError(endpoint string, status int, body []byte) error {
	authErr := &schematics.AuthError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    strings.TrimSpace(string(body)),
	}

	var errResp iamErrorResponse

	if json.Unmarshal(body, &errResp) == nil {
		authErr.Code = firstNonEmpty(errResp.ErrorCode, errResp.Error)
		if msg := firstNonEmpty(errResp.ErrorMessage, errResp.ErrorDescription); msg != "" {
			authErr.Message = msg
		} else if authErr.Code != "" {
			authErr.Message = authErr.Code
		}
	}

	if authErr.Message == "" {
		authErr.Message = http.StatusText(status)
	}

	return authErr
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
