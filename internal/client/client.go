package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/schematics-client/internal/auth"
	internalconfig "github.com/fivetwenty-io/schematics-client/internal/config"
	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/internal/http"
	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/google/uuid"
)

var _ schematics.Client = (*Client)(nil)

// Client implements the schematics.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	catalog      *operation.Catalog
	baseURL      string
	logger       schematics.Logger

	// Resource clients
	workspaces  *WorkspacesClient
	jobs        *JobsClient
	agents      *AgentsClient
	inventories *InventoriesClient
	blueprints  *BlueprintsClient
}

// createTokenManager picks the credential provider from the configured
// credentials. It returns nil when the client runs unauthenticated.
func createTokenManager(config *schematics.Config) auth.TokenManager {
	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	var manager auth.ManagedTokenSource

	switch {
	case config.APIKey != "" || config.RefreshToken != "":
		manager = auth.NewIAMTokenManager(&auth.IAMConfig{
			TokenURL:      getTokenURL(config),
			APIKey:        config.APIKey,
			ClientID:      config.ClientID,
			ClientSecret:  config.ClientSecret,
			RefreshToken:  config.RefreshToken,
			RefreshMargin: config.TokenRefreshMargin,
		})
	case config.ClientID != "" && config.ClientSecret != "":
		manager = auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:      getTokenURL(config),
			ClientID:      config.ClientID,
			ClientSecret:  config.ClientSecret,
			RefreshMargin: config.TokenRefreshMargin,
		})
	default:
		return nil // No authentication
	}

	if config.TokenCacheFile == "" {
		return manager
	}

	return auth.NewPersistingTokenManager(
		manager,
		internalconfig.NewFileTokenPersister(config.TokenCacheFile),
		tokenCacheKey(config),
		config.Logger,
	)
}

// tokenCacheKey identifies a credential in the token cache without storing
// the credential itself.
func tokenCacheKey(config *schematics.Config) string {
	identity := strings.Join([]string{getTokenURL(config), config.APIKey, config.ClientID, config.RefreshToken}, "\x00")

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(identity)).String()
}

// getTokenURL returns token URL from config or the IAM default.
func getTokenURL(config *schematics.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return constants.DefaultIAMTokenURL
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *schematics.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.MaxAttempts > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.MaxAttempts, config.RetryWaitMin, config.RetryWaitMax))
	}

	if len(config.Headers) > 0 {
		httpOpts = append(httpOpts, http.WithHeaders(config.Headers))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, 1))
	}

	if config.Metrics != nil {
		httpOpts = append(httpOpts, http.WithMetrics(config.Metrics))
	}

	for _, interceptor := range config.RequestInterceptors {
		httpOpts = append(httpOpts, http.WithRequestInterceptor(interceptor))
	}

	for _, interceptor := range config.ResponseInterceptors {
		httpOpts = append(httpOpts, http.WithResponseInterceptor(interceptor))
	}

	return httpOpts
}

// New creates a new API client from config.
func New(ctx context.Context, config *schematics.Config) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, schematics.ErrAPIEndpointRequired
	}

	return NewWithTokenManager(ctx, config, createTokenManager(config))
}

// NewWithTokenManager creates a new API client with a custom token manager.
func NewWithTokenManager(ctx context.Context, config *schematics.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, schematics.ErrAPIEndpointRequired
	}

	catalog := operation.Builtin()

	if config.OpenAPIDocument != "" {
		loaded, err := operation.LoadOpenAPIFile(ctx, config.OpenAPIDocument)
		if err != nil {
			return nil, fmt.Errorf("loading operations from %s: %w", config.OpenAPIDocument, err)
		}

		catalog.Merge(loaded)
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		catalog:      catalog,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.workspaces = NewWorkspacesClient(c)
	c.jobs = NewJobsClient(c)
	c.agents = NewAgentsClient(c)
	c.inventories = NewInventoriesClient(c)
	c.blueprints = NewBlueprintsClient(c)
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Catalog returns the operations callable through Invoke.
func (c *Client) Catalog() *operation.Catalog {
	return c.catalog
}

// BaseURL returns the service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetToken implements schematics.Client.GetToken.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", schematics.ErrNoTokenManagerConfigured
	}

	return c.tokenManager.GetToken(ctx)
}

// Invoke implements schematics.Client.Invoke.
func (c *Client) Invoke(ctx context.Context, name string, params *schematics.Params) (*schematics.Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, c, name, params)
}

// Resource client accessors

// Workspaces implements schematics.Client.Workspaces.
func (c *Client) Workspaces() schematics.WorkspacesClient {
	return c.workspaces
}

// Jobs implements schematics.Client.Jobs.
func (c *Client) Jobs() schematics.JobsClient {
	return c.jobs
}

// Agents implements schematics.Client.Agents.
func (c *Client) Agents() schematics.AgentsClient {
	return c.agents
}

// Inventories implements schematics.Client.Inventories.
func (c *Client) Inventories() schematics.InventoriesClient {
	return c.inventories
}

// Blueprints implements schematics.Client.Blueprints.
func (c *Client) Blueprints() schematics.BlueprintsClient {
	return c.blueprints
}
