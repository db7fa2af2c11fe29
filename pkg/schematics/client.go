package schematics

import (
	"context"
	"encoding/json"
	"time"
)

// WorkspacesClient manages workspaces.
type WorkspacesClient interface {
	List(ctx context.Context, params *ListParams) (*Result[ListResponse[Workspace]], error)
	ListCursor(params *ListParams) *Cursor[Workspace]
	Get(ctx context.Context, id string) (*Result[Workspace], error)
	Create(ctx context.Context, request *WorkspaceCreateRequest) (*Result[Workspace], error)
	Update(ctx context.Context, id string, request *WorkspaceUpdateRequest) (*Result[Workspace], error)
	Delete(ctx context.Context, id string) (*Result[json.RawMessage], error)
	UploadTemplate(ctx context.Context, id, templateID string, archive File) (*Result[TemplateUpload], error)
	GetOutputs(ctx context.Context, id string) (*Result[[]WorkspaceOutput], error)
}

// JobsClient manages jobs.
type JobsClient interface {
	List(ctx context.Context, params *ListParams) (*Result[ListResponse[Job]], error)
	ListCursor(params *ListParams) *Cursor[Job]
	Get(ctx context.Context, id string) (*Result[Job], error)
	Create(ctx context.Context, request *JobCreateRequest) (*Result[Job], error)
	Delete(ctx context.Context, id string) (*Result[json.RawMessage], error)
	ListLogs(ctx context.Context, id string) (*Result[JobLogs], error)
}

// AgentsClient manages agents.
type AgentsClient interface {
	List(ctx context.Context, params *ListParams) (*Result[ListResponse[Agent]], error)
	ListCursor(params *ListParams) *Cursor[Agent]
	Get(ctx context.Context, id string) (*Result[Agent], error)
	Create(ctx context.Context, request *AgentRequest) (*Result[Agent], error)
	Update(ctx context.Context, id string, request *AgentRequest) (*Result[Agent], error)
	Delete(ctx context.Context, id string) (*Result[json.RawMessage], error)
	Deploy(ctx context.Context, id string) (*Result[AgentDeployment], error)
}

// InventoriesClient manages inventories.
type InventoriesClient interface {
	List(ctx context.Context, params *ListParams) (*Result[ListResponse[Inventory]], error)
	ListCursor(params *ListParams) *Cursor[Inventory]
	Get(ctx context.Context, id string) (*Result[Inventory], error)
	Create(ctx context.Context, request *InventoryRequest) (*Result[Inventory], error)
	Update(ctx context.Context, id string, request *InventoryRequest) (*Result[Inventory], error)
	Delete(ctx context.Context, id string) (*Result[json.RawMessage], error)
}

// BlueprintsClient manages blueprints.
type BlueprintsClient interface {
	List(ctx context.Context, params *ListParams) (*Result[ListResponse[Blueprint]], error)
	ListCursor(params *ListParams) *Cursor[Blueprint]
	Get(ctx context.Context, id string) (*Result[Blueprint], error)
	Create(ctx context.Context, request *BlueprintRequest) (*Result[Blueprint], error)
	Update(ctx context.Context, id string, request *BlueprintRequest) (*Result[Blueprint], error)
	Delete(ctx context.Context, id string) (*Result[json.RawMessage], error)
	Install(ctx context.Context, id string) (*Result[Job], error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Workspaces() WorkspacesClient
	Jobs() JobsClient
	Agents() AgentsClient
	Inventories() InventoriesClient
	Blueprints() BlueprintsClient
}

type Client interface {
	ResourceClients

	// Invoke calls any operation of the client's catalog by name, including
	// operations loaded from an OpenAPI document.
	Invoke(ctx context.Context, operation string, params *Params) (*Result[json.RawMessage], error)
	// GetToken returns the current access token, refreshing it if needed.
	GetToken(ctx context.Context) (string, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Authentication precedence
//
//  1. AccessToken: used directly as a static Bearer token.
//  2. APIKey: exchanged at the IAM token endpoint using the api-key grant;
//     the token is refreshed before it comes within TokenRefreshMargin of
//     expiry.
//  3. ClientID/ClientSecret: OAuth2 client_credentials grant against TokenURL.
//  4. No credentials: requests are sent without authentication.
//
// # Timeouts and retries
//
// HTTPTimeout bounds every call; Params.Timeout overrides it per call.
// Transport failures and 429/503 responses are retried up to MaxAttempts
// attempts in total. A Retry-After header wins over the computed backoff.
type Config struct {
	// APIEndpoint is the service base URL. When empty it is derived from Region.
	APIEndpoint string
	// Region selects a regional endpoint (e.g. "us-south", "eu-de").
	Region string

	// APIKey is exchanged for a bearer token at TokenURL.
	APIKey string
	// ClientID and ClientSecret select the OAuth2 client_credentials grant,
	// or authenticate the api-key grant when both are set together with APIKey.
	ClientID     string
	ClientSecret string
	// RefreshToken seeds the manager so the first refresh can use it.
	RefreshToken string
	// AccessToken is used directly as a Bearer token.
	AccessToken string
	// TokenURL is the token endpoint; the IAM default is used when empty.
	TokenURL string
	// TokenRefreshMargin is the safety margin before expiry inside which a
	// token is no longer used.
	TokenRefreshMargin time.Duration
	// TokenCacheFile, when set, persists refreshed tokens as YAML.
	TokenCacheFile string

	// HTTPTimeout is the default per-call timeout.
	HTTPTimeout time.Duration
	// MaxAttempts is the number of attempts for one call, counting the
	// first. 3 allows two retries.
	MaxAttempts int
	// RetryWaitMin and RetryWaitMax bound the computed backoff.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit caps requests per second sent by this client; 0 disables it.
	RateLimit float64

	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger receives structured log events from the transport.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Headers are added to every request.
	Headers map[string]string
	// Metrics, when set, records per-operation request metrics.
	Metrics *MetricsCollector
	// RequestInterceptors and ResponseInterceptors run once per call around
	// the retrying transport, after the built-in ones.
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor

	// OpenAPIDocument is a path to an OpenAPI document whose operations are
	// merged into the built-in catalog and become callable through Invoke.
	OpenAPIDocument string
}
