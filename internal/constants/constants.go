package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and token cache files.
	ConfigFilePerm = 0600
)

// Endpoints.
const (
	// DefaultRegion is used when neither an endpoint nor a region is configured.
	DefaultRegion = "us-south"

	// RegionalEndpointFormat builds a regional service URL from a region name.
	RegionalEndpointFormat = "https://%s.schematics.cloud.ibm.com"

	// DefaultIAMTokenURL is the default token endpoint.
	DefaultIAMTokenURL = "https://iam.cloud.ibm.com/identity/token"

	// IAMAPIKeyGrantType is the grant used to exchange an api key.
	IAMAPIKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

	// IAMClientID is the client id sent with basic auth when none is configured
	// but a refresh token grant is used.
	IAMClientID = "bx"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default per-call timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// TokenRequestTimeout bounds a single token endpoint exchange.
	TokenRequestTimeout = 30 * time.Second
)

// Retry limits.
const (
	// DefaultMaxAttempts is the default total number of attempts for one call.
	DefaultMaxAttempts = 3

	// DefaultRetryWaitMin is the base of the exponential backoff.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax caps the computed backoff.
	DefaultRetryWaitMax = 10 * time.Second

	// MaxRetryAfter caps a server supplied Retry-After value.
	MaxRetryAfter = 2 * time.Minute

	// ExponentialBackoffBase is the base for exponential backoff.
	ExponentialBackoffBase = 2
)

// Token handling.
const (
	// TokenRefreshMargin is the default safety margin before token expiry.
	TokenRefreshMargin = 60 * time.Second

	// DefaultTokenLifetime is assumed when a token response omits expires_in.
	DefaultTokenLifetime = time.Hour
)

// Request and response headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRetryAfter    = "Retry-After"

	ContentTypeJSON = "application/json"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "schematics-client-go/1.0.0"
)

// Multipart.
const (
	// DefaultFileField is the form field used for a file part without a name.
	DefaultFileField = "file"

	// DefaultFileContentType is used for a file part without a content type.
	DefaultFileContentType = "application/octet-stream"
)

// Configuration.
const (
	// ConfigDirName is the directory under the user's home holding configuration.
	ConfigDirName = ".schematics"

	// ConfigFileName is the configuration file name without extension.
	ConfigFileName = "config"

	// ConfigFileType is the configuration file format.
	ConfigFileType = "yml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "SCHEMATICS"

	// DotEnvFile is loaded into the environment before configuration is read.
	DotEnvFile = ".env"
)
