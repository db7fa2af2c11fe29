// Package config loads client configuration from a YAML file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys. Each can be set in the file or through an environment
// variable with the SCHEMATICS_ prefix, e.g. SCHEMATICS_API_KEY.
const (
	KeyAPIEndpoint        = "api_endpoint"
	KeyRegion             = "region"
	KeyAPIKey             = "api_key"
	KeyClientID           = "client_id"
	KeyClientSecret       = "client_secret"
	KeyRefreshToken       = "refresh_token"
	KeyAccessToken        = "access_token"
	KeyTokenURL           = "token_url"
	KeyTokenRefreshMargin = "token_refresh_margin"
	KeyTokenCacheFile     = "token_cache_file"
	KeyHTTPTimeout        = "http_timeout"
	KeyMaxAttempts        = "max_attempts"
	KeyRetryWaitMin       = "retry_wait_min"
	KeyRetryWaitMax       = "retry_wait_max"
	KeyRateLimit          = "rate_limit"
	KeyDebug              = "debug"
	KeyUserAgent          = "user_agent"
	KeyHeaders            = "headers"
	KeyOpenAPIDocument    = "openapi_document"
)

// Options control where configuration is read from.
type Options struct {
	// ConfigFile is an explicit configuration file. When empty,
	// ~/.schematics/config.yml is used if it exists.
	ConfigFile string
	// ConfigDir overrides the directory searched for config.yml.
	ConfigDir string
	// EnvFile is loaded into the environment first; ".env" when empty. A
	// missing file is ignored. Variables already set are not overridden.
	EnvFile string
}

// DefaultConfigDir returns ~/.schematics.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// Load reads the configuration. Environment variables override file values.
func Load(opts Options) (*schematics.Config, error) {
	err := loadEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		info, statErr := os.Stat(opts.ConfigFile)
		if statErr != nil {
			return nil, fmt.Errorf("%w: %s", constants.ErrConfigFileNotFound, opts.ConfigFile)
		}

		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, opts.ConfigFile)
		}

		v.SetConfigFile(opts.ConfigFile)
	} else {
		configDir := opts.ConfigDir
		if configDir == "" {
			configDir, err = DefaultConfigDir()
			if err != nil {
				return nil, err
			}
		}

		v.AddConfigPath(configDir)
		v.SetConfigType(constants.ConfigFileType)
		v.SetConfigName(constants.ConfigFileName)
	}

	err = v.ReadInConfig()
	if err != nil {
		notFound := viper.ConfigFileNotFoundError{}
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading configuration: %w", err)
		}
	}

	return fromViper(v), nil
}

func loadEnvFile(path string) error {
	if path == "" {
		path = constants.DotEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // a missing .env file is not an error
	}

	err := godotenv.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRegion, constants.DefaultRegion)
	v.SetDefault(KeyTokenURL, constants.DefaultIAMTokenURL)
	v.SetDefault(KeyTokenRefreshMargin, constants.TokenRefreshMargin)
	v.SetDefault(KeyHTTPTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeyMaxAttempts, constants.DefaultMaxAttempts)
	v.SetDefault(KeyRetryWaitMin, constants.DefaultRetryWaitMin)
	v.SetDefault(KeyRetryWaitMax, constants.DefaultRetryWaitMax)
	v.SetDefault(KeyUserAgent, constants.DefaultUserAgent)
}

func fromViper(v *viper.Viper) *schematics.Config {
	config := &schematics.Config{
		APIEndpoint:        v.GetString(KeyAPIEndpoint),
		Region:             v.GetString(KeyRegion),
		APIKey:             v.GetString(KeyAPIKey),
		ClientID:           v.GetString(KeyClientID),
		ClientSecret:       v.GetString(KeyClientSecret),
		RefreshToken:       v.GetString(KeyRefreshToken),
		AccessToken:        v.GetString(KeyAccessToken),
		TokenURL:           v.GetString(KeyTokenURL),
		TokenRefreshMargin: v.GetDuration(KeyTokenRefreshMargin),
		TokenCacheFile:     v.GetString(KeyTokenCacheFile),
		HTTPTimeout:        v.GetDuration(KeyHTTPTimeout),
		MaxAttempts:        v.GetInt(KeyMaxAttempts),
		RetryWaitMin:       v.GetDuration(KeyRetryWaitMin),
		RetryWaitMax:       v.GetDuration(KeyRetryWaitMax),
		RateLimit:          v.GetFloat64(KeyRateLimit),
		Debug:              v.GetBool(KeyDebug),
		UserAgent:          v.GetString(KeyUserAgent),
		OpenAPIDocument:    v.GetString(KeyOpenAPIDocument),
	}

	if headers := v.GetStringMapString(KeyHeaders); len(headers) > 0 {
		config.Headers = headers
	}

	return config
}
