package schematicsclient

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fivetwenty-io/schematics-client/internal/client"
	"github.com/fivetwenty-io/schematics-client/internal/config"
	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

// Regions lists the regions with a public service endpoint.
var Regions = []string{"us-south", "us-east", "eu-gb", "eu-de", "ca-tor"}

// New creates a new client. When no endpoint is configured it is derived from
// the region.
func New(ctx context.Context, config *schematics.Config) (schematics.Client, error) {
	if config == nil {
		return nil, schematics.ErrConfigRequired
	}

	endpoint := config.APIEndpoint
	if endpoint == "" {
		regional, err := EndpointForRegion(config.Region)
		if err != nil {
			return nil, err
		}

		endpoint = regional
	}

	// Normalize API endpoint
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	config.APIEndpoint = endpoint

	// Use the internal client implementation
	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// EndpointForRegion returns the public service endpoint of a region. An empty
// region selects the default one.
func EndpointForRegion(region string) (string, error) {
	if region == "" {
		region = constants.DefaultRegion
	}

	if !slices.Contains(Regions, region) {
		return "", fmt.Errorf("%w: %s", schematics.ErrUnknownRegion, region)
	}

	return fmt.Sprintf(constants.RegionalEndpointFormat, region), nil
}

// NewFromFile creates a client from a configuration file. Environment
// variables prefixed with SCHEMATICS_ override values from the file.
func NewFromFile(ctx context.Context, path string) (schematics.Client, error) {
	loaded, err := config.Load(config.Options{ConfigFile: path})
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return New(ctx, loaded)
}

// NewFromEnvironment creates a client from ~/.schematics/config.yml, a .env
// file in the working directory and SCHEMATICS_ environment variables.
func NewFromEnvironment(ctx context.Context) (schematics.Client, error) {
	loaded, err := config.Load(config.Options{})
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return New(ctx, loaded)
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, token string) (schematics.Client, error) {
	return New(ctx, &schematics.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithAPIKey creates a new client for a region that exchanges an api key
// for access tokens.
func NewWithAPIKey(ctx context.Context, region, apiKey string) (schematics.Client, error) {
	return New(ctx, &schematics.Config{
		Region: region,
		APIKey: apiKey,
	})
}

// NewWithClientCredentials creates a new client using OAuth2 client credentials.
func NewWithClientCredentials(ctx context.Context, endpoint, tokenURL, clientID, clientSecret string) (schematics.Client, error) {
	return New(ctx, &schematics.Config{
		APIEndpoint:  endpoint,
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
