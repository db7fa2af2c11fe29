//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/fivetwenty-io/schematics-client/pkg/schematicsclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Region   string
	Endpoint string
	APIKey   string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Region:   os.Getenv("SCHEMATICS_REGION"),
		Endpoint: os.Getenv("SCHEMATICS_API_ENDPOINT"),
		APIKey:   os.Getenv("SCHEMATICS_API_KEY"),
		Verbose:  os.Getenv("SCHEMATICS_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("SCHEMATICS_API_KEY not set, skipping integration test")
	}
}

// NewClient creates a client for the configured account.
func (config *TestConfig) NewClient(t *testing.T) schematics.Client {
	t.Helper()

	cfg := &schematics.Config{
		APIEndpoint: config.Endpoint,
		Region:      config.Region,
		APIKey:      config.APIKey,
		HTTPTimeout: time.Minute,
	}

	if config.Verbose {
		cfg.Debug = true
		cfg.Logger = &testLogger{t: t}
	}

	client, err := schematicsclient.New(context.Background(), cfg)
	require.NoError(t, err)

	return client
}

// GenerateTestName generates a unique test name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}

		time.Sleep(5 * time.Second)
	}

	t.Fatalf("Timeout waiting for condition: %s", message)
}

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.t.Log("DEBUG", msg, fields) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.t.Log("INFO", msg, fields) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.t.Log("WARN", msg, fields) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.t.Log("ERROR", msg, fields) }
