package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/config"
	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), constants.ConfigFilePerm))
}

// unsetEnv clears a variable for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yml"), `
api_endpoint: https://private.eu-de.schematics.cloud.ibm.com
region: eu-de
api_key: file-key
http_timeout: 45s
max_attempts: 5
retry_wait_min: 250ms
rate_limit: 2.5
debug: true
headers:
  X-Team: platform
`)

	loaded, err := config.Load(config.Options{ConfigDir: dir, EnvFile: filepath.Join(dir, "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, "https://private.eu-de.schematics.cloud.ibm.com", loaded.APIEndpoint)
	assert.Equal(t, "eu-de", loaded.Region)
	assert.Equal(t, "file-key", loaded.APIKey)
	assert.Equal(t, 45*time.Second, loaded.HTTPTimeout)
	assert.Equal(t, 5, loaded.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, loaded.RetryWaitMin)
	assert.Equal(t, constants.DefaultRetryWaitMax, loaded.RetryWaitMax)
	assert.InDelta(t, 2.5, loaded.RateLimit, 0.0001)
	assert.True(t, loaded.Debug)
	assert.Equal(t, map[string]string{"x-team": "platform"}, loaded.Headers)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	loaded, err := config.Load(config.Options{ConfigDir: dir, EnvFile: filepath.Join(dir, "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultRegion, loaded.Region)
	assert.Equal(t, constants.DefaultIAMTokenURL, loaded.TokenURL)
	assert.Equal(t, constants.TokenRefreshMargin, loaded.TokenRefreshMargin)
	assert.Equal(t, constants.DefaultHTTPTimeout, loaded.HTTPTimeout)
	assert.Equal(t, constants.DefaultMaxAttempts, loaded.MaxAttempts)
	assert.Equal(t, constants.DefaultUserAgent, loaded.UserAgent)
	assert.Empty(t, loaded.APIKey)
	assert.Nil(t, loaded.Headers)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yml"), "region: eu-de\napi_key: file-key\n")

	t.Setenv("SCHEMATICS_REGION", "us-east")
	t.Setenv("SCHEMATICS_MAX_ATTEMPTS", "7")

	loaded, err := config.Load(config.Options{ConfigDir: dir, EnvFile: filepath.Join(dir, "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, "us-east", loaded.Region)
	assert.Equal(t, 7, loaded.MaxAttempts)
	assert.Equal(t, "file-key", loaded.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	unsetEnv(t, "SCHEMATICS_API_KEY")
	unsetEnv(t, "SCHEMATICS_TOKEN_CACHE_FILE")

	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	writeFile(t, envFile, "SCHEMATICS_API_KEY=dotenv-key\nSCHEMATICS_TOKEN_CACHE_FILE=/tmp/schematics-tokens.yml\n")

	loaded, err := config.Load(config.Options{ConfigDir: dir, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-key", loaded.APIKey)
	assert.Equal(t, "/tmp/schematics-tokens.yml", loaded.TokenCacheFile)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("SCHEMATICS_API_KEY", "env-key")

	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	writeFile(t, envFile, "SCHEMATICS_API_KEY=dotenv-key\n")

	loaded, err := config.Load(config.Options{ConfigDir: dir, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "env-key", loaded.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("explicit file missing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		_, err := config.Load(config.Options{
			ConfigFile: filepath.Join(dir, "nope.yml"),
			EnvFile:    filepath.Join(dir, "absent.env"),
		})
		require.ErrorIs(t, err, constants.ErrConfigFileNotFound)
	})

	t.Run("explicit file is a directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		_, err := config.Load(config.Options{ConfigFile: dir, EnvFile: filepath.Join(dir, "absent.env")})
		require.ErrorIs(t, err, constants.ErrNotRegularFile)
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "broken.yml")
		writeFile(t, path, "region: [unterminated\n")

		_, err := config.Load(config.Options{ConfigFile: path, EnvFile: filepath.Join(dir, "absent.env")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading configuration")
	})
}
