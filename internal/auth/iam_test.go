package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeToken(w http.ResponseWriter, accessToken string, expiresIn int) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": "refresh-" + accessToken,
		"token_type":    "Bearer",
		"expires_in":    expiresIn,
	})
}

//nolint:funlen
func TestIAMTokenManager_GetToken(t *testing.T) {
	t.Parallel()

	t.Run("exchanges api key", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/identity/token", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			err := r.ParseForm()
			assert.NoError(t, err)
			assert.Equal(t, url.Values{
				"grant_type": {"urn:ibm:params:oauth:grant-type:apikey"},
				"apikey":     {"my-api-key"},
			}, r.PostForm)

			_, _, hasBasic := r.BasicAuth()
			assert.False(t, hasBasic)

			writeToken(w, "iam-token", 3600)
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{
			TokenURL: server.URL + "/identity/token",
			APIKey:   "my-api-key",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "iam-token", token)

		stored := manager.Token()
		assert.Equal(t, "refresh-iam-token", stored.RefreshToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, 5*time.Second)
	})

	t.Run("reuses cached token", func(t *testing.T) {
		t.Parallel()

		var hits int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			writeToken(w, "cached", 3600)
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

		for range 3 {
			token, err := manager.GetToken(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "cached", token)
		}

		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("uses absolute expiration when reported", func(t *testing.T) {
		t.Parallel()

		expiration := time.Now().Add(2 * time.Hour).Unix()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "abs",
				"expires_in":   60,
				"expiration":   expiration,
			})
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

		_, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, expiration, manager.Token().ExpiresAt.Unix())
	})

	t.Run("uses refresh token grant without api key", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := r.ParseForm()
			assert.NoError(t, err)
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "seed-refresh", r.Form.Get("refresh_token"))

			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "bx", user)
			assert.Equal(t, "bx", pass)

			writeToken(w, "refreshed", 3600)
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, RefreshToken: "seed-refresh"})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "refreshed", token)
	})

	t.Run("reads form encoded expiration", func(t *testing.T) {
		t.Parallel()

		expiration := time.Now().Add(3 * time.Hour).Unix()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
			_, _ = w.Write([]byte("access_token=form-token&token_type=Bearer&expiration=" + strconv.FormatInt(expiration, 10)))
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "form-token", token)
		assert.Equal(t, expiration, manager.Token().ExpiresAt.Unix())
	})

	t.Run("keeps refresh token when response omits it", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"no-refresh","expires_in":3600}`))
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, RefreshToken: "seed-refresh"})

		_, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "seed-refresh", manager.Token().RefreshToken)
	})

	t.Run("sends client credentials as basic auth", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)

			writeToken(w, "with-client", 3600)
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{
			TokenURL:     server.URL,
			APIKey:       "key",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "with-client", token)
	})
}

func TestIAMTokenManager_RefreshesInsideSafetyMargin(t *testing.T) {
	t.Parallel()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeToken(w, "fresh-token", 3600)
	}))
	defer server.Close()

	manager := NewIAMTokenManager(&IAMConfig{
		TokenURL:      server.URL,
		APIKey:        "key",
		RefreshMargin: 120 * time.Second,
	})

	// Still valid for a minute, but inside the two minute margin.
	manager.SetToken("about-to-expire", time.Now().Add(60*time.Second))

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestIAMTokenManager_CoalescesConcurrentRefreshes(t *testing.T) {
	t.Parallel()

	var hits int32

	started := make(chan struct{})
	release := make(chan struct{})

	var once sync.Once

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		once.Do(func() { close(started) })
		<-release
		writeToken(w, "shared-token", 3600)
	}))
	defer server.Close()

	manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

	const callers = 8

	tokens := make([]string, callers)
	errs := make([]error, callers)

	var waitGroup sync.WaitGroup

	for index := range callers {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			tokens[index], errs[index] = manager.GetToken(context.Background())
		}()
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	waitGroup.Wait()

	for index := range callers {
		require.NoError(t, errs[index])
		assert.Equal(t, "shared-token", tokens[index])
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "concurrent callers must share one refresh")
}

func TestIAMTokenManager_FailureDeliveredToAllWaiters(t *testing.T) {
	t.Parallel()

	var hits int32

	started := make(chan struct{})
	release := make(chan struct{})

	var once sync.Once

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		once.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

	errs := make([]error, 2)

	var waitGroup sync.WaitGroup

	for index := range errs {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			_, errs[index] = manager.GetToken(context.Background())
		}()
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	waitGroup.Wait()

	for _, err := range errs {
		var authErr *schematics.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusInternalServerError, authErr.StatusCode)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

//nolint:funlen
func TestIAMTokenManager_Errors(t *testing.T) {
	t.Parallel()

	t.Run("rejected api key", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"errorCode":    "BXNIM0415E",
				"errorMessage": "Provided API key could not be found.",
			})
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "bad"})

		token, err := manager.GetToken(context.Background())
		assert.Empty(t, token)

		var authErr *schematics.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
		assert.Equal(t, "BXNIM0415E", authErr.Code)
		assert.Equal(t, "Provided API key could not be found.", authErr.Message)
		assert.True(t, schematics.IsUnauthorized(err))
	})

	t.Run("oauth style error body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_client",
				"error_description": "Client authentication failed",
			})
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

		_, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_client")
		assert.Contains(t, err.Error(), "Client authentication failed")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		tokenURL := server.URL
		server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: tokenURL, APIKey: "key"})

		_, err := manager.GetToken(context.Background())

		var authErr *schematics.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Zero(t, authErr.StatusCode)
		require.Error(t, authErr.Cause)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

		_, err := manager.GetToken(context.Background())

		var authErr *schematics.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "malformed token response", authErr.Message)
	})

	t.Run("missing access token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
		}))
		defer server.Close()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

		_, err := manager.GetToken(context.Background())

		var authErr *schematics.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "malformed token response", authErr.Message)
		assert.Contains(t, err.Error(), "access_token")
	})

	t.Run("no credentials", func(t *testing.T) {
		t.Parallel()

		manager := NewIAMTokenManager(&IAMConfig{TokenURL: "http://127.0.0.1:1/token"})

		_, err := manager.GetToken(context.Background())
		require.ErrorIs(t, err, schematics.ErrMissingAPIKey)
	})
}

func TestIAMTokenManager_WaiterCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeToken(w, "late-token", 3600)
	}))
	defer server.Close()

	manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := manager.GetToken(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late-token", token)
}

func TestIAMTokenManager_RefreshAndSetToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, "forced", 3600)
	}))
	defer server.Close()

	manager := NewIAMTokenManager(&IAMConfig{TokenURL: server.URL, APIKey: "key"})

	expiresAt := time.Now().Add(time.Hour)
	manager.SetToken("manual-token", expiresAt)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual-token", token)
	assert.Equal(t, "bearer", manager.Token().TokenType)
	assert.Equal(t, expiresAt.Unix(), manager.Token().ExpiresAt.Unix())

	require.NoError(t, manager.RefreshToken(context.Background()))

	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "forced", token)
}
