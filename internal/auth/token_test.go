package auth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_ValidFor(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name   string
		token  *auth.Token
		margin time.Duration
		want   bool
	}{
		{name: "no token", token: nil, margin: time.Minute},
		{name: "empty access token", token: &auth.Token{RefreshToken: "rt"}, margin: time.Minute},
		{name: "static token never expires", token: &auth.Token{AccessToken: "static"}, margin: time.Hour, want: true},
		{
			name:   "IAM token with an hour left",
			token:  &auth.Token{AccessToken: "iam", ExpiresAt: now.Add(time.Hour)},
			margin: time.Minute,
			want:   true,
		},
		{
			name:   "inside the safety margin",
			token:  &auth.Token{AccessToken: "iam", ExpiresAt: now.Add(45 * time.Second)},
			margin: time.Minute,
		},
		{
			name:   "outside a shorter margin",
			token:  &auth.Token{AccessToken: "iam", ExpiresAt: now.Add(45 * time.Second)},
			margin: 30 * time.Second,
			want:   true,
		},
		{
			name:   "already expired",
			token:  &auth.Token{AccessToken: "iam", ExpiresAt: now.Add(-time.Second)},
			margin: 0,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.token.ValidFor(testCase.margin))
		})
	}
}

func TestToken_ValidUsesDefaultMargin(t *testing.T) {
	t.Parallel()

	assert.False(t, (&auth.Token{AccessToken: "iam", ExpiresAt: time.Now().Add(59 * time.Second)}).Valid())
	assert.True(t, (&auth.Token{AccessToken: "iam", ExpiresAt: time.Now().Add(2 * time.Minute)}).Valid())
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	t.Run("starts empty and clears", func(t *testing.T) {
		t.Parallel()

		store := auth.NewTokenStore()
		assert.Nil(t, store.Get())

		store.Set(&auth.Token{AccessToken: "iam", RefreshToken: "rt"})
		require.NotNil(t, store.Get())

		store.Clear()
		assert.Nil(t, store.Get())
	})

	t.Run("hands out copies", func(t *testing.T) {
		t.Parallel()

		expiresAt := time.Now().Add(time.Hour)
		token := &auth.Token{AccessToken: "original", RefreshToken: "rt", ExpiresAt: expiresAt}

		store := auth.NewTokenStore()
		store.Set(token)
		token.AccessToken = "mutated"

		retrieved := store.Get()
		retrieved.RefreshToken = "changed"

		current := store.Get()
		assert.Equal(t, "original", current.AccessToken)
		assert.Equal(t, "rt", current.RefreshToken)
		assert.Equal(t, expiresAt, current.ExpiresAt)
	})

	t.Run("readers never see a torn token", func(t *testing.T) {
		t.Parallel()

		store := auth.NewTokenStore()
		store.Set(&auth.Token{AccessToken: "a", RefreshToken: "refresh-a"})

		var waitGroup sync.WaitGroup

		for _, name := range []string{"a", "b"} {
			waitGroup.Add(1)

			go func() {
				defer waitGroup.Done()

				for range 200 {
					store.Set(&auth.Token{AccessToken: name, RefreshToken: "refresh-" + name})
				}
			}()
		}

		for range 2 {
			waitGroup.Add(1)

			go func() {
				defer waitGroup.Done()

				for range 200 {
					token := store.Get()
					assert.Equal(t, "refresh-"+token.AccessToken, token.RefreshToken)
				}
			}()
		}

		waitGroup.Wait()
	})
}
