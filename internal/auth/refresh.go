package auth

import (
	"context"
	"time"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "token"

// fetchFunc obtains a new token. current is the token being replaced and may
// be nil.
type fetchFunc func(ctx context.Context, current *Token) (*Token, error)

// refresher caches a token and coalesces concurrent refreshes: at most one
// fetch is in flight and every caller waiting on it receives its outcome.
type refresher struct {
	store  *TokenStore
	margin time.Duration
	fetch  fetchFunc
	group  singleflight.Group
}

func newRefresher(margin time.Duration, fetch fetchFunc) *refresher {
	if margin <= 0 {
		margin = constants.TokenRefreshMargin
	}

	return &refresher{
		store:  NewTokenStore(),
		margin: margin,
		fetch:  fetch,
	}
}

// accessToken returns a token valid beyond the margin.
func (r *refresher) accessToken(ctx context.Context) (string, error) {
	token := r.store.Get()
	if token.ValidFor(r.margin) {
		return token.AccessToken, nil
	}

	token, err := r.refresh(ctx, false)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// refresh fetches a new token. Without force, a token refreshed by a
// concurrent caller in the meantime is reused. Forced and unforced callers
// share one flight: a forced caller joins a refresh already in progress.
func (r *refresher) refresh(ctx context.Context, force bool) (*Token, error) {
	resultCh := r.group.DoChan(refreshKey, func() (interface{}, error) {
		current := r.store.Get()
		if !force && current.ValidFor(r.margin) {
			return current, nil
		}

		// The fetch outlives any single waiter's cancellation.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.TokenRequestTimeout)
		defer cancel()

		token, err := r.fetch(fetchCtx, current)
		if err != nil {
			return nil, err
		}

		if token.RefreshToken == "" && current != nil {
			token.RefreshToken = current.RefreshToken
		}

		r.store.Set(token)

		return token, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultCh:
		if result.Err != nil {
			return nil, result.Err
		}

		token, _ := result.Val.(*Token)

		return token, nil
	}
}

// set installs a bearer token with the given expiry, keeping any refresh
// token already held.
func (r *refresher) set(accessToken string, expiresAt time.Time) {
	token := &Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}

	if current := r.store.Get(); current != nil {
		token.RefreshToken = current.RefreshToken
	}

	r.store.Set(token)
}
