package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

func TestPurgeExpiredTokensRetentionWindow(t *testing.T) {
	assert.Equal(t, 48*time.Hour, repository.TokenCacheRetention)

	repos := newFakeRepos()
	ctx := context.Background()

	require.NoError(t, repos.TokenCache.Upsert(ctx, &domain.CachedToken{
		Service:           "stale-provider",
		AccessToken:       "tok-stale",
		AccessTokenExpiry: time.Now().Add(-72 * time.Hour),
	}))
	require.NoError(t, repos.TokenCache.Upsert(ctx, &domain.CachedToken{
		Service:           "fresh-provider",
		AccessToken:       "tok-fresh",
		AccessTokenExpiry: time.Now().Add(-time.Hour),
	}))

	n, err := repos.TokenCache.PurgeExpired(ctx, repository.TokenCacheRetention)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repos.TokenCache.Get(ctx, "stale-provider")
	assert.IsType(t, &errors.ErrNotFound{}, err)

	// Expired less than the retention window ago, still available for refresh.
	_, err = repos.TokenCache.Get(ctx, "fresh-provider")
	assert.NoError(t, err)
}
