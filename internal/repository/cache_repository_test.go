package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/blood-donation-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, nil), srv
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	type payload struct {
		Total int `json:"total"`
	}
	var out payload
	assert.ErrorIs(t, repo.Get(ctx, "inventory:summary:all", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "inventory:summary:all", payload{Total: 42}, time.Minute))
	require.NoError(t, repo.Get(ctx, "inventory:summary:all", &out))
	assert.Equal(t, 42, out.Total)

	srv.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "inventory:summary:all", &out), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "inventory:summary:all", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "inventory:summary:hosp-1", 2, time.Minute))
	require.NoError(t, repo.Set(ctx, "reports:other", 3, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "inventory:summary:*"))
	assert.False(t, srv.Exists("inventory:summary:all"))
	assert.False(t, srv.Exists("inventory:summary:hosp-1"))
	assert.True(t, srv.Exists("reports:other"))
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryCorruptEntryIsMiss(t *testing.T) {
	repo, srv := newCacheRepo(t)
	require.NoError(t, srv.Set("inventory:summary:all", "{not json"))

	var out map[string]int
	assert.ErrorIs(t, repo.Get(context.Background(), "inventory:summary:all", &out), appErrors.ErrCacheMiss)
	assert.False(t, srv.Exists("inventory:summary:all"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()
	var out int
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Close())
}
