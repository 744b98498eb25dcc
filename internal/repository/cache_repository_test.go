package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "workforce", nil)
	ctx := context.Background()

	var dest []string
	assert.True(t, errors.Is(repo.Get(ctx, "availability:org-1:staff-1:1-2", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "k", []string{"v"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "availability:*"))
	assert.Error(t, repo.PingContext(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryPrefixesKeys(t *testing.T) {
	assert.Equal(t, "workforce:availability:x", NewCacheRepository(nil, "workforce", nil).key("availability:x"))
	assert.Equal(t, "workforce:availability:x", NewCacheRepository(nil, "workforce:", nil).key("availability:x"))
	assert.Equal(t, "availability:x", NewCacheRepository(nil, "", nil).key("availability:x"))
}

func TestCacheRepositoryUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := NewCacheRepository(client, "workforce", nil)

	var dest []string
	err := repo.Get(context.Background(), "k", &dest)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Error(t, repo.PingContext(context.Background()))
}
