package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/heimer/internal/adapters/redis"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Settings, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestSettings_Contract(t *testing.T) {
	store, _ := newStore(t)
	tests.RunSettingsStoreContract(t, store)
}

func TestSettings_PrefixAndTTL(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "Application/recentPath", "/maps"))
	assert.True(t, mr.Exists("test:settings"))
	assert.Equal(t, time.Minute, mr.TTL("test:settings"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "Application/recentPath")
	assert.ErrorIs(t, err, domain.ErrSettingNotFound)
}

func TestNewFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := redis.NewFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	assert.Equal(t, "v", mr.HGet(redis.DefaultPrefix+"settings", "k"))

	_, err = redis.NewFromURL("://bad")
	assert.Error(t, err)
}
