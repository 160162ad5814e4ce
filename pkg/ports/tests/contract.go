package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSettingsStoreContract runs the behavior every SettingsStore must share.
func RunSettingsStoreContract(t *testing.T, store ports.SettingsStore) {
	ctx := context.Background()
	key := "contract/" + time.Now().Format("20060102150405.000000")

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "/home/user/maps"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "/home/user/maps", got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "first"))
		require.NoError(t, store.Set(ctx, key, "second"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Get Unknown", func(t *testing.T) {
		_, err := store.Get(ctx, key+"-missing")
		assert.ErrorIs(t, err, domain.ErrSettingNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "value"))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSettingNotFound)

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("Keys", func(t *testing.T) {
		k1, k2 := key+"-1", key+"-2"
		require.NoError(t, store.Set(ctx, k1, "a"))
		require.NoError(t, store.Set(ctx, k2, "b"))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})

	t.Run("Empty Value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, ""))
		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
