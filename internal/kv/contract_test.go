package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the Storage contract shared by every backend.
func runContract(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		v, found, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "currentUser", "alice"))
		v, found, err := s.Get(ctx, "currentUser")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "alice", v)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "users", `{"old":{}}`))
		require.NoError(t, s.Set(ctx, "users", `{"new":{}}`))
		v, _, err := s.Get(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, `{"new":{}}`, v)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "gone", "x"))
		require.NoError(t, s.Delete(ctx, "gone"))
		_, found, err := s.Get(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, found)
		require.NoError(t, s.Delete(ctx, "gone"))
	})

	t.Run("atomic unit commits", func(t *testing.T) {
		err := Atomically(ctx, s, func(ctx context.Context, tx Storage) error {
			if err := tx.Set(ctx, "users", "{}"); err != nil {
				return err
			}
			return tx.Set(ctx, "users.rev", "r2")
		})
		require.NoError(t, err)
		v, found, err := s.Get(ctx, "users.rev")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "r2", v)
	})

	t.Run("compare and set", func(t *testing.T) {
		ok, err := s.CompareAndSet(ctx, "cas", "", "v1")
		require.NoError(t, err)
		assert.True(t, ok, "empty old matches an absent key")

		ok, err = s.CompareAndSet(ctx, "cas", "", "v2")
		require.NoError(t, err)
		assert.False(t, ok, "empty old must not match an existing value")

		ok, err = s.CompareAndSet(ctx, "cas", "stale", "v2")
		require.NoError(t, err)
		assert.False(t, ok)

		v, _, err := s.Get(ctx, "cas")
		require.NoError(t, err)
		assert.Equal(t, "v1", v)

		ok, err = s.CompareAndSet(ctx, "cas", "v1", "v2")
		require.NoError(t, err)
		assert.True(t, ok)

		v, _, err = s.Get(ctx, "cas")
		require.NoError(t, err)
		assert.Equal(t, "v2", v)
	})
}
