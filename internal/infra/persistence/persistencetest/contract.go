// Package persistencetest holds the behaviour every storage backend must share.
package persistencetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RunStoreContract exercises get/set/delete semantics against s. Keys are
// prefixed with t.Name() so shared backends do not collide.
func RunStoreContract(t *testing.T, s store) {
	t.Helper()
	ctx := context.Background()
	key := func(k string) string { return t.Name() + "/" + k }

	t.Run("missing key is not found", func(t *testing.T) {
		v, found, err := s.Get(ctx, key("missing"))
		require.NoError(t, err)
		require.False(t, found)
		require.Nil(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, key("cart"), []byte(`[{"quantity":1}]`)))
		v, found, err := s.Get(ctx, key("cart"))
		require.NoError(t, err)
		require.True(t, found)
		require.JSONEq(t, `[{"quantity":1}]`, string(v))
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, key("token"), []byte("first")))
		require.NoError(t, s.Set(ctx, key("token"), []byte("second")))
		v, found, err := s.Get(ctx, key("token"))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "second", string(v))
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, key("user"), []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, key("user")))
		require.NoError(t, s.Delete(ctx, key("user")))
		_, found, err := s.Get(ctx, key("user"))
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, key("a"), []byte("1")))
		require.NoError(t, s.Set(ctx, key("b"), []byte("2")))
		require.NoError(t, s.Delete(ctx, key("a")))
		v, found, err := s.Get(ctx, key("b"))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "2", string(v))
	})
}
