package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runKeyValueContract exercises the behaviour every KeyValue backend must share.
func runKeyValueContract(t *testing.T, kv KeyValue) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetGet", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "afterlife-orders", []byte(`[]`)))

		got, err := kv.Get(ctx, "afterlife-orders")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "overwrite", []byte("first")))
		require.NoError(t, kv.Set(ctx, "overwrite", []byte("second")))

		got, err := kv.Get(ctx, "overwrite")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		_, err := kv.Get(ctx, "non_existent_key")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "delete_test", []byte("value")))
		require.NoError(t, kv.Delete(ctx, "delete_test"))

		_, err := kv.Get(ctx, "delete_test")
		assert.ErrorIs(t, err, ErrKeyNotFound)

		assert.NoError(t, kv.Delete(ctx, "delete_test"))
	})

	t.Run("ReturnedValueIsACopy", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "copy", []byte("abc")))

		got, err := kv.Get(ctx, "copy")
		require.NoError(t, err)
		got[0] = 'z'

		again, err := kv.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, kv.Ping(ctx))
	})
}
