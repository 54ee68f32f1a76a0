// Package testkit holds the conformance suite every storage.Store backend runs.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"xdao.co/datadao/storage"
)

// NewStore constructs a fresh, empty Store for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.Store

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte(`{"name":"sensor.csv","rows":128}`)
		key := storage.StoreKey("blob-1")

		require.NoError(t, s.Set(ctx, key, want, 0))
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.True(t, s.Has(ctx, key))
	})

	t.Run("MissingKey", func(t *testing.T) {
		s := newStore(t)
		key := storage.StoreKey("missing")
		require.False(t, s.Has(ctx, key))
		_, err := s.Get(ctx, key)
		require.True(t, storage.IsNotFound(err), "got err=%v want ErrNotFound", err)
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		s := newStore(t)
		key := storage.StoreKey("same")
		require.NoError(t, s.Set(ctx, key, []byte("first"), 0))
		require.NoError(t, s.Set(ctx, key, []byte("second"), 0))
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, []byte("second"), got)
	})

	t.Run("EmptyValue", func(t *testing.T) {
		s := newStore(t)
		key := storage.StoreKey("empty")
		require.NoError(t, s.Set(ctx, key, []byte{}, 0))
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("CallerOwnsReturnedBytes", func(t *testing.T) {
		s := newStore(t)
		key := storage.StoreKey("owned")
		in := []byte("abc")
		require.NoError(t, s.Set(ctx, key, in, 0))
		in[0] = 'x'

		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), got)
		got[1] = 'y'

		again, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), again)
	})

	t.Run("Expiry", func(t *testing.T) {
		s := newStore(t)
		key := storage.StoreKey("short-lived")
		require.NoError(t, s.Set(ctx, key, []byte("soon gone"), 50*time.Millisecond))
		require.Eventually(t, func() bool {
			_, err := s.Get(ctx, key)
			return storage.IsNotFound(err)
		}, 3*time.Second, 20*time.Millisecond)
		require.False(t, s.Has(ctx, key))
	})
}
