package localfs

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		t.Helper()
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestLocalFS_DetectsCorruption(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	key := storage.StoreKey("blob")
	require.NoError(t, s.Set(ctx, key, []byte("original"), 0))

	// Rewrite the payload out-of-band, leaving the recorded CID alone.
	path := s.pathFor(key)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	env.Data = []byte("corrupted")
	raw, err = json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = s.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrIntegrity)
	require.False(t, s.Has(ctx, key))

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err = s.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrIntegrity)
}

func TestLocalFS_ExpiryUsesClock(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	s.Now = func() time.Time { return now }

	key := storage.StoreKey("ttl")
	require.NoError(t, s.Set(ctx, key, []byte("v"), time.Hour))

	now = now.Add(59 * time.Minute)
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, key)
	require.True(t, storage.IsNotFound(err))

	_, statErr := os.Stat(s.pathFor(key))
	require.True(t, os.IsNotExist(statErr))
}

func TestLocalFS_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "k", []byte("kept"), 0))

	b, err := New(dir)
	require.NoError(t, err)
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("kept"), got)
}

func TestLocalFS_RequiresRoot(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
