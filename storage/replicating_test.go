package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/localfs"
	"xdao.co/datadao/storage/memory"
	"xdao.co/datadao/storage/testkit"
)

func TestReplicating_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		fs, err := localfs.New(t.TempDir())
		require.NoError(t, err)
		return &storage.Replicating{Backends: []storage.Named{
			{Name: "memory", Store: memory.New(0)},
			{Name: "localfs", Store: fs},
		}}
	})
}

type integrityStore struct{ storage.Store }

func (integrityStore) Get(context.Context, string) ([]byte, error) {
	return nil, storage.ErrIntegrity
}

func TestReplicating_ReadFallsThroughDamagedReplica(t *testing.T) {
	ctx := context.Background()
	healthy := memory.New(0)
	r := &storage.Replicating{Backends: []storage.Named{
		{Name: "damaged", Store: integrityStore{memory.New(0)}},
		{Name: "healthy", Store: healthy},
	}}

	key := storage.StoreKey("blob")
	require.NoError(t, r.Set(ctx, key, []byte("v"), time.Minute))
	require.True(t, healthy.Has(ctx, key))

	got, err := r.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
}

type rejectingStore struct{ storage.Store }

func (rejectingStore) Set(context.Context, string, []byte, time.Duration) error {
	return storage.ErrLocalStorage
}

func TestReplicating_WriteReportsEveryFailure(t *testing.T) {
	r := &storage.Replicating{Backends: []storage.Named{
		{Name: "ok", Store: memory.New(0)},
		{Name: "bad", Store: rejectingStore{memory.New(0)}},
	}}
	err := r.Set(context.Background(), "k", []byte("v"), 0)
	require.ErrorIs(t, err, storage.ErrLocalStorage)
	require.Contains(t, err.Error(), "bad:")

	empty := &storage.Replicating{}
	require.Error(t, empty.Set(context.Background(), "k", nil, 0))
	_, err = empty.Get(context.Background(), "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
