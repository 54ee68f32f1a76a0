package grpcstore

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/memory"
	"xdao.co/datadao/storage/testkit"
)

func startServer(t *testing.T, backing storage.Store) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterStoreServer(srv, &Server{Store: backing})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
	cc, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	client := NewClient(cc)
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGRPCStore_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		return startServer(t, memory.New(0))
	})
}

func TestGRPCStore_KeyTravelsInMetadata(t *testing.T) {
	ctx := context.Background()
	backing := memory.New(0)
	client := startServer(t, backing)

	require.NoError(t, client.Set(ctx, "walrus_blob_x", []byte("payload"), 0))
	got, err := backing.Get(ctx, "walrus_blob_x")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestGRPCStore_MissingStore(t *testing.T) {
	client := startServer(t, nil)
	_, err := client.Get(context.Background(), "k")
	require.Error(t, err)
	require.False(t, storage.IsNotFound(err))
}
