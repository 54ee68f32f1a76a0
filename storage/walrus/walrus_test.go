package walrus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xdao.co/datadao/cidutil"
	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/memory"
)

func newDevServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := &Handler{Store: memory.New(0), Epoch: func() uint64 { return 7 }, Logger: zerolog.Nop()}
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestPublisher_NewlyCreatedThenAlreadyCertified(t *testing.T) {
	ctx := context.Background()
	srv := newDevServer(t)
	pub := NewPublisher(srv.URL+"/", Options{Epochs: 3})

	payload := []byte(`{"title":"rainfall 2024"}`)
	first, err := pub.Store(ctx, payload)
	require.NoError(t, err)
	id, certified := first.BlobID()
	require.False(t, certified)
	require.Equal(t, cidutil.BlobCIDString(payload), id)
	require.Equal(t, uint64(len(payload)), first.NewlyCreated.BlobObject.Size)

	second, err := pub.Store(ctx, payload)
	require.NoError(t, err)
	id2, certified := second.BlobID()
	require.True(t, certified)
	require.Equal(t, id, id2)
	require.Equal(t, uint64(10), second.AlreadyCertified.EndEpoch)
}

func TestAggregator_ReadBack(t *testing.T) {
	ctx := context.Background()
	srv := newDevServer(t)
	pub := NewPublisher(srv.URL, Options{})
	agg := NewAggregator(srv.URL, Options{RequireJSON: true})

	payload := []byte(`{"rows":[1,2,3]}`)
	resp, err := pub.Store(ctx, payload)
	require.NoError(t, err)
	id, _ := resp.BlobID()

	got, err := agg.Read(ctx, id)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	_, err = agg.Read(ctx, "missing-id")
	require.ErrorIs(t, err, storage.ErrNotFound)
	var epErr *EndpointError
	require.ErrorAs(t, err, &epErr)
	require.Equal(t, http.StatusNotFound, epErr.StatusCode)
	require.Equal(t, "read", epErr.Op)
}

func TestAggregator_RequireJSON(t *testing.T) {
	ctx := context.Background()
	srv := newDevServer(t)
	pub := NewPublisher(srv.URL, Options{})
	resp, err := pub.Store(ctx, []byte("not json"))
	require.NoError(t, err)
	id, _ := resp.BlobID()

	_, err = NewAggregator(srv.URL, Options{RequireJSON: true}).Read(ctx, id)
	require.ErrorIs(t, err, ErrInvalidBody)

	got, err := NewAggregator(srv.URL, Options{}).Read(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("not json"), got)
}

func TestPublisher_FailureShapes(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "garbage", status: http.StatusOK, body: "<html>", wantErr: ErrBadResponse},
		{name: "no id", status: http.StatusOK, body: `{"newlyCreated":{"blobObject":{}}}`, wantErr: ErrMissingBlobID},
		{name: "local prefix", status: http.StatusOK, body: `{"alreadyCertified":{"blobId":"local_1_abc"}}`, wantErr: storage.ErrInvalidID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPut, r.Method)
				require.Equal(t, "/v1/blobs", r.URL.Path)
				require.Equal(t, "1", r.URL.Query().Get("epochs"))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewPublisher(srv.URL, Options{}).Store(ctx, []byte("x"))
			var epErr *EndpointError
			require.ErrorAs(t, err, &epErr)
			require.Equal(t, "store", epErr.Op)
			require.Equal(t, tc.status, epErr.StatusCode)
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
		})
	}
}

func TestPublisher_TimeoutBoundsSlowEndpoint(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewPublisher(srv.URL, Options{Timeout: 100 * time.Millisecond}).Store(context.Background(), []byte("x"))
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
	var epErr *EndpointError
	require.ErrorAs(t, err, &epErr)
	require.Zero(t, epErr.StatusCode)
}

func TestHandler_RejectsBadEpochs(t *testing.T) {
	srv := newDevServer(t)
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/blobs?epochs=0", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_ServeHTTPReusesRouter(t *testing.T) {
	ctx := context.Background()
	h := &Handler{Store: memory.New(0), Logger: zerolog.Nop()}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	resp, err := NewPublisher(srv.URL, Options{}).Store(ctx, []byte(`{"n":1}`))
	require.NoError(t, err)
	id, _ := resp.BlobID()
	first := h.router()

	got, err := NewAggregator(srv.URL, Options{}).Read(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"n":1}`), got)
	require.Same(t, first, h.router())
}
