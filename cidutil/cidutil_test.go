package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
)

func TestBlobCID_Deterministic(t *testing.T) {
	a, err := BlobCID([]byte("payload"))
	require.NoError(t, err)
	b, err := BlobCID([]byte("payload"))
	require.NoError(t, err)
	require.True(t, a.Equals(b))
	require.Equal(t, uint64(cid.Raw), a.Type())
	require.Equal(t, a.String(), BlobCIDString([]byte("payload")))

	c, err := BlobCID([]byte("other"))
	require.NoError(t, err)
	require.False(t, a.Equals(c))
}

func TestVerify(t *testing.T) {
	s := BlobCIDString([]byte("hello"))
	require.NoError(t, Verify(s, []byte("hello")))
	require.ErrorIs(t, Verify(s, []byte("hellO")), ErrMismatch)
	require.Error(t, Verify("not-a-cid", []byte("hello")))
}
