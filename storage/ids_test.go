package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewLocalID_Shape(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	id := NewLocalID(now)
	require.True(t, IsLocalID(id))

	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	require.Equal(t, "local", parts[0])
	require.Equal(t, "1700000000123", parts[1])
	require.Len(t, parts[2], 9)
}

func TestNewLocalID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewLocalID(now)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestStoreKey(t *testing.T) {
	require.Equal(t, "walrus_blob_abc", StoreKey("abc"))
	require.False(t, IsLocalID("abc"))
}
