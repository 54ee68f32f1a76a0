package tx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoder_ULEB128(t *testing.T) {
	cases := map[uint64][]byte{
		0:       {0x00},
		1:       {0x01},
		127:     {0x7f},
		128:     {0x80, 0x01},
		300:     {0xac, 0x02},
		16384:   {0x80, 0x80, 0x01},
		1 << 32: {0x80, 0x80, 0x80, 0x80, 0x10},
	}
	for v, want := range cases {
		var e Encoder
		e.ULEB128(v)
		require.Equal(t, want, e.Bytes(), "value %d", v)
	}
}

func TestEncoder_Primitives(t *testing.T) {
	var e Encoder
	e.U8(7)
	e.Bool(true)
	e.Bool(false)
	e.U64(0x0102030405060708)
	e.Str("hi")
	require.Equal(t, []byte{
		7, 1, 0,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		2, 'h', 'i',
	}, e.Bytes())
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0x2")
	require.NoError(t, err)
	require.Equal(t, byte(2), a[31])
	for _, b := range a[:31] {
		require.Zero(t, b)
	}

	norm, err := NormalizeAddress("0xABC")
	require.NoError(t, err)
	require.Len(t, norm, 66)
	require.Equal(t, "0x"+repeat("0", 61)+"abc", norm)

	for _, bad := range []string{"", "2", "0x", "0xzz", "0x" + repeat("1", 65)} {
		_, err := ParseAddress(bad)
		require.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
