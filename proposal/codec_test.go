package proposal

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testID(seed byte) SubmissionID {
	var id SubmissionID
	for i := range id {
		id[i] = seed + byte(i)
	}
	return id
}

func TestEncode_CategoryLayout(t *testing.T) {
	b, err := Encode(CategoryProposal{Name: "Weather", Description: "Hourly readings", RewardAmount: 0x0102})
	require.NoError(t, err)

	want := []byte("Weather\x00Hourly readings\x00")
	want = append(want, 0x02, 0x01, 0, 0, 0, 0, 0, 0)
	require.Equal(t, want, b)
}

func TestEncode_FixedLengthKinds(t *testing.T) {
	id := testID(7)

	b, err := Encode(DataApprovalProposal{SubmissionID: id})
	require.NoError(t, err)
	require.Len(t, b, 32)
	require.Equal(t, id[:], b)

	b, err = Encode(PriceProposal{SubmissionID: id, Price: math.MaxUint64})
	require.NoError(t, err)
	require.Len(t, b, 40)
	require.Equal(t, id[:], b[:32])
	require.Equal(t, bytes.Repeat([]byte{0xff}, 8), b[32:])
}

func TestEncode_AcceptsPointers(t *testing.T) {
	b1, err := Encode(&PriceProposal{SubmissionID: testID(1), Price: 9})
	require.NoError(t, err)
	b2, err := Encode(PriceProposal{SubmissionID: testID(1), Price: 9})
	require.NoError(t, err)
	require.Equal(t, b2, b1)

	var nilp *CategoryProposal
	_, err = Encode(nilp)
	require.True(t, IsEncodingError(err))
}

func TestEncode_RejectsDelimiterInStrings(t *testing.T) {
	_, err := Encode(CategoryProposal{Name: "bad\x00name", Description: "ok"})
	require.True(t, IsEncodingError(err))
	require.Equal(t, "PROP-ENC-010", RuleID(err))

	_, err = Encode(CategoryProposal{Name: "ok", Description: "bad\x00"})
	require.True(t, IsEncodingError(err))
	require.Equal(t, "PROP-ENC-011", RuleID(err))
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	_, err := Encode(CategoryProposal{Name: string([]byte{0xff, 0xfe}), Description: "x"})
	require.True(t, IsEncodingError(err))
}

func TestDecode_Truncation(t *testing.T) {
	_, err := Decode(KindDataApproval, make([]byte, 31))
	require.True(t, IsTruncated(err))

	_, err = Decode(KindPrice, make([]byte, 39))
	require.True(t, IsTruncated(err))

	_, err = Decode(KindPrice, make([]byte, 32))
	require.True(t, IsTruncated(err))

	_, err = Decode(KindCategory, []byte("no delimiters"))
	require.True(t, IsTruncated(err))
	require.Equal(t, "PROP-TRUNC-010", RuleID(err))

	_, err = Decode(KindCategory, []byte("name\x00description only"))
	require.True(t, IsTruncated(err))
	require.Equal(t, "PROP-TRUNC-011", RuleID(err))

	_, err = Decode(KindCategory, []byte("name\x00desc\x00\x01\x02\x03"))
	require.True(t, IsTruncated(err))
	require.Equal(t, "PROP-TRUNC-012", RuleID(err))
}

func TestDecode_IgnoresTrailingBytes(t *testing.T) {
	id := testID(3)
	b := append(id[:], 0xaa, 0xbb)
	r, err := Decode(KindDataApproval, b)
	require.NoError(t, err)
	require.Equal(t, DataApprovalProposal{SubmissionID: id}, r)
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := Decode(Kind(9), []byte{1, 2, 3})
	require.True(t, IsEncodingError(err))
}

func TestDecode_EmptyStrings(t *testing.T) {
	b, err := Encode(CategoryProposal{})
	require.NoError(t, err)
	require.Len(t, b, 10)

	r, err := Decode(KindCategory, b)
	require.NoError(t, err)
	require.Equal(t, CategoryProposal{}, r)
}

func randomText(rng *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.,:;éü数据"
	runes := []rune(alphabet)
	n := rng.Intn(40)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(runes[rng.Intn(len(runes))])
	}
	return sb.String()
}

func TestRoundTrip_RandomRecords(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		var id SubmissionID
		_, _ = rng.Read(id[:])

		records := []Record{
			CategoryProposal{Name: randomText(rng), Description: randomText(rng), RewardAmount: rng.Uint64()},
			DataApprovalProposal{SubmissionID: id},
			PriceProposal{SubmissionID: id, Price: rng.Uint64()},
		}
		for _, r := range records {
			b, err := Encode(r)
			require.NoError(t, err)
			got, err := Decode(r.Kind(), b)
			require.NoError(t, err)
			require.Equal(t, r, got)
		}
	}
}

func TestRoundTrip_Boundaries(t *testing.T) {
	for _, v := range []uint64{0, 1, math.MaxUint32, math.MaxUint64} {
		r := CategoryProposal{Name: "n", Description: "d", RewardAmount: v}
		b, err := Encode(r)
		require.NoError(t, err)
		got, err := Decode(KindCategory, b)
		require.NoError(t, err)
		require.Equal(t, r, got)
	}
}

func TestSubmissionID_HexRoundTrip(t *testing.T) {
	id := testID(0xa0)
	s := id.String()
	require.True(t, strings.HasPrefix(s, "0x"))
	require.Equal(t, strings.ToLower(s), s)
	require.Len(t, s, 66)

	got, err := ParseSubmissionID(s)
	require.NoError(t, err)
	require.Equal(t, id, got)

	got, err = ParseSubmissionID(strings.TrimPrefix(s, "0x"))
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = ParseSubmissionID("0x1234")
	require.Error(t, err)
	_, err = ParseSubmissionID("0x" + strings.Repeat("zz", 32))
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindCategory, KindDataApproval, KindPrice} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
		require.True(t, k.Valid())
	}
	_, err := ParseKind("treasury")
	require.Error(t, err)
	require.False(t, Kind(3).Valid())
}
