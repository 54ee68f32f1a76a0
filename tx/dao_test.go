package tx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/datadao/proposal"
)

var testDAO = DAO{
	PackageID:        "0xda0",
	DAOObjectID:      "0x1001",
	TreasuryObjectID: "0x1002",
}

func TestCreateProposal_EmbedsCodecPayload(t *testing.T) {
	rec := proposal.PriceProposal{Price: 2_500_000_000}
	rec.SubmissionID[0] = 0xaa

	call, err := testDAO.CreateProposal(rec, 7)
	require.NoError(t, err)
	require.Equal(t, "0xda0::data_dao::create_proposal", call.Target())
	require.Len(t, call.Args, 4)
	require.True(t, call.Args[0].IsObject())
	require.Equal(t, "0x1001", call.Args[0].ObjectID())
	require.Equal(t, []byte{byte(proposal.KindPrice)}, call.Args[1].PureBytes())

	// vector<u8>: one-byte length prefix then the codec bytes.
	vec := call.Args[2].PureBytes()
	require.Equal(t, byte(proposal.PriceSize), vec[0])
	got, err := proposal.Decode(proposal.KindPrice, vec[1:])
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestCreateProposal_Rejections(t *testing.T) {
	_, err := testDAO.CreateProposal(proposal.CategoryProposal{Name: "ok"}, 0)
	require.Error(t, err)

	_, err = testDAO.CreateProposal(proposal.CategoryProposal{Name: "bad\x00name"}, 3)
	require.True(t, proposal.IsEncodingError(err))

	_, err = DAO{PackageID: "nope", DAOObjectID: "0x1"}.Vote("0x2", true)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDAOCalls_Targets(t *testing.T) {
	d := testDAO
	d.Module = "governance"

	vote, err := d.Vote("0x77", false)
	require.NoError(t, err)
	require.Equal(t, "0xda0::governance::vote", vote.Target())
	require.Equal(t, []byte{0}, vote.Args[2].PureBytes())

	exec, err := d.ExecuteProposal("0x77")
	require.NoError(t, err)
	require.Equal(t, "0x1002", exec.Args[2].ObjectID())

	sub, err := d.SubmitData("bafkreiblob", "0x55", 1024)
	require.NoError(t, err)
	require.Equal(t, append([]byte{11}, "bafkreiblob"...), sub.Args[1].PureBytes())

	_, err = d.SubmitData("", "0x55", 1)
	require.Error(t, err)

	var id proposal.SubmissionID
	buy, err := d.PurchaseDataset(id, "0xc01")
	require.NoError(t, err)
	require.Len(t, buy.Args[1].PureBytes(), 1+proposal.SubmissionIDSize)
}

func TestMoveCall_BytesDeterministic(t *testing.T) {
	call, err := testDAO.Vote("0x77", true)
	require.NoError(t, err)
	a, err := call.Bytes()
	require.NoError(t, err)
	b, err := call.Bytes()
	require.NoError(t, err)
	require.Equal(t, a, b)

	other, err := testDAO.Vote("0x77", false)
	require.NoError(t, err)
	c, err := other.Bytes()
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	// Package address comes first, fully padded.
	require.Equal(t, byte(0x0d), a[30])
	require.Equal(t, byte(0xa0), a[31])
}
