package proposal

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// SubmissionIDSize is the width of a data submission identifier.
const SubmissionIDSize = 32

// SubmissionID is the on-chain identifier of a data submission.
type SubmissionID [SubmissionIDSize]byte

// String renders the id as lowercase hex with a 0x prefix.
func (id SubmissionID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// ParseSubmissionID parses 64 hex characters, with or without a 0x prefix.
func ParseSubmissionID(s string) (SubmissionID, error) {
	var id SubmissionID
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 2*SubmissionIDSize {
		return id, fmt.Errorf("proposal: submission id must be %d hex chars, got %d", 2*SubmissionIDSize, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("proposal: submission id: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

// Record is one of CategoryProposal, DataApprovalProposal or PriceProposal.
type Record interface {
	Kind() Kind
}

// CategoryProposal asks the DAO to open a new data category with a reward
// paid per approved submission. RewardAmount is in the token's smallest unit.
type CategoryProposal struct {
	Name         string
	Description  string
	RewardAmount uint64
}

// DataApprovalProposal asks the DAO to approve a pending submission.
type DataApprovalProposal struct {
	SubmissionID SubmissionID
}

// PriceProposal asks the DAO to set the purchase price of a submission.
type PriceProposal struct {
	SubmissionID SubmissionID
	Price        uint64
}

func (CategoryProposal) Kind() Kind     { return KindCategory }
func (DataApprovalProposal) Kind() Kind { return KindDataApproval }
func (PriceProposal) Kind() Kind        { return KindPrice }
