package tx

import (
	"errors"

	"xdao.co/datadao/proposal"
)

// DefaultModule is the Move module holding the DAO entry functions.
const DefaultModule = "data_dao"

// DAO builds calls against one deployed DAO.
type DAO struct {
	PackageID        string
	DAOObjectID      string
	TreasuryObjectID string
	Module           string
}

func (d DAO) call(fn string, args ...Arg) (MoveCall, error) {
	module := d.Module
	if module == "" {
		module = DefaultModule
	}
	c := MoveCall{
		Package:  d.PackageID,
		Module:   module,
		Function: fn,
		Args:     append([]Arg{Object(d.DAOObjectID)}, args...),
	}
	if err := c.Validate(); err != nil {
		return MoveCall{}, err
	}
	return c, nil
}

// CreateProposal opens a vote on r lasting votingDays.
func (d DAO) CreateProposal(r proposal.Record, votingDays uint64) (MoveCall, error) {
	if votingDays == 0 {
		return MoveCall{}, errors.New("tx: voting period must be at least one day")
	}
	payload, err := proposal.Encode(r)
	if err != nil {
		return MoveCall{}, err
	}
	return d.call("create_proposal",
		PureU8(uint8(r.Kind())),
		PureBytes(payload),
		PureU64(votingDays),
	)
}

func (d DAO) Vote(proposalID string, approve bool) (MoveCall, error) {
	return d.call("vote", Object(proposalID), PureBool(approve))
}

func (d DAO) ExecuteProposal(proposalID string) (MoveCall, error) {
	return d.call("execute_proposal", Object(proposalID), Object(d.TreasuryObjectID))
}

// SubmitData registers an uploaded blob under a data category.
func (d DAO) SubmitData(blobID, categoryID string, sizeBytes uint64) (MoveCall, error) {
	if blobID == "" {
		return MoveCall{}, errors.New("tx: blob id is required")
	}
	return d.call("submit_data", PureString(blobID), Object(categoryID), PureU64(sizeBytes))
}

// PurchaseDataset pays for an approved submission with the payment coin.
func (d DAO) PurchaseDataset(submissionID proposal.SubmissionID, payment string) (MoveCall, error) {
	return d.call("purchase_dataset",
		PureBytes(submissionID[:]),
		Object(payment),
		Object(d.TreasuryObjectID),
	)
}
