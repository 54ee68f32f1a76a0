// Package proposal encodes and decodes the binary proposal payloads stored by
// the DAO contract.
//
// Layouts (bit-exact, no version or length framing):
//
//	category:       name || 0x00 || description || 0x00 || reward (u64 LE)
//	data-approval:  submission id (32 bytes)
//	price:          submission id (32 bytes) || price (u64 LE)
//
// Decoding is strict: a category payload with fewer than 8 reward bytes is a
// TruncatedRecord, like the fixed-width kinds.
package proposal

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"xdao.co/datadao/internal/fixedint"
)

const (
	delimiter = 0x00

	// DataApprovalSize is the encoded length of a DataApprovalProposal.
	DataApprovalSize = SubmissionIDSize
	// PriceSize is the encoded length of a PriceProposal.
	PriceSize = SubmissionIDSize + fixedint.Uint64Size
)

// Encode serializes r into its on-chain payload.
func Encode(r Record) ([]byte, error) {
	switch p := r.(type) {
	case CategoryProposal:
		return encodeCategory(p)
	case *CategoryProposal:
		if p == nil {
			return nil, newError(KindEncoding, "PROP-ENC-000", "nil proposal")
		}
		return encodeCategory(*p)
	case DataApprovalProposal:
		return encodeDataApproval(p), nil
	case *DataApprovalProposal:
		if p == nil {
			return nil, newError(KindEncoding, "PROP-ENC-000", "nil proposal")
		}
		return encodeDataApproval(*p), nil
	case PriceProposal:
		return encodePrice(p), nil
	case *PriceProposal:
		if p == nil {
			return nil, newError(KindEncoding, "PROP-ENC-000", "nil proposal")
		}
		return encodePrice(*p), nil
	default:
		return nil, newError(KindEncoding, "PROP-ENC-001", fmt.Sprintf("unsupported proposal record %T", r))
	}
}

func encodeCategory(p CategoryProposal) ([]byte, error) {
	if err := checkField("name", "PROP-ENC-010", p.Name); err != nil {
		return nil, err
	}
	if err := checkField("description", "PROP-ENC-011", p.Description); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(p.Name)+len(p.Description)+2+fixedint.Uint64Size)
	out = append(out, p.Name...)
	out = append(out, delimiter)
	out = append(out, p.Description...)
	out = append(out, delimiter)
	return fixedint.AppendUint64LE(out, p.RewardAmount), nil
}

// checkField rejects strings that would corrupt the delimiter scan.
func checkField(field, ruleID, s string) error {
	if i := bytes.IndexByte([]byte(s), delimiter); i >= 0 {
		return newError(KindEncoding, ruleID, fmt.Sprintf("%s contains a NUL byte at offset %d", field, i))
	}
	if !utf8.ValidString(s) {
		return newError(KindEncoding, ruleID, fmt.Sprintf("%s is not valid UTF-8", field))
	}
	return nil
}

func encodeDataApproval(p DataApprovalProposal) []byte {
	out := make([]byte, DataApprovalSize)
	copy(out, p.SubmissionID[:])
	return out
}

func encodePrice(p PriceProposal) []byte {
	out := make([]byte, PriceSize)
	copy(out, p.SubmissionID[:])
	fixedint.PutUint64LE(out[SubmissionIDSize:], p.Price)
	return out
}

// Decode parses a payload of the given kind. The returned Record is a value
// type (CategoryProposal, DataApprovalProposal or PriceProposal).
func Decode(kind Kind, b []byte) (Record, error) {
	switch kind {
	case KindCategory:
		return decodeCategory(b)
	case KindDataApproval:
		if len(b) < DataApprovalSize {
			return nil, truncated("PROP-TRUNC-020", kind, DataApprovalSize, len(b))
		}
		var p DataApprovalProposal
		copy(p.SubmissionID[:], b[:SubmissionIDSize])
		return p, nil
	case KindPrice:
		if len(b) < PriceSize {
			return nil, truncated("PROP-TRUNC-030", kind, PriceSize, len(b))
		}
		var p PriceProposal
		copy(p.SubmissionID[:], b[:SubmissionIDSize])
		price, err := fixedint.Uint64LE(b[SubmissionIDSize:PriceSize])
		if err != nil {
			return nil, wrapError(KindTruncated, "PROP-TRUNC-031", "price field", err)
		}
		p.Price = price
		return p, nil
	default:
		return nil, newError(KindEncoding, "PROP-ENC-002", fmt.Sprintf("unknown proposal kind %d", uint8(kind)))
	}
}

func decodeCategory(b []byte) (Record, error) {
	nameEnd := bytes.IndexByte(b, delimiter)
	if nameEnd < 0 {
		return nil, newError(KindTruncated, "PROP-TRUNC-010", "category: missing name delimiter")
	}
	rest := b[nameEnd+1:]
	descEnd := bytes.IndexByte(rest, delimiter)
	if descEnd < 0 {
		return nil, newError(KindTruncated, "PROP-TRUNC-011", "category: missing description delimiter")
	}
	reward := rest[descEnd+1:]
	if len(reward) < fixedint.Uint64Size {
		return nil, newError(KindTruncated, "PROP-TRUNC-012",
			fmt.Sprintf("category: reward needs %d bytes, got %d", fixedint.Uint64Size, len(reward)))
	}
	amount, err := fixedint.Uint64LE(reward[:fixedint.Uint64Size])
	if err != nil {
		return nil, wrapError(KindTruncated, "PROP-TRUNC-012", "category: reward field", err)
	}

	name, desc := b[:nameEnd], rest[:descEnd]
	if !utf8.Valid(name) || !utf8.Valid(desc) {
		return nil, newError(KindEncoding, "PROP-ENC-012", "category: text fields are not valid UTF-8")
	}
	return CategoryProposal{
		Name:         string(name),
		Description:  string(desc),
		RewardAmount: amount,
	}, nil
}

func truncated(ruleID string, kind Kind, want, got int) error {
	return newError(KindTruncated, ruleID, fmt.Sprintf("%s: need at least %d bytes, got %d", kind, want, got))
}
