package proposal

import (
	"strconv"
	"strings"
)

// TokenDecimals is the number of decimal places in one whole token.
const TokenDecimals = 9

// Field is one labelled value of a rendered proposal.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// View is the display form of an on-chain proposal payload.
//
// When Known is false the payload could not be decoded; Title is
// "Unknown Proposal" and Err carries the decode failure.
type View struct {
	Known  bool    `json:"known"`
	Kind   string  `json:"kind"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields,omitempty"`
	Err    error   `json:"-"`
}

// Describe decodes b for display. It never fails; undecodable payloads yield
// an Unknown Proposal view.
func Describe(kind Kind, b []byte) View {
	r, err := Decode(kind, b)
	if err != nil {
		return View{Kind: kind.String(), Title: "Unknown Proposal", Err: err}
	}
	return ViewOf(r)
}

// ViewOf renders an already decoded record.
func ViewOf(r Record) View {
	switch p := r.(type) {
	case CategoryProposal:
		return View{
			Known: true,
			Kind:  p.Kind().String(),
			Title: "New Category: " + p.Name,
			Fields: []Field{
				{Label: "Name", Value: p.Name},
				{Label: "Description", Value: p.Description},
				{Label: "Reward", Value: FormatAmount(p.RewardAmount)},
			},
		}
	case DataApprovalProposal:
		return View{
			Known:  true,
			Kind:   p.Kind().String(),
			Title:  "Approve Data Submission",
			Fields: []Field{{Label: "Submission", Value: p.SubmissionID.String()}},
		}
	case PriceProposal:
		return View{
			Known: true,
			Kind:  p.Kind().String(),
			Title: "Set Data Price",
			Fields: []Field{
				{Label: "Submission", Value: p.SubmissionID.String()},
				{Label: "Price", Value: FormatAmount(p.Price)},
			},
		}
	default:
		return View{Title: "Unknown Proposal"}
	}
}

// FormatAmount renders a smallest-unit amount as a decimal token amount,
// trimming trailing zeros ("1500000000" -> "1.5").
func FormatAmount(v uint64) string {
	s := strconv.FormatUint(v, 10)
	if len(s) <= TokenDecimals {
		s = strings.Repeat("0", TokenDecimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-TokenDecimals], strings.TrimRight(s[len(s)-TokenDecimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// ParseAmount parses a decimal token amount into smallest units.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > TokenDecimals {
		return 0, strconv.ErrRange
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", TokenDecimals-len(frac))
	return strconv.ParseUint(digits, 10, 64)
}
