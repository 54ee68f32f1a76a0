package proposal

import "fmt"

// Kind identifies one of the proposal layouts understood by the DAO contract.
//
// The numeric value is the tag passed alongside the payload in a Move call;
// the payload itself carries no tag.
type Kind uint8

const (
	KindCategory Kind = iota
	KindDataApproval
	KindPrice
)

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindDataApproval:
		return "data-approval"
	case KindPrice:
		return "price"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known proposal kind.
func (k Kind) Valid() bool { return k <= KindPrice }

// ParseKind accepts the String form of a kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "category":
		return KindCategory, nil
	case "data-approval", "data_approval", "approval":
		return KindDataApproval, nil
	case "price":
		return KindPrice, nil
	default:
		return 0, fmt.Errorf("proposal: unknown kind %q", s)
	}
}
