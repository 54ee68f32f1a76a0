package storeregistry

// Usage is a bit set of the programs a backend may be opened from.
type Usage uint8

const (
	UsageCLI    Usage = 1 << iota // dao-cli and library callers
	UsageDaemon                   // dao-blobd
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }
