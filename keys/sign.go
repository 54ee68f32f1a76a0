package keys

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Scheme identifies a signature scheme. Its value is the flag byte that
// prefixes public keys when deriving addresses and serializing signatures.
type Scheme uint8

const (
	SchemeEd25519    Scheme = 0x00
	SchemeDilithium3 Scheme = 0x10
)

func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeDilithium3:
		return "dilithium3"
	default:
		return fmt.Sprintf("scheme(0x%02x)", uint8(s))
	}
}

func (s Scheme) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Scheme) UnmarshalText(b []byte) error {
	v, err := ParseScheme(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseScheme accepts the names produced by Scheme.String. The empty string
// selects ed25519.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ed25519":
		return SchemeEd25519, nil
	case "dilithium3", "mldsa65":
		return SchemeDilithium3, nil
	default:
		return 0, fmt.Errorf("unsupported signature scheme %q", s)
	}
}

// Signer signs transaction digests.
type Signer interface {
	Scheme() Scheme
	PublicKey() []byte
	Sign(digest []byte) ([]byte, error)
}

// NewSigner builds a signer of the given scheme from a 32-byte seed.
func NewSigner(scheme Scheme, seed []byte) (Signer, error) {
	switch scheme {
	case SchemeEd25519:
		return NewEd25519Signer(seed)
	case SchemeDilithium3:
		return NewDilithium3Signer(seed)
	default:
		return nil, fmt.Errorf("unsupported signature scheme %s", scheme)
	}
}

type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Scheme() Scheme { return SchemeEd25519 }

func (s *Ed25519Signer) PublicKey() []byte {
	return append([]byte(nil), s.priv.Public().(ed25519.PublicKey)...)
}

func (s *Ed25519Signer) Sign(digest []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, digest), nil
}

// Dilithium3Signer is a post-quantum signer for long-lived governance keys.
type Dilithium3Signer struct {
	pk *mode3.PublicKey
	sk *mode3.PrivateKey
}

func NewDilithium3Signer(seed []byte) (*Dilithium3Signer, error) {
	if len(seed) != mode3.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", mode3.SeedSize, len(seed))
	}
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pk, sk := mode3.NewKeyFromSeed(&s)
	return &Dilithium3Signer{pk: pk, sk: sk}, nil
}

func (s *Dilithium3Signer) Scheme() Scheme { return SchemeDilithium3 }

func (s *Dilithium3Signer) PublicKey() []byte { return s.pk.Bytes() }

func (s *Dilithium3Signer) Sign(digest []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.sk, digest, sig)
	return sig, nil
}

// Verify checks sig over digest for a public key of the given scheme.
// Malformed keys and signatures verify as false.
func Verify(scheme Scheme, pub, digest, sig []byte) bool {
	switch scheme {
	case SchemeEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pub), digest, sig)
	case SchemeDilithium3:
		if len(pub) != mode3.PublicKeySize || len(sig) != mode3.SignatureSize {
			return false
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return false
		}
		return mode3.Verify(&pk, digest, sig)
	default:
		return false
	}
}

// SignatureSize is the raw signature length for scheme, 0 when unknown.
func SignatureSize(scheme Scheme) int {
	switch scheme {
	case SchemeEd25519:
		return ed25519.SignatureSize
	case SchemeDilithium3:
		return mode3.SignatureSize
	default:
		return 0
	}
}
