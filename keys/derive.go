package keys

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// SeedSize is the length of root and role seeds for every scheme.
const SeedSize = 32

// DeriveRoleSeed deterministically derives a role-specific seed from a root seed.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("datadao-keys-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, SeedSize)
	copy(out, sum[:SeedSize])
	return out, nil
}

// Address returns the on-chain account address of a public key:
// 0x-prefixed hex of blake2b-256(flag || pub).
func Address(scheme Scheme, pub []byte) string {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, byte(scheme))
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// SignerAddress is Address for the key held by s.
func SignerAddress(s Signer) string { return Address(s.Scheme(), s.PublicKey()) }

// PublicKeyString formats a public key as "<scheme>:<base64>".
func PublicKeyString(scheme Scheme, pub []byte) string {
	return scheme.String() + ":" + base64.StdEncoding.EncodeToString(pub)
}
