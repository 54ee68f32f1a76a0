package keys

import (
	"encoding/hex"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := testSeed(0)

	a, err := DeriveRoleSeed(root, "voter")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "voter")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveRoleSeed(root, "proposer")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different roles to derive different seeds")
	}

	if _, err := DeriveRoleSeed(root[:5], "voter"); err == nil {
		t.Fatalf("expected error for short root seed")
	}
	if _, err := DeriveRoleSeed(root, "bad role"); err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestAddressFormat(t *testing.T) {
	pub := make([]byte, 32)
	addr := Address(SchemeEd25519, pub)
	if !strings.HasPrefix(addr, "0x") || len(addr) != 66 {
		t.Fatalf("unexpected address %q", addr)
	}
	want := blake2b.Sum256(append([]byte{0x00}, pub...))
	if addr != "0x"+hex.EncodeToString(want[:]) {
		t.Fatalf("address mismatch: %s", addr)
	}
	if Address(SchemeDilithium3, pub) == addr {
		t.Fatalf("scheme flag must change the address")
	}
}

func TestPublicKeyString(t *testing.T) {
	s, err := NewEd25519Signer(testSeed(0x42))
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}
	got := PublicKeyString(s.Scheme(), s.PublicKey())
	if !strings.HasPrefix(got, "ed25519:") {
		t.Fatalf("expected ed25519 prefix, got %q", got)
	}
}
