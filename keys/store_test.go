package keys

import (
	"encoding/hex"
	"os"
	"testing"
)

func TestKeyStore_InitDeriveExport(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	seed := testSeed(9)

	root, err := ks.InitAccount("alice", SchemeEd25519, seed, false)
	if err != nil {
		t.Fatalf("InitAccount: %v", err)
	}
	if _, err := ks.InitAccount("alice", SchemeEd25519, seed, false); !os.IsExist(err) {
		t.Fatalf("expected exists error without overwrite, got %v", err)
	}

	voter, err := ks.DeriveAccount("alice", "voter", false)
	if err != nil {
		t.Fatalf("DeriveAccount: %v", err)
	}
	if voter.Address == root.Address {
		t.Fatalf("role key must differ from root key")
	}

	exported, err := ks.Export("alice", "voter")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported != voter {
		t.Fatalf("export mismatch: %+v vs %+v", exported, voter)
	}

	signer, err := ks.Signer("alice", "")
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if SignerAddress(signer) != root.Address {
		t.Fatalf("signer address mismatch")
	}
}

func TestKeyStore_SchemeIsRemembered(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	if _, err := ks.InitAccount("council", SchemeDilithium3, testSeed(1), false); err != nil {
		t.Fatalf("InitAccount: %v", err)
	}
	if _, err := ks.DeriveAccount("council", "treasury", false); err != nil {
		t.Fatalf("DeriveAccount: %v", err)
	}
	s, err := ks.Signer("council", "treasury")
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if s.Scheme() != SchemeDilithium3 {
		t.Fatalf("role key scheme: got %s", s.Scheme())
	}
}

func TestKeyStore_List(t *testing.T) {
	ks := &KeyStore{Directory: t.TempDir()}
	for _, name := range []string{"bob", "alice"} {
		if _, err := ks.InitAccount(name, SchemeEd25519, testSeed(2), false); err != nil {
			t.Fatalf("InitAccount(%s): %v", name, err)
		}
	}
	for _, role := range []string{"voter", "proposer"} {
		if _, err := ks.DeriveAccount("alice", role, false); err != nil {
			t.Fatalf("DeriveAccount(%s): %v", role, err)
		}
	}

	got, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "alice" || got[1].Name != "bob" {
		t.Fatalf("unexpected accounts: %+v", got)
	}
	if len(got[0].Roles) != 2 || got[0].Roles[0] != "proposer" || got[0].Roles[1] != "voter" {
		t.Fatalf("unexpected roles: %v", got[0].Roles)
	}

	empty := &KeyStore{Directory: t.TempDir() + "/missing"}
	none, err := empty.List()
	if err != nil || none != nil {
		t.Fatalf("missing directory: %v %v", none, err)
	}
}

func TestParseSeedHexAndNames(t *testing.T) {
	seed := testSeed(4)
	got, err := ParseSeedHex("0x" + hex.EncodeToString(seed) + "\n")
	if err != nil || string(got) != string(seed) {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if _, err := ParseSeedHex("abcd"); err == nil {
		t.Fatalf("expected length error")
	}
	if err := CheckKeyName("ok-name_1"); err != nil {
		t.Fatalf("CheckKeyName: %v", err)
	}
	if err := CheckKeyName("../escape"); err == nil {
		t.Fatalf("expected invalid name")
	}
}
