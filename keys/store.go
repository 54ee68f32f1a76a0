package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore keeps account seeds on the local filesystem.
//
// EXPERIMENTAL: this storage surface may change in minor releases.
//
// Layout:
//
//	<dir>/<account>/root.key          hex seed, first line
//	<dir>/<account>/scheme            signature scheme name
//	<dir>/<account>/roles/<role>.key  hex seed derived with DeriveRoleSeed
//
// Role keys share the scheme of their account.
type KeyStore struct {
	Directory string
}

// Account describes one stored key.
type Account struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Scheme    Scheme `json:"scheme"`
	PublicKey string `json:"publicKey"`
	Address   string `json:"address"`
}

// AccountEntry lists an account and the roles derived from it.
type AccountEntry struct {
	Name   string
	Scheme Scheme
	Roles  []string
}

func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".datadao", "keys"), nil
}

// OpenKeyStore returns a store rooted at directory, or DefaultDirectory when empty.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootKeyPath(name string) string {
	return filepath.Join(ks.Directory, name, "root.key")
}

func (ks *KeyStore) roleKeyPath(name, role string) string {
	return filepath.Join(ks.Directory, name, "roles", role+".key")
}

func (ks *KeyStore) schemePath(name string) string {
	return filepath.Join(ks.Directory, name, "scheme")
}

func CheckKeyName(name string) error {
	return checkIdent("account name", name)
}

func CheckRole(role string) error {
	return checkIdent("role", role)
}

func checkIdent(what, s string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in %s", char, what)
	}
	return nil
}

func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", SeedSize, len(data))
	}
	return data, nil
}

func writeFile(path string, content string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(content); err != nil {
		return err
	}
	return file.Close()
}

func loadSeed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(data))
}

func (ks *KeyStore) scheme(name string) (Scheme, error) {
	data, err := os.ReadFile(ks.schemePath(name))
	if errors.Is(err, os.ErrNotExist) {
		return SchemeEd25519, nil
	}
	if err != nil {
		return 0, err
	}
	return ParseScheme(string(data))
}

// InitAccount stores seed as the root key of a new account.
func (ks *KeyStore) InitAccount(name string, scheme Scheme, seed []byte, overwrite bool) (Account, error) {
	if err := CheckKeyName(name); err != nil {
		return Account{}, err
	}
	signer, err := NewSigner(scheme, seed)
	if err != nil {
		return Account{}, err
	}
	if err := writeFile(ks.rootKeyPath(name), hex.EncodeToString(seed)+"\n", overwrite); err != nil {
		return Account{}, err
	}
	if err := writeFile(ks.schemePath(name), scheme.String()+"\n", true); err != nil {
		return Account{}, err
	}
	return describe(name, "", signer), nil
}

// DeriveAccount derives and stores the role key of an existing account.
func (ks *KeyStore) DeriveAccount(from, role string, overwrite bool) (Account, error) {
	if err := CheckKeyName(from); err != nil {
		return Account{}, err
	}
	if err := CheckRole(role); err != nil {
		return Account{}, err
	}
	rootSeed, err := loadSeed(ks.rootKeyPath(from))
	if err != nil {
		return Account{}, err
	}
	scheme, err := ks.scheme(from)
	if err != nil {
		return Account{}, err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return Account{}, err
	}
	signer, err := NewSigner(scheme, roleSeed)
	if err != nil {
		return Account{}, err
	}
	if err := writeFile(ks.roleKeyPath(from, role), hex.EncodeToString(roleSeed)+"\n", overwrite); err != nil {
		return Account{}, err
	}
	return describe(from, role, signer), nil
}

// Signer loads the root key of name, or its role key when role is set.
func (ks *KeyStore) Signer(name, role string) (Signer, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	path := ks.rootKeyPath(name)
	if role != "" {
		if err := CheckRole(role); err != nil {
			return nil, err
		}
		path = ks.roleKeyPath(name, role)
	}
	seed, err := loadSeed(path)
	if err != nil {
		return nil, err
	}
	scheme, err := ks.scheme(name)
	if err != nil {
		return nil, err
	}
	return NewSigner(scheme, seed)
}

// Export returns the public description of a stored key.
func (ks *KeyStore) Export(name, role string) (Account, error) {
	signer, err := ks.Signer(name, role)
	if err != nil {
		return Account{}, err
	}
	return describe(name, role, signer), nil
}

func (ks *KeyStore) List() ([]AccountEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []AccountEntry
	for _, name := range names {
		scheme, err := ks.scheme(name)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
		roleEntries, rerr := os.ReadDir(filepath.Join(ks.Directory, name, "roles"))
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, AccountEntry{Name: name, Scheme: scheme, Roles: roles})
	}
	return result, nil
}

func describe(name, role string, s Signer) Account {
	pub := s.PublicKey()
	return Account{
		Name:      name,
		Role:      role,
		Scheme:    s.Scheme(),
		PublicKey: PublicKeyString(s.Scheme(), pub),
		Address:   Address(s.Scheme(), pub),
	}
}
