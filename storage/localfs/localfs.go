// Package localfs is a filesystem-backed storage.Store.
//
// Each key is kept in its own file as a JSON envelope holding the bytes, the
// CID of the bytes, and an optional expiry. The CID is checked on every read
// so a file damaged out-of-band is reported rather than served.
package localfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"xdao.co/datadao/cidutil"
	"xdao.co/datadao/storage"
)

type Store struct {
	root string

	// Now is the clock used for expiry; time.Now when nil.
	Now func() time.Time
}

var _ storage.Store = (*Store)(nil)

type envelope struct {
	Key       string `json:"key"`
	CID       string `json:"cid"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Data      []byte `json:"data"`
}

// New constructs a filesystem store rooted at root. The directory will be created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the directory the store writes under.
func (s *Store) Root() string { return s.root }

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return errors.New("localfs: empty key")
	}
	id, err := cidutil.BlobCID(value)
	if err != nil {
		return err
	}
	env := envelope{Key: key, CID: id.String(), Data: value}
	if env.Data == nil {
		env.Data = []byte{}
	}
	if ttl > 0 {
		env.ExpiresAt = s.now().Add(ttl).UnixNano()
	}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}

	path := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.pathFor(key)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrIntegrity, err)
	}
	if env.Key != key {
		return nil, fmt.Errorf("%w: envelope key %q", storage.ErrIntegrity, env.Key)
	}
	if env.ExpiresAt != 0 && s.now().UnixNano() >= env.ExpiresAt {
		_ = os.Remove(path)
		return nil, storage.ErrNotFound
	}
	if err := cidutil.Verify(env.CID, env.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrIntegrity, err)
	}
	if env.Data == nil {
		env.Data = []byte{}
	}
	return env.Data, nil
}

func (s *Store) Has(ctx context.Context, key string) bool {
	_, err := s.Get(ctx, key)
	return err == nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(s.root, name[:2], name)
}
