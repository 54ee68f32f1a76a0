// Package memory is an in-process storage.Store backed by go-cache.
//
// Contents live as long as the process; it is the default fallback store for
// short-lived tools and tests.
package memory

import (
	"bytes"
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"xdao.co/datadao/storage"
)

// DefaultCleanupInterval is how often expired entries are purged.
const DefaultCleanupInterval = time.Minute

type Store struct {
	c *gocache.Cache
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store purging expired entries every cleanup interval
// (DefaultCleanupInterval when zero).
func New(cleanup time.Duration) *Store {
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Store{c: gocache.New(gocache.NoExpiration, cleanup)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := s.c.Get(key)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return bytes.Clone(v.([]byte)), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exp := gocache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	v := bytes.Clone(value)
	if v == nil {
		v = []byte{}
	}
	s.c.Set(key, v, exp)
	return nil
}

func (s *Store) Has(ctx context.Context, key string) bool {
	_, ok := s.c.Get(key)
	return ok
}

// Len reports the number of entries, including expired ones not yet purged.
func (s *Store) Len() int { return s.c.ItemCount() }
