package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Named associates a Store with a stable backend name.
type Named struct {
	Name  string
	Store Store
}

// Replicating writes to every backend and reads from the first that has the
// key.
//
// A write fails if any backend rejects it; the error lists each failing
// backend. Reads skip backends that report ErrNotFound or ErrIntegrity so a
// damaged replica is masked by a healthy one.
type Replicating struct {
	Backends []Named
}

var _ Store = (*Replicating)(nil)

func (r *Replicating) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(r.Backends) == 0 {
		return fmt.Errorf("storage: replicating store has no backends")
	}
	var errs *multierror.Error
	for _, b := range r.Backends {
		if b.Store == nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: nil store", b.Name))
			continue
		}
		if err := b.Store.Set(ctx, key, value, ttl); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", b.Name, err))
		}
	}
	if errs != nil {
		errs.ErrorFormat = listFormat
	}
	return errs.ErrorOrNil()
}

func (r *Replicating) Get(ctx context.Context, key string) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		out, err := b.Store.Get(ctx, key)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) || isIntegrity(err) {
			continue
		}
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	return nil, ErrNotFound
}

func (r *Replicating) Has(ctx context.Context, key string) bool {
	for _, b := range r.Backends {
		if b.Store != nil && b.Store.Has(ctx, key) {
			return true
		}
	}
	return false
}
