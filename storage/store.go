// Package storage defines the local fallback store used by the blob client,
// the blob id scheme, and the ordered first-success combinator used to walk
// redundant endpoints.
package storage

import (
	"context"
	"time"
)

// Store is a keyed byte store with optional expiry.
//
// Contract:
// - Get MUST return ErrNotFound when the key is absent or expired.
// - Set with ttl == 0 stores the value without expiry.
// - Set on an existing key replaces it (last write wins).
// - Returned slices are owned by the caller.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) bool
}
