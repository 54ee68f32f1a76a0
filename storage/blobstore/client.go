// Package blobstore is the resilient client for the decentralized blob store.
//
// Writes walk the configured publishers in order and stop at the first one
// that accepts the blob. Reads walk the aggregators the same way. A local
// storage.Store backs both paths: every successful write is mirrored into it,
// and when no publisher is reachable the blob is kept there under a locally
// minted id so callers always get an id back.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/memory"
	"xdao.co/datadao/storage/walrus"
)

// SourceLocal names the local store in results and attempt lists.
const SourceLocal = "local"

type Options struct {
	Publishers  []string
	Aggregators []string

	Epochs      int
	Timeout     time.Duration
	RequireJSON bool

	// Local is the fallback store; an in-memory store when nil.
	Local storage.Store
	// BackupTTL bounds how long mirrored and fallback entries live; 0 keeps them.
	BackupTTL time.Duration

	Now    func() time.Time
	Logger zerolog.Logger
	HTTP   *resty.Client
}

// StoreResult describes where a blob ended up.
type StoreResult struct {
	ID string `json:"id"`
	// UsedFallback is true when no publisher accepted the blob and ID is a
	// local id.
	UsedFallback bool `json:"usedFallback"`
	// Source is the publisher endpoint that accepted the blob, or SourceLocal.
	Source string `json:"source"`
	// AlreadyCertified reports a publisher that already held the same bytes.
	AlreadyCertified bool `json:"alreadyCertified,omitempty"`
}

type Client struct {
	publishers  []*walrus.Publisher
	aggregators []*walrus.Aggregator
	local       storage.Store
	backupTTL   time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

func New(opts Options) *Client {
	wopts := walrus.Options{
		Timeout:     opts.Timeout,
		Epochs:      opts.Epochs,
		RequireJSON: opts.RequireJSON,
		HTTP:        opts.HTTP,
	}
	if wopts.HTTP == nil {
		wopts.HTTP = resty.New()
	}

	c := &Client{
		local:     opts.Local,
		backupTTL: opts.BackupTTL,
		now:       opts.Now,
		log:       opts.Logger,
	}
	if c.local == nil {
		c.local = memory.New(0)
	}
	if c.now == nil {
		c.now = time.Now
	}
	for _, ep := range opts.Publishers {
		c.publishers = append(c.publishers, walrus.NewPublisher(ep, wopts))
	}
	for _, ep := range opts.Aggregators {
		c.aggregators = append(c.aggregators, walrus.NewAggregator(ep, wopts))
	}
	return c
}

// Initialized reports whether the client has somewhere to read from. An
// uninitialized client still stores and retrieves through the local store.
func (c *Client) Initialized() bool { return len(c.aggregators) > 0 }

// Local returns the fallback store.
func (c *Client) Local() storage.Store { return c.local }

// Store uploads payload and returns its id. It fails only when every
// publisher failed and the local store could not keep the blob either, or
// when ctx was cancelled.
func (c *Client) Store(ctx context.Context, payload []byte) (StoreResult, error) {
	candidates := make([]storage.Candidate[walrus.StoreResponse], 0, len(c.publishers))
	for _, p := range c.publishers {
		p := p
		candidates = append(candidates, storage.Candidate[walrus.StoreResponse]{
			Name: p.Endpoint,
			Do: func(ctx context.Context) (walrus.StoreResponse, error) {
				return p.Store(ctx, payload)
			},
		})
	}

	out, err := storage.FirstSuccess(ctx, "store", candidates)
	c.logAttempts("store", out.Attempts)
	if err == nil {
		id, certified := out.Value.BlobID()
		if berr := c.local.Set(ctx, storage.StoreKey(id), payload, c.backupTTL); berr != nil {
			c.log.Warn().Err(berr).Str("blobId", id).Msg("local backup failed")
		}
		c.log.Debug().Str("blobId", id).Str("publisher", out.Source).Bool("alreadyCertified", certified).Msg("blob stored")
		return StoreResult{ID: id, Source: out.Source, AlreadyCertified: certified}, nil
	}
	if !storage.IsExhausted(err) {
		return StoreResult{}, err
	}

	id := storage.NewLocalID(c.now())
	if lerr := c.local.Set(ctx, storage.StoreKey(id), payload, c.backupTTL); lerr != nil {
		return StoreResult{}, fmt.Errorf("%w: %w (after %w)", storage.ErrLocalStorage, lerr, err)
	}
	c.log.Warn().Err(err).Str("blobId", id).Msg("no publisher accepted the blob, kept locally")
	return StoreResult{ID: id, UsedFallback: true, Source: SourceLocal}, nil
}

// Retrieve returns the bytes of blob id, or storage.ErrNotFound when neither
// an aggregator nor the local store has them. Endpoint failures are never
// returned; they only move the lookup to the next source.
func (c *Client) Retrieve(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, storage.ErrInvalidID
	}

	var candidates []storage.Candidate[[]byte]
	localFirst := !c.Initialized() || storage.IsLocalID(id)
	if localFirst {
		candidates = append(candidates, c.localCandidate(id))
	}
	for _, a := range c.aggregators {
		a := a
		candidates = append(candidates, storage.Candidate[[]byte]{
			Name: a.Endpoint,
			Do: func(ctx context.Context) ([]byte, error) {
				return a.Read(ctx, id)
			},
		})
	}
	if !localFirst {
		candidates = append(candidates, c.localCandidate(id))
	}

	out, err := storage.FirstSuccess(ctx, "retrieve", candidates)
	c.logAttempts("retrieve", out.Attempts)
	switch {
	case err == nil:
		if out.Source == SourceLocal && !localFirst {
			c.log.Warn().Str("blobId", id).Msg("served from local store")
		}
		return out.Value, nil
	case storage.IsExhausted(err):
		return nil, fmt.Errorf("%w: blob %s", storage.ErrNotFound, id)
	default:
		return nil, err
	}
}

func (c *Client) localCandidate(id string) storage.Candidate[[]byte] {
	return storage.Candidate[[]byte]{
		Name: SourceLocal,
		Do: func(ctx context.Context) ([]byte, error) {
			b, err := c.local.Get(ctx, storage.StoreKey(id))
			if errors.Is(err, storage.ErrIntegrity) {
				c.log.Warn().Err(err).Str("blobId", id).Msg("discarding corrupt local entry")
				return nil, storage.ErrNotFound
			}
			return b, err
		},
	}
}

func (c *Client) logAttempts(op string, attempts []storage.Attempt) {
	for _, a := range attempts {
		if a.Err == nil || a.Source == SourceLocal {
			continue
		}
		c.log.Warn().Err(a.Err).Str("op", op).Str("endpoint", a.Source).Dur("elapsed", a.Elapsed).Msg("endpoint failed")
	}
}
