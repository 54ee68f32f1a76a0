// Package walrus speaks the publisher/aggregator HTTP protocol of the
// decentralized blob store: PUT {publisher}/v1/blobs?epochs=N stores a blob,
// GET {aggregator}/v1/blobs/{id} reads it back.
package walrus

import (
	"errors"
	"fmt"
)

const (
	blobsPath = "/v1/blobs"

	// DefaultEpochs is how many storage epochs a blob is paid for.
	DefaultEpochs = 1
)

var (
	ErrBadResponse   = errors.New("walrus: undecodable publisher response")
	ErrMissingBlobID = errors.New("walrus: publisher response carries no blob id")
	ErrInvalidBody   = errors.New("walrus: aggregator body is not valid JSON")
)

// StoreResponse is the publisher's answer to PUT /v1/blobs. Exactly one of
// NewlyCreated and AlreadyCertified is set.
type StoreResponse struct {
	NewlyCreated     *NewlyCreated     `json:"newlyCreated,omitempty"`
	AlreadyCertified *AlreadyCertified `json:"alreadyCertified,omitempty"`
}

type NewlyCreated struct {
	BlobObject BlobObject `json:"blobObject"`
	Cost       uint64     `json:"cost,omitempty"`
}

type BlobObject struct {
	ID              string `json:"id,omitempty"`
	BlobID          string `json:"blobId"`
	RegisteredEpoch uint64 `json:"registeredEpoch,omitempty"`
	CertifiedEpoch  uint64 `json:"certifiedEpoch,omitempty"`
	Size            uint64 `json:"size,omitempty"`
	EncodingType    string `json:"encodingType,omitempty"`
	Deletable       bool   `json:"deletable"`
}

type AlreadyCertified struct {
	BlobID   string `json:"blobId"`
	EndEpoch uint64 `json:"endEpoch,omitempty"`
}

// BlobID returns the id from whichever success shape the publisher used.
func (r StoreResponse) BlobID() (id string, alreadyCertified bool) {
	switch {
	case r.NewlyCreated != nil && r.NewlyCreated.BlobObject.BlobID != "":
		return r.NewlyCreated.BlobObject.BlobID, false
	case r.AlreadyCertified != nil && r.AlreadyCertified.BlobID != "":
		return r.AlreadyCertified.BlobID, true
	default:
		return "", false
	}
}

// EndpointError is the failure of a single publisher or aggregator request.
// The resilient client recovers from it by moving to the next endpoint.
type EndpointError struct {
	Endpoint   string
	Op         string
	StatusCode int
	Err        error
}

func (e *EndpointError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("walrus: %s via %s: HTTP %d: %v", e.Op, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("walrus: %s via %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }
