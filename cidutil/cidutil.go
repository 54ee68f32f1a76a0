// Package cidutil derives the content identifiers used to verify blob bytes.
package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrMismatch is returned by Verify when bytes do not hash to the given CID.
var ErrMismatch = errors.New("cidutil: content does not match cid")

// BlobCID returns a CIDv1 (raw + sha2-256) derived from data.
func BlobCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// BlobCIDString is BlobCID rendered in its default (base32) string form.
func BlobCIDString(data []byte) string {
	id, err := BlobCID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return id.String()
}

// Verify checks that data hashes to the CID encoded in s.
func Verify(s string, data []byte) error {
	want, err := cid.Decode(s)
	if err != nil {
		return err
	}
	got, err := BlobCID(data)
	if err != nil {
		return err
	}
	if !got.Equals(want) {
		return ErrMismatch
	}
	return nil
}
