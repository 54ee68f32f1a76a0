// Package fixedint holds the fixed-width integer helpers shared by the
// proposal codec and the BCS writer, so both directions use one layout.
package fixedint

import (
	"encoding/binary"
	"fmt"
)

// Uint64Size is the encoded width of a u64.
const Uint64Size = 8

// PutUint64LE writes v into dst[:8] little-endian. dst must hold 8 bytes.
func PutUint64LE(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst[:Uint64Size], v)
}

// AppendUint64LE appends the little-endian encoding of v to dst.
func AppendUint64LE(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// Uint64LE reads a little-endian u64 from exactly 8 bytes.
func Uint64LE(src []byte) (uint64, error) {
	if len(src) != Uint64Size {
		return 0, fmt.Errorf("fixedint: u64 needs %d bytes, got %d", Uint64Size, len(src))
	}
	return binary.LittleEndian.Uint64(src), nil
}
