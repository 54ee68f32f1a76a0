// Package tx builds the Move calls the DAO contract accepts and signs them
// into transaction envelopes a wallet or fullnode can submit.
//
// Arguments are serialized with BCS: little-endian fixed-width integers,
// ULEB128 length prefixes, and 32-byte addresses.
package tx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"xdao.co/datadao/internal/fixedint"
)

// AddressSize is the length of an account address or object id.
const AddressSize = 32

var ErrInvalidAddress = errors.New("tx: invalid address")

// Encoder appends BCS values to an internal buffer.
type Encoder struct {
	buf []byte
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) U8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) U64(v uint64) { e.buf = fixedint.AppendUint64LE(e.buf, v) }

func (e *Encoder) Bool(v bool) {
	if v {
		e.U8(1)
		return
	}
	e.U8(0)
}

// ULEB128 writes v as an unsigned LEB128 varint, the BCS length prefix.
func (e *Encoder) ULEB128(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// Vector writes a vector<u8>: ULEB128 length then the bytes.
func (e *Encoder) Vector(b []byte) {
	e.ULEB128(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *Encoder) Str(s string) { e.Vector([]byte(s)) }

// Address writes a 0x-prefixed hex address as 32 raw bytes. Short forms
// such as "0x2" are left-padded with zeros.
func (e *Encoder) Address(s string) error {
	a, err := ParseAddress(s)
	if err != nil {
		return err
	}
	e.buf = append(e.buf, a[:]...)
	return nil
}

// ObjectID is Address; object ids share the address encoding.
func (e *Encoder) ObjectID(s string) error { return e.Address(s) }

// ParseAddress decodes a 0x-prefixed hex address of up to 64 digits.
func ParseAddress(s string) ([AddressSize]byte, error) {
	var out [AddressSize]byte
	h := strings.TrimSpace(s)
	if !strings.HasPrefix(h, "0x") && !strings.HasPrefix(h, "0X") {
		return out, fmt.Errorf("%w: %q lacks 0x prefix", ErrInvalidAddress, s)
	}
	h = h[2:]
	if h == "" || len(h) > 2*AddressSize {
		return out, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if len(h)%2 == 1 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return out, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	copy(out[AddressSize-len(b):], b)
	return out, nil
}

// NormalizeAddress returns the canonical 66-character form of s.
func NormalizeAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(a[:]), nil
}
