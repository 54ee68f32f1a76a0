package tx

import (
	"errors"
	"fmt"
)

type argKind uint8

const (
	argPure argKind = iota
	argObject
)

// Arg is one Move call argument: either BCS-encoded pure bytes or a
// reference to an on-chain object.
type Arg struct {
	kind   argKind
	pure   []byte
	object string
}

// Pure wraps already BCS-encoded bytes.
func Pure(b []byte) Arg { return Arg{kind: argPure, pure: append([]byte(nil), b...)} }

// Object references an object by id.
func Object(id string) Arg { return Arg{kind: argObject, object: id} }

func PureU8(v uint8) Arg {
	var e Encoder
	e.U8(v)
	return Pure(e.Bytes())
}

func PureU64(v uint64) Arg {
	var e Encoder
	e.U64(v)
	return Pure(e.Bytes())
}

func PureBool(v bool) Arg {
	var e Encoder
	e.Bool(v)
	return Pure(e.Bytes())
}

// PureBytes passes b as vector<u8>.
func PureBytes(b []byte) Arg {
	var e Encoder
	e.Vector(b)
	return Pure(e.Bytes())
}

func PureString(s string) Arg { return PureBytes([]byte(s)) }

// IsObject reports whether a is an object reference; ObjectID is then set.
func (a Arg) IsObject() bool { return a.kind == argObject }

func (a Arg) ObjectID() string { return a.object }

// PureBytes returns the BCS bytes of a pure argument.
func (a Arg) PureBytes() []byte { return a.pure }

// MoveCall is a single entry-function call.
type MoveCall struct {
	Package  string
	Module   string
	Function string
	TypeArgs []string
	Args     []Arg
}

// Target returns package::module::function.
func (c MoveCall) Target() string {
	return c.Package + "::" + c.Module + "::" + c.Function
}

func (c MoveCall) Validate() error {
	if _, err := ParseAddress(c.Package); err != nil {
		return fmt.Errorf("tx: package: %w", err)
	}
	if c.Module == "" || c.Function == "" {
		return errors.New("tx: module and function are required")
	}
	for i, a := range c.Args {
		if a.kind == argObject {
			if _, err := ParseAddress(a.object); err != nil {
				return fmt.Errorf("tx: argument %d: %w", i, err)
			}
		}
	}
	return nil
}

// Bytes BCS-encodes the call. Equal calls always encode to equal bytes.
func (c MoveCall) Bytes() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var e Encoder
	c.encode(&e)
	return e.Bytes(), nil
}

// encode assumes c has been validated.
func (c MoveCall) encode(e *Encoder) {
	_ = e.Address(c.Package)
	e.Str(c.Module)
	e.Str(c.Function)
	e.ULEB128(uint64(len(c.TypeArgs)))
	for _, t := range c.TypeArgs {
		e.Str(t)
	}
	e.ULEB128(uint64(len(c.Args)))
	for _, a := range c.Args {
		e.U8(uint8(a.kind))
		switch a.kind {
		case argObject:
			_ = e.ObjectID(a.object)
		default:
			e.Vector(a.pure)
		}
	}
}
