package tx

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"xdao.co/datadao/keys"
)

// intentTransaction prefixes transaction bytes before hashing: scope
// TransactionData, version 0, app id 0.
var intentTransaction = [3]byte{0, 0, 0}

var ErrBadSignature = errors.New("tx: signature does not verify")

// Data is an unsigned transaction: one Move call plus gas parameters.
type Data struct {
	Sender    string
	GasBudget uint64
	Nonce     uint64
	Call      MoveCall
}

// Bytes BCS-encodes d.
func (d Data) Bytes() ([]byte, error) {
	if err := d.Call.Validate(); err != nil {
		return nil, err
	}
	var e Encoder
	if err := e.Address(d.Sender); err != nil {
		return nil, fmt.Errorf("tx: sender: %w", err)
	}
	d.Call.encode(&e)
	e.U64(d.GasBudget)
	e.U64(d.Nonce)
	return e.Bytes(), nil
}

// Digest is blake2b-256 over the intent prefix and txBytes.
func Digest(txBytes []byte) [32]byte {
	h, _ := blake2b.New256(nil)
	_, _ = h.Write(intentTransaction[:])
	_, _ = h.Write(txBytes)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SignedEnvelope is a signed transaction ready for submission. All fields
// are standard base64. Signature is flag || signature || public key.
type SignedEnvelope struct {
	TxBytes   string `json:"txBytes"`
	Signature string `json:"signature"`
	Digest    string `json:"digest"`
}

// Sign builds and signs a transaction. An empty sender defaults to the
// signer's own address.
func Sign(call MoveCall, signer keys.Signer, sender string, gasBudget, nonce uint64) (SignedEnvelope, error) {
	if signer == nil {
		return SignedEnvelope{}, errors.New("tx: signer is required")
	}
	if sender == "" {
		sender = keys.SignerAddress(signer)
	}
	txBytes, err := Data{Sender: sender, GasBudget: gasBudget, Nonce: nonce, Call: call}.Bytes()
	if err != nil {
		return SignedEnvelope{}, err
	}
	digest := Digest(txBytes)
	sig, err := signer.Sign(digest[:])
	if err != nil {
		return SignedEnvelope{}, fmt.Errorf("tx: sign: %w", err)
	}

	pub := signer.PublicKey()
	serialized := make([]byte, 0, 1+len(sig)+len(pub))
	serialized = append(serialized, byte(signer.Scheme()))
	serialized = append(serialized, sig...)
	serialized = append(serialized, pub...)

	return SignedEnvelope{
		TxBytes:   base64.StdEncoding.EncodeToString(txBytes),
		Signature: base64.StdEncoding.EncodeToString(serialized),
		Digest:    base64.StdEncoding.EncodeToString(digest[:]),
	}, nil
}

// Verify checks that env's signature covers its transaction bytes and that
// the digest matches. It returns the signer's address.
func Verify(env SignedEnvelope) (string, error) {
	txBytes, err := base64.StdEncoding.DecodeString(env.TxBytes)
	if err != nil {
		return "", fmt.Errorf("tx: txBytes: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return "", fmt.Errorf("tx: signature: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrBadSignature
	}
	scheme := keys.Scheme(raw[0])
	n := keys.SignatureSize(scheme)
	if n == 0 || len(raw) <= 1+n {
		return "", ErrBadSignature
	}
	sig, pub := raw[1:1+n], raw[1+n:]

	digest := Digest(txBytes)
	if env.Digest != base64.StdEncoding.EncodeToString(digest[:]) {
		return "", fmt.Errorf("%w: digest mismatch", ErrBadSignature)
	}
	if !keys.Verify(scheme, pub, digest[:], sig) {
		return "", ErrBadSignature
	}
	return keys.Address(scheme, pub), nil
}
