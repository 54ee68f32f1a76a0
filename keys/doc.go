// Package keys manages wallet keys for DAO participants.
//
// Stable:
//   - Pure, deterministic primitives: role-seed derivation, signers built
//     from a seed, address and public-key formatting, verification.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore). It is a local-first
//     convenience for the CLI and may change between minor releases.
package keys
