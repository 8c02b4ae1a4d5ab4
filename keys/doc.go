// Package keys provides endorsement-key helpers for governance participants.
//
// API stability:
//
// Stable (SemVer-protected):
//   - Pure, deterministic primitives for address derivation, sub-key seed
//     derivation, and endorsement signing/verification.
//
// Experimental:
//   - Filesystem-backed key storage and convenience helpers (KeyStore and
//     related functions). These are local-first utilities and are not part
//     of the long-term protocol contract.
package keys
