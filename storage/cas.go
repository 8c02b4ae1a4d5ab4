// Package storage defines the content-addressable store the governance
// engine persists its state snapshots to, plus composition helpers for
// running several backends side by side.
package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// Sentinel errors shared by every backend. Backends return these directly
// so callers can branch without knowing which backend served the request.
var (
	// ErrNotFound reports that no object is stored under the requested CID.
	ErrNotFound = errors.New("storage: no object for cid")

	// ErrInvalidCID reports a CID the backend cannot serve, such as an
	// undefined CID or an unsupported codec.
	ErrInvalidCID = errors.New("storage: unusable cid")

	// ErrCIDMismatch reports stored bytes that no longer hash to their CID.
	// Snapshot loads treat this as corruption, never as absence.
	ErrCIDMismatch = errors.New("storage: bytes do not match cid")

	// ErrImmutable reports an attempt to overwrite an existing object with
	// different bytes.
	ErrImmutable = errors.New("storage: object is immutable")
)

// IsNotFound reports whether err means the object is absent rather than
// unreadable.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (callers supply canonical bytes;
//   engine snapshots and action renders are canonical by construction).
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
