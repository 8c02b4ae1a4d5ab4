package model

import (
	"encoding/json"

	"xdao.co/multisig/action"
)

// SignedRequest is the authenticated envelope for every governance call.
//
// Body holds the operation-specific JSON payload; Signature is a detached
// signature over exactly those bytes. Caller must equal the address derived
// from PublicKey, so the engine-side identity check needs no key directory.
//
// JSON note: PublicKey and Signature are encoded as base64 by encoding/json.
type SignedRequest struct {
	// Caller is the hex-encoded account address of the signer.
	Caller string `json:"caller"`
	// Scheme names the signature scheme ("ed25519" or "dilithium3").
	Scheme string `json:"scheme"`
	// PublicKey is the signer's raw public key bytes.
	PublicKey []byte `json:"publicKey"`
	// Signature is a detached signature over Body.
	Signature []byte `json:"signature"`
	// Body is the operation payload, verified byte-for-byte.
	Body json.RawMessage `json:"body"`
}

// ProposeBody asks the engine to record a new pending action.
//
// IssuedAt is the Unix time the request was signed. The server rejects
// requests outside its freshness window, so a captured envelope cannot be
// replayed later.
type ProposeBody struct {
	Action   action.Envelope `json:"action"`
	IssuedAt int64           `json:"issuedAt"`
}

// ActionIDBody addresses an existing pending action. It is the body for
// sign, unsign, discard, and perform. IssuedAt works as in ProposeBody.
type ActionIDBody struct {
	ActionID uint64 `json:"actionId"`
	IssuedAt int64  `json:"issuedAt,omitempty"`
}

type ProposeResponse struct {
	ActionID uint64 `json:"actionId"`
}

// PerformResponse reports the outcome of executing a ready action.
// CallError is set when the downstream call failed after the action was
// consumed; the action does not return to the pending set.
type PerformResponse struct {
	ActionID   uint64 `json:"actionId"`
	Kind       string `json:"kind"`
	NewAddress string `json:"newAddress,omitempty"`
	CallError  string `json:"callError,omitempty"`
}

// ActionSummary is the remote view of one pending action.
type ActionSummary struct {
	ID         uint64   `json:"id"`
	Kind       string   `json:"kind"`
	Proposer   string   `json:"proposer"`
	CreatedAt  int64    `json:"createdAt"`
	Signers    []string `json:"signers"`
	Signatures uint32   `json:"signatures"`
	Ready      bool     `json:"ready"`
}

type ActionResponse struct {
	ActionSummary
	Action action.Envelope `json:"action"`
}

type StatusResponse struct {
	Quorum       uint32          `json:"quorum"`
	BoardMembers []string        `json:"boardMembers"`
	Proposers    []string        `json:"proposers"`
	Pending      []ActionSummary `json:"pending"`
}

type SnapshotResponse struct {
	CID string `json:"cid"`
}
