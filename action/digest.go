package action

import (
	"github.com/ipfs/go-cid"

	"xdao.co/multisig/cidutil"
)

// Digest returns the CIDv1 (raw, sha2-256) of the canonical render of p.
//
// The digest identifies the intent, not the stored instance: two proposals
// with identical payloads share a digest while holding distinct action ids.
func Digest(p Payload) (cid.Cid, error) {
	b, err := Render(p)
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.CIDv1RawSHA256CID(b)
}

// DigestString is Digest rendered as a CID string, or "" on error.
func DigestString(p Payload) string {
	id, err := Digest(p)
	if err != nil {
		return ""
	}
	return id.String()
}
