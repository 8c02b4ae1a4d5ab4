package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/multisig/cidutil"
)

// NamedCAS associates a CAS with a stable backend name, for per-backend
// reporting when snapshots replicate to several stores.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS writes every snapshot to all configured backends.
//
// Reads fall back in slice order, which keeps retrieval deterministic.
// Writes go to all backends and require all returned CIDs to match
// (otherwise ErrCIDMismatch is returned).
//
// Use PutAll when the per-backend CID mapping is needed.
type ReplicatingCAS struct {
	Backends []NamedCAS
}

var _ CAS = (*ReplicatingCAS)(nil)

// PutAll writes the same bytes to all backends.
//
// It returns the canonical CID (computed from bytes) and a map of backend
// name -> returned CID. If any backend returns a different CID,
// ErrCIDMismatch is returned.
func (r ReplicatingCAS) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: ReplicatingCAS has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.CAS == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
		got, err := b.CAS.Put(bytes)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingCAS) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	for _, b := range r.Backends {
		if b.CAS == nil {
			continue
		}
		bytes, err := b.CAS.Get(id)
		if err == nil {
			return bytes, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingCAS) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.CAS != nil && b.CAS.Has(id) {
			return true
		}
	}
	return false
}
