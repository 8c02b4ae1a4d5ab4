package storage

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/multisig/cidutil"
)

// MemoryCAS is an in-memory CAS. Snapshots stored here do not survive the
// process; it backs tests and ephemeral daemon runs.
type MemoryCAS struct {
	mu      sync.RWMutex
	objects map[cid.Cid][]byte
}

var _ CAS = (*MemoryCAS)(nil)

func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{objects: make(map[cid.Cid][]byte)}
}

func (m *MemoryCAS) Put(bytes []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	stored := make([]byte, len(bytes))
	copy(stored, bytes)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[id]; !exists {
		m.objects[id] = stored
	}
	return id, nil
}

func (m *MemoryCAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	stored, ok := m.objects[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *MemoryCAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
