package engine

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/multisig/action"
	"xdao.co/multisig/events"
	"xdao.co/multisig/identity"
	"xdao.co/multisig/storage"
)

// snapshotVersion guards the snapshot schema.
const snapshotVersion = 1

type snapshotUser struct {
	Address identity.Address `json:"address"`
	Role    identity.Role    `json:"role"`
}

type snapshotAction struct {
	ID        uint64             `json:"id"`
	Proposer  identity.Address   `json:"proposer"`
	CreatedAt int64              `json:"createdAt"`
	Action    action.Envelope    `json:"action"`
	Signers   []identity.Address `json:"signers,omitempty"`
}

type snapshotJSON struct {
	Version      int              `json:"version"`
	Quorum       uint32           `json:"quorum"`
	LastActionID uint64           `json:"lastActionID"`
	Users        []snapshotUser   `json:"users"`
	Actions      []snapshotAction `json:"actions"`
}

// Snapshot serializes the complete governance state as canonical JSON.
//
// Users sort by address and actions by id, so equal states always produce
// equal bytes; the snapshot is a fit input for content addressing.
func (e *Engine) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := snapshotJSON{
		Version:      snapshotVersion,
		Quorum:       e.quorum,
		LastActionID: e.lastID,
	}

	addrs := make([]identity.Address, 0, len(e.roles))
	for addr := range e.roles {
		addrs = append(addrs, addr)
	}
	identity.SortAddresses(addrs)
	for _, addr := range addrs {
		snap.Users = append(snap.Users, snapshotUser{Address: addr, Role: e.roles[addr]})
	}

	for _, id := range e.idsLocked() {
		a := e.actions[id]
		signers := make([]identity.Address, 0, len(a.signers))
		for s := range a.signers {
			signers = append(signers, s)
		}
		identity.SortAddresses(signers)
		snap.Actions = append(snap.Actions, snapshotAction{
			ID:        a.id,
			Proposer:  a.proposer,
			CreatedAt: a.createdAt,
			Action:    action.Envelope{Payload: a.payload},
			Signers:   signers,
		})
	}

	return json.Marshal(snap)
}

func (e *Engine) idsLocked() []uint64 {
	out := make([]uint64, 0, len(e.actions))
	for id := range e.actions {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SaveSnapshot persists the current state to cas and returns its CID.
func (e *Engine) SaveSnapshot(cas storage.CAS) (cid.Cid, error) {
	b, err := e.Snapshot()
	if err != nil {
		return cid.Undef, err
	}
	return cas.Put(b)
}

// FromSnapshot reconstructs an engine from snapshot bytes.
//
// Membership, quorum, pending actions, and the id counter come from the
// snapshot; cfg supplies only the runtime handles (Executor, Events, Now).
// cfg.Board, cfg.Proposers, and cfg.Quorum are ignored.
func FromSnapshot(data []byte, cfg Config) (*Engine, error) {
	if cfg.Executor == nil {
		return nil, newError(KindInvalidConfig, "MSIG-CFG-001", "engine requires an executor")
	}
	var snap snapshotJSON
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &Error{Kind: KindInvalidConfig, RuleID: "MSIG-SNAP-001", Message: "malformed snapshot", Cause: err}
	}
	if snap.Version != snapshotVersion {
		return nil, newError(KindInvalidConfig, "MSIG-SNAP-002", "unsupported snapshot version")
	}

	e := &Engine{
		roles:   make(map[identity.Address]identity.Role),
		actions: make(map[uint64]*storedAction),
		lastID:  snap.LastActionID,
		exec:    cfg.Executor,
		events:  cfg.Events,
		now:     cfg.Now,
	}
	if e.events == nil {
		e.events = events.NopSink{}
	}
	if e.now == nil {
		e.now = func() int64 { return time.Now().Unix() }
	}

	for _, u := range snap.Users {
		if u.Address.IsZero() || u.Role == identity.RoleNone {
			return nil, newError(KindInvalidConfig, "MSIG-SNAP-003", "snapshot user without address or role")
		}
		if _, dup := e.roles[u.Address]; dup {
			return nil, newError(KindInvalidConfig, "MSIG-SNAP-003", "duplicate snapshot user "+u.Address.String())
		}
		e.setRoleLocked(u.Address, u.Role)
	}
	if snap.Quorum == 0 || int(snap.Quorum) > e.boardCount {
		return nil, newError(KindInvalidQuorum, "MSIG-QRM-001", "snapshot quorum out of range")
	}
	e.quorum = snap.Quorum

	for _, sa := range snap.Actions {
		if sa.ID == 0 || sa.ID > snap.LastActionID {
			return nil, newError(KindInvalidConfig, "MSIG-SNAP-004", "snapshot action id outside allocated range")
		}
		if _, dup := e.actions[sa.ID]; dup {
			return nil, newError(KindInvalidConfig, "MSIG-SNAP-004", "duplicate snapshot action id")
		}
		if sa.Action.Payload == nil {
			return nil, newError(KindInvalidConfig, "MSIG-SNAP-004", "snapshot action without payload")
		}
		stored := &storedAction{
			id:        sa.ID,
			payload:   sa.Action.Payload,
			proposer:  sa.Proposer,
			createdAt: sa.CreatedAt,
			signers:   make(map[identity.Address]struct{}, len(sa.Signers)),
		}
		// Stale signers (no longer board members) restore as-is; they are
		// excluded at count time, exactly as they were before the snapshot.
		for _, s := range sa.Signers {
			stored.signers[s] = struct{}{}
		}
		e.actions[sa.ID] = stored
	}

	return e, nil
}

// LoadSnapshot fetches snapshot bytes from cas and reconstructs the engine.
func LoadSnapshot(cas storage.CAS, id cid.Cid, cfg Config) (*Engine, error) {
	b, err := cas.Get(id)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(b, cfg)
}
