package engine

import (
	"sort"

	"xdao.co/multisig/action"
	"xdao.co/multisig/identity"
)

// ActionInfo is a read-only view of a stored action.
type ActionInfo struct {
	ID        uint64
	Proposer  identity.Address
	CreatedAt int64
	Payload   action.Payload

	// Signers lists every recorded endorsement in canonical address order,
	// including stale ones from since-demoted members.
	Signers []identity.Address

	// EffectiveSignatures counts signers holding the board-member role now.
	EffectiveSignatures int
}

// RoleOf returns addr's current role; unknown accounts have RoleNone.
func (e *Engine) RoleOf(addr identity.Address) identity.Role {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roleLocked(addr)
}

// Quorum returns the current signature threshold.
func (e *Engine) Quorum() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quorum
}

// BoardMemberCount returns the number of accounts holding the board role.
func (e *Engine) BoardMemberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boardCount
}

// BoardMembers lists the board in canonical address order.
func (e *Engine) BoardMembers() []identity.Address {
	return e.withRole(identity.RoleBoardMember)
}

// Proposers lists proposer accounts in canonical address order.
func (e *Engine) Proposers() []identity.Address {
	return e.withRole(identity.RoleProposer)
}

func (e *Engine) withRole(role identity.Role) []identity.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []identity.Address
	for addr, r := range e.roles {
		if r == role {
			out = append(out, addr)
		}
	}
	identity.SortAddresses(out)
	return out
}

// PendingActionIDs lists stored action ids in ascending order.
func (e *Engine) PendingActionIDs() []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]uint64, 0, len(e.actions))
	for id := range e.actions {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Action returns the stored action with the given id.
func (e *Engine) Action(id uint64) (ActionInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actions[id]
	if !ok {
		return ActionInfo{}, e.notFound(id)
	}
	return e.infoLocked(a), nil
}

func (e *Engine) infoLocked(a *storedAction) ActionInfo {
	signers := make([]identity.Address, 0, len(a.signers))
	for s := range a.signers {
		signers = append(signers, s)
	}
	identity.SortAddresses(signers)
	return ActionInfo{
		ID:                  a.id,
		Proposer:            a.proposer,
		CreatedAt:           a.createdAt,
		Payload:             a.payload,
		Signers:             signers,
		EffectiveSignatures: e.signatureCountLocked(a),
	}
}

// SignatureCount returns the effective signature count for an action.
func (e *Engine) SignatureCount(id uint64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actions[id]
	if !ok {
		return 0, e.notFound(id)
	}
	return e.signatureCountLocked(a), nil
}

// Signed reports whether addr has a recorded endorsement on the action,
// stale or not.
func (e *Engine) Signed(id uint64, addr identity.Address) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actions[id]
	if !ok {
		return false, e.notFound(id)
	}
	_, signed := a.signers[addr]
	return signed, nil
}

// QuorumReached reports whether the action's effective signature count
// meets the current quorum. Recomputed live; never cached.
func (e *Engine) QuorumReached(id uint64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actions[id]
	if !ok {
		return false, e.notFound(id)
	}
	return e.quorumReachedLocked(a), nil
}
