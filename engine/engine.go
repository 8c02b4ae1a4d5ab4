// Package engine implements the governance state machine for a shared
// on-chain account: role registry, quorum configuration, the pending
// action store with its signature ledger, and the dispatcher that executes
// an action once enough board members have endorsed it.
//
// Every public operation is a single atomic transaction: checks run first
// and a rejected operation leaves no partial state behind. Readiness is a
// derived predicate over live board membership and the current quorum, not
// a stored flag, so role and quorum changes are reflected immediately.
package engine

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"xdao.co/multisig/action"
	"xdao.co/multisig/events"
	"xdao.co/multisig/executor"
	"xdao.co/multisig/identity"
)

// Config carries the injected state handles for a new engine instance.
type Config struct {
	// Board is the initial board membership. Required, duplicate-free.
	Board []identity.Address

	// Proposers optionally seeds accounts with the proposer role.
	Proposers []identity.Address

	// Quorum is the initial signature threshold; 1 <= Quorum <= len(Board).
	Quorum uint32

	// Executor handles outbound transfers, calls, and deployments. Required.
	Executor executor.Executor

	// Events receives fire-and-forget notifications. Defaults to a no-op sink.
	Events events.Sink

	// Now supplies creation timestamps for stored actions. Defaults to
	// time.Now().Unix; tests inject a fixed clock for determinism.
	Now func() int64
}

type storedAction struct {
	id        uint64
	payload   action.Payload
	proposer  identity.Address
	createdAt int64
	signers   map[identity.Address]struct{}
}

// Engine is a single governed account's action-lifecycle state machine.
//
// The zero value is not usable; construct instances with New or FromSnapshot.
type Engine struct {
	mu sync.Mutex

	roles      map[identity.Address]identity.Role
	boardCount int
	quorum     uint32

	actions map[uint64]*storedAction
	lastID  uint64

	exec   executor.Executor
	events events.Sink
	now    func() int64
}

// New constructs an engine with the given initial membership and quorum.
func New(cfg Config) (*Engine, error) {
	if cfg.Executor == nil {
		return nil, newError(KindInvalidConfig, "MSIG-CFG-001", "engine requires an executor")
	}
	if len(cfg.Board) == 0 {
		return nil, newError(KindInvalidConfig, "MSIG-CFG-002", "initial board must not be empty")
	}
	e := &Engine{
		roles:   make(map[identity.Address]identity.Role),
		actions: make(map[uint64]*storedAction),
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
	for _, addr := range cfg.Board {
		if addr.IsZero() {
			return nil, newError(KindInvalidConfig, "MSIG-CFG-003", "zero address cannot hold a role")
		}
		if _, dup := e.roles[addr]; dup {
			return nil, newError(KindInvalidConfig, "MSIG-CFG-004", "duplicate board member "+addr.String())
		}
		e.setRoleLocked(addr, identity.RoleBoardMember)
	}
	for _, addr := range cfg.Proposers {
		if addr.IsZero() {
			return nil, newError(KindInvalidConfig, "MSIG-CFG-003", "zero address cannot hold a role")
		}
		if _, dup := e.roles[addr]; dup {
			return nil, newError(KindInvalidConfig, "MSIG-CFG-004", "duplicate identity "+addr.String())
		}
		e.setRoleLocked(addr, identity.RoleProposer)
	}
	if cfg.Quorum == 0 || int(cfg.Quorum) > e.boardCount {
		return nil, newError(KindInvalidQuorum, "MSIG-QRM-001",
			fmt.Sprintf("quorum %d out of range [1, %d]", cfg.Quorum, e.boardCount))
	}
	e.quorum = cfg.Quorum
	return e, nil
}

// setRoleLocked overwrites an account's role and keeps the board count
// consistent with the transition. Not reachable from outside the engine
// except through executed actions and construction.
func (e *Engine) setRoleLocked(addr identity.Address, role identity.Role) {
	old := e.roles[addr]
	if old == identity.RoleBoardMember && role != identity.RoleBoardMember {
		e.boardCount--
	}
	if old != identity.RoleBoardMember && role == identity.RoleBoardMember {
		e.boardCount++
	}
	if role == identity.RoleNone {
		delete(e.roles, addr)
		return
	}
	e.roles[addr] = role
}

func (e *Engine) roleLocked(addr identity.Address) identity.Role {
	return e.roles[addr]
}

// Propose stores a new pending action and returns its id.
//
// Ids start at 1 and strictly increase for the life of the engine; an id is
// never reused, even after the action is performed or discarded.
func (e *Engine) Propose(caller identity.Address, payload action.Payload) (uint64, error) {
	if payload == nil {
		return 0, newError(KindInvalidCall, "MSIG-CALL-004", "nil action payload")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roleLocked(caller).CanPropose() {
		return 0, newError(KindUnauthorized, "MSIG-AUTH-001", "only proposers and board members may propose")
	}
	e.lastID++
	id := e.lastID
	e.actions[id] = &storedAction{
		id:        id,
		payload:   payload,
		proposer:  caller,
		createdAt: e.now(),
		signers:   make(map[identity.Address]struct{}),
	}
	e.events.Emit(events.Event{
		Name:     events.ProposeAction,
		ActionID: id,
		Caller:   caller,
		CallType: string(payload.Kind()),
	})
	return id, nil
}

// ProposeAddBoardMember proposes promoting addr to board member.
func (e *Engine) ProposeAddBoardMember(caller, addr identity.Address) (uint64, error) {
	return e.Propose(caller, action.AddBoardMember{Address: addr})
}

// ProposeAddProposer proposes granting addr the proposer role.
func (e *Engine) ProposeAddProposer(caller, addr identity.Address) (uint64, error) {
	return e.Propose(caller, action.AddProposer{Address: addr})
}

// ProposeRemoveUser proposes stripping addr of its role.
func (e *Engine) ProposeRemoveUser(caller, addr identity.Address) (uint64, error) {
	return e.Propose(caller, action.RemoveUser{Address: addr})
}

// ProposeChangeQuorum proposes a new signature threshold.
func (e *Engine) ProposeChangeQuorum(caller identity.Address, newQuorum uint32) (uint64, error) {
	return e.Propose(caller, action.ChangeQuorum{NewQuorum: newQuorum})
}

// ProposeTransferExecute proposes a synchronous transfer-and-call.
func (e *Engine) ProposeTransferExecute(caller, to identity.Address, amount *big.Int, endpoint string, args [][]byte) (uint64, error) {
	return e.Propose(caller, action.SendTransferExecute{Call: action.CallData{
		To: to, Amount: amount, Endpoint: endpoint, Arguments: args,
	}})
}

// ProposeAsyncCall proposes an asynchronous call.
func (e *Engine) ProposeAsyncCall(caller, to identity.Address, amount *big.Int, endpoint string, args [][]byte) (uint64, error) {
	return e.Propose(caller, action.SendAsyncCall{Call: action.CallData{
		To: to, Amount: amount, Endpoint: endpoint, Arguments: args,
	}})
}

// ProposeSCDeployFromSource proposes deploying a contract from source's code.
func (e *Engine) ProposeSCDeployFromSource(caller identity.Address, amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) (uint64, error) {
	return e.Propose(caller, action.SCDeployFromSource{
		Amount: amount, Source: source, CodeMetadata: meta, Arguments: args,
	})
}

// ProposeSCUpgradeFromSource proposes upgrading target from source's code.
func (e *Engine) ProposeSCUpgradeFromSource(caller, target identity.Address, amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) (uint64, error) {
	return e.Propose(caller, action.SCUpgradeFromSource{
		Target: target, Amount: amount, Source: source, CodeMetadata: meta, Arguments: args,
	})
}

// Sign endorses a pending action. Signing twice is a no-op, not an error.
func (e *Engine) Sign(caller identity.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roleLocked(caller).CanSign() {
		return newError(KindUnauthorized, "MSIG-AUTH-002", "only board members may sign")
	}
	a, ok := e.actions[id]
	if !ok {
		return e.notFound(id)
	}
	if _, signed := a.signers[caller]; signed {
		return nil
	}
	a.signers[caller] = struct{}{}
	e.events.Emit(events.Event{Name: events.SignAction, ActionID: id, Caller: caller})
	return nil
}

// Unsign withdraws an endorsement. Withdrawing an absent one is a no-op.
func (e *Engine) Unsign(caller identity.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roleLocked(caller).CanSign() {
		return newError(KindUnauthorized, "MSIG-AUTH-002", "only board members may unsign")
	}
	a, ok := e.actions[id]
	if !ok {
		return e.notFound(id)
	}
	if _, signed := a.signers[caller]; !signed {
		return nil
	}
	delete(a.signers, caller)
	e.events.Emit(events.Event{Name: events.UnsignAction, ActionID: id, Caller: caller})
	return nil
}

// Discard removes a pending action that has not reached quorum.
//
// Board members and the original proposer may discard. An action whose
// quorum is satisfied is performable authorized intent and must be
// performed or left pending, never silently dropped.
func (e *Engine) Discard(caller identity.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actions[id]
	if !ok {
		return e.notFound(id)
	}
	if !e.roleLocked(caller).CanSign() && caller != a.proposer {
		return newError(KindUnauthorized, "MSIG-AUTH-004", "only board members or the original proposer may discard")
	}
	if e.quorumReachedLocked(a) {
		return newError(KindInvalidCall, "MSIG-ACT-003", "cannot discard an action that has reached quorum")
	}
	delete(e.actions, id)
	e.events.Emit(events.Event{Name: events.DiscardAction, ActionID: id, Caller: caller})
	return nil
}

// Perform executes a ready action's effect and removes it from storage.
//
// A governance-side rejection (not ready, malformed call, stranding
// demotion, invalid quorum) leaves the action pending and untouched. Once
// the engine commits to executing, a downstream call failure does not roll
// the governance state back; it is reported in the Outcome.
func (e *Engine) Perform(caller identity.Address, id uint64) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roleLocked(caller).CanSign() {
		return nil, newError(KindUnauthorized, "MSIG-AUTH-003", "only board members may perform")
	}
	a, ok := e.actions[id]
	if !ok {
		return nil, e.notFound(id)
	}
	if !e.quorumReachedLocked(a) {
		return nil, newError(KindQuorumNotMet, "MSIG-ACT-002",
			fmt.Sprintf("action %d has %d of %d required signatures", id, e.signatureCountLocked(a), e.quorum))
	}
	e.events.Emit(events.Event{
		Name:     events.StartPerformAction,
		ActionID: id,
		Caller:   caller,
		CallType: string(a.payload.Kind()),
	})
	outcome, err := e.dispatchLocked(a)
	if err != nil {
		// Every start event gets a counterpart: the action stays pending and
		// the rejection is visible in the stream.
		e.events.Emit(events.Event{
			Name:     events.PerformActionRejected,
			ActionID: id,
			Caller:   caller,
			CallType: string(a.payload.Kind()),
			Data:     []byte(err.Error()),
		})
		return nil, err
	}
	delete(e.actions, id)
	return outcome, nil
}

// AsyncCallResult is the callback entry point for asynchronous calls
// dispatched by Perform. It only reports; the initiating action was already
// executed and removed, and callbacks may arrive in any order.
func (e *Engine) AsyncCallResult(callID uint64, ok bool, payload []byte) {
	name := events.AsyncCallSuccess
	if !ok {
		name = events.AsyncCallError
	}
	e.events.Emit(events.Event{Name: name, ActionID: callID, Data: payload})
}

func (e *Engine) notFound(id uint64) error {
	return newError(KindNotFound, "MSIG-ACT-001", fmt.Sprintf("no pending action with id %d", id))
}

// signatureCountLocked counts effective signatures: only identities holding
// the board-member role right now. Signatures of demoted members stay
// stored but stop counting; they resume counting on re-promotion.
func (e *Engine) signatureCountLocked(a *storedAction) int {
	n := 0
	for signer := range a.signers {
		if e.roleLocked(signer) == identity.RoleBoardMember {
			n++
		}
	}
	return n
}

func (e *Engine) quorumReachedLocked(a *storedAction) bool {
	return e.signatureCountLocked(a) >= int(e.quorum)
}
