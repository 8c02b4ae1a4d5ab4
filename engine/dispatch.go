package engine

import (
	"fmt"
	"math/big"

	"xdao.co/multisig/action"
	"xdao.co/multisig/events"
	"xdao.co/multisig/executor"
	"xdao.co/multisig/identity"
)

// Outcome reports what Perform did.
//
// CallErr carries the failure of a delegated external call. It is not a
// governance error: by the time the call runs, the action is executed and
// removed ("fire, do not re-queue").
type Outcome struct {
	ActionID uint64
	Kind     action.Kind

	// NewAddress is set for SCDeployFromSource.
	NewAddress identity.Address

	CallErr error
}

// dispatchLocked branches exhaustively on the action kind. This is the one
// place a new kind has to be handled.
//
// Ordering discipline: all governance-side validation happens before any
// state mutation or external dispatch, so an error return leaves the action
// pending and the registries untouched.
func (e *Engine) dispatchLocked(a *storedAction) (*Outcome, error) {
	out := &Outcome{ActionID: a.id, Kind: a.payload.Kind()}

	switch p := a.payload.(type) {
	case action.AddBoardMember:
		// The zero address can never hold a role; snapshots enforce the same.
		if p.Address.IsZero() {
			return nil, e.zeroRoleTarget()
		}
		e.setRoleLocked(p.Address, identity.RoleBoardMember)
		e.emitChangeUser(a, p.Address, identity.RoleBoardMember)

	case action.AddProposer:
		if p.Address.IsZero() {
			return nil, e.zeroRoleTarget()
		}
		// Demoting a board member to proposer shrinks the board; the demotion
		// must not strand the current quorum.
		if e.roleLocked(p.Address) == identity.RoleBoardMember && e.boardCount-1 < int(e.quorum) {
			return nil, e.strandedQuorum(p.Address)
		}
		e.setRoleLocked(p.Address, identity.RoleProposer)
		e.emitChangeUser(a, p.Address, identity.RoleProposer)

	case action.RemoveUser:
		role := e.roleLocked(p.Address)
		if role == identity.RoleNone {
			return nil, newError(KindNothingToRemove, "MSIG-USR-001",
				"account "+p.Address.String()+" has no role to remove")
		}
		if role == identity.RoleBoardMember && e.boardCount-1 < int(e.quorum) {
			return nil, e.strandedQuorum(p.Address)
		}
		e.setRoleLocked(p.Address, identity.RoleNone)
		e.emitChangeUser(a, p.Address, identity.RoleNone)

	case action.ChangeQuorum:
		if p.NewQuorum == 0 || int(p.NewQuorum) > e.boardCount {
			return nil, newError(KindInvalidQuorum, "MSIG-QRM-001",
				fmt.Sprintf("quorum %d out of range [1, %d]", p.NewQuorum, e.boardCount))
		}
		e.quorum = p.NewQuorum
		e.events.Emit(events.Event{
			Name:     events.PerformChangeQuorum,
			ActionID: a.id,
			Value:    fmt.Sprintf("%d", p.NewQuorum),
		})

	case action.SendTransferExecute:
		if err := validateCall(p.Call); err != nil {
			return nil, err
		}
		out.CallErr = e.exec.Execute(p.Call.To, p.Call.Amount, p.Call.Endpoint, p.Call.Arguments)
		e.emitCall(a, events.PerformTransferExecute, "sync", p.Call)

	case action.SendAsyncCall:
		if err := validateCall(p.Call); err != nil {
			return nil, err
		}
		out.CallErr = e.exec.ExecuteAsync(executor.AsyncCall{
			CallID:    a.id,
			To:        p.Call.To,
			Amount:    p.Call.Amount,
			Endpoint:  p.Call.Endpoint,
			Arguments: p.Call.Arguments,
			Callback:  executor.CallbackEndpoint,
		})
		e.emitCall(a, events.PerformAsyncCall, "async", p.Call)

	case action.SCDeployFromSource:
		if p.Source.IsZero() {
			return nil, newError(KindInvalidCall, "MSIG-CALL-002", "deploy requires a source address")
		}
		addr, err := e.exec.DeployFromSource(p.Amount, p.Source, p.CodeMetadata, p.Arguments)
		out.NewAddress = addr
		out.CallErr = err
		e.events.Emit(events.Event{
			Name:     events.PerformDeployFromSource,
			ActionID: a.id,
			Caller:   a.proposer,
			Target:   addr,
			CallType: "deploy",
			Value:    amountString(p.Amount),
		})

	case action.SCUpgradeFromSource:
		if p.Target.IsZero() {
			return nil, newError(KindInvalidCall, "MSIG-CALL-003", "upgrade requires a target address")
		}
		if p.Source.IsZero() {
			return nil, newError(KindInvalidCall, "MSIG-CALL-002", "upgrade requires a source address")
		}
		out.CallErr = e.exec.UpgradeFromSource(p.Target, p.Amount, p.Source, p.CodeMetadata, p.Arguments)
		e.events.Emit(events.Event{
			Name:     events.PerformUpgradeFromSource,
			ActionID: a.id,
			Caller:   a.proposer,
			Target:   p.Target,
			CallType: "upgrade",
			Value:    amountString(p.Amount),
		})

	default:
		return nil, newError(KindInternal, "MSIG-ACT-004",
			fmt.Sprintf("unhandled action kind %q", a.payload.Kind()))
	}

	return out, nil
}

// validateCall applies the lazy call-shape checks deferred from proposal
// time: arguments are meaningless without an endpoint to receive them.
func validateCall(call action.CallData) error {
	if call.Endpoint == "" && len(call.Arguments) > 0 {
		return newError(KindInvalidCall, "MSIG-CALL-001", "call arguments require an endpoint")
	}
	return nil
}

func (e *Engine) zeroRoleTarget() error {
	return newError(KindInvalidCall, "MSIG-USR-002", "zero address cannot hold a role")
}

func (e *Engine) strandedQuorum(addr identity.Address) error {
	return newError(KindQuorumUnreachable, "MSIG-QRM-002",
		fmt.Sprintf("demoting %s would leave %d board members below quorum %d",
			addr, e.boardCount-1, e.quorum))
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (e *Engine) emitChangeUser(a *storedAction, target identity.Address, role identity.Role) {
	e.events.Emit(events.Event{
		Name:     events.PerformChangeUser,
		ActionID: a.id,
		Caller:   a.proposer,
		Target:   target,
		CallType: role.String(),
	})
}

func (e *Engine) emitCall(a *storedAction, name, callType string, call action.CallData) {
	e.events.Emit(events.Event{
		Name:     name,
		ActionID: a.id,
		Caller:   a.proposer,
		Target:   call.To,
		Endpoint: call.Endpoint,
		CallType: callType,
		Value:    amountString(call.Amount),
	})
}
