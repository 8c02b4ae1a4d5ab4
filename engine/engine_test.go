package engine_test

import (
	"errors"
	"math/big"
	"testing"

	"xdao.co/multisig/action"
	"xdao.co/multisig/engine"
	"xdao.co/multisig/events"
	"xdao.co/multisig/executor/testkit"
	"xdao.co/multisig/identity"
)

func addr(fill byte) identity.Address {
	var a [identity.AddressSize]byte
	for i := range a {
		a[i] = fill
	}
	return identity.Address(a)
}

// Fixed fixtures shared across the engine tests.
var (
	alice   = addr(0xA1)
	bob     = addr(0xB2)
	carol   = addr(0xC3)
	dave    = addr(0xD4)
	mallory = addr(0xEE)
)

const testClock int64 = 1700000000

func newEngine(t *testing.T, cfg engine.Config) *engine.Engine {
	t.Helper()
	if cfg.Executor == nil {
		cfg.Executor = &testkit.Recording{}
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return testClock }
	}
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustPropose(t *testing.T, e *engine.Engine, caller identity.Address, p action.Payload) uint64 {
	t.Helper()
	id, err := e.Propose(caller, p)
	if err != nil {
		t.Fatalf("Propose(%s): %v", p.Kind(), err)
	}
	return id
}

func mustSign(t *testing.T, e *engine.Engine, caller identity.Address, id uint64) {
	t.Helper()
	if err := e.Sign(caller, id); err != nil {
		t.Fatalf("Sign(%d): %v", id, err)
	}
}

func wantKind(t *testing.T, err error, kind engine.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := engine.ErrKind(err); got != kind {
		t.Fatalf("error kind = %q, want %q (err: %v)", got, kind, err)
	}
}

func TestNew_ValidatesConfig(t *testing.T) {
	exec := &testkit.Recording{}
	cases := []struct {
		name string
		cfg  engine.Config
		kind engine.Kind
	}{
		{"missing executor", engine.Config{Board: []identity.Address{alice}, Quorum: 1}, engine.KindInvalidConfig},
		{"empty board", engine.Config{Quorum: 1, Executor: exec}, engine.KindInvalidConfig},
		{"zero address member", engine.Config{Board: []identity.Address{{}}, Quorum: 1, Executor: exec}, engine.KindInvalidConfig},
		{"duplicate member", engine.Config{Board: []identity.Address{alice, alice}, Quorum: 1, Executor: exec}, engine.KindInvalidConfig},
		{"duplicate across roles", engine.Config{Board: []identity.Address{alice}, Proposers: []identity.Address{alice}, Quorum: 1, Executor: exec}, engine.KindInvalidConfig},
		{"zero quorum", engine.Config{Board: []identity.Address{alice}, Quorum: 0, Executor: exec}, engine.KindInvalidQuorum},
		{"quorum above board", engine.Config{Board: []identity.Address{alice}, Quorum: 2, Executor: exec}, engine.KindInvalidQuorum},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.New(tc.cfg)
			wantKind(t, err, tc.kind)
		})
	}
}

func TestLifecycle_AddBoardMember(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice, bob}, Quorum: 2})

	id := mustPropose(t, e, alice, action.AddBoardMember{Address: carol})
	if id != 1 {
		t.Fatalf("first action id = %d, want 1", id)
	}

	mustSign(t, e, alice, id)
	if ok, _ := e.QuorumReached(id); ok {
		t.Fatalf("one of two signatures must not reach quorum")
	}
	if _, err := e.Perform(alice, id); engine.ErrKind(err) != engine.KindQuorumNotMet {
		t.Fatalf("early perform: got %v, want QuorumNotMet", err)
	}

	mustSign(t, e, bob, id)
	out, err := e.Perform(bob, id)
	if err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if out.ActionID != id || out.Kind != action.KindAddBoardMember {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.CallErr != nil {
		t.Fatalf("membership change must not produce a call error: %v", out.CallErr)
	}

	if e.RoleOf(carol) != identity.RoleBoardMember {
		t.Fatalf("carol's role = %s, want board-member", e.RoleOf(carol))
	}
	if e.BoardMemberCount() != 3 {
		t.Fatalf("board count = %d, want 3", e.BoardMemberCount())
	}
	if _, err := e.Action(id); engine.ErrKind(err) != engine.KindNotFound {
		t.Fatalf("performed action must be gone, got %v", err)
	}
	if ids := e.PendingActionIDs(); len(ids) != 0 {
		t.Fatalf("pending ids = %v, want none", ids)
	}
}

func TestLifecycle_ProposerCanProposeNotSign(t *testing.T) {
	e := newEngine(t, engine.Config{
		Board:     []identity.Address{alice},
		Proposers: []identity.Address{dave},
		Quorum:    1,
	})

	id := mustPropose(t, e, dave, action.SendTransferExecute{Call: action.CallData{
		To: carol, Amount: big.NewInt(1),
	}})
	wantKind(t, e.Sign(dave, id), engine.KindUnauthorized)
	wantKind(t, e.Unsign(dave, id), engine.KindUnauthorized)
	if _, err := e.Perform(dave, id); engine.ErrKind(err) != engine.KindUnauthorized {
		t.Fatalf("proposer perform: got %v, want Unauthorized", err)
	}
}

func TestPropose_Rejections(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice}, Quorum: 1})

	if _, err := e.Propose(alice, nil); engine.ErrKind(err) != engine.KindInvalidCall {
		t.Fatalf("nil payload: got %v, want InvalidCall", err)
	}
	if _, err := e.Propose(mallory, action.ChangeQuorum{NewQuorum: 1}); engine.ErrKind(err) != engine.KindUnauthorized {
		t.Fatalf("outsider propose: got %v, want Unauthorized", err)
	}
}

func TestSignUnsign_Idempotent(t *testing.T) {
	sink := &events.Memory{}
	e := newEngine(t, engine.Config{
		Board:  []identity.Address{alice, bob},
		Quorum: 2,
		Events: sink,
	})
	id := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})

	mustSign(t, e, alice, id)
	mustSign(t, e, alice, id)
	if n, _ := e.SignatureCount(id); n != 1 {
		t.Fatalf("double sign counted twice: %d signatures", n)
	}
	if got := len(sink.Named(events.SignAction)); got != 1 {
		t.Fatalf("repeated sign emitted %d events, want 1", got)
	}

	// Withdrawing an absent endorsement is a no-op as well.
	if err := e.Unsign(bob, id); err != nil {
		t.Fatalf("Unsign without signature: %v", err)
	}
	if err := e.Unsign(alice, id); err != nil {
		t.Fatalf("Unsign: %v", err)
	}
	if n, _ := e.SignatureCount(id); n != 0 {
		t.Fatalf("signature survived unsign: %d", n)
	}
	if got := len(sink.Named(events.UnsignAction)); got != 1 {
		t.Fatalf("no-op unsign emitted events: %d, want 1", got)
	}
}

func TestSignPerform_UnknownAction(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice}, Quorum: 1})

	wantKind(t, e.Sign(alice, 99), engine.KindNotFound)
	wantKind(t, e.Unsign(alice, 99), engine.KindNotFound)
	wantKind(t, e.Discard(alice, 99), engine.KindNotFound)
	if _, err := e.Perform(alice, 99); engine.ErrKind(err) != engine.KindNotFound {
		t.Fatalf("perform unknown id: got %v, want NotFound", err)
	}
}

func TestDiscard_Authorization(t *testing.T) {
	e := newEngine(t, engine.Config{
		Board:     []identity.Address{alice, bob},
		Proposers: []identity.Address{dave},
		Quorum:    2,
	})

	// The original proposer may withdraw their own pending action.
	id := mustPropose(t, e, dave, action.AddProposer{Address: carol})
	wantKind(t, e.Discard(mallory, id), engine.KindUnauthorized)
	if err := e.Discard(dave, id); err != nil {
		t.Fatalf("proposer discard: %v", err)
	}

	// Board members may discard anyone's action.
	id = mustPropose(t, e, dave, action.AddProposer{Address: carol})
	if err := e.Discard(bob, id); err != nil {
		t.Fatalf("board discard: %v", err)
	}
}

func TestDiscard_RejectedAtQuorum(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice, bob}, Quorum: 2})
	id := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	mustSign(t, e, alice, id)
	mustSign(t, e, bob, id)

	wantKind(t, e.Discard(alice, id), engine.KindInvalidCall)
	if _, err := e.Action(id); err != nil {
		t.Fatalf("rejected discard must leave the action pending: %v", err)
	}

	// Withdrawing a signature drops it below quorum and unblocks the discard.
	if err := e.Unsign(bob, id); err != nil {
		t.Fatalf("Unsign: %v", err)
	}
	if err := e.Discard(alice, id); err != nil {
		t.Fatalf("Discard after unsign: %v", err)
	}
}

func TestActionIDs_StrictlyIncreaseNeverReused(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice}, Quorum: 1})

	first := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	if err := e.Discard(alice, first); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	second := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	if second <= first {
		t.Fatalf("discarded id was reused: %d then %d", first, second)
	}

	mustSign(t, e, alice, second)
	if _, err := e.Perform(alice, second); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	third := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	if third != second+1 {
		t.Fatalf("ids not strictly increasing: %d then %d", second, third)
	}
}

func TestStaleSignatures_ExcludedNotPurged(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice, bob, carol}, Quorum: 2})

	id := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	mustSign(t, e, alice, id)
	mustSign(t, e, bob, id)
	if ok, _ := e.QuorumReached(id); !ok {
		t.Fatalf("two live signatures must reach quorum 2")
	}

	// Demote bob to proposer. His endorsement stays stored but stops counting.
	demote := mustPropose(t, e, alice, action.AddProposer{Address: bob})
	mustSign(t, e, alice, demote)
	mustSign(t, e, carol, demote)
	if _, err := e.Perform(alice, demote); err != nil {
		t.Fatalf("Perform demotion: %v", err)
	}

	if signed, _ := e.Signed(id, bob); !signed {
		t.Fatalf("stale endorsement must stay recorded")
	}
	if n, _ := e.SignatureCount(id); n != 1 {
		t.Fatalf("effective signatures after demotion = %d, want 1", n)
	}
	if ok, _ := e.QuorumReached(id); ok {
		t.Fatalf("stale signature must not count toward quorum")
	}

	// Re-promotion brings the stored endorsement back into effect.
	promote := mustPropose(t, e, alice, action.AddBoardMember{Address: bob})
	mustSign(t, e, alice, promote)
	mustSign(t, e, carol, promote)
	if _, err := e.Perform(alice, promote); err != nil {
		t.Fatalf("Perform promotion: %v", err)
	}
	if ok, _ := e.QuorumReached(id); !ok {
		t.Fatalf("re-promoted member's signature must count again")
	}
}

func TestViews_CanonicalOrderAndInfo(t *testing.T) {
	e := newEngine(t, engine.Config{
		Board:     []identity.Address{bob, alice},
		Proposers: []identity.Address{dave},
		Quorum:    1,
	})

	board := e.BoardMembers()
	if len(board) != 2 || board[1].Less(board[0]) {
		t.Fatalf("board not in canonical order: %v", board)
	}
	if props := e.Proposers(); len(props) != 1 || props[0] != dave {
		t.Fatalf("proposers = %v, want [%s]", props, dave)
	}

	id := mustPropose(t, e, alice, action.RemoveUser{Address: dave})
	mustSign(t, e, bob, id)
	mustSign(t, e, alice, id)

	info, err := e.Action(id)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if info.Proposer != alice || info.CreatedAt != testClock {
		t.Fatalf("unexpected info: %+v", info)
	}
	if len(info.Signers) != 2 || info.Signers[1].Less(info.Signers[0]) {
		t.Fatalf("signers not in canonical order: %v", info.Signers)
	}
	if info.EffectiveSignatures != 2 {
		t.Fatalf("effective signatures = %d, want 2", info.EffectiveSignatures)
	}
	if info.Payload.Kind() != action.KindRemoveUser {
		t.Fatalf("payload kind = %s", info.Payload.Kind())
	}
}

func TestEvents_LifecycleSequence(t *testing.T) {
	sink := &events.Memory{}
	e := newEngine(t, engine.Config{
		Board:  []identity.Address{alice},
		Quorum: 1,
		Events: sink,
	})

	id := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	mustSign(t, e, alice, id)
	if _, err := e.Perform(alice, id); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	want := []string{
		events.ProposeAction,
		events.SignAction,
		events.StartPerformAction,
		events.PerformChangeQuorum,
	}
	got := sink.Events()
	if len(got) != len(want) {
		t.Fatalf("emitted %d events, want %d: %+v", len(got), len(want), got)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("event[%d] = %s, want %s", i, got[i].Name, name)
		}
		if got[i].ActionID != id {
			t.Fatalf("event[%d] action id = %d, want %d", i, got[i].ActionID, id)
		}
	}
	if got[0].CallType != string(action.KindChangeQuorum) {
		t.Fatalf("propose event call type = %q", got[0].CallType)
	}
}

func TestEvents_RejectedPerformPairsStartWithRejection(t *testing.T) {
	sink := &events.Memory{}
	e := newEngine(t, engine.Config{
		Board:  []identity.Address{alice},
		Quorum: 1,
		Events: sink,
	})

	// Quorum 2 on a one-member board fails governance-side validation.
	id := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 2})
	mustSign(t, e, alice, id)
	if _, err := e.Perform(alice, id); err == nil {
		t.Fatalf("expected the perform to be rejected")
	}

	starts := sink.Named(events.StartPerformAction)
	rejections := sink.Named(events.PerformActionRejected)
	if len(starts) != 1 || len(rejections) != 1 {
		t.Fatalf("start/rejection events = %d/%d, want 1/1", len(starts), len(rejections))
	}
	if rejections[0].ActionID != id || rejections[0].Caller != alice {
		t.Fatalf("rejection event mismatch: %+v", rejections[0])
	}
	if len(rejections[0].Data) == 0 {
		t.Fatalf("rejection event carries no reason")
	}

	// The successful retry closes without a rejection counterpart.
	sink.Reset()
	ok := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})
	mustSign(t, e, alice, ok)
	if _, err := e.Perform(alice, ok); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if got := len(sink.Named(events.PerformActionRejected)); got != 0 {
		t.Fatalf("successful perform emitted %d rejection events", got)
	}
}

func TestErrors_ExposeStableRuleIDs(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice}, Quorum: 1})

	err := e.Sign(mallory, 1)
	if !engine.IsKind(err, engine.KindUnauthorized) {
		t.Fatalf("IsKind mismatch for %v", err)
	}
	if engine.RuleID(err) == "" {
		t.Fatalf("structured error without rule id: %v", err)
	}
	var se *engine.Error
	if !errors.As(err, &se) {
		t.Fatalf("error does not unwrap to *engine.Error: %v", err)
	}
	if engine.ErrKind(errors.New("plain")) != "" {
		t.Fatalf("plain errors must have no kind")
	}
}
