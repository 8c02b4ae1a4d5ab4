// Package testkit provides a conformance suite for governance engines.
//
// The suite exercises the lifecycle invariants every construction path must
// uphold, so it runs both against engine.New and against engines restored
// from snapshots.
package testkit

import (
	"testing"

	"xdao.co/multisig/action"
	"xdao.co/multisig/engine"
	exectk "xdao.co/multisig/executor/testkit"
	"xdao.co/multisig/identity"
)

// Factory builds a ready engine from cfg. Implementations may route through
// persistence (e.g. a snapshot round trip) as long as the result honors cfg.
type Factory func(t *testing.T, cfg engine.Config) *engine.Engine

func fillAddr(fill byte) identity.Address {
	var a [identity.AddressSize]byte
	for i := range a {
		a[i] = fill
	}
	return identity.Address(a)
}

// RunEngineConformance runs the invariant suite against engines produced by
// build.
func RunEngineConformance(t *testing.T, build Factory) {
	one := fillAddr(0x01)
	two := fillAddr(0x02)
	outsider := fillAddr(0xEE)

	config := func() engine.Config {
		return engine.Config{
			Board:    []identity.Address{one, two},
			Quorum:   2,
			Executor: &exectk.Recording{},
			Now:      func() int64 { return 1700000000 },
		}
	}

	t.Run("ProposeSignPerform", func(t *testing.T) {
		e := build(t, config())
		id, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if err := e.Sign(one, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if _, err := e.Perform(one, id); engine.ErrKind(err) != engine.KindQuorumNotMet {
			t.Fatalf("perform below quorum: got %v", err)
		}
		if err := e.Sign(two, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		out, err := e.Perform(two, id)
		if err != nil {
			t.Fatalf("Perform: %v", err)
		}
		if out.ActionID != id || out.Kind != action.KindChangeQuorum {
			t.Fatalf("unexpected outcome: %+v", out)
		}
		if e.Quorum() != 1 {
			t.Fatalf("quorum = %d, want 1", e.Quorum())
		}
		if _, err := e.Action(id); engine.ErrKind(err) != engine.KindNotFound {
			t.Fatalf("performed action still stored: %v", err)
		}
	})

	t.Run("SignIdempotent", func(t *testing.T) {
		e := build(t, config())
		id, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if err := e.Sign(one, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if err := e.Sign(one, id); err != nil {
			t.Fatalf("repeated Sign: %v", err)
		}
		if n, _ := e.SignatureCount(id); n != 1 {
			t.Fatalf("signature count = %d, want 1", n)
		}
		if err := e.Unsign(two, id); err != nil {
			t.Fatalf("Unsign without signature: %v", err)
		}
		if err := e.Unsign(one, id); err != nil {
			t.Fatalf("Unsign: %v", err)
		}
		if n, _ := e.SignatureCount(id); n != 0 {
			t.Fatalf("signature count = %d, want 0", n)
		}
	})

	t.Run("IDsNeverReused", func(t *testing.T) {
		e := build(t, config())
		first, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if err := e.Discard(one, first); err != nil {
			t.Fatalf("Discard: %v", err)
		}
		second, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if second <= first {
			t.Fatalf("id reused: %d then %d", first, second)
		}
	})

	t.Run("StaleSignatureExcluded", func(t *testing.T) {
		cfg := config()
		cfg.Board = []identity.Address{one, two, fillAddr(0x03)}
		e := build(t, cfg)

		id, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if err := e.Sign(one, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if err := e.Sign(two, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}

		demote, err := e.Propose(one, action.AddProposer{Address: two})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		for _, signer := range []identity.Address{one, fillAddr(0x03)} {
			if err := e.Sign(signer, demote); err != nil {
				t.Fatalf("Sign: %v", err)
			}
		}
		if _, err := e.Perform(one, demote); err != nil {
			t.Fatalf("Perform demotion: %v", err)
		}

		if signed, _ := e.Signed(id, two); !signed {
			t.Fatalf("stale endorsement was purged")
		}
		if ok, _ := e.QuorumReached(id); ok {
			t.Fatalf("stale endorsement still counts toward quorum")
		}
	})

	t.Run("DiscardRefusedAtQuorum", func(t *testing.T) {
		e := build(t, config())
		id, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if err := e.Sign(one, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if err := e.Sign(two, id); err != nil {
			t.Fatalf("Sign: %v", err)
		}
		if err := e.Discard(one, id); engine.ErrKind(err) != engine.KindInvalidCall {
			t.Fatalf("discard at quorum: got %v", err)
		}
	})

	t.Run("OutsiderRejected", func(t *testing.T) {
		e := build(t, config())
		if _, err := e.Propose(outsider, action.ChangeQuorum{NewQuorum: 1}); engine.ErrKind(err) != engine.KindUnauthorized {
			t.Fatalf("outsider propose: got %v", err)
		}
		id, err := e.Propose(one, action.ChangeQuorum{NewQuorum: 1})
		if err != nil {
			t.Fatalf("Propose: %v", err)
		}
		if err := e.Sign(outsider, id); engine.ErrKind(err) != engine.KindUnauthorized {
			t.Fatalf("outsider sign: got %v", err)
		}
		if _, err := e.Perform(outsider, id); engine.ErrKind(err) != engine.KindUnauthorized {
			t.Fatalf("outsider perform: got %v", err)
		}
	})
}
