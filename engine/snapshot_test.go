package engine_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"xdao.co/multisig/action"
	"xdao.co/multisig/engine"
	"xdao.co/multisig/executor/testkit"
	"xdao.co/multisig/identity"
	"xdao.co/multisig/storage"
)

func TestSnapshot_CanonicalJSON(t *testing.T) {
	member := identity.MustParse(strings.Repeat("01", identity.AddressSize))
	e := newEngine(t, engine.Config{Board: []identity.Address{member}, Quorum: 1})

	id := mustPropose(t, e, member, action.ChangeQuorum{NewQuorum: 1})
	mustSign(t, e, member, id)

	got, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	hex := member.String()
	want := `{"version":1,"quorum":1,"lastActionID":1,` +
		`"users":[{"address":"` + hex + `","role":"board-member"}],` +
		`"actions":[{"id":1,"proposer":"` + hex + `","createdAt":1700000000,` +
		`"action":{"kind":"ChangeQuorum","changeQuorum":{"newQuorum":1}},` +
		`"signers":["` + hex + `"]}]}`
	if string(got) != want {
		t.Fatalf("snapshot mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestSnapshot_RoundTripThroughCAS(t *testing.T) {
	e := newEngine(t, engine.Config{
		Board:     []identity.Address{alice, bob},
		Proposers: []identity.Address{dave},
		Quorum:    2,
	})
	first := mustPropose(t, e, dave, action.SendTransferExecute{Call: action.CallData{
		To: carol, Amount: big.NewInt(250), Endpoint: "deposit", Arguments: [][]byte{{0x01}},
	}})
	mustSign(t, e, alice, first)
	second := mustPropose(t, e, alice, action.ChangeQuorum{NewQuorum: 1})

	cas := storage.NewMemoryCAS()
	snapID, err := e.SaveSnapshot(cas)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	restored, err := engine.LoadSnapshot(cas, snapID, engine.Config{
		Executor: &testkit.Recording{},
		Now:      func() int64 { return testClock },
	})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if restored.Quorum() != 2 {
		t.Fatalf("restored quorum = %d, want 2", restored.Quorum())
	}
	if got := restored.BoardMembers(); len(got) != 2 {
		t.Fatalf("restored board = %v", got)
	}
	if got := restored.Proposers(); len(got) != 1 || got[0] != dave {
		t.Fatalf("restored proposers = %v", got)
	}
	if ids := restored.PendingActionIDs(); len(ids) != 2 || ids[0] != first || ids[1] != second {
		t.Fatalf("restored pending ids = %v", ids)
	}

	info, err := restored.Action(first)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if info.Proposer != dave || info.CreatedAt != testClock || info.EffectiveSignatures != 1 {
		t.Fatalf("restored action info mismatch: %+v", info)
	}
	if info.Payload.Kind() != action.KindSendTransferExecute {
		t.Fatalf("restored payload kind = %s", info.Payload.Kind())
	}

	// The id counter survives: no id allocated before the snapshot can recur.
	next := mustPropose(t, restored, alice, action.ChangeQuorum{NewQuorum: 1})
	if next != second+1 {
		t.Fatalf("restored engine allocated id %d, want %d", next, second+1)
	}

	// Equal states snapshot to equal bytes; the CID is stable.
	original, err := cas.Get(snapID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	reloaded, err := engine.LoadSnapshot(cas, snapID, engine.Config{Executor: &testkit.Recording{}})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	rebytes, err := reloaded.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !bytes.Equal(rebytes, original) {
		t.Fatalf("round trip is not byte-stable:\n%s\nvs\n%s", rebytes, original)
	}
}

func TestFromSnapshot_IgnoresConfigMembership(t *testing.T) {
	e := newEngine(t, engine.Config{Board: []identity.Address{alice, bob}, Quorum: 2})
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// Membership and quorum come from the snapshot; the config's values are
	// runtime handles only.
	restored, err := engine.FromSnapshot(snap, engine.Config{
		Board:    []identity.Address{mallory},
		Quorum:   1,
		Executor: &testkit.Recording{},
	})
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if restored.Quorum() != 2 {
		t.Fatalf("config quorum leaked into restore: %d", restored.Quorum())
	}
	if restored.RoleOf(mallory) != identity.RoleNone {
		t.Fatalf("config board leaked into restore")
	}
	if restored.RoleOf(alice) != identity.RoleBoardMember {
		t.Fatalf("snapshot board lost in restore")
	}
}

func TestFromSnapshot_RejectsBadInput(t *testing.T) {
	a := strings.Repeat("01", identity.AddressSize)
	b := strings.Repeat("02", identity.AddressSize)
	user := `{"address":"` + a + `","role":"board-member"}`
	act := `{"id":1,"proposer":"` + a + `","createdAt":1,"action":{"kind":"ChangeQuorum","changeQuorum":{"newQuorum":1}}}`

	cases := []struct {
		name string
		data string
		kind engine.Kind
	}{
		{"malformed json", `{`, engine.KindInvalidConfig},
		{"wrong version", `{"version":2,"quorum":1,"users":[` + user + `]}`, engine.KindInvalidConfig},
		{"zero address user", `{"version":1,"quorum":1,"users":[{"address":"` + strings.Repeat("00", identity.AddressSize) + `","role":"board-member"}]}`, engine.KindInvalidConfig},
		{"roleless user", `{"version":1,"quorum":1,"users":[{"address":"` + a + `","role":"none"}]}`, engine.KindInvalidConfig},
		{"duplicate user", `{"version":1,"quorum":1,"users":[` + user + `,` + user + `]}`, engine.KindInvalidConfig},
		{"quorum above board", `{"version":1,"quorum":2,"users":[` + user + `]}`, engine.KindInvalidQuorum},
		{"zero quorum", `{"version":1,"quorum":0,"users":[` + user + `]}`, engine.KindInvalidQuorum},
		{"action id zero", `{"version":1,"quorum":1,"lastActionID":1,"users":[` + user + `],"actions":[{"id":0,"proposer":"` + a + `","action":{"kind":"ChangeQuorum","changeQuorum":{"newQuorum":1}}}]}`, engine.KindInvalidConfig},
		{"action id beyond counter", `{"version":1,"quorum":1,"lastActionID":0,"users":[` + user + `],"actions":[` + act + `]}`, engine.KindInvalidConfig},
		{"duplicate action id", `{"version":1,"quorum":1,"lastActionID":1,"users":[` + user + `],"actions":[` + act + `,` + act + `]}`, engine.KindInvalidConfig},
		{"action without payload", `{"version":1,"quorum":1,"lastActionID":1,"users":[` + user + `],"actions":[{"id":1,"proposer":"` + b + `","createdAt":1}]}`, engine.KindInvalidConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.FromSnapshot([]byte(tc.data), engine.Config{Executor: &testkit.Recording{}})
			wantKind(t, err, tc.kind)
		})
	}

	if _, err := engine.FromSnapshot([]byte(`{"version":1}`), engine.Config{}); engine.ErrKind(err) != engine.KindInvalidConfig {
		t.Fatalf("missing executor: got %v, want InvalidConfig", err)
	}
}

func TestFromSnapshot_RestoresStaleSigners(t *testing.T) {
	a := strings.Repeat("01", identity.AddressSize)
	stale := strings.Repeat("02", identity.AddressSize)
	data := `{"version":1,"quorum":1,"lastActionID":1,` +
		`"users":[{"address":"` + a + `","role":"board-member"}],` +
		`"actions":[{"id":1,"proposer":"` + a + `","createdAt":1,` +
		`"action":{"kind":"ChangeQuorum","changeQuorum":{"newQuorum":1}},` +
		`"signers":["` + stale + `"]}]}`

	e, err := engine.FromSnapshot([]byte(data), engine.Config{Executor: &testkit.Recording{}})
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	staleAddr := identity.MustParse(stale)
	if signed, _ := e.Signed(1, staleAddr); !signed {
		t.Fatalf("stale endorsement was dropped on restore")
	}
	if n, _ := e.SignatureCount(1); n != 0 {
		t.Fatalf("stale endorsement counts as effective: %d", n)
	}

	// Promoting the signer brings the stored endorsement back into effect.
	member := identity.MustParse(a)
	id := mustPropose(t, e, member, action.AddBoardMember{Address: staleAddr})
	mustSign(t, e, member, id)
	if _, err := e.Perform(member, id); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if n, _ := e.SignatureCount(1); n != 1 {
		t.Fatalf("promoted signer must count: %d", n)
	}
}
