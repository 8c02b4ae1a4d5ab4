package identity

import (
	"crypto/ed25519"
	"encoding/json"
	"strings"
	"testing"
)

func TestFromPublicKey_DeterministicAndSized(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)

	a, err := FromPublicKey(pub)
	if err != nil {
		t.Fatalf("FromPublicKey: %v", err)
	}
	b, err := FromPublicKey(pub)
	if err != nil {
		t.Fatalf("FromPublicKey: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic derivation")
	}
	if a.IsZero() {
		t.Fatalf("derived address must not be zero")
	}

	if _, err := FromPublicKey(pub[:16]); err == nil {
		t.Fatalf("expected short key to be rejected")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	a := MustParse(strings.Repeat("ab", AddressSize))
	parsed, err := Parse(a.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != a {
		t.Fatalf("round trip mismatch: %s != %s", parsed, a)
	}

	if _, err := Parse("zz"); err == nil {
		t.Fatalf("expected non-hex input to be rejected")
	}
	if _, err := Parse("abcd"); err == nil {
		t.Fatalf("expected short input to be rejected")
	}
}

func TestAddress_JSONText(t *testing.T) {
	a := MustParse(strings.Repeat("01", AddressSize))
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `"` + strings.Repeat("01", AddressSize) + `"`
	if string(b) != want {
		t.Fatalf("unexpected JSON: %s", b)
	}
	var back Address
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != a {
		t.Fatalf("JSON round trip mismatch")
	}
}

func TestSortAddresses_CanonicalOrder(t *testing.T) {
	hi := MustParse(strings.Repeat("ff", AddressSize))
	lo := MustParse(strings.Repeat("00", AddressSize-1) + "01")
	mid := MustParse("80" + strings.Repeat("00", AddressSize-1))

	addrs := []Address{hi, lo, mid}
	SortAddresses(addrs)
	if addrs[0] != lo || addrs[1] != mid || addrs[2] != hi {
		t.Fatalf("unexpected order: %v", addrs)
	}
	if !lo.Less(hi) || hi.Less(lo) {
		t.Fatalf("Less is not a strict byte-wise order")
	}
}

func TestRole_Privileges(t *testing.T) {
	cases := []struct {
		role       Role
		canPropose bool
		canSign    bool
	}{
		{RoleNone, false, false},
		{RoleProposer, true, false},
		{RoleBoardMember, true, true},
	}
	for _, tc := range cases {
		if got := tc.role.CanPropose(); got != tc.canPropose {
			t.Errorf("%s.CanPropose() = %v, want %v", tc.role, got, tc.canPropose)
		}
		if got := tc.role.CanSign(); got != tc.canSign {
			t.Errorf("%s.CanSign() = %v, want %v", tc.role, got, tc.canSign)
		}
	}
}

func TestRole_TextRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleNone, RoleProposer, RoleBoardMember} {
		text, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", r, err)
		}
		var back Role
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != r {
			t.Fatalf("round trip mismatch for %v", r)
		}
	}
	var r Role
	if err := r.UnmarshalText([]byte("owner")); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}
