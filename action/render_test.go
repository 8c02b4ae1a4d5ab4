package action

import (
	"math/big"
	"strings"
	"testing"

	"xdao.co/multisig/identity"
)

func addr(fill byte) identity.Address {
	var a [identity.AddressSize]byte
	for i := range a {
		a[i] = fill
	}
	return identity.Address(a)
}

func TestRender_CanonicalForm(t *testing.T) {
	p := SendTransferExecute{Call: CallData{
		To:        addr(0xA1),
		Amount:    big.NewInt(1000),
		Endpoint:  "deposit",
		Arguments: [][]byte{{0x01}, {0x02, 0x03}},
	}}

	b, err := Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := string(b)

	want := Preamble + "\n" +
		"Amount: 1000\n" +
		"Arg-0000: 0x01\n" +
		"Arg-0001: 0x0203\n" +
		"Endpoint: deposit\n" +
		"Kind: SendTransferExecute\n" +
		"To: " + addr(0xA1).String() + "\n" +
		Postamble
	if got != want {
		t.Fatalf("canonical render mismatch:\n%s", got)
	}
}

func TestRender_OmitsEmptyEndpointAndNilAmount(t *testing.T) {
	p := SendAsyncCall{Call: CallData{To: addr(0x01)}}
	b, err := Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "Endpoint") {
		t.Fatalf("empty endpoint must be omitted:\n%s", s)
	}
	if !strings.Contains(s, "Amount: 0\n") {
		t.Fatalf("nil amount must render as zero:\n%s", s)
	}
}

func TestRender_Deterministic(t *testing.T) {
	p := SCDeployFromSource{
		Amount:       big.NewInt(500),
		Source:       addr(0xB2),
		CodeMetadata: MetadataUpgradeable | MetadataPayable,
		Arguments:    [][]byte{{0xFF}},
	}
	a, err := Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("render is not deterministic")
	}
}

func TestRender_NilPayload(t *testing.T) {
	if _, err := Render(nil); err == nil {
		t.Fatalf("expected nil payload to be rejected")
	}
}

func TestDigest_DistinguishesPayloads(t *testing.T) {
	a, err := Digest(ChangeQuorum{NewQuorum: 2})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	b, err := Digest(ChangeQuorum{NewQuorum: 3})
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if a.String() == b.String() {
		t.Fatalf("distinct payloads must digest differently")
	}
	if !a.Defined() {
		t.Fatalf("expected defined CID")
	}
	if DigestString(ChangeQuorum{NewQuorum: 2}) != a.String() {
		t.Fatalf("DigestString disagrees with Digest")
	}
}

func TestDigest_IgnoresInstanceIdentity(t *testing.T) {
	p1 := AddBoardMember{Address: addr(0x11)}
	p2 := AddBoardMember{Address: addr(0x11)}
	if DigestString(p1) != DigestString(p2) {
		t.Fatalf("equal payloads must share a digest")
	}
}

func TestCodeMetadata_StringParseRoundTrip(t *testing.T) {
	cases := []struct {
		m    CodeMetadata
		want string
	}{
		{0, "none"},
		{MetadataUpgradeable, "upgradeable"},
		{MetadataUpgradeable | MetadataReadable | MetadataPayable | MetadataPayableBySC,
			"upgradeable,readable,payable,payable-by-sc"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("String(%#x) = %q, want %q", uint16(tc.m), got, tc.want)
		}
		back, err := ParseCodeMetadata(tc.want)
		if err != nil {
			t.Errorf("ParseCodeMetadata(%q): %v", tc.want, err)
			continue
		}
		if back != tc.m {
			t.Errorf("round trip mismatch for %q", tc.want)
		}
	}
	if _, err := ParseCodeMetadata("upgradeable,bogus"); err == nil {
		t.Fatalf("expected unknown flag to be rejected")
	}
}
