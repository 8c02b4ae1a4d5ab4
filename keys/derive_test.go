package keys

import (
	"testing"
)

func TestDeriveSubSeedDeterministic(t *testing.T) {
	root := make([]byte, SeedSize)
	for i := range root {
		root[i] = byte(i)
	}

	a, err := DeriveSubSeed(root, "treasury")
	if err != nil {
		t.Fatalf("DeriveSubSeed: %v", err)
	}
	b, err := DeriveSubSeed(root, "treasury")
	if err != nil {
		t.Fatalf("DeriveSubSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveSubSeed(root, "ops")
	if err != nil {
		t.Fatalf("DeriveSubSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different labels to derive different seeds")
	}
}

func TestParseSeedHex(t *testing.T) {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	hexSeed := "0x" + "42424242424242424242424242424242" + "42424242424242424242424242424242"
	got, err := ParseSeedHex(hexSeed)
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if string(got) != string(seed) {
		t.Fatalf("decoded seed mismatch")
	}

	if _, err := ParseSeedHex("42"); err == nil {
		t.Fatalf("expected short seed to be rejected")
	}
}
