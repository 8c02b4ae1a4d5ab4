package keys

import (
	"strings"
	"testing"
)

func TestKeyStore_RootAndLabelLifecycle(t *testing.T) {
	ks, err := CreateKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("CreateKeyStore: %v", err)
	}

	addr, path, err := ks.InitializeRootKey("alice", SchemeEd25519, testSeed(7), false)
	if err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	if addr == "" || path == "" {
		t.Fatalf("expected address and path")
	}
	if _, _, err := ks.InitializeRootKey("alice", SchemeEd25519, testSeed(7), false); err == nil {
		t.Fatalf("expected second init without overwrite to fail")
	}

	labelAddr, _, err := ks.DeriveKeyFromLabel("alice", "treasury", false)
	if err != nil {
		t.Fatalf("DeriveKeyFromLabel: %v", err)
	}
	if labelAddr == addr {
		t.Fatalf("expected label key to have a distinct address")
	}

	pub, err := ks.ExportKey("alice", "treasury")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if !strings.HasPrefix(pub, "ed25519:") {
		t.Fatalf("expected ed25519 prefix, got %q", pub)
	}

	signer, err := ks.LoadSigner("", "", "alice", "treasury", "")
	if err != nil {
		t.Fatalf("LoadSigner: %v", err)
	}
	if signer.Address().String() != labelAddr {
		t.Fatalf("loaded signer address mismatch")
	}

	entries, err := ks.ListKeys()
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(entries) != 1 || entries[0].Identifier != "alice" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if len(entries[0].Labels) != 1 || entries[0].Labels[0] != "treasury" {
		t.Fatalf("unexpected labels: %+v", entries[0].Labels)
	}
}

func TestKeyStore_DilithiumRoot(t *testing.T) {
	ks, err := CreateKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("CreateKeyStore: %v", err)
	}
	if _, _, err := ks.InitializeRootKey("bob", SchemeDilithium3, testSeed(9), false); err != nil {
		t.Fatalf("InitializeRootKey: %v", err)
	}
	pub, err := ks.ExportKey("bob", "")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if !strings.HasPrefix(pub, "dilithium3:") {
		t.Fatalf("expected dilithium3 prefix, got %q", pub)
	}
}
