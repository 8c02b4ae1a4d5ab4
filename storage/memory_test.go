package storage_test

import (
	"testing"

	"xdao.co/multisig/storage"
	"xdao.co/multisig/storage/testkit"
)

func TestMemoryCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		return storage.NewMemoryCAS()
	})
}

func TestReplicatingCAS_WritesAllReadsFallback(t *testing.T) {
	a := storage.NewMemoryCAS()
	b := storage.NewMemoryCAS()
	rep := storage.ReplicatingCAS{Backends: []storage.NamedCAS{
		{Name: "a", CAS: a},
		{Name: "b", CAS: b},
	}}

	payload := []byte(`{"version":1}`)
	id, perBackend, err := rep.PutAll(payload)
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if len(perBackend) != 2 {
		t.Fatalf("expected 2 backend CIDs, got %d", len(perBackend))
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatalf("write did not replicate to all backends")
	}

	// Reads must fall back when the first backend lacks the object.
	other, err := b.Put([]byte("only-in-b"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := rep.Get(other)
	if err != nil {
		t.Fatalf("Get fallback: %v", err)
	}
	if string(got) != "only-in-b" {
		t.Fatalf("unexpected fallback bytes: %q", got)
	}
}
