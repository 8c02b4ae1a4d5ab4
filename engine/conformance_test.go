package engine_test

import (
	"testing"

	"xdao.co/multisig/engine"
	enginetk "xdao.co/multisig/engine/testkit"
)

func TestConformance_New(t *testing.T) {
	enginetk.RunEngineConformance(t, func(t *testing.T, cfg engine.Config) *engine.Engine {
		t.Helper()
		e, err := engine.New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return e
	})
}

// A snapshot round trip must hand back an engine indistinguishable from the
// original.
func TestConformance_SnapshotRoundTrip(t *testing.T) {
	enginetk.RunEngineConformance(t, func(t *testing.T, cfg engine.Config) *engine.Engine {
		t.Helper()
		e, err := engine.New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		b, err := e.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		restored, err := engine.FromSnapshot(b, cfg)
		if err != nil {
			t.Fatalf("FromSnapshot: %v", err)
		}
		return restored
	})
}
