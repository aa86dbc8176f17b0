package ecs

import (
	"testing"

	"rovmesh/ids"
	"rovmesh/protocol"
	"rovmesh/token"
)

func spawnEvent(id ids.NetId) protocol.SerializedChange {
	return protocol.NewEntitySpawned(id)
}

func newTestComponentUpdate(t *testing.T, id ids.NetId, v testComponent) protocol.SerializedChange {
	t.Helper()
	return protocol.NewComponentUpdated(id, "robot.test_component", []byte{byte(v.N)})
}

type testComponent struct{ N int }

func testRegistry(t *testing.T) *token.Registry {
	t.Helper()
	reg := token.New()
	if err := token.Register[testComponent](reg, "robot.test_component",
		func(v testComponent) ([]byte, error) { return []byte{byte(v.N)}, nil },
		func(b []byte) (testComponent, error) { return testComponent{N: int(b[0])}, nil },
		nil,
	); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.Freeze()
	return reg
}

func TestSpawnDetectionAssignsNetIdOnce(t *testing.T) {
	reg := testRegistry(t)
	w := NewWorld(reg)
	tr := NewTracker(w)

	key := w.Spawn()
	w.Advance()
	if err := Insert(w, key, testComponent{N: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	events := tr.DetectChanges()
	if len(events) != 2 {
		t.Fatalf("expected spawn+update, got %d events", len(events))
	}
	if events[0].Kind != 0 { // EntitySpawned
		t.Fatalf("expected EntitySpawned first, got kind %v", events[0].Kind)
	}

	w.Advance()
	again := tr.DetectChanges()
	if len(again) != 0 {
		t.Fatalf("expected no re-emission on a tick with no change, got %d", len(again))
	}
}

func TestApplyThenDetectDoesNotReEcho(t *testing.T) {
	reg := testRegistry(t)
	w := NewWorld(reg)
	tr := NewTracker(w)

	id := ids.MustNewNetId()
	w.Advance()

	if err := tr.ApplyInbound(spawnEvent(id), 1); err != nil {
		t.Fatalf("apply spawn: %v", err)
	}
	change := newTestComponentUpdate(t, id, testComponent{N: 7})
	if err := tr.ApplyInbound(change, 1); err != nil {
		t.Fatalf("apply update: %v", err)
	}

	events := tr.DetectChanges()
	for _, e := range events {
		if e.NetId == id {
			t.Fatalf("applied component was re-emitted to origin: %+v", e)
		}
	}
}

func TestDisconnectDespawnsForeignOwned(t *testing.T) {
	reg := testRegistry(t)
	w := NewWorld(reg)
	tr := NewTracker(w)

	id := ids.MustNewNetId()
	w.Advance()
	spawnEvt := spawnEvent(id)
	if err := tr.ApplyInbound(spawnEvt, 5); err != nil {
		t.Fatalf("apply spawn: %v", err)
	}

	key, ok := tr.EntityOf(id)
	if !ok {
		t.Fatalf("expected mirror entity for %v", id)
	}

	tr.DespawnForeignOwnedBy(5)

	if w.IsAlive(key) {
		t.Fatalf("expected mirror entity despawned after peer disconnect")
	}
	if _, ok := tr.EntityOf(id); ok {
		t.Fatalf("expected foreign NetId mapping cleared after disconnect")
	}
}
