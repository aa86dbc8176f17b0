package sync

import (
	"testing"

	"rovmesh/ids"
	"rovmesh/protocol"
)

func TestSnapshotReplaysSpawnThenComponents(t *testing.T) {
	s := NewSnapshot()
	id := ids.MustNewNetId()

	s.Fold(protocol.NewEntitySpawned(id))
	s.Fold(protocol.NewComponentUpdated(id, "a", []byte{1}))
	s.Fold(protocol.NewComponentUpdated(id, "b", []byte{2}))

	replay := s.Replay()
	if len(replay) != 3 {
		t.Fatalf("expected 3 replayed changes, got %d", len(replay))
	}
	if replay[0].Kind != protocol.EntitySpawned {
		t.Fatalf("expected spawn first, got %v", replay[0].Kind)
	}
}

func TestSnapshotDespawnPrunesComponents(t *testing.T) {
	s := NewSnapshot()
	id := ids.MustNewNetId()

	s.Fold(protocol.NewEntitySpawned(id))
	s.Fold(protocol.NewComponentUpdated(id, "a", []byte{1}))
	s.Fold(protocol.NewEntityDespawned(id))

	if replay := s.Replay(); len(replay) != 0 {
		t.Fatalf("expected empty replay after despawn, got %d entries", len(replay))
	}
}

func TestSnapshotComponentRemovalDeletesKey(t *testing.T) {
	s := NewSnapshot()
	id := ids.MustNewNetId()

	s.Fold(protocol.NewEntitySpawned(id))
	s.Fold(protocol.NewComponentUpdated(id, "a", []byte{1}))
	s.Fold(protocol.NewComponentUpdated(id, "a", nil))

	replay := s.Replay()
	if len(replay) != 1 {
		t.Fatalf("expected only the spawn to remain, got %d", len(replay))
	}
}

func TestSnapshotResourceUpdateAndRemoval(t *testing.T) {
	s := NewSnapshot()
	s.Fold(protocol.NewResourceUpdated("cfg", []byte{9}))
	if replay := s.Replay(); len(replay) != 1 {
		t.Fatalf("expected one resource entry, got %d", len(replay))
	}

	s.Fold(protocol.NewResourceUpdated("cfg", nil))
	if replay := s.Replay(); len(replay) != 0 {
		t.Fatalf("expected resource removed, got %d entries", len(replay))
	}
}
