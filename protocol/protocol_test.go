package protocol

import (
	"bytes"
	"testing"

	"rovmesh/ids"
)

func TestRoundTripPing(t *testing.T) {
	msg := NewPing(12345)
	decoded, err := Decode(Encode(msg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != Ping || decoded.Payload != 12345 {
		t.Fatalf("got %+v, want Ping{12345}", decoded)
	}
}

func TestRoundTripComponentUpdate(t *testing.T) {
	id := ids.NetId{Lo: 1, Hi: 2}
	change := NewComponentUpdated(id, "robot.orientation", []byte{1, 2, 3, 4})
	msg := NewEcsUpdate(change)

	decoded, err := Decode(Encode(msg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Kind != EcsUpdate {
		t.Fatalf("Kind = %v, want EcsUpdate", decoded.Kind)
	}
	got := decoded.Change
	if got.Kind != ComponentUpdated || got.NetId != id || got.Token != "robot.orientation" {
		t.Fatalf("got %+v", got)
	}
	if !bytes.Equal(got.Data, []byte{1, 2, 3, 4}) {
		t.Fatalf("Data = %v, want [1 2 3 4]", got.Data)
	}
}

func TestComponentRemovalIsNone(t *testing.T) {
	change := NewComponentUpdated(ids.NetId{Lo: 9}, "robot.sensors.depth", nil)
	decoded, err := Decode(Encode(NewEcsUpdate(change)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Change.Data != nil {
		t.Fatalf("Data = %v, want nil (removal)", decoded.Change.Data)
	}
}

func TestEntityLifecycleRoundTrip(t *testing.T) {
	id := ids.NetId{Lo: 42, Hi: 7}

	spawned, err := Decode(Encode(NewEcsUpdate(NewEntitySpawned(id))))
	if err != nil || spawned.Change.Kind != EntitySpawned || spawned.Change.NetId != id {
		t.Fatalf("spawn round-trip failed: %+v, %v", spawned, err)
	}

	despawned, err := Decode(Encode(NewEcsUpdate(NewEntityDespawned(id))))
	if err != nil || despawned.Change.Kind != EntityDespawned || despawned.Change.NetId != id {
		t.Fatalf("despawn round-trip failed: %+v, %v", despawned, err)
	}
}
