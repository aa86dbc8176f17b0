package control

import (
	"testing"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/ids"
)

func TestRunArmRequestsAppliesOwnRequestAfterSync(t *testing.T) {
	w := testWorld(t)
	tracker := ecs.NewTracker(w)

	robotKey := w.Spawn()
	if err := ecs.Insert(w, robotKey, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Disarmed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}
	robotID := ids.NetId{Lo: 1}
	ecs.SetResource(w, components.RobotId{Id: robotID})

	reqKey := w.Spawn()
	if err := ecs.Insert(w, reqKey, components.ArmRequest{RobotId: robotID, State: components.Armed}); err != nil {
		t.Fatalf("insert ArmRequest: %v", err)
	}

	// Before the tracker has ever synced this entity, RunArmRequests must
	// leave it alone -- despawning it immediately would erase it before
	// DetectChanges ever broadcasts the spawn.
	if err := RunArmRequests(w, tracker); err != nil {
		t.Fatalf("RunArmRequests: %v", err)
	}
	if !w.IsAlive(reqKey) {
		t.Fatalf("ArmRequest despawned before its first sync")
	}
	armed, _ := ecs.Get[components.ArmedComponent](w, robotKey)
	if armed.State != components.Disarmed {
		t.Fatalf("ArmedComponent applied before sync: %+v", armed)
	}

	tracker.DetectChanges()

	if err := RunArmRequests(w, tracker); err != nil {
		t.Fatalf("RunArmRequests: %v", err)
	}
	if w.IsAlive(reqKey) {
		t.Fatalf("ArmRequest not despawned after sync")
	}
	armed, _ = ecs.Get[components.ArmedComponent](w, robotKey)
	if armed.State != components.Armed {
		t.Fatalf("ArmedComponent = %+v, want Armed", armed)
	}
}

func TestRunArmRequestsIgnoresMismatchedRobotId(t *testing.T) {
	w := testWorld(t)
	tracker := ecs.NewTracker(w)

	robotKey := w.Spawn()
	if err := ecs.Insert(w, robotKey, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Disarmed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}
	ecs.SetResource(w, components.RobotId{Id: ids.NetId{Lo: 1}})

	reqKey := w.Spawn()
	if err := ecs.Insert(w, reqKey, components.ArmRequest{RobotId: ids.NetId{Lo: 2}, State: components.Armed}); err != nil {
		t.Fatalf("insert ArmRequest: %v", err)
	}
	tracker.DetectChanges()

	if err := RunArmRequests(w, tracker); err != nil {
		t.Fatalf("RunArmRequests: %v", err)
	}
	if !w.IsAlive(reqKey) {
		t.Fatalf("mismatched ArmRequest should be left alone")
	}
	armed, _ := ecs.Get[components.ArmedComponent](w, robotKey)
	if armed.State != components.Disarmed {
		t.Fatalf("ArmedComponent changed for a mismatched request: %+v", armed)
	}
}

func TestRunArmRequestsDoesNotApplyOnForeignRobot(t *testing.T) {
	w := testWorld(t)
	tracker := ecs.NewTracker(w)

	robotKey := w.Spawn()
	if err := ecs.Insert(w, robotKey, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	w.SetOwner(robotKey, ecs.ForeignOwned(ids.PeerToken(7)))
	robotID := ids.NetId{Lo: 1}
	ecs.SetResource(w, components.RobotId{Id: robotID})

	reqKey := w.Spawn()
	if err := ecs.Insert(w, reqKey, components.ArmRequest{RobotId: robotID, State: components.Armed}); err != nil {
		t.Fatalf("insert ArmRequest: %v", err)
	}
	tracker.DetectChanges()

	if err := RunArmRequests(w, tracker); err != nil {
		t.Fatalf("RunArmRequests: %v", err)
	}
	if w.IsAlive(reqKey) {
		t.Fatalf("own request should still clear locally even though the robot is foreign here")
	}
	if _, ok := ecs.Get[components.ArmedComponent](w, robotKey); ok {
		t.Fatalf("ArmedComponent should never be written on a foreign-owned robot mirror")
	}
}
