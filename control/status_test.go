package control

import (
	"testing"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/motor"
)

func setupRobot(t *testing.T, w *ecs.World) ecs.EntityKey {
	t.Helper()
	key := w.Spawn()
	if err := ecs.Insert(w, key, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	return key
}

func TestStatusNoPeerWhenNoPeerEntity(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	robotKey := setupRobot(t, w)

	if err := RunStatus(w, rig); err != nil {
		t.Fatalf("RunStatus: %v", err)
	}

	status, ok := ecs.Get[components.RobotStatus](w, robotKey)
	if !ok || status.Kind != components.StatusNoPeer {
		t.Fatalf("status = %+v, want NoPeer", status)
	}
}

func TestStatusDisarmedOutranksReady(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	robotKey := setupRobot(t, w)

	peerKey := w.Spawn()
	if err := ecs.Insert(w, peerKey, components.Peer{Token: 1}); err != nil {
		t.Fatalf("insert Peer: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Disarmed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}

	if err := RunStatus(w, rig); err != nil {
		t.Fatalf("RunStatus: %v", err)
	}

	status, ok := ecs.Get[components.RobotStatus](w, robotKey)
	if !ok || status.Kind != components.StatusDisarmed {
		t.Fatalf("status = %+v, want Disarmed", status)
	}
}

func TestStatusReadyWhenArmedAndStill(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	robotKey := setupRobot(t, w)

	peerKey := w.Spawn()
	if err := ecs.Insert(w, peerKey, components.Peer{Token: 1}); err != nil {
		t.Fatalf("insert Peer: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Armed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}

	if err := RunStatus(w, rig); err != nil {
		t.Fatalf("RunStatus: %v", err)
	}

	status, ok := ecs.Get[components.RobotStatus](w, robotKey)
	if !ok || status.Kind != components.StatusReady {
		t.Fatalf("status = %+v, want Ready", status)
	}
}

func TestStatusMovingPercentClampedTo100(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	robotKey := setupRobot(t, w)

	peerKey := w.Spawn()
	if err := ecs.Insert(w, peerKey, components.Peer{Token: 1}); err != nil {
		t.Fatalf("insert Peer: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Armed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.TargetMovement{
		Movement: motor.Movement{Force: geom.Vec3{X: 1}},
	}); err != nil {
		t.Fatalf("insert TargetMovement: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.ActualMovement{
		Movement: motor.Movement{Force: geom.Vec3{X: 1e9}},
	}); err != nil {
		t.Fatalf("insert ActualMovement: %v", err)
	}

	if err := RunStatus(w, rig); err != nil {
		t.Fatalf("RunStatus: %v", err)
	}

	status, ok := ecs.Get[components.RobotStatus](w, robotKey)
	if !ok || status.Kind != components.StatusMoving {
		t.Fatalf("status = %+v, want Moving", status)
	}
	if status.Percent != 100 {
		t.Fatalf("percent = %v, want clamped to 100", status.Percent)
	}
}
