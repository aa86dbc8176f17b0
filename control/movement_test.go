package control

import (
	"fmt"
	"strings"
	"testing"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/ids"
	"rovmesh/motor"
	"rovmesh/token"
)

func testRig(t *testing.T) *Rig {
	t.Helper()
	var csv strings.Builder
	for pwm := 1100.0; pwm <= 1900; pwm += 20 {
		force := (pwm - 1500) / 100
		fmt.Fprintf(&csv, "%v,%v,%v,%v,%v,%v,%v\n",
			pwm, force*1000, abs(force)*5, 12.0, abs(force)*60, force, 0.5)
	}
	perf, err := motor.LoadPerformanceCSV(strings.NewReader(csv.String()))
	if err != nil {
		t.Fatalf("LoadPerformanceCSV: %v", err)
	}
	return NewX3DRig(geom.Vec3{}, perf, 20.0, 1e6)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func testWorld(t *testing.T) *ecs.World {
	t.Helper()
	reg := token.New()
	w := ecs.NewWorld(reg)
	if err := components.RegisterAll(reg, w); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	reg.Freeze()
	return w
}

func TestRunMovementZeroContributionsIsZeroTarget(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	if err := RegisterMotors(w, rig); err != nil {
		t.Fatalf("RegisterMotors: %v", err)
	}

	robotKey := w.Spawn()
	if err := ecs.Insert(w, robotKey, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	robotID := ids.NetId{Lo: 1}
	ecs.SetResource(w, components.RobotId{Id: robotID})

	if err := RunMovement(w, rig, 0.01); err != nil {
		t.Fatalf("RunMovement: %v", err)
	}

	target, ok := ecs.Get[components.TargetMovement](w, robotKey)
	if !ok {
		t.Fatalf("TargetMovement not written")
	}
	if target.Movement != (motor.Movement{}) {
		t.Fatalf("target = %+v, want zero", target.Movement)
	}
}

func TestRunMovementSumsMatchingContributionsOnly(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	if err := RegisterMotors(w, rig); err != nil {
		t.Fatalf("RegisterMotors: %v", err)
	}

	robotKey := w.Spawn()
	if err := ecs.Insert(w, robotKey, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	robotID := ids.NetId{Lo: 1}
	otherID := ids.NetId{Lo: 2}
	ecs.SetResource(w, components.RobotId{Id: robotID})

	match := w.Spawn()
	if err := ecs.Insert(w, match, components.MovementContribution{
		RobotId:  robotID,
		Movement: motor.Movement{Force: geom.Vec3{X: 1}},
	}); err != nil {
		t.Fatalf("insert matching contribution: %v", err)
	}

	other := w.Spawn()
	if err := ecs.Insert(w, other, components.MovementContribution{
		RobotId:  otherID,
		Movement: motor.Movement{Force: geom.Vec3{X: 100}},
	}); err != nil {
		t.Fatalf("insert other contribution: %v", err)
	}

	if err := RunMovement(w, rig, 0.01); err != nil {
		t.Fatalf("RunMovement: %v", err)
	}

	target, ok := ecs.Get[components.TargetMovement](w, robotKey)
	if !ok {
		t.Fatalf("TargetMovement not written")
	}
	if target.Movement.Force.X != 1 {
		t.Fatalf("target force X = %v, want 1 (other robot's contribution must be excluded)", target.Movement.Force.X)
	}
}

func TestRunMovementSkipsForeignOwnedRobot(t *testing.T) {
	w := testWorld(t)
	rig := testRig(t)
	if err := RegisterMotors(w, rig); err != nil {
		t.Fatalf("RegisterMotors: %v", err)
	}

	// Build the entity locally so Insert's ownership check passes, then flip
	// it to ForeignOwned the way the tracker's ApplyInbound(EntitySpawned)
	// path would once the rest of the mirror arrives over the wire.
	robotKey := w.Spawn()
	if err := ecs.Insert(w, robotKey, components.RobotMarker{}); err != nil {
		t.Fatalf("insert RobotMarker: %v", err)
	}
	w.SetOwner(robotKey, ecs.ForeignOwned(ids.PeerToken(7)))
	ecs.SetResource(w, components.RobotId{Id: ids.NetId{Lo: 1}})

	if err := RunMovement(w, rig, 0.01); err != nil {
		t.Fatalf("RunMovement: %v", err)
	}

	if _, ok := ecs.Get[components.TargetMovement](w, robotKey); ok {
		t.Fatalf("TargetMovement written on a foreign-owned robot entity")
	}
}
