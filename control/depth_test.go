package control

import (
	"testing"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/ids"
)

func TestDepthControllerPushesCorrectionTowardTarget(t *testing.T) {
	w := testWorld(t)
	robotKey := setupRobot(t, w)
	robotID := ids.NetId{Lo: 9}
	ecs.SetResource(w, components.RobotId{Id: robotID})
	if err := ecs.Insert(w, robotKey, components.DepthFrame{Meters: 1.0}); err != nil {
		t.Fatalf("insert DepthFrame: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.Orientation{Quat: geom.IdentityQuat}); err != nil {
		t.Fatalf("insert Orientation: %v", err)
	}

	targetKey := w.Spawn()
	if err := ecs.Insert(w, targetKey, components.DepthTarget{Meters: 2.0}); err != nil {
		t.Fatalf("insert DepthTarget: %v", err)
	}

	c := NewDepthController()
	if err := c.Run(w, 0.1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, key := range ecs.Query[components.MovementContribution](w) {
		contrib, ok := ecs.Get[components.MovementContribution](w, key)
		if !ok || contrib.RobotId != robotID {
			continue
		}
		found = true
		if contrib.Movement.Force.Z <= 0 {
			t.Fatalf("force Z = %v, want positive (target is deeper than current depth)", contrib.Movement.Force.Z)
		}
	}
	if !found {
		t.Fatalf("no MovementContribution produced")
	}
}

func TestDepthControllerClearsContributionWhenTargetRemoved(t *testing.T) {
	w := testWorld(t)
	robotKey := setupRobot(t, w)
	robotID := ids.NetId{Lo: 9}
	ecs.SetResource(w, components.RobotId{Id: robotID})
	if err := ecs.Insert(w, robotKey, components.DepthFrame{Meters: 1.0}); err != nil {
		t.Fatalf("insert DepthFrame: %v", err)
	}
	if err := ecs.Insert(w, robotKey, components.Orientation{Quat: geom.IdentityQuat}); err != nil {
		t.Fatalf("insert Orientation: %v", err)
	}

	targetKey := w.Spawn()
	if err := ecs.Insert(w, targetKey, components.DepthTarget{Meters: 2.0}); err != nil {
		t.Fatalf("insert DepthTarget: %v", err)
	}

	c := NewDepthController()
	if err := c.Run(w, 0.1); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	w.Despawn(targetKey)
	if err := c.Run(w, 0.1); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(c.pids) != 0 || len(c.contribs) != 0 {
		t.Fatalf("controller kept stale state after target removed: pids=%v contribs=%v", c.pids, c.contribs)
	}
}
