package control

import (
	"rovmesh/components"
	"rovmesh/ecs"
)

// statusMovingFloor is the smallest target-movement magnitude that counts
// as "commanded to move" rather than at rest — SPEC_FULL.md F.3.3's
// RobotStatus derivation needs some tolerance since a PID loop's steady
// state is rarely exactly zero.
const statusMovingFloor = 1e-6

// RunStatus derives RobotStatus for the robot entity, per DESIGN.md's
// Open Question decision: NoPeer when no Peer entity currently exists,
// else Disarmed/Ready/Moving(pct) off ArmedComponent and TargetMovement,
// with pct the magnitude of ActualMovement's force as a percentage of the
// largest cached axis maximum, clamped to [0,100]. Grounded on the status precedence spec.md §3.3 lists
// (NoPeer outranks Disarmed outranks Ready/Moving).
func RunStatus(w *ecs.World, rig *Rig) error {
	robotKey, ok := robotEntity(w)
	if !ok {
		return nil
	}
	if owner, ok := w.Owner(robotKey); ok && owner.IsForeign() {
		return nil // the surface displays the robot's own derivation, it doesn't compute one
	}

	status := components.RobotStatus{Kind: components.StatusNoPeer}

	if len(ecs.Query[components.Peer](w)) > 0 {
		armed, _ := ecs.Get[components.ArmedComponent](w, robotKey)
		switch {
		case armed.State != components.Armed:
			status = components.RobotStatus{Kind: components.StatusDisarmed}
		default:
			status = deriveMovingStatus(w, robotKey, rig)
		}
	}

	return ecs.Insert(w, robotKey, status)
}

func deriveMovingStatus(w *ecs.World, robotKey ecs.EntityKey, rig *Rig) components.RobotStatus {
	target, ok := ecs.Get[components.TargetMovement](w, robotKey)
	if !ok {
		return components.RobotStatus{Kind: components.StatusReady}
	}
	if target.Movement.Force.Length() < statusMovingFloor && target.Movement.Torque.Length() < statusMovingFloor {
		return components.RobotStatus{Kind: components.StatusReady}
	}

	actual, _ := ecs.Get[components.ActualMovement](w, robotKey)
	magnitude := actual.Movement.Force.Length()

	ceiling := largestAxisMaximum(rig)
	pct := 0.0
	if ceiling > 0 {
		pct = magnitude / ceiling * 100
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	return components.RobotStatus{Kind: components.StatusMoving, Percent: pct}
}

func largestAxisMaximum(rig *Rig) float64 {
	max := 0.0
	for _, v := range rig.AxisMaximums() {
		if v > max {
			max = v
		}
	}
	return max
}
