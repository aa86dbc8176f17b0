package control

import (
	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/motor"
)

// RunMovement is spec.md §4.6's movement accumulation: sum every
// MovementContribution whose RobotId matches the local robot, solve it
// through the Rig's reverse-then-forward pipeline, and replicate the
// results (TargetMovement, ActualMovement, and per-motor TargetForce/
// ActualForce/CurrentDraw; PwmSignal is written elsewhere, by the robot
// binary's PWM stage). It reads and writes only replicated component state
// rather than anything transport-specific, and does work only on the side
// that owns the robot entity.
func RunMovement(w *ecs.World, rig *Rig, dt float64) error {
	robotKey, ok := robotEntity(w)
	if !ok {
		return nil
	}

	// The surface mirrors the robot entity rather than owning it; the
	// resolved TargetMovement/ActualMovement/per-motor state is the robot's
	// alone to publish (spec.md §3.1) — the sync stream overwrites the
	// mirror anyway, so on a foreign robot nothing is computed or written.
	if owner, ok := w.Owner(robotKey); ok && owner.IsForeign() {
		return nil
	}

	robotID, ok := ecs.GetResource[components.RobotId](w)
	if !ok {
		return nil
	}

	var contributions []motor.Movement
	for _, key := range ecs.Query[components.MovementContribution](w) {
		c, ok := ecs.Get[components.MovementContribution](w, key)
		if !ok || c.RobotId != robotID.Id {
			continue
		}
		contributions = append(contributions, c.Movement)
	}

	target := motor.Sum(contributions)
	if err := ecs.Insert(w, robotKey, components.TargetMovement{Movement: target}); err != nil {
		return err
	}

	commands := rig.Solve(target, dt)

	achieved := motor.Forward(rig.Config, forcesOf(commands))
	if err := ecs.Insert(w, robotKey, components.ActualMovement{Movement: achieved}); err != nil {
		return err
	}

	targetForces := motor.Reverse(rig.Config, target)
	for _, id := range rig.Config.Ids() {
		key, ok := motorEntity(w, id)
		if !ok {
			continue
		}
		cmd := commands[id]
		if err := ecs.Insert(w, key, components.TargetForce{MotorId: id, Newtons: targetForces[id]}); err != nil {
			return err
		}
		if err := ecs.Insert(w, key, components.ActualForce{MotorId: id, Newtons: cmd.Force}); err != nil {
			return err
		}
		if err := ecs.Insert(w, key, components.CurrentDraw{MotorId: id, Amps: cmd.Current}); err != nil {
			return err
		}
	}

	return nil
}

func forcesOf(commands map[string]motor.Command) map[string]float64 {
	out := make(map[string]float64, len(commands))
	for id, cmd := range commands {
		out[id] = cmd.Force
	}
	return out
}

// robotEntity returns the singleton entity carrying RobotMarker.
func robotEntity(w *ecs.World) (ecs.EntityKey, bool) {
	keys := ecs.Query[components.RobotMarker](w)
	if len(keys) == 0 {
		return ecs.EntityKey{}, false
	}
	return keys[0], true
}

// motorEntity finds the entity carrying a MotorDefinition for motorID,
// creating it is the caller's job up front (RegisterMotors) — RunMovement
// only ever writes to motors already defined.
func motorEntity(w *ecs.World, motorID string) (ecs.EntityKey, bool) {
	for _, key := range ecs.Query[components.MotorDefinition](w) {
		def, ok := ecs.Get[components.MotorDefinition](w, key)
		if ok && def.MotorId == motorID {
			return key, true
		}
	}
	return ecs.EntityKey{}, false
}

// RegisterMotors spawns one local entity per motor in rig carrying its
// static MotorDefinition, so RunMovement has somewhere to write per-motor
// telemetry. Call once at startup after building the Rig.
func RegisterMotors(w *ecs.World, rig *Rig) error {
	for _, id := range rig.Config.Ids() {
		m, _ := rig.Config.Motor(id)
		key := w.Spawn()
		def := components.MotorDefinition{
			MotorId:     id,
			Position:    m.Position,
			Orientation: m.Orientation,
			CCW:         m.Direction == motor.CCW,
		}
		if err := ecs.Insert(w, key, def); err != nil {
			return err
		}
	}
	return nil
}
