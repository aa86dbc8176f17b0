package control

import (
	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/ids"
	"rovmesh/motor"
)

// GamepadState is one tick's raw surface input sample, in [-1, 1] per axis
// (buttons are edge-triggered — callers pass only the ones pressed this
// tick). Reading the physical device is out of scope (spec.md §1); this is
// the boundary the terminal/httpapi input sources decode into.
type GamepadState struct {
	Axes    map[motor.Axis]float64
	Pressed map[Button]bool
}

// Button names the toggles spec.md §4.6 assigns to buttons rather than
// axes.
type Button int

const (
	ButtonArmToggle Button = iota
	ButtonDepthHoldToggle
	ButtonLevelToggle
)

// InputMapper turns GamepadState into replicated component writes on the
// surface side: a MovementContribution entity carrying the shaped axis
// request, plus toggles for Armed/DepthTarget/OrientationTarget. Grounded
// on original_source/surface/src/plugins/input.rs's curve and button
// handling.
type InputMapper struct {
	contribKey  ecs.EntityKey
	haveContrib bool

	depthHeld bool
	levelHeld bool
}

// NewInputMapper returns an empty mapper.
func NewInputMapper() *InputMapper { return &InputMapper{} }

// shapeCubic is spec.md §4.6's "cubic-with-sign curve": x^3 preserves sign
// while giving fine control near center and full authority at the stick's
// extremes, same shape as a raw cube since the domain is already [-1, 1].
func shapeCubic(x float64) float64 { return x * x * x }

// Run maps one tick's GamepadState into world state for robotID, against
// maxes (the caller's MovementAxisMaximums; the surface passes those of its
// local rig so requests are scaled to what that geometry can achieve).
func (m *InputMapper) Run(w *ecs.World, robotKey ecs.EntityKey, robotID ids.NetId, maxes motor.AxisMaximums, state GamepadState) error {
	var move motor.Movement
	for axis, raw := range state.Axes {
		shaped := shapeCubic(clampUnit(raw))
		scaled := shaped * maxes[axis]
		switch axis {
		case motor.AxisX:
			move.Force.X += scaled
		case motor.AxisY:
			move.Force.Y += scaled
		case motor.AxisZ:
			move.Force.Z += scaled
		case motor.AxisXRot:
			move.Torque.X += scaled
		case motor.AxisYRot:
			move.Torque.Y += scaled
		case motor.AxisZRot:
			move.Torque.Z += scaled
		}
	}

	if !m.haveContrib {
		m.contribKey = w.Spawn()
		m.haveContrib = true
	}
	if err := ecs.Insert(w, m.contribKey, components.MovementContribution{
		RobotId:  robotID,
		Movement: move,
	}); err != nil {
		return err
	}

	if state.Pressed[ButtonArmToggle] {
		current, _ := ecs.Get[components.ArmedComponent](w, robotKey)
		next := components.Armed
		if current.State == components.Armed {
			next = components.Disarmed
		}
		// robotKey mirrors the robot and may be ForeignOwned here (the
		// surface always sees it that way); route the toggle through an
		// ArmRequest entity rather than writing ArmedComponent directly,
		// same as httpapi/terminal's arm path (control/arm.go).
		reqKey := w.Spawn()
		if err := ecs.Insert(w, reqKey, components.ArmRequest{RobotId: robotID, State: next}); err != nil {
			return err
		}
	}

	if state.Pressed[ButtonDepthHoldToggle] {
		m.depthHeld = !m.depthHeld
		if m.depthHeld {
			depth, _ := ecs.Get[components.DepthFrame](w, robotKey)
			targetKey := w.Spawn()
			if err := ecs.Insert(w, targetKey, components.DepthTarget{Meters: depth.Meters}); err != nil {
				return err
			}
		} else {
			for _, key := range ecs.Query[components.DepthTarget](w) {
				w.Despawn(key)
			}
		}
	}

	if state.Pressed[ButtonLevelToggle] {
		m.levelHeld = !m.levelHeld
		if m.levelHeld {
			targetKey := w.Spawn()
			if err := ecs.Insert(w, targetKey, components.OrientationTarget{Up: geom.Vec3{Z: 1}}); err != nil {
				return err
			}
		} else {
			for _, key := range ecs.Query[components.OrientationTarget](w) {
				w.Despawn(key)
			}
		}
	}

	return nil
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
