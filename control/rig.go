package control

import (
	"rovmesh/config"
	"rovmesh/geom"
	"rovmesh/motor"
)

// Rig bundles a robot's motor geometry, performance table, and tuning into
// the one object control/movement.go needs each tick to turn a resolved
// Movement into per-motor Commands. Grounded on
// original_source/robot/src/plugins/actuators/thruster.rs, which keeps the
// same handful of fields (config, performance table, amperage budget, jerk
// limit) on its ThrusterPlugin resource.
type Rig struct {
	Config     *motor.Config[string]
	Performance *motor.Performance
	MaxCurrent  float64
	JerkLimit   float64
	Eps         float64

	prevForces map[string]float64
	axisMax    motor.AxisMaximums
}

// NewX3DRig builds a Rig over the canonical 8-thruster X3D frame, re-keyed
// to the string ids MotorDefinition/TargetForce replicate over the wire
// (motor.Rekey).
func NewX3DRig(com geom.Vec3, perf *motor.Performance, maxCurrent, jerkLimit float64) *Rig {
	typed := motor.NewX3D(com)
	cfg := motor.Rekey(typed, func(id motor.X3DMotorID) string { return id.String() })
	r := &Rig{
		Config:      cfg,
		Performance: perf,
		MaxCurrent:  maxCurrent,
		JerkLimit:   jerkLimit,
		Eps:         config.AmperageClampEpsilon,
		prevForces:  make(map[string]float64),
	}
	r.RecomputeAxisMaximums()
	return r
}

// RecomputeAxisMaximums refreshes the cached MovementAxisMaximums
// (SPEC_FULL.md F.3.6: recomputed whenever the motor set or center of mass
// changes, not every tick).
func (r *Rig) RecomputeAxisMaximums() {
	r.axisMax = motor.AllAxisMaximums(r.Config, r.Performance, r.MaxCurrent, config.AxisMaximumEpsilon)
}

// AxisMaximums returns the cached per-axis request ceiling.
func (r *Rig) AxisMaximums() motor.AxisMaximums { return r.axisMax }

// Solve resolves target into per-motor commands, running the full
// reverse-solve -> amperage/jerk pipeline over dt, and remembers the
// result as next tick's "previous forces" for the jerk-limit slew.
func (r *Rig) Solve(target motor.Movement, dt float64) map[string]motor.Command {
	forces := motor.Reverse(r.Config, target)
	out := motor.Solve(r.Config, r.Performance, forces, r.prevForces, r.MaxCurrent, r.JerkLimit, dt, r.Eps)

	next := make(map[string]float64, len(out))
	for id, cmd := range out {
		next[id] = cmd.Force
	}
	r.prevForces = next

	return out
}
