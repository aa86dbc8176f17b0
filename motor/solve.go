package motor

import (
	"gonum.org/v1/gonum/mat"

	"rovmesh/geom"
)

// Forward computes the wrench a set of per-motor signed forces produces
// (spec.md §4.5). Ids absent from forces contribute zero.
func Forward[Id comparable](cfg *Config[Id], forces map[Id]float64) Movement {
	var total Movement
	for _, id := range cfg.ids {
		f, ok := forces[id]
		if !ok || f == 0 {
			continue
		}
		m := cfg.motors[id]
		lever := m.Position.Sub(cfg.centerOfMass).Cross(m.Orientation)
		total.Force = total.Force.Add(m.Orientation.Scale(f))
		total.Torque = total.Torque.Add(lever.Scale(f))
	}
	return total
}

// Reverse solves for the per-motor forces producing target via the
// precomputed pseudo-inverse (spec.md §4.5): x = pseudoInverse * [force;
// torque]. Returns zero for every motor if cfg has no motors configured.
func Reverse[Id comparable](cfg *Config[Id], target Movement) map[Id]float64 {
	out := make(map[Id]float64, cfg.N())
	if cfg.pseudoInverse == nil {
		for _, id := range cfg.ids {
			out[id] = 0
		}
		return out
	}

	w := mat.NewVecDense(6, []float64{
		target.Force.X, target.Force.Y, target.Force.Z,
		target.Torque.X, target.Torque.Y, target.Torque.Z,
	})

	var x mat.VecDense
	x.MulVec(cfg.pseudoInverse, w)

	for i, id := range cfg.ids {
		out[id] = x.AtVec(i)
	}
	return out
}

// Axis is one of the six unit wrench directions spec.md §4.5 binary
// searches over to build MovementAxisMaximums.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisXRot
	AxisYRot
	AxisZRot
)

var axisUnit = map[Axis]Movement{
	AxisX:    {Force: geom.Vec3{X: 1}},
	AxisY:    {Force: geom.Vec3{Y: 1}},
	AxisZ:    {Force: geom.Vec3{Z: 1}},
	AxisXRot: {Torque: geom.Vec3{X: 1}},
	AxisYRot: {Torque: geom.Vec3{Y: 1}},
	AxisZRot: {Torque: geom.Vec3{Z: 1}},
}

// AxisMaximums is spec.md §4.5's MovementAxisMaximums: the largest request
// magnitude along each unit axis that fits within the amperage budget,
// used by surface input mapping to scale gamepad axes.
type AxisMaximums map[Axis]float64
