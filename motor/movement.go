// Package motor implements spec.md §3.5/§4.5's thruster geometry and
// solver: the six-axis Movement (wrench) type, the thrust matrix and its
// Moore-Penrose pseudo-inverse, forward/reverse solving, the force-to-PWM
// performance table, and the amperage/jerk limiting pipeline.
//
// Grounded on original_source/motor_math/src/{lib,solve/forward,solve/reverse,
// motor_preformance,x3d,utils}.rs, which build the same pipeline on top of
// `nalgebra`. gonum.org/v1/gonum/mat stands in for nalgebra's SVD-based
// pseudo-inverse (SPEC_FULL.md F.2 — no linear-algebra library exists
// anywhere in the retrieval pack).
package motor

import "rovmesh/geom"

// Movement is spec.md §3.4's wrench: a force/torque pair forming an
// additive group under componentwise vector addition, with Vec3{} as the
// identity (rest).
type Movement struct {
	Force  geom.Vec3
	Torque geom.Vec3
}

// Add returns the sum of two movements (spec.md §3.4: "additive group").
func (m Movement) Add(o Movement) Movement {
	return Movement{Force: m.Force.Add(o.Force), Torque: m.Torque.Add(o.Torque)}
}

// Scale returns m scaled by s.
func (m Movement) Scale(s float64) Movement {
	return Movement{Force: m.Force.Scale(s), Torque: m.Torque.Scale(s)}
}

// Sum folds a slice of movements with Add, returning the zero Movement for
// an empty slice (spec.md's "sending a zero contribution adds no change"
// boundary falls out of this for free).
func Sum(contributions []Movement) Movement {
	var total Movement
	for _, c := range contributions {
		total = total.Add(c)
	}
	return total
}

// approxEqual reports whether a and b agree within eps on every component,
// used by tests checking the forward(reverse(m)) ≈ m invariant.
func approxEqual(a, b Movement, eps float64) bool {
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(a.Force.X-b.Force.X) <= eps &&
		abs(a.Force.Y-b.Force.Y) <= eps &&
		abs(a.Force.Z-b.Force.Z) <= eps &&
		abs(a.Torque.X-b.Torque.X) <= eps &&
		abs(a.Torque.Y-b.Torque.Y) <= eps &&
		abs(a.Torque.Z-b.Torque.Z) <= eps
}
