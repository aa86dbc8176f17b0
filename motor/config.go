package motor

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"rovmesh/geom"
)

// Direction is a motor's wiring sense (spec.md §3.5). Motors wired CCW need
// their force-to-PWM lookup mirrored (Performance.Lookup).
type Direction int

const (
	CW Direction = iota
	CCW
)

// Motor is one thruster's fixed geometry: its position relative to the
// robot's body frame, unit thrust orientation, and wiring direction.
type Motor struct {
	Position    geom.Vec3
	Orientation geom.Vec3
	Direction   Direction
}

// Config holds a named set of thrusters plus the thrust matrix and its
// pseudo-inverse derived from them (spec.md §3.5). Id is generic so both
// the robot's real motor ids (strings, per robot_config.toml) and test
// fixtures (small ints) can use the same type.
type Config[Id comparable] struct {
	ids    []Id // insertion order — "ordered map" per spec.md §3.5
	motors map[Id]Motor

	centerOfMass geom.Vec3

	thrustMatrix  *mat.Dense // 6xN
	pseudoInverse *mat.Dense // Nx6
}

// NewConfig constructs an empty Config with the given center of mass.
func NewConfig[Id comparable](com geom.Vec3) *Config[Id] {
	return &Config[Id]{
		motors:       make(map[Id]Motor),
		centerOfMass: com,
	}
}

// Set installs or replaces a motor and recomputes the thrust matrix and
// its pseudo-inverse (spec.md §3.5's invariant: "recomputed exactly when
// the motor set or center of mass changes").
func (c *Config[Id]) Set(id Id, m Motor) {
	if _, exists := c.motors[id]; !exists {
		c.ids = append(c.ids, id)
	}
	c.motors[id] = m
	c.rebuild()
}

// SetCenterOfMass updates the center of mass and recomputes the matrices.
func (c *Config[Id]) SetCenterOfMass(com geom.Vec3) {
	c.centerOfMass = com
	c.rebuild()
}

// Remove deletes a motor by id and recomputes the matrices.
func (c *Config[Id]) Remove(id Id) {
	if _, ok := c.motors[id]; !ok {
		return
	}
	delete(c.motors, id)
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	c.rebuild()
}

// Ids returns every motor id in insertion order.
func (c *Config[Id]) Ids() []Id {
	out := make([]Id, len(c.ids))
	copy(out, c.ids)
	return out
}

// Motor returns the geometry registered for id.
func (c *Config[Id]) Motor(id Id) (Motor, bool) {
	m, ok := c.motors[id]
	return m, ok
}

// N is the number of configured motors.
func (c *Config[Id]) N() int { return len(c.ids) }

func (c *Config[Id]) rebuild() {
	n := len(c.ids)
	if n == 0 {
		c.thrustMatrix = nil
		c.pseudoInverse = nil
		return
	}

	thrust := mat.NewDense(6, n, nil)
	for col, id := range c.ids {
		m := c.motors[id]
		lever := m.Position.Sub(c.centerOfMass).Cross(m.Orientation)
		thrust.Set(0, col, m.Orientation.X)
		thrust.Set(1, col, m.Orientation.Y)
		thrust.Set(2, col, m.Orientation.Z)
		thrust.Set(3, col, lever.X)
		thrust.Set(4, col, lever.Y)
		thrust.Set(5, col, lever.Z)
	}
	c.thrustMatrix = thrust
	c.pseudoInverse = pseudoInverse(thrust)
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse of m via SVD,
// with singular values below a local tolerance of 1e-4 (the same value as
// config.PseudoInverseTolerance, which this package does not import)
// treated as zero (spec.md §3.5: "tolerance 10⁻⁴").
func pseudoInverse(m *mat.Dense) *mat.Dense {
	const tolerance = 1e-4

	rows0, cols0 := m.Dims()

	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDThin)
	if !ok {
		panic(fmt.Sprintf("motor: SVD factorization failed for %dx%d thrust matrix", rows0, cols0))
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	k := len(values)

	sInv := mat.NewDense(k, k, nil)
	for i, s := range values {
		if s > tolerance {
			sInv.Set(i, i, 1/s)
		}
	}

	var vs mat.Dense
	vs.Mul(&v, sInv)
	out := mat.NewDense(cols0, rows0, nil)
	out.Mul(&vs, u.T())
	return out
}

// RecommendedOrder returns motor ids sorted for deterministic display
// (terminal/httpapi use this; solving itself is order-independent since it
// always walks c.ids).
func (c *Config[Id]) RecommendedOrder(less func(a, b Id) bool) []Id {
	out := c.Ids()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
