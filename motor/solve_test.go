package motor

import (
	"math"
	"testing"

	"rovmesh/geom"
)

func TestForwardReverseRoundTrip(t *testing.T) {
	cfg := NewX3D(geom.Vec3{})
	target := Movement{
		Force:  geom.Vec3{X: 0.6, Y: 0, Z: 0.3},
		Torque: geom.Vec3{X: 0.2, Y: 0.1, Z: 0.3},
	}

	forces := Reverse(cfg, target)
	got := Forward(cfg, forces)

	if !approxEqual(got, target, 1e-4) {
		t.Fatalf("forward(reverse(target)) = %+v, want %+v", got, target)
	}
}

func TestReverseZeroIsZero(t *testing.T) {
	cfg := NewX3D(geom.Vec3{})
	forces := Reverse(cfg, Movement{})
	for id, f := range forces {
		if math.Abs(f) > 1e-9 {
			t.Fatalf("motor %v: reverse(zero) = %v, want 0", id, f)
		}
	}
}

func TestMovementAdditiveIdentity(t *testing.T) {
	m := Movement{Force: geom.Vec3{X: 1, Y: 2, Z: 3}, Torque: geom.Vec3{X: 4, Y: 5, Z: 6}}
	if got := m.Add(Movement{}); got != m {
		t.Fatalf("m + zero = %+v, want %+v", got, m)
	}
}

func TestSumOrderIndependent(t *testing.T) {
	a := Movement{Force: geom.Vec3{X: 1}}
	b := Movement{Torque: geom.Vec3{Z: 2}}

	ab := Sum([]Movement{a, b})
	ba := Sum([]Movement{b, a})

	if ab != ba {
		t.Fatalf("Sum order dependent: %+v vs %+v", ab, ba)
	}
}

func flatTable() *Performance {
	records := make([]Record, 0, 41)
	for pwm := 1100.0; pwm <= 1900; pwm += 20 {
		force := (pwm - 1500) / 100 // -4..4 N roughly
		records = append(records, Record{
			Pwm: pwm, Rpm: force * 1000, Current: math.Abs(force) * 5,
			Voltage: 12, Power: math.Abs(force) * 60, Force: force, Efficiency: 0.5,
		})
	}
	return &Performance{records: records}
}

func TestAmperageClampConverges(t *testing.T) {
	cfg := NewX3D(geom.Vec3{})
	perf := flatTable()

	forces := make(map[X3DMotorID]float64)
	for _, id := range cfg.Ids() {
		forces[id] = 4.0
	}

	const maxCurrent = 20.0
	const eps = 0.05

	out := Solve(cfg, perf, forces, map[X3DMotorID]float64{}, maxCurrent, 1e6, 1, eps)

	sum := 0.0
	for _, cmd := range out {
		sum += math.Abs(cmd.Current)
	}
	if sum > maxCurrent+eps {
		t.Fatalf("clamped current sum = %v, want <= %v", sum, maxCurrent+eps)
	}
}

func TestJerkLimitBounds(t *testing.T) {
	cfg := NewX3D(geom.Vec3{})
	perf := flatTable()

	forces := map[X3DMotorID]float64{}
	prev := map[X3DMotorID]float64{}
	for _, id := range cfg.Ids() {
		forces[id] = 4.0
		prev[id] = 0.0
	}

	const jerkLimit = 10.0
	const dt = 0.01 // bound = 0.1 N per tick

	out := Solve(cfg, perf, forces, prev, 1e6, jerkLimit, dt, 0.05)
	for id, cmd := range out {
		if math.Abs(cmd.Force-prev[id]) > jerkLimit*dt+1e-6 {
			t.Fatalf("motor %v slewed by %v, want <= %v", id, cmd.Force-prev[id], jerkLimit*dt)
		}
	}
}
