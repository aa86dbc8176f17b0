package motor

import "math"

// Command is one motor's resolved output: the signed force it was asked
// to produce, and the PWM/current the performance table resolves that to.
type Command struct {
	Force   float64
	Pwm     float64
	Current float64
}

// Solve runs the full three-step pipeline SPEC_FULL.md F.3.5 describes:
// amperage clamp, jerk-limited slew against the previous tick's forces,
// then a second amperage re-clamp — grounded on
// original_source/robot/src/plugins/actuators/thruster.rs's
// accumulate_motor_forces, the actual source of truth for how the jerk
// limit interacts with the current budget (spec.md §4.5 states the two
// invariants but not their order).
func Solve[Id comparable](
	cfg *Config[Id],
	perf *Performance,
	forces map[Id]float64,
	prev map[Id]float64,
	maxCurrent, jerkLimit, dt, eps float64,
) map[Id]Command {
	clamped := clampCurrent(cfg, perf, forces, maxCurrent, eps)
	slewed := slew(cfg, clamped, prev, jerkLimit, dt)
	final := clampCurrent(cfg, perf, slewed, maxCurrent, eps)

	out := make(map[Id]Command, cfg.N())
	for _, id := range cfg.ids {
		f := final[id]
		rec, ok := perf.Lookup(f, cfg.motors[id].Direction)
		if !ok {
			out[id] = Command{Force: f}
			continue
		}
		out[id] = Command{Force: f, Pwm: rec.Pwm, Current: math.Abs(rec.Current)}
	}
	return out
}

// clampCurrent implements spec.md §4.5's amperage clamp: if the sum of
// absolute per-motor currents exceeds maxCurrent, scale every force by
// k = maxCurrent / sum and re-look-up, iterating until convergence within
// eps (bounded to a small number of iterations, since the performance
// curve is well-behaved and this always converges fast in practice).
func clampCurrent[Id comparable](cfg *Config[Id], perf *Performance, forces map[Id]float64, maxCurrent, eps float64) map[Id]float64 {
	if maxCurrent <= 0 {
		return forces
	}

	current := make(map[Id]float64, len(forces))
	sum := 0.0
	for _, id := range cfg.ids {
		f := forces[id]
		rec, ok := perf.Lookup(f, cfg.motors[id].Direction)
		c := 0.0
		if ok {
			c = math.Abs(rec.Current)
		}
		current[id] = c
		sum += c
	}

	if sum <= maxCurrent+eps {
		return forces
	}

	out := make(map[Id]float64, len(forces))
	for id, f := range forces {
		out[id] = f
	}

	const maxIterations = 8
	for i := 0; i < maxIterations && sum > maxCurrent+eps; i++ {
		k := maxCurrent / sum
		sum = 0
		for _, id := range cfg.ids {
			f := out[id]
			target := f * k
			rec, ok := perf.Lookup(target, cfg.motors[id].Direction)
			if !ok {
				continue
			}
			out[id] = rec.Force
			c := math.Abs(rec.Current)
			current[id] = c
			sum += c
		}
	}
	return out
}

// slew applies spec.md §4.5's jerk limit: between ticks, each motor's
// force may change by at most jerkLimit*dt.
func slew[Id comparable](cfg *Config[Id], forces, prev map[Id]float64, jerkLimit, dt float64) map[Id]float64 {
	bound := jerkLimit * dt
	out := make(map[Id]float64, len(forces))
	for _, id := range cfg.ids {
		target := forces[id]
		last := prev[id]
		delta := target - last
		if bound > 0 {
			if delta > bound {
				delta = bound
			} else if delta < -bound {
				delta = -bound
			}
		}
		out[id] = last + delta
	}
	return out
}

// AxisMaximum binary-searches the largest magnitude along axis that keeps
// total current within maxCurrent + eps (spec.md §4.5).
func AxisMaximum[Id comparable](cfg *Config[Id], perf *Performance, axis Axis, maxCurrent, eps float64) float64 {
	unit := axisUnit[axis]

	fits := func(magnitude float64) bool {
		forces := Reverse(cfg, unit.Scale(magnitude))
		sum := 0.0
		for _, id := range cfg.ids {
			rec, ok := perf.Lookup(forces[id], cfg.motors[id].Direction)
			if ok {
				sum += math.Abs(rec.Current)
			}
		}
		return sum <= maxCurrent+eps
	}

	lo, hi := 0.0, 1.0
	for fits(hi) && hi < 1e6 {
		hi *= 2
	}
	for i := 0; i < 40 && hi-lo > eps; i++ {
		mid := (lo + hi) / 2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// AllAxisMaximums computes AxisMaximum for every axis; cached by callers
// (motor config changes trigger a recompute, spec.md F.3.6) rather than
// run every tick.
func AllAxisMaximums[Id comparable](cfg *Config[Id], perf *Performance, maxCurrent, eps float64) AxisMaximums {
	out := make(AxisMaximums, 6)
	for axis := range axisUnit {
		out[axis] = AxisMaximum(cfg, perf, axis, maxCurrent, eps)
	}
	return out
}
