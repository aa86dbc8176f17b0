package control

// PID is spec.md §4.6's controller state: `{last_error, integral}`; the
// tuning is passed to every Update call rather than stored. Grounded on
// original_source/robot/src/plugins/depth.rs's PID struct, which keeps the
// same two fields across updates rather than recomputing them from scratch.
type PID struct {
	integral  float64
	lastError float64
	hasLast   bool
}

// Result is one Update call's output, replicated as components.PidResult.
type Result struct {
	P, I, D, Correction float64
}

// Update runs one PID step for error e over interval dt, per spec.md §4.6's
// formula: integral accumulates and clamps to ±MaxI; derivative is zero on
// the first call (no prior error to difference against).
func (p *PID) Update(e float64, kp, ki, kd, maxI, dt float64) Result {
	if dt <= 0 {
		dt = 1
	}

	p.integral += e * dt
	if p.integral > maxI {
		p.integral = maxI
	} else if p.integral < -maxI {
		p.integral = -maxI
	}

	derivative := 0.0
	if p.hasLast {
		derivative = (e - p.lastError) / dt
	}
	p.lastError = e
	p.hasLast = true

	res := Result{
		P: kp * e,
		I: ki * p.integral,
		D: kd * derivative,
	}
	res.Correction = res.P + res.I + res.D
	return res
}

// Reset clears accumulated state so a stale integral doesn't cause a kick.
// The depth and level controllers do not call it; they start each new
// target with a fresh PID instead.
func (p *PID) Reset() {
	p.integral = 0
	p.lastError = 0
	p.hasLast = false
}
