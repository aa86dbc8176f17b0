package control

import (
	"math"

	"rovmesh/geom"
)

// Madgwick is the gradient-descent orientation filter described in
// spec.md §4.6, fusing gyroscope and accelerometer samples into a unit
// quaternion estimate. Grounded on
// original_source/robot/src/plugins/orientation.rs, which ports the
// Madgwick AHRS algorithm with the same beta/sample-rate defaults carried
// into config.MadgwickBeta/config.MadgwickSampleRate.
type Madgwick struct {
	Beta       float64
	SampleRate float64
	q          geom.Quat
}

// NewMadgwick constructs a filter starting from the identity orientation.
func NewMadgwick(beta, sampleRate float64) *Madgwick {
	return &Madgwick{Beta: beta, SampleRate: sampleRate, q: geom.IdentityQuat}
}

// Orientation returns the filter's current estimate.
func (m *Madgwick) Orientation() geom.Quat { return m.q }

// Reset sets the filter back to the identity orientation, discarding the
// prior estimate. Neither binary calls it.
func (m *Madgwick) Reset() { m.q = geom.IdentityQuat }

// Update runs one fusion step. gyro is in rad/s; accel is the raw
// accelerometer reading (need not be unit length — zero-length readings
// are ignored, skipping the accelerometer correction for that sample).
func (m *Madgwick) Update(gyro, accel geom.Vec3) {
	q0, q1, q2, q3 := m.q.W, m.q.X, m.q.Y, m.q.Z

	qDot1 := 0.5 * (-q1*gyro.X - q2*gyro.Y - q3*gyro.Z)
	qDot2 := 0.5 * (q0*gyro.X + q2*gyro.Z - q3*gyro.Y)
	qDot3 := 0.5 * (q0*gyro.Y - q1*gyro.Z + q3*gyro.X)
	qDot4 := 0.5 * (q0*gyro.Z + q1*gyro.Y - q2*gyro.X)

	if norm := accel.Length(); norm > 1e-9 {
		ax, ay, az := accel.X/norm, accel.Y/norm, accel.Z/norm

		_2q0 := 2 * q0
		_2q1 := 2 * q1
		_2q2 := 2 * q2
		_2q3 := 2 * q3
		_4q0 := 4 * q0
		_4q1 := 4 * q1
		_4q2 := 4 * q2
		_8q1 := 8 * q1
		_8q2 := 8 * q2
		q0q0 := q0 * q0
		q1q1 := q1 * q1
		q2q2 := q2 * q2
		q3q3 := q3 * q3

		s0 := _4q0*q2q2 + _2q2*ax + _4q0*q1q1 - _2q1*ay
		s1 := _4q1*q3q3 - _2q3*ax + 4*q0q0*q1 - _2q0*ay - _4q1 + _8q1*q1q1 + _8q1*q2q2 + _4q1*az
		s2 := 4*q0q0*q2 + _2q0*ax + _4q2*q3q3 - _2q3*ay - _4q2 + _8q2*q1q1 + _8q2*q2q2 + _4q2*az
		s3 := 4*q1q1*q3 - _2q1*ax + 4*q2q2*q3 - _2q2*ay
		_ = _4q0

		norm = math.Sqrt(s0*s0 + s1*s1 + s2*s2 + s3*s3)
		if norm > 1e-9 {
			s0, s1, s2, s3 = s0/norm, s1/norm, s2/norm, s3/norm
			qDot1 -= m.Beta * s0
			qDot2 -= m.Beta * s1
			qDot3 -= m.Beta * s2
			qDot4 -= m.Beta * s3
		}
	}

	dt := 1 / m.SampleRate
	q0 += qDot1 * dt
	q1 += qDot2 * dt
	q2 += qDot3 * dt
	q3 += qDot4 * dt

	m.q = geom.Quat{W: q0, X: q1, Y: q2, Z: q3}.Normalize()
}
