// Package config centralizes every tunable named in the spec, following the
// teacher's shared/config.go pattern of package-level constants rather than
// scattering magic numbers across call sites.
package config

import "time"

const (
	// TickRate is the main cooperative scheduler's target frequency, in Hz.
	TickRate = 100

	// TickInterval is the derived per-tick duration (10ms).
	TickInterval = time.Second / 100

	// OverrunThreshold is the tick duration beyond which the scheduler logs
	// a warning without otherwise altering state.
	OverrunThreshold = 10*time.Millisecond + 300*time.Microsecond

	// PingInterval is how often the sync engine pings each connected peer.
	PingInterval = 100 * time.Millisecond

	// MaxLatency is the heartbeat timeout: an unacknowledged ping older
	// than this triggers a Disconnect.
	MaxLatency = 50 * time.Millisecond

	// TransportQueueDepth is the bounded command-queue capacity for the
	// transport reactor.
	TransportQueueDepth = 200

	// PwmChannelQueueDepth is the bounded input-queue capacity for the PWM
	// output thread.
	PwmChannelQueueDepth = 30

	// PwmCycleInterval is the PWM thread's write cadence (100Hz).
	PwmCycleInterval = time.Second / 100

	// PwmInactivityTimeout disarms the PWM output if no BatchComplete
	// arrives within this window.
	PwmInactivityTimeout = 100 * time.Millisecond

	// DefaultPwmMicros is the pulse width every channel defaults to: the
	// neutral/stopped signal for both motors and servos.
	DefaultPwmMicros = 1500 * time.Microsecond

	// PwmChannelCount is the number of channels the PWM chip exposes.
	PwmChannelCount = 16

	// PseudoInverseTolerance is the Moore-Penrose pseudo-inverse's
	// singular-value cutoff.
	PseudoInverseTolerance = 1e-4

	// AmperageClampEpsilon is the default convergence tolerance for the
	// iterative amperage clamp.
	AmperageClampEpsilon = 0.05

	// AxisMaximumEpsilon is the convergence tolerance for the axis-maximum
	// binary search.
	AxisMaximumEpsilon = 0.01

	// MadgwickBeta is the Madgwick filter's gain at MadgwickSampleRate.
	MadgwickBeta = 0.041

	// MadgwickSampleRate is the IMU fusion rate the Madgwick filter is
	// tuned for.
	MadgwickSampleRate = 1000.0

	// WirePort is the TCP port the robot listens on and the surface
	// dials.
	WirePort = 44445

	// MaxTokenLength is the maximum byte length of a dotted token string.
	MaxTokenLength = 64

	// MaxFrameLength is the largest payload a single frame may carry
	// (header is a 4-byte little-endian length).
	MaxFrameLength = 1<<32 - 1

	// ReadChunkSize is how much is read from a readable socket per
	// reactor wakeup.
	ReadChunkSize = 4096
)
