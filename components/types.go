// Package components declares spec.md §3.3's essential replicated
// component set plus SPEC_FULL.md F.3's supplemented components (resource
// replication, PeerRole, ServoContribution/ServoTarget), and registers
// each with the token registry (register.go) so ecs/change tracker and
// sync never need type-specific code.
package components

import (
	"time"

	"rovmesh/geom"
	"rovmesh/ids"
	"rovmesh/motor"
)

// RobotMarker tags the singleton entity that represents the robot itself.
type RobotMarker struct{}

// Surface tags the singleton entity that represents the surface station.
type Surface struct{}

// Orientation is the fused attitude estimate, world-from-body.
type Orientation struct {
	Quat geom.Quat
}

// Frame is a single timestamped vector sensor sample shared by Inertial and
// Magnetic (depth has its own scalar DepthFrame).
type Frame struct {
	Value     geom.Vec3
	Timestamp time.Time
}

// Inertial holds the latest IMU accelerometer sample (the gyro reading is
// fed to the Madgwick filter but not stored here).
type Inertial struct{ Frame Frame }

// Magnetic holds the latest magnetometer sample (read but ignored by the
// Madgwick update — spec.md §4.6, §9).
type Magnetic struct{ Frame Frame }

// DepthFrame wraps a scalar depth measurement with its timestamp; spec.md
// names the component Depth, but that identifier collides with the
// DepthTarget/PID naming in this package, so the field holding the scalar
// is called Meters.
type DepthFrame struct {
	Meters    float64
	Timestamp time.Time
}

// Leak reports whether a leak sensor has tripped.
type Leak struct{ Tripped bool }

// TargetMovement is the accumulated movement request for a robot, before
// solving (spec.md §3.3).
type TargetMovement struct{ Movement motor.Movement }

// ActualMovement is the achieved wrench after forward-solving the
// resolved per-motor forces (spec.md §3.3).
type ActualMovement struct{ Movement motor.Movement }

// MovementContribution is one source's (input device, PID loop) requested
// contribution to the robot's target movement; many may exist per robot
// per tick and are summed (spec.md §3.3/§4.6).
type MovementContribution struct {
	RobotId ids.NetId
	Movement motor.Movement
}

// MotorDefinition is one motor's static geometry, replicated so the
// surface can mirror the robot's configured thruster layout for display.
type MotorDefinition struct {
	MotorId     string
	Position    geom.Vec3
	Orientation geom.Vec3
	CCW         bool
}

// TargetForce is one motor's resolved signed force request, in Newtons.
type TargetForce struct {
	MotorId string
	Newtons float64
}

// ActualForce is one motor's achieved force after amperage/jerk limiting.
type ActualForce struct {
	MotorId string
	Newtons float64
}

// CurrentDraw is a motor's (or the whole robot's) measured/estimated
// current draw in amps.
type CurrentDraw struct {
	MotorId string
	Amps    float64
}

// PwmSignal is a channel's resolved pulse width.
type PwmSignal struct {
	Channel uint8
	Pulse   time.Duration
}

// PwmChannel maps a motor/servo id to its hardware PWM channel number.
type PwmChannel struct {
	MotorId string
	Channel uint8
}

// ArmedState is spec.md §3.3's Armed|Disarmed safety flag.
type ArmedState int

const (
	Disarmed ArmedState = iota
	Armed
)

// ArmedComponent wraps ArmedState for replication (spec.md names the
// component Armed; ArmedState is kept distinct to avoid a name collision
// with the enum values).
type ArmedComponent struct{ State ArmedState }

// RobotStatusKind is spec.md §3.3's RobotStatus variant selector.
type RobotStatusKind int

const (
	StatusNoPeer RobotStatusKind = iota
	StatusDisarmed
	StatusReady
	StatusMoving
)

// RobotStatus carries the derived status plus, when Kind is StatusMoving,
// the percentage of axis capacity in use (SPEC_FULL.md F.3.3).
type RobotStatus struct {
	Kind    RobotStatusKind
	Percent float64
}

// DepthTarget is the commanded hold depth, in meters.
type DepthTarget struct{ Meters float64 }

// OrientationTarget is the commanded "up" vector for self-leveling.
type OrientationTarget struct{ Up geom.Vec3 }

// PidConfig is one PID loop's tuning (spec.md §3.3/§4.6).
type PidConfig struct {
	Kp, Ki, Kd, MaxI float64
}

// PidResult is a PID loop's last output, replicated for telemetry/tuning
// feedback.
type PidResult struct {
	P, I, D, Correction float64
}

// MeasuredVoltage is the robot's battery voltage telemetry.
type MeasuredVoltage struct{ Volts float64 }

// SystemCpu is host CPU utilization telemetry.
type SystemCpu struct{ PercentUsed float64 }

// SystemMemory is host memory utilization telemetry.
type SystemMemory struct {
	UsedBytes, TotalBytes uint64
}

// SystemDisk is one mounted filesystem's utilization telemetry.
type SystemDisk struct {
	Mount                 string
	UsedBytes, TotalBytes uint64
}

// PeerRole records which side initiated a connection (SPEC_FULL.md F.3.2):
// Accepted means the robot accepted an inbound surface connection,
// Connected means the surface's outbound dial succeeded. Diagnostic only —
// changes no sync semantics.
type PeerRole int

const (
	RoleAccepted PeerRole = iota
	RoleConnected
)

// Peer is the per-connection entity spec.md §3.3 describes.
type Peer struct {
	Addr  string
	Token uint64
	Role  PeerRole
}

// Latency is a peer's heartbeat bookkeeping (spec.md §3.3/§4.4).
type Latency struct {
	LastPingSent time.Time
	LastAck      time.Time
	PingMillis   uint32
}

// Camera is a replicated video source descriptor, the interface the
// out-of-scope GUI/OpenCV pipeline reads from (spec.md §1).
type Camera struct {
	Name     string
	Location string
}

// ServoContribution is one source's requested pulse-width delta for a
// servo channel (SPEC_FULL.md F.3.4), accumulated the same way
// MovementContribution is.
type ServoContribution struct {
	RobotId ids.NetId
	Channel uint8
	Pulse   time.Duration
}

// ServoTarget is the accumulated result of every ServoContribution for a
// channel (SPEC_FULL.md F.3.4).
type ServoTarget struct {
	Channel uint8
	Pulse   time.Duration
}

// RobotId is a resource (not per-entity) identifying which NetId is "this
// robot" from the local process's point of view — SPEC_FULL.md F.3.1's
// resource-replication example.
type RobotId struct{ Id ids.NetId }

// ArmRequest is a one-shot request to set a robot's Armed state
// (SPEC_FULL.md F.3.7). Unlike MovementContribution/ServoContribution,
// which accumulate into a steady-state target every tick, an arm request
// is edge-triggered: the robot applies it once and despawns the entity,
// the same way a button press is a single event rather than a held value.
// Requests are spawned locally wherever the toggle originates (the
// robot's own httpapi/terminal, or the surface's gamepad/httpapi/terminal)
// and carry the target robot's id so the robot can tell its own requests
// from ones it should ignore — replicated the same way a
// MovementContribution is, so the entity holding a request is always
// LocalMutable to whichever side spawned it.
type ArmRequest struct {
	RobotId ids.NetId
	State   ArmedState
}
