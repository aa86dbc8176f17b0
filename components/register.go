package components

import (
	"time"

	"rovmesh/codec"
	"rovmesh/geom"
	"rovmesh/ecs"
	"rovmesh/ids"
	"rovmesh/motor"
	"rovmesh/token"
)

// Token strings, all under the reserved prefixes spec.md §6 names
// (robot., robot.sensors., robot.system., robot.camera).
const (
	tokRobotMarker           = "robot.marker"
	tokSurface               = "robot.surface"
	tokOrientation           = "robot.orientation"
	tokInertial              = "robot.sensors.inertial"
	tokMagnetic              = "robot.sensors.magnetic"
	tokDepth                 = "robot.sensors.depth"
	tokLeak                  = "robot.sensors.leak"
	tokTargetMovement        = "robot.target_movement"
	tokActualMovement        = "robot.actual_movement"
	tokMovementContribution  = "robot.movement_contribution"
	tokMotorDefinition       = "robot.motor_definition"
	tokTargetForce           = "robot.target_force"
	tokActualForce           = "robot.actual_force"
	tokCurrentDraw           = "robot.current_draw"
	tokPwmSignal             = "robot.pwm_signal"
	tokPwmChannel            = "robot.pwm_channel"
	tokArmed                 = "robot.armed"
	tokRobotStatus           = "robot.status"
	tokDepthTarget           = "robot.depth_target"
	tokOrientationTarget     = "robot.orientation_target"
	tokPidConfig             = "robot.pid_config"
	tokPidResult             = "robot.pid_result"
	tokMeasuredVoltage       = "robot.system.voltage"
	tokSystemCpu             = "robot.system.cpu"
	tokSystemMemory          = "robot.system.memory"
	tokSystemDisk            = "robot.system.disk"
	tokPeer                  = "robot.peer"
	tokLatency               = "robot.latency"
	tokCamera                = "robot.camera"
	tokServoContribution     = "robot.servo_contribution"
	tokServoTarget           = "robot.servo_target"
	tokRobotId               = "robot.id"
	tokArmRequest            = "robot.arm_request"
)

func writeVec3(w *codec.Writer, v geom.Vec3) {
	w.WriteF64(v.X)
	w.WriteF64(v.Y)
	w.WriteF64(v.Z)
}

func readVec3(r *codec.Reader) (geom.Vec3, error) {
	x, err := r.ReadF64()
	if err != nil {
		return geom.Vec3{}, err
	}
	y, err := r.ReadF64()
	if err != nil {
		return geom.Vec3{}, err
	}
	z, err := r.ReadF64()
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.Vec3{X: x, Y: y, Z: z}, nil
}

func writeQuat(w *codec.Writer, q geom.Quat) {
	w.WriteF64(q.X)
	w.WriteF64(q.Y)
	w.WriteF64(q.Z)
	w.WriteF64(q.W)
}

func readQuat(r *codec.Reader) (geom.Quat, error) {
	x, err := r.ReadF64()
	if err != nil {
		return geom.Quat{}, err
	}
	y, err := r.ReadF64()
	if err != nil {
		return geom.Quat{}, err
	}
	z, err := r.ReadF64()
	if err != nil {
		return geom.Quat{}, err
	}
	w64, err := r.ReadF64()
	if err != nil {
		return geom.Quat{}, err
	}
	return geom.Quat{X: x, Y: y, Z: z, W: w64}, nil
}

func writeTime(w *codec.Writer, t time.Time) { w.WriteVarint(t.UnixNano()) }

func readTime(r *codec.Reader) (time.Time, error) {
	ns, err := r.ReadVarint()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns).UTC(), nil
}

func writeMovement(w *codec.Writer, m motor.Movement) {
	writeVec3(w, m.Force)
	writeVec3(w, m.Torque)
}

func readMovement(r *codec.Reader) (motor.Movement, error) {
	force, err := readVec3(r)
	if err != nil {
		return motor.Movement{}, err
	}
	torque, err := readVec3(r)
	if err != nil {
		return motor.Movement{}, err
	}
	return motor.Movement{Force: force, Torque: torque}, nil
}

func writeNetId(w *codec.Writer, id ids.NetId) { w.WriteU128(id.Lo, id.Hi) }

func readNetId(r *codec.Reader) (ids.NetId, error) {
	lo, hi, err := r.ReadU128()
	if err != nil {
		return ids.NetId{}, err
	}
	return ids.NetId{Lo: lo, Hi: hi}, nil
}

func removerFor[T any](w *ecs.World) token.Remover {
	return func(key ids.EntityKey) {
		_ = ecs.Remove[T](w, key)
	}
}

func reg[T any](registry *token.Registry, tok string, ser func(T) ([]byte, error), de func([]byte) (T, error), remove token.Remover) error {
	return token.Register(registry, tok, ser, de, remove)
}

// RegisterAll installs every replicated component and resource type into
// reg, binding each Remover to w. Called exactly once at process startup,
// before reg.Freeze (spec.md §3.2/§9).
func RegisterAll(reg_ *token.Registry, w *ecs.World) error {
	type step struct {
		name string
		fn   func() error
	}

	steps := []step{
		{tokRobotMarker, func() error {
			return reg[RobotMarker](reg_, tokRobotMarker,
				func(RobotMarker) ([]byte, error) { return nil, nil },
				func([]byte) (RobotMarker, error) { return RobotMarker{}, nil },
				removerFor[RobotMarker](w))
		}},
		{tokSurface, func() error {
			return reg[Surface](reg_, tokSurface,
				func(Surface) ([]byte, error) { return nil, nil },
				func([]byte) (Surface, error) { return Surface{}, nil },
				removerFor[Surface](w))
		}},
		{tokOrientation, func() error {
			return reg[Orientation](reg_, tokOrientation,
				func(v Orientation) ([]byte, error) {
					w := codec.NewWriter()
					writeQuat(w, v.Quat)
					return w.Bytes(), nil
				},
				func(b []byte) (Orientation, error) {
					q, err := readQuat(codec.NewReader(b))
					return Orientation{Quat: q}, err
				},
				removerFor[Orientation](w))
		}},
		{tokInertial, func() error {
			return reg[Inertial](reg_, tokInertial, encodeFrameComponent(func(v Inertial) Frame { return v.Frame }, func(f Frame) Inertial { return Inertial{Frame: f} }), decodeFrameComponent(func(f Frame) Inertial { return Inertial{Frame: f} }), removerFor[Inertial](w))
		}},
		{tokMagnetic, func() error {
			return reg[Magnetic](reg_, tokMagnetic, encodeFrameComponent(func(v Magnetic) Frame { return v.Frame }, func(f Frame) Magnetic { return Magnetic{Frame: f} }), decodeFrameComponent(func(f Frame) Magnetic { return Magnetic{Frame: f} }), removerFor[Magnetic](w))
		}},
		{tokDepth, func() error {
			return reg[DepthFrame](reg_, tokDepth,
				func(v DepthFrame) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteF64(v.Meters)
					writeTime(wtr, v.Timestamp)
					return wtr.Bytes(), nil
				},
				func(b []byte) (DepthFrame, error) {
					r := codec.NewReader(b)
					meters, err := r.ReadF64()
					if err != nil {
						return DepthFrame{}, err
					}
					ts, err := readTime(r)
					return DepthFrame{Meters: meters, Timestamp: ts}, err
				},
				removerFor[DepthFrame](w))
		}},
		{tokLeak, func() error {
			return reg[Leak](reg_, tokLeak,
				func(v Leak) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteBool(v.Tripped)
					return wtr.Bytes(), nil
				},
				func(b []byte) (Leak, error) {
					tripped, err := codec.NewReader(b).ReadBool()
					return Leak{Tripped: tripped}, err
				},
				removerFor[Leak](w))
		}},
		{tokTargetMovement, func() error {
			return reg[TargetMovement](reg_, tokTargetMovement,
				func(v TargetMovement) ([]byte, error) {
					wtr := codec.NewWriter()
					writeMovement(wtr, v.Movement)
					return wtr.Bytes(), nil
				},
				func(b []byte) (TargetMovement, error) {
					m, err := readMovement(codec.NewReader(b))
					return TargetMovement{Movement: m}, err
				},
				removerFor[TargetMovement](w))
		}},
		{tokActualMovement, func() error {
			return reg[ActualMovement](reg_, tokActualMovement,
				func(v ActualMovement) ([]byte, error) {
					wtr := codec.NewWriter()
					writeMovement(wtr, v.Movement)
					return wtr.Bytes(), nil
				},
				func(b []byte) (ActualMovement, error) {
					m, err := readMovement(codec.NewReader(b))
					return ActualMovement{Movement: m}, err
				},
				removerFor[ActualMovement](w))
		}},
		{tokMovementContribution, func() error {
			return reg[MovementContribution](reg_, tokMovementContribution,
				func(v MovementContribution) ([]byte, error) {
					wtr := codec.NewWriter()
					writeNetId(wtr, v.RobotId)
					writeMovement(wtr, v.Movement)
					return wtr.Bytes(), nil
				},
				func(b []byte) (MovementContribution, error) {
					r := codec.NewReader(b)
					robotId, err := readNetId(r)
					if err != nil {
						return MovementContribution{}, err
					}
					m, err := readMovement(r)
					return MovementContribution{RobotId: robotId, Movement: m}, err
				},
				removerFor[MovementContribution](w))
		}},
		{tokMotorDefinition, func() error {
			return reg[MotorDefinition](reg_, tokMotorDefinition,
				func(v MotorDefinition) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteString(v.MotorId)
					writeVec3(wtr, v.Position)
					writeVec3(wtr, v.Orientation)
					wtr.WriteBool(v.CCW)
					return wtr.Bytes(), nil
				},
				func(b []byte) (MotorDefinition, error) {
					r := codec.NewReader(b)
					id, err := r.ReadString()
					if err != nil {
						return MotorDefinition{}, err
					}
					pos, err := readVec3(r)
					if err != nil {
						return MotorDefinition{}, err
					}
					orient, err := readVec3(r)
					if err != nil {
						return MotorDefinition{}, err
					}
					ccw, err := r.ReadBool()
					return MotorDefinition{MotorId: id, Position: pos, Orientation: orient, CCW: ccw}, err
				},
				removerFor[MotorDefinition](w))
		}},
		{tokTargetForce, func() error {
			return reg[TargetForce](reg_, tokTargetForce, encodeMotorScalar(func(v TargetForce) (string, float64) { return v.MotorId, v.Newtons }), decodeMotorScalar(func(id string, v float64) TargetForce { return TargetForce{MotorId: id, Newtons: v} }), removerFor[TargetForce](w))
		}},
		{tokActualForce, func() error {
			return reg[ActualForce](reg_, tokActualForce, encodeMotorScalar(func(v ActualForce) (string, float64) { return v.MotorId, v.Newtons }), decodeMotorScalar(func(id string, v float64) ActualForce { return ActualForce{MotorId: id, Newtons: v} }), removerFor[ActualForce](w))
		}},
		{tokCurrentDraw, func() error {
			return reg[CurrentDraw](reg_, tokCurrentDraw, encodeMotorScalar(func(v CurrentDraw) (string, float64) { return v.MotorId, v.Amps }), decodeMotorScalar(func(id string, v float64) CurrentDraw { return CurrentDraw{MotorId: id, Amps: v} }), removerFor[CurrentDraw](w))
		}},
		{tokPwmSignal, func() error {
			return reg[PwmSignal](reg_, tokPwmSignal,
				func(v PwmSignal) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteU8(v.Channel)
					wtr.WriteVarint(int64(v.Pulse))
					return wtr.Bytes(), nil
				},
				func(b []byte) (PwmSignal, error) {
					r := codec.NewReader(b)
					ch, err := r.ReadU8()
					if err != nil {
						return PwmSignal{}, err
					}
					pulse, err := r.ReadVarint()
					return PwmSignal{Channel: ch, Pulse: time.Duration(pulse)}, err
				},
				removerFor[PwmSignal](w))
		}},
		{tokPwmChannel, func() error {
			return reg[PwmChannel](reg_, tokPwmChannel,
				func(v PwmChannel) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteString(v.MotorId)
					wtr.WriteU8(v.Channel)
					return wtr.Bytes(), nil
				},
				func(b []byte) (PwmChannel, error) {
					r := codec.NewReader(b)
					id, err := r.ReadString()
					if err != nil {
						return PwmChannel{}, err
					}
					ch, err := r.ReadU8()
					return PwmChannel{MotorId: id, Channel: ch}, err
				},
				removerFor[PwmChannel](w))
		}},
		{tokArmed, func() error {
			return reg[ArmedComponent](reg_, tokArmed,
				func(v ArmedComponent) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteU8(uint8(v.State))
					return wtr.Bytes(), nil
				},
				func(b []byte) (ArmedComponent, error) {
					v, err := codec.NewReader(b).ReadU8()
					return ArmedComponent{State: ArmedState(v)}, err
				},
				removerFor[ArmedComponent](w))
		}},
		{tokRobotStatus, func() error {
			return reg[RobotStatus](reg_, tokRobotStatus,
				func(v RobotStatus) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteU8(uint8(v.Kind))
					wtr.WriteF64(v.Percent)
					return wtr.Bytes(), nil
				},
				func(b []byte) (RobotStatus, error) {
					r := codec.NewReader(b)
					kind, err := r.ReadU8()
					if err != nil {
						return RobotStatus{}, err
					}
					pct, err := r.ReadF64()
					return RobotStatus{Kind: RobotStatusKind(kind), Percent: pct}, err
				},
				removerFor[RobotStatus](w))
		}},
		{tokDepthTarget, func() error {
			return reg[DepthTarget](reg_, tokDepthTarget,
				func(v DepthTarget) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteF64(v.Meters)
					return wtr.Bytes(), nil
				},
				func(b []byte) (DepthTarget, error) {
					v, err := codec.NewReader(b).ReadF64()
					return DepthTarget{Meters: v}, err
				},
				removerFor[DepthTarget](w))
		}},
		{tokOrientationTarget, func() error {
			return reg[OrientationTarget](reg_, tokOrientationTarget,
				func(v OrientationTarget) ([]byte, error) {
					wtr := codec.NewWriter()
					writeVec3(wtr, v.Up)
					return wtr.Bytes(), nil
				},
				func(b []byte) (OrientationTarget, error) {
					v, err := readVec3(codec.NewReader(b))
					return OrientationTarget{Up: v}, err
				},
				removerFor[OrientationTarget](w))
		}},
		{tokPidConfig, func() error {
			return reg[PidConfig](reg_, tokPidConfig,
				func(v PidConfig) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteF64(v.Kp)
					wtr.WriteF64(v.Ki)
					wtr.WriteF64(v.Kd)
					wtr.WriteF64(v.MaxI)
					return wtr.Bytes(), nil
				},
				func(b []byte) (PidConfig, error) {
					r := codec.NewReader(b)
					kp, err := r.ReadF64()
					if err != nil {
						return PidConfig{}, err
					}
					ki, err := r.ReadF64()
					if err != nil {
						return PidConfig{}, err
					}
					kd, err := r.ReadF64()
					if err != nil {
						return PidConfig{}, err
					}
					maxI, err := r.ReadF64()
					return PidConfig{Kp: kp, Ki: ki, Kd: kd, MaxI: maxI}, err
				},
				removerFor[PidConfig](w))
		}},
		{tokPidResult, func() error {
			return reg[PidResult](reg_, tokPidResult,
				func(v PidResult) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteF64(v.P)
					wtr.WriteF64(v.I)
					wtr.WriteF64(v.D)
					wtr.WriteF64(v.Correction)
					return wtr.Bytes(), nil
				},
				func(b []byte) (PidResult, error) {
					r := codec.NewReader(b)
					p, err := r.ReadF64()
					if err != nil {
						return PidResult{}, err
					}
					i, err := r.ReadF64()
					if err != nil {
						return PidResult{}, err
					}
					d, err := r.ReadF64()
					if err != nil {
						return PidResult{}, err
					}
					c, err := r.ReadF64()
					return PidResult{P: p, I: i, D: d, Correction: c}, err
				},
				removerFor[PidResult](w))
		}},
		{tokMeasuredVoltage, func() error {
			return reg[MeasuredVoltage](reg_, tokMeasuredVoltage,
				func(v MeasuredVoltage) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteF64(v.Volts)
					return wtr.Bytes(), nil
				},
				func(b []byte) (MeasuredVoltage, error) {
					v, err := codec.NewReader(b).ReadF64()
					return MeasuredVoltage{Volts: v}, err
				},
				removerFor[MeasuredVoltage](w))
		}},
		{tokSystemCpu, func() error {
			return reg[SystemCpu](reg_, tokSystemCpu,
				func(v SystemCpu) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteF64(v.PercentUsed)
					return wtr.Bytes(), nil
				},
				func(b []byte) (SystemCpu, error) {
					v, err := codec.NewReader(b).ReadF64()
					return SystemCpu{PercentUsed: v}, err
				},
				removerFor[SystemCpu](w))
		}},
		{tokSystemMemory, func() error {
			return reg[SystemMemory](reg_, tokSystemMemory,
				func(v SystemMemory) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteUvarint(v.UsedBytes)
					wtr.WriteUvarint(v.TotalBytes)
					return wtr.Bytes(), nil
				},
				func(b []byte) (SystemMemory, error) {
					r := codec.NewReader(b)
					used, err := r.ReadUvarint()
					if err != nil {
						return SystemMemory{}, err
					}
					total, err := r.ReadUvarint()
					return SystemMemory{UsedBytes: used, TotalBytes: total}, err
				},
				removerFor[SystemMemory](w))
		}},
		{tokSystemDisk, func() error {
			return reg[SystemDisk](reg_, tokSystemDisk,
				func(v SystemDisk) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteString(v.Mount)
					wtr.WriteUvarint(v.UsedBytes)
					wtr.WriteUvarint(v.TotalBytes)
					return wtr.Bytes(), nil
				},
				func(b []byte) (SystemDisk, error) {
					r := codec.NewReader(b)
					mount, err := r.ReadString()
					if err != nil {
						return SystemDisk{}, err
					}
					used, err := r.ReadUvarint()
					if err != nil {
						return SystemDisk{}, err
					}
					total, err := r.ReadUvarint()
					return SystemDisk{Mount: mount, UsedBytes: used, TotalBytes: total}, err
				},
				removerFor[SystemDisk](w))
		}},
		{tokPeer, func() error {
			return reg[Peer](reg_, tokPeer,
				func(v Peer) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteString(v.Addr)
					wtr.WriteUvarint(v.Token)
					wtr.WriteU8(uint8(v.Role))
					return wtr.Bytes(), nil
				},
				func(b []byte) (Peer, error) {
					r := codec.NewReader(b)
					addr, err := r.ReadString()
					if err != nil {
						return Peer{}, err
					}
					tok, err := r.ReadUvarint()
					if err != nil {
						return Peer{}, err
					}
					role, err := r.ReadU8()
					return Peer{Addr: addr, Token: tok, Role: PeerRole(role)}, err
				},
				removerFor[Peer](w))
		}},
		{tokLatency, func() error {
			return reg[Latency](reg_, tokLatency,
				func(v Latency) ([]byte, error) {
					wtr := codec.NewWriter()
					writeTime(wtr, v.LastPingSent)
					writeTime(wtr, v.LastAck)
					wtr.WriteUvarint(uint64(v.PingMillis))
					return wtr.Bytes(), nil
				},
				func(b []byte) (Latency, error) {
					r := codec.NewReader(b)
					sent, err := readTime(r)
					if err != nil {
						return Latency{}, err
					}
					ack, err := readTime(r)
					if err != nil {
						return Latency{}, err
					}
					ping, err := r.ReadUvarint()
					return Latency{LastPingSent: sent, LastAck: ack, PingMillis: uint32(ping)}, err
				},
				removerFor[Latency](w))
		}},
		{tokCamera, func() error {
			return reg[Camera](reg_, tokCamera,
				func(v Camera) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteString(v.Name)
					wtr.WriteString(v.Location)
					return wtr.Bytes(), nil
				},
				func(b []byte) (Camera, error) {
					r := codec.NewReader(b)
					name, err := r.ReadString()
					if err != nil {
						return Camera{}, err
					}
					loc, err := r.ReadString()
					return Camera{Name: name, Location: loc}, err
				},
				removerFor[Camera](w))
		}},
		{tokServoContribution, func() error {
			return reg[ServoContribution](reg_, tokServoContribution,
				func(v ServoContribution) ([]byte, error) {
					wtr := codec.NewWriter()
					writeNetId(wtr, v.RobotId)
					wtr.WriteU8(v.Channel)
					wtr.WriteVarint(int64(v.Pulse))
					return wtr.Bytes(), nil
				},
				func(b []byte) (ServoContribution, error) {
					r := codec.NewReader(b)
					robotId, err := readNetId(r)
					if err != nil {
						return ServoContribution{}, err
					}
					ch, err := r.ReadU8()
					if err != nil {
						return ServoContribution{}, err
					}
					pulse, err := r.ReadVarint()
					return ServoContribution{RobotId: robotId, Channel: ch, Pulse: time.Duration(pulse)}, err
				},
				removerFor[ServoContribution](w))
		}},
		{tokServoTarget, func() error {
			return reg[ServoTarget](reg_, tokServoTarget,
				func(v ServoTarget) ([]byte, error) {
					wtr := codec.NewWriter()
					wtr.WriteU8(v.Channel)
					wtr.WriteVarint(int64(v.Pulse))
					return wtr.Bytes(), nil
				},
				func(b []byte) (ServoTarget, error) {
					r := codec.NewReader(b)
					ch, err := r.ReadU8()
					if err != nil {
						return ServoTarget{}, err
					}
					pulse, err := r.ReadVarint()
					return ServoTarget{Channel: ch, Pulse: time.Duration(pulse)}, err
				},
				removerFor[ServoTarget](w))
		}},
		{tokRobotId, func() error {
			return reg[RobotId](reg_, tokRobotId,
				func(v RobotId) ([]byte, error) {
					wtr := codec.NewWriter()
					writeNetId(wtr, v.Id)
					return wtr.Bytes(), nil
				},
				func(b []byte) (RobotId, error) {
					id, err := readNetId(codec.NewReader(b))
					return RobotId{Id: id}, err
				},
				removerFor[RobotId](w))
		}},
		{tokArmRequest, func() error {
			return reg[ArmRequest](reg_, tokArmRequest,
				func(v ArmRequest) ([]byte, error) {
					wtr := codec.NewWriter()
					writeNetId(wtr, v.RobotId)
					wtr.WriteU8(uint8(v.State))
					return wtr.Bytes(), nil
				},
				func(b []byte) (ArmRequest, error) {
					r := codec.NewReader(b)
					robotId, err := readNetId(r)
					if err != nil {
						return ArmRequest{}, err
					}
					state, err := r.ReadU8()
					return ArmRequest{RobotId: robotId, State: ArmedState(state)}, err
				},
				removerFor[ArmRequest](w))
		}},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			return err
		}
	}
	return nil
}

func encodeFrameComponent[T any](extract func(T) Frame, _ func(Frame) T) func(T) ([]byte, error) {
	return func(v T) ([]byte, error) {
		f := extract(v)
		wtr := codec.NewWriter()
		writeVec3(wtr, f.Value)
		writeTime(wtr, f.Timestamp)
		return wtr.Bytes(), nil
	}
}

func decodeFrameComponent[T any](build func(Frame) T) func([]byte) (T, error) {
	return func(b []byte) (T, error) {
		r := codec.NewReader(b)
		value, err := readVec3(r)
		if err != nil {
			var zero T
			return zero, err
		}
		ts, err := readTime(r)
		if err != nil {
			var zero T
			return zero, err
		}
		return build(Frame{Value: value, Timestamp: ts}), nil
	}
}

func encodeMotorScalar[T any](extract func(T) (string, float64)) func(T) ([]byte, error) {
	return func(v T) ([]byte, error) {
		id, val := extract(v)
		wtr := codec.NewWriter()
		wtr.WriteString(id)
		wtr.WriteF64(val)
		return wtr.Bytes(), nil
	}
}

func decodeMotorScalar[T any](build func(string, float64) T) func([]byte) (T, error) {
	return func(b []byte) (T, error) {
		r := codec.NewReader(b)
		id, err := r.ReadString()
		if err != nil {
			var zero T
			return zero, err
		}
		val, err := r.ReadF64()
		if err != nil {
			var zero T
			return zero, err
		}
		return build(id, val), nil
	}
}
