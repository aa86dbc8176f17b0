package main

import (
	"time"

	"rovmesh/components"
	"rovmesh/control"
	"rovmesh/ecs"
	"rovmesh/httpapi"
	"rovmesh/motor"
	"rovmesh/pwmout"
	"rovmesh/scheduler"
	syncengine "rovmesh/sync"
	"rovmesh/transport"
)

// assignPwmChannels gives every motor entity a PwmChannel component in
// the order rig's config reports them (spec.md §6's PwmChannel mapping),
// so the pwm bridge stage and any connected dashboard both know which
// physical channel drives which thruster.
func assignPwmChannels(w *ecs.World, rig *control.Rig) error {
	var channel uint8
	for _, id := range rig.Config.RecommendedOrder(func(a, b string) bool { return a < b }) {
		for _, key := range ecs.Query[components.MotorDefinition](w) {
			def, ok := ecs.Get[components.MotorDefinition](w, key)
			if !ok || def.MotorId != id {
				continue
			}
			if err := ecs.Insert(w, key, components.PwmChannel{MotorId: id, Channel: channel}); err != nil {
				return err
			}
			channel++
			break
		}
	}
	return nil
}

// drainTransportEvents is the PreUpdate stage spec.md §5.1 describes:
// "drain transport inbound queue; apply sync changes to world." Non-
// blocking — transport.Events() is itself bounded, so an empty channel
// just means nothing happened since the last tick.
func drainTransportEvents(t *transport.Transport, engine *syncengine.Engine) scheduler.Stage {
	return func(dt float64) error {
		for {
			select {
			case ev := <-t.Events():
				engine.HandleEvent(ev)
			default:
				return nil
			}
		}
	}
}

// drainHTTPCommands turns queued arm/disarm requests from the robot's own
// dashboard/console into ArmRequest entities — the one place httpapi's
// Commands() channel is read, on the scheduler's own goroutine (spec.md
// §5). Routing through ArmRequest rather than writing ArmedComponent
// directly keeps one application path (control.RunArmRequests) regardless
// of whether the toggle originated locally or arrived over the wire from
// the surface.
func drainHTTPCommands(w *ecs.World, api *httpapi.Server) scheduler.Stage {
	return func(dt float64) error {
		robotID, ok := ecs.GetResource[components.RobotId](w)
		if !ok {
			return nil
		}
		for {
			select {
			case cmd := <-api.Commands():
				state := components.Disarmed
				if cmd.Kind == httpapi.CmdArm {
					state = components.Armed
				}
				key := w.Spawn()
				if err := ecs.Insert(w, key, components.ArmRequest{RobotId: robotID.Id, State: state}); err != nil {
					return err
				}
			default:
				return nil
			}
		}
	}
}

// readSensors ingests one tick's worth of peripheral samples (spec.md
// §1's "functions that yield timestamped samples"), runs the Madgwick
// filter over the IMU sample, and replicates the fused Orientation plus
// the raw Inertial/DepthFrame/Leak/MeasuredVoltage components.
func readSensors(w *ecs.World, robotKey ecs.EntityKey, sensors Sensors, filter *control.Madgwick) scheduler.Stage {
	return func(dt float64) error {
		gyro, accel, ts, err := sensors.ReadIMU()
		if err != nil {
			return err
		}
		filter.Update(gyro, accel)
		if err := ecs.Insert(w, robotKey, components.Inertial{Frame: components.Frame{Value: accel, Timestamp: ts}}); err != nil {
			return err
		}
		if err := ecs.Insert(w, robotKey, components.Orientation{Quat: filter.Orientation()}); err != nil {
			return err
		}

		depth, depthTs, err := sensors.ReadDepth()
		if err != nil {
			return err
		}
		if err := ecs.Insert(w, robotKey, components.DepthFrame{Meters: depth, Timestamp: depthTs}); err != nil {
			return err
		}

		leaked, err := sensors.ReadLeak()
		if err != nil {
			return err
		}
		if err := ecs.Insert(w, robotKey, components.Leak{Tripped: leaked}); err != nil {
			return err
		}

		volts, err := sensors.ReadVoltage()
		if err != nil {
			return err
		}
		return ecs.Insert(w, robotKey, components.MeasuredVoltage{Volts: volts})
	}
}

// pwmBridge is the last Update stage: it turns this tick's resolved
// ActualForce/ServoTarget components into pwmout Commands, looking up
// each motor's pulse width from the same Performance table rig.Solve just
// used (Lookup is pure, so re-deriving Pwm from the final force the
// pipeline already settled on reproduces exactly what Solve computed).
func pwmBridge(w *ecs.World, rig *control.Rig, pwm *pwmout.Controller) scheduler.Stage {
	return func(dt float64) error {
		robotKey, ok := firstRobot(w)
		if !ok {
			return nil
		}
		armed, _ := ecs.Get[components.ArmedComponent](w, robotKey)

		pwm.Send(pwmout.Command{Kind: pwmout.CmdArm, Armed: pwmArmedState(armed.State)})

		for _, key := range ecs.Query[components.PwmChannel](w) {
			ch, ok := ecs.Get[components.PwmChannel](w, key)
			if !ok {
				continue
			}
			def, ok := ecs.Get[components.MotorDefinition](w, key)
			if !ok {
				continue
			}
			force, ok := ecs.Get[components.ActualForce](w, key)
			if !ok {
				continue
			}
			dir := motor.CW
			if def.CCW {
				dir = motor.CCW
			}
			rec, ok := rig.Performance.Lookup(force.Newtons, dir)
			if !ok {
				continue
			}
			pulse := time.Duration(rec.Pwm) * time.Microsecond
			if err := ecs.Insert(w, key, components.PwmSignal{Channel: ch.Channel, Pulse: pulse}); err != nil {
				return err
			}
			pwm.Send(pwmout.Command{Kind: pwmout.CmdUpdateChannel, Channel: ch.Channel, Pulse: pulse})
		}

		for _, key := range ecs.Query[components.ServoTarget](w) {
			target, ok := ecs.Get[components.ServoTarget](w, key)
			if !ok {
				continue
			}
			pwm.Send(pwmout.Command{Kind: pwmout.CmdUpdateChannel, Channel: target.Channel, Pulse: target.Pulse})
		}

		pwm.Send(pwmout.Command{Kind: pwmout.CmdBatchComplete})
		return nil
	}
}

func pwmArmedState(state components.ArmedState) pwmout.State {
	if state == components.Armed {
		return pwmout.Armed
	}
	return pwmout.Disarmed
}

func firstRobot(w *ecs.World) (ecs.EntityKey, bool) {
	keys := ecs.Query[components.RobotMarker](w)
	if len(keys) == 0 {
		return ecs.EntityKey{}, false
	}
	return keys[0], true
}
