package main

import (
	"rovmesh/components"
	"rovmesh/control"
	"rovmesh/ecs"
	"rovmesh/httpapi"
	"rovmesh/scheduler"
	syncengine "rovmesh/sync"
	"rovmesh/transport"
)

// drainTransportEvents mirrors the robot binary's PreUpdate stage of the
// same name: apply every inbound sync event before this tick's Update
// stages read the mirrored world.
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

// drainHTTPCommands turns arm/disarm requests the dashboard or debug
// console made against the pilot's own process into a LocalMutable
// ArmRequest entity carrying the robot's replicated NetId. The mirrored
// robot entity on this side is ForeignOwned (spec.md §3.1), so writing
// ArmedComponent on it directly would be rejected as a protocol
// violation; spawning a request instead lets it replicate to the robot
// like any other locally-authored entity, where control.RunArmRequests
// applies it. No-ops until the robot's RobotId resource has replicated.
func drainHTTPCommands(w *ecs.World, api *httpapi.Server) scheduler.Stage {
	return func(dt float64) error {
		robotID, haveRobot := ecs.GetResource[components.RobotId](w)
		for {
			select {
			case cmd := <-api.Commands():
				if !haveRobot {
					continue
				}
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

// readGamepad maps this tick's GamepadSource sample into the mirrored
// world via InputMapper, against the axis maximums of the surface's own
// locally built rig (the same X3D geometry and performance table the robot
// uses by default). No-ops until the
// robot's RobotId resource has replicated, matching drainHTTPCommands.
func readGamepad(w *ecs.World, gamepad GamepadSource, mapper *control.InputMapper, rig *control.Rig) scheduler.Stage {
	return func(dt float64) error {
		robotKey, ok := firstRobot(w)
		if !ok {
			return nil
		}
		robotID, ok := ecs.GetResource[components.RobotId](w)
		if !ok {
			return nil
		}
		return mapper.Run(w, robotKey, robotID.Id, rig.AxisMaximums(), gamepad.Read())
	}
}

func firstRobot(w *ecs.World) (ecs.EntityKey, bool) {
	keys := ecs.Query[components.RobotMarker](w)
	if len(keys) == 0 {
		return ecs.EntityKey{}, false
	}
	return keys[0], true
}
