package control

import (
	"rovmesh/components"
	"rovmesh/ecs"
)

// RunDisarmOnNoPeer forces the local robot's ArmedComponent to Disarmed
// whenever no Peer entity currently exists (spec.md §7/§8: "if a peer
// disconnects, Armed must become Disarmed within one tick"). Driven off
// the same ecs.Query[components.Peer] check control/status.go's RunStatus
// already performs, so the two can never disagree about whether a peer is
// present.
func RunDisarmOnNoPeer(w *ecs.World) error {
	robotKey, ok := robotEntity(w)
	if !ok {
		return nil
	}
	if owner, ok := w.Owner(robotKey); ok && owner.IsForeign() {
		return nil // only the side that owns the robot entity may disarm it
	}
	if len(ecs.Query[components.Peer](w)) > 0 {
		return nil
	}

	armed, ok := ecs.Get[components.ArmedComponent](w, robotKey)
	if !ok || armed.State == components.Disarmed {
		return nil
	}
	return ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Disarmed})
}

// RunArmRequests applies every live ArmRequest that targets the local
// robot, then clears it -- edge-triggered, same shape as a button press
// rather than a held value. ArmRequest entities can originate on either
// side (the robot's own httpapi/terminal, or the surface's gamepad/
// httpapi/terminal, SPEC_FULL.md F.3.7).
//
// A request's own side despawns it once the change tracker has assigned
// it a NetId -- i.e. once it has gone out over the wire at least once --
// rather than holding it forever; despawning on the very tick it was
// spawned would remove it before DetectChanges ever saw it, and it would
// never replicate at all. The side that actually owns the robot entity
// additionally applies the requested ArmedComponent before clearing its
// own (foreign) mirror, mirroring RunMovement/RunStatus's ownership
// check.
func RunArmRequests(w *ecs.World, tracker *ecs.Tracker) error {
	robotID, ok := ecs.GetResource[components.RobotId](w)
	if !ok {
		return nil
	}

	robotKey, haveRobot := robotEntity(w)
	localRobot := haveRobot
	if localRobot {
		if owner, ok := w.Owner(robotKey); ok && owner.IsForeign() {
			localRobot = false
		}
	}

	for _, key := range ecs.Query[components.ArmRequest](w) {
		req, ok := ecs.Get[components.ArmRequest](w, key)
		if !ok || req.RobotId != robotID.Id {
			continue
		}

		owner, _ := w.Owner(key)
		if !owner.IsForeign() {
			if _, synced := tracker.NetIdOf(key); !synced {
				continue // give it one more tick to reach the wire
			}
		}

		if localRobot {
			if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: req.State}); err != nil {
				return err
			}
		}
		w.Despawn(key)
	}

	return nil
}
