package control

import (
	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/motor"
)

// DefaultDepthPid is used for any DepthTarget entity that doesn't also
// carry its own PidConfig (spec.md doesn't require tuning per target; this
// default keeps depth-hold usable with nothing more than a bare
// DepthTarget written from the surface).
var DefaultDepthPid = components.PidConfig{Kp: 40, Ki: 5, Kd: 12, MaxI: 50}

// DepthController runs spec.md §4.6's depth-hold loop: one PID per live
// DepthTarget entity (decision recorded in DESIGN.md — "many sources, one
// target" solved the same way MovementContribution already is, rather than
// inventing per-component ownership).
type DepthController struct {
	pids       map[ecs.EntityKey]*PID
	contribs   map[ecs.EntityKey]ecs.EntityKey // DepthTarget key -> its MovementContribution entity
}

// NewDepthController returns an empty controller.
func NewDepthController() *DepthController {
	return &DepthController{
		pids:     make(map[ecs.EntityKey]*PID),
		contribs: make(map[ecs.EntityKey]ecs.EntityKey),
	}
}

// Run reads the robot's current DepthFrame against every DepthTarget,
// publishes a force-only MovementContribution per target — the PID
// correction along world Z, rotated into world frame via the inverse of
// the robot's current Orientation so the push stays vertical even when the
// robot is tilted — and records the PID's last output as PidResult for
// telemetry. Grounded on
// original_source/robot/src/plugins/actuators/depth_hold.rs's update loop.
func (c *DepthController) Run(w *ecs.World, dt float64) error {
	robotKey, ok := robotEntity(w)
	if !ok {
		return nil
	}
	robotID, ok := ecs.GetResource[components.RobotId](w)
	if !ok {
		return nil
	}
	depth, ok := ecs.Get[components.DepthFrame](w, robotKey)
	if !ok {
		return nil
	}
	orientation, ok := ecs.Get[components.Orientation](w, robotKey)
	if !ok {
		return nil
	}

	active := make(map[ecs.EntityKey]bool)
	for _, key := range ecs.Query[components.DepthTarget](w) {
		active[key] = true
		target, ok := ecs.Get[components.DepthTarget](w, key)
		if !ok {
			continue
		}
		cfg, ok := ecs.Get[components.PidConfig](w, key)
		if !ok {
			cfg = DefaultDepthPid
		}

		pid, ok := c.pids[key]
		if !ok {
			pid = &PID{}
			c.pids[key] = pid
		}

		e := target.Meters - depth.Meters
		result := pid.Update(e, cfg.Kp, cfg.Ki, cfg.Kd, cfg.MaxI, dt)

		contribKey, ok := c.contribs[key]
		if !ok {
			contribKey = w.Spawn()
			c.contribs[key] = contribKey
		}
		force := orientation.Quat.Conjugate().RotateVec3(geom.Vec3{Z: 1}).Scale(result.Correction)
		if err := ecs.Insert(w, contribKey, components.MovementContribution{
			RobotId:  robotID.Id,
			Movement: motor.Movement{Force: force},
		}); err != nil {
			return err
		}
		// PidResult is recorded on our own contribution entity, not the
		// DepthTarget entity — that entity may be mirrored from the peer
		// that authored it, which rejects local writes (spec.md §3.1).
		if err := ecs.Insert(w, contribKey, components.PidResult(result)); err != nil {
			return err
		}
	}

	for key := range c.pids {
		if !active[key] {
			delete(c.pids, key)
			if contribKey, ok := c.contribs[key]; ok {
				w.Despawn(contribKey)
				delete(c.contribs, key)
			}
		}
	}

	return nil
}
