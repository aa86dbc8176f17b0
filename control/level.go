package control

import (
	"math"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/motor"
)

// DefaultLevelPid tunes the self-leveling torque loop when an
// OrientationTarget carries no PidConfig of its own.
var DefaultLevelPid = components.PidConfig{Kp: 6, Ki: 0, Kd: 1.5, MaxI: 10}

// bodyXAxis/bodyYAxis are the two swing axes self-leveling corrects about;
// the third (yaw, about body Z) is left to the pilot (spec.md §4.6 only
// describes correcting to an "up" vector, which constrains pitch and roll,
// not heading).
var bodyXAxis = geom.Vec3{X: 1}
var bodyYAxis = geom.Vec3{Y: 1}

// LevelController runs spec.md §4.6's self-leveling loop: for every live
// OrientationTarget, compute the shortest rotation from the robot's
// current "up" to the commanded one, decompose it into pitch/roll twists
// via swing-twist, and PID each into a torque contribution. Grounded on
// original_source/robot/src/plugins/actuators/stabilize.rs.
type LevelController struct {
	pitchPids map[ecs.EntityKey]*PID
	rollPids  map[ecs.EntityKey]*PID
	contribs  map[ecs.EntityKey]ecs.EntityKey
}

// NewLevelController returns an empty controller.
func NewLevelController() *LevelController {
	return &LevelController{
		pitchPids: make(map[ecs.EntityKey]*PID),
		rollPids:  make(map[ecs.EntityKey]*PID),
		contribs:  make(map[ecs.EntityKey]ecs.EntityKey),
	}
}

func (c *LevelController) Run(w *ecs.World, dt float64) error {
	robotKey, ok := robotEntity(w)
	if !ok {
		return nil
	}
	robotID, ok := ecs.GetResource[components.RobotId](w)
	if !ok {
		return nil
	}
	orientation, ok := ecs.Get[components.Orientation](w, robotKey)
	if !ok {
		return nil
	}

	currentUp := orientation.Quat.RotateVec3(geom.Vec3{Z: 1})

	active := make(map[ecs.EntityKey]bool)
	for _, key := range ecs.Query[components.OrientationTarget](w) {
		active[key] = true
		target, ok := ecs.Get[components.OrientationTarget](w, key)
		if !ok {
			continue
		}
		cfg, ok := ecs.Get[components.PidConfig](w, key)
		if !ok {
			cfg = DefaultLevelPid
		}

		qErr := geom.FromTo(currentUp, target.Up)

		pitchTwist := geom.TwistAbout(qErr, bodyXAxis)
		rollTwist := geom.TwistAbout(qErr, bodyYAxis)
		pitchAngle := geom.AngleAboutAxis(pitchTwist, bodyXAxis)
		rollAngle := geom.AngleAboutAxis(rollTwist, bodyYAxis)

		pitchPid, ok := c.pitchPids[key]
		if !ok {
			pitchPid = &PID{}
			c.pitchPids[key] = pitchPid
		}
		rollPid, ok := c.rollPids[key]
		if !ok {
			rollPid = &PID{}
			c.rollPids[key] = rollPid
		}

		pitchResult := pitchPid.Update(pitchAngle, cfg.Kp, cfg.Ki, cfg.Kd, cfg.MaxI, dt)
		rollResult := rollPid.Update(rollAngle, cfg.Kp, cfg.Ki, cfg.Kd, cfg.MaxI, dt)

		contribKey, ok := c.contribs[key]
		if !ok {
			contribKey = w.Spawn()
			c.contribs[key] = contribKey
		}
		if err := ecs.Insert(w, contribKey, components.MovementContribution{
			RobotId: robotID.Id,
			Movement: motor.Movement{
				Torque: bodyXAxis.Scale(pitchResult.Correction).Add(bodyYAxis.Scale(rollResult.Correction)),
			},
		}); err != nil {
			return err
		}
		// PidResult is recorded on our own contribution entity, not the
		// OrientationTarget entity — that entity is authored on the
		// surface and is ForeignOwned here, which rejects local writes
		// (spec.md §3.1; DESIGN.md decision 7).
		if err := ecs.Insert(w, contribKey, components.PidResult(combineResults(pitchResult, rollResult))); err != nil {
			return err
		}
	}

	for key := range c.pitchPids {
		if !active[key] {
			delete(c.pitchPids, key)
			delete(c.rollPids, key)
			if contribKey, ok := c.contribs[key]; ok {
				w.Despawn(contribKey)
				delete(c.contribs, key)
			}
		}
	}

	return nil
}

// combineResults reports the larger-magnitude axis' PID breakdown, purely
// as a representative telemetry sample — PidResult has no room for two
// independent axes and spec.md doesn't ask for one.
func combineResults(pitch, roll Result) Result {
	if math.Abs(roll.Correction) > math.Abs(pitch.Correction) {
		return roll
	}
	return pitch
}
