package control

import (
	"time"

	"rovmesh/components"
	"rovmesh/ecs"
)

// RunServos accumulates every ServoContribution into a ServoTarget per
// channel (SPEC_FULL.md F.3.4), the same "many sources, one target" shape
// RunMovement resolves for thrust. Unlike thrust, servo pulses aren't
// vector quantities with a reverse solve — contributions simply sum their
// pulse-width deltas against the channel's center position.
func RunServos(w *ecs.World, center time.Duration) error {
	robotID, ok := ecs.GetResource[components.RobotId](w)
	if !ok {
		return nil
	}

	sums := make(map[uint8]time.Duration)
	for _, key := range ecs.Query[components.ServoContribution](w) {
		c, ok := ecs.Get[components.ServoContribution](w, key)
		if !ok || c.RobotId != robotID.Id {
			continue
		}
		sums[c.Channel] += c.Pulse
	}

	existing := servoTargetEntities(w)
	for channel, pulse := range sums {
		key, ok := existing[channel]
		if !ok {
			key = w.Spawn()
		}
		if err := ecs.Insert(w, key, components.ServoTarget{
			Channel: channel,
			Pulse:   center + pulse,
		}); err != nil {
			return err
		}
	}

	return nil
}

func servoTargetEntities(w *ecs.World) map[uint8]ecs.EntityKey {
	out := make(map[uint8]ecs.EntityKey)
	for _, key := range ecs.Query[components.ServoTarget](w) {
		t, ok := ecs.Get[components.ServoTarget](w, key)
		if ok {
			out[t.Channel] = key
		}
	}
	return out
}
