package control

import (
	"math"
	"testing"

	"rovmesh/components"
	"rovmesh/ecs"
	"rovmesh/ids"
	"rovmesh/motor"
)

func TestShapeCubicPreservesSign(t *testing.T) {
	if shapeCubic(0.5) <= 0 {
		t.Fatalf("shapeCubic(0.5) = %v, want positive", shapeCubic(0.5))
	}
	if shapeCubic(-0.5) >= 0 {
		t.Fatalf("shapeCubic(-0.5) = %v, want negative", shapeCubic(-0.5))
	}
	if shapeCubic(0) != 0 {
		t.Fatalf("shapeCubic(0) = %v, want 0", shapeCubic(0))
	}
}

func TestShapeCubicGivesFinerControlNearCenter(t *testing.T) {
	half := math.Abs(shapeCubic(0.5))
	full := math.Abs(shapeCubic(1.0))
	if half >= full/2 {
		t.Fatalf("shapeCubic(0.5)=%v should be less than half of shapeCubic(1)=%v", half, full)
	}
}

// findArmRequest returns the sole live ArmRequest targeting robotID, if any.
func findArmRequest(w *ecs.World, robotID ids.NetId) (components.ArmRequest, bool) {
	for _, key := range ecs.Query[components.ArmRequest](w) {
		req, ok := ecs.Get[components.ArmRequest](w, key)
		if ok && req.RobotId == robotID {
			return req, true
		}
	}
	return components.ArmRequest{}, false
}

func TestInputMapperArmToggleSpawnsArmRequest(t *testing.T) {
	w := testWorld(t)
	robotKey := setupRobot(t, w)
	robotID := ids.NetId{Lo: 1}
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Disarmed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}

	m := NewInputMapper()
	maxes := motor.AxisMaximums{}
	state := GamepadState{Pressed: map[Button]bool{ButtonArmToggle: true}}

	// robotKey may be ForeignOwned on the side that doesn't author the
	// robot; the toggle must never write ArmedComponent directly on it,
	// only ever through an ArmRequest (control.RunArmRequests applies it).
	if err := m.Run(w, robotKey, robotID, maxes, state); err != nil {
		t.Fatalf("Run: %v", err)
	}
	req, ok := findArmRequest(w, robotID)
	if !ok || req.State != components.Armed {
		t.Fatalf("ArmRequest = %+v, ok=%v, want State=Armed", req, ok)
	}
	if armed, _ := ecs.Get[components.ArmedComponent](w, robotKey); armed.State != components.Disarmed {
		t.Fatalf("ArmedComponent changed directly by the mapper: %+v", armed)
	}

	// Simulate control.RunArmRequests having applied the first request
	// before the pilot presses the toggle again.
	if err := ecs.Insert(w, robotKey, components.ArmedComponent{State: components.Armed}); err != nil {
		t.Fatalf("insert ArmedComponent: %v", err)
	}

	if err := m.Run(w, robotKey, robotID, maxes, state); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	var disarmRequests int
	for _, key := range ecs.Query[components.ArmRequest](w) {
		req, ok := ecs.Get[components.ArmRequest](w, key)
		if ok && req.RobotId == robotID && req.State == components.Disarmed {
			disarmRequests++
		}
	}
	if disarmRequests != 1 {
		t.Fatalf("disarm ArmRequest count = %d, want 1", disarmRequests)
	}
}

func TestInputMapperDepthHoldTogglesTarget(t *testing.T) {
	w := testWorld(t)
	robotKey := setupRobot(t, w)
	if err := ecs.Insert(w, robotKey, components.DepthFrame{Meters: 3.0}); err != nil {
		t.Fatalf("insert DepthFrame: %v", err)
	}

	m := NewInputMapper()
	state := GamepadState{Pressed: map[Button]bool{ButtonDepthHoldToggle: true}}

	if err := m.Run(w, robotKey, ids.NetId{Lo: 1}, motor.AxisMaximums{}, state); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ecs.Query[components.DepthTarget](w); len(got) != 1 {
		t.Fatalf("DepthTarget count = %d, want 1", len(got))
	}

	if err := m.Run(w, robotKey, ids.NetId{Lo: 1}, motor.AxisMaximums{}, state); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if got := ecs.Query[components.DepthTarget](w); len(got) != 0 {
		t.Fatalf("DepthTarget count = %d, want 0 after untoggle", len(got))
	}
}

func TestInputMapperAxesScaleByMaximum(t *testing.T) {
	w := testWorld(t)
	robotKey := setupRobot(t, w)
	robotID := ids.NetId{Lo: 3}

	m := NewInputMapper()
	maxes := motor.AxisMaximums{motor.AxisX: 10}
	state := GamepadState{Axes: map[motor.Axis]float64{motor.AxisX: 1.0}}

	if err := m.Run(w, robotKey, robotID, maxes, state); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, key := range ecs.Query[components.MovementContribution](w) {
		c, ok := ecs.Get[components.MovementContribution](w, key)
		if ok && c.RobotId == robotID {
			found = true
			if c.Movement.Force.X != 10 {
				t.Fatalf("force X = %v, want 10 (full stick * axis maximum)", c.Movement.Force.X)
			}
		}
	}
	if !found {
		t.Fatalf("no MovementContribution produced")
	}
}
