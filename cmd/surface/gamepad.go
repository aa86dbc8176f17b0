package main

import (
	"rovmesh/control"
	"rovmesh/motor"
)

// GamepadSource yields one tick's raw input sample. Reading the physical
// joystick is out of scope (spec.md §1) — control/input.go's InputMapper
// is built to consume whatever decodes into a control.GamepadState, and a
// real deployment points this at an actual joystick/HID driver. The
// terminal and httpapi control surfaces are the other two ways a
// MovementContribution can originate; this is the third, for a directly
// attached controller.
type GamepadSource interface {
	Read() control.GamepadState
}

// stubGamepad reports a centered stick with nothing pressed, so this
// binary links and drives the mirrored world end to end without a
// physical controller attached.
type stubGamepad struct{}

func newStubGamepad() *stubGamepad { return &stubGamepad{} }

func (g *stubGamepad) Read() control.GamepadState {
	return control.GamepadState{
		Axes:    map[motor.Axis]float64{},
		Pressed: map[control.Button]bool{},
	}
}
