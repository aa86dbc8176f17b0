package main

import (
	"time"

	"rovmesh/logging"
)

// stubPwmDriver is the out-of-scope PWM chip peripheral (spec.md §1)
// satisfying pwmout.Driver with nothing but debug logging, so the PWM
// output state machine has somewhere to write. A real deployment swaps
// this for a driver that talks to the actual PCA9685 (or equivalent) over
// I2C/SPI.
type stubPwmDriver struct{}

func newStubPwmDriver() *stubPwmDriver { return &stubPwmDriver{} }

func (d *stubPwmDriver) WriteChannel(channel uint8, pulse time.Duration) error {
	logging.DebugPrintWithPackage("pwmdriver", "channel %d <- %s", channel, pulse)
	return nil
}

func (d *stubPwmDriver) SetOutputEnabled(enabled bool) error {
	logging.DebugPrintWithPackage("pwmdriver", "output enabled=%v", enabled)
	return nil
}

func (d *stubPwmDriver) StopPulses() error {
	logging.DebugPrintWithPackage("pwmdriver", "stop pulses")
	return nil
}

func (d *stubPwmDriver) Sleep() error {
	logging.DebugPrintWithPackage("pwmdriver", "sleep")
	return nil
}
