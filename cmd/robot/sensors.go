package main

import (
	"time"

	"rovmesh/geom"
)

// Sensors is the boundary spec.md §1 describes: "peripheral drivers
// appear to the core as functions that yield timestamped samples." The
// actual I2C/SPI IMU, barometer, and ADC drivers are out of scope; a real
// deployment replaces stubSensors with one that talks to the hardware and
// satisfies this same interface.
type Sensors interface {
	ReadIMU() (gyro, accel geom.Vec3, ts time.Time, err error)
	ReadDepth() (meters float64, ts time.Time, err error)
	ReadLeak() (tripped bool, err error)
	ReadVoltage() (volts float64, err error)
}

// stubSensors reports a motionless robot sitting at the surface with a
// full battery. It exists so this binary links and runs end to end without
// real peripheral hardware attached; every reading it returns is constant.
type stubSensors struct{}

func newStubSensors() *stubSensors { return &stubSensors{} }

func (s *stubSensors) ReadIMU() (geom.Vec3, geom.Vec3, time.Time, error) {
	return geom.Vec3{}, geom.Vec3{Z: 1}, time.Now(), nil
}

func (s *stubSensors) ReadDepth() (float64, time.Time, error) {
	return 0, time.Now(), nil
}

func (s *stubSensors) ReadLeak() (bool, error) {
	return false, nil
}

func (s *stubSensors) ReadVoltage() (float64, error) {
	return 16.0, nil
}
