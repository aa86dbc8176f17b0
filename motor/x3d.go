package motor

import (
	"fmt"
	"math"

	"rovmesh/geom"
)

// X3DMotorID names the eight thrusters of a BlueROV-style X3D frame,
// grounded on original_source/motor_math/src/x3d.rs.
type X3DMotorID int

const (
	FrontRightTop X3DMotorID = iota
	FrontLeftTop
	BackRightTop
	BackLeftTop
	FrontRightBottom
	FrontLeftBottom
	BackRightBottom
	BackLeftBottom
)

var x3dMotorNames = map[X3DMotorID]string{
	FrontRightTop:    "front_right_top",
	FrontLeftTop:     "front_left_top",
	BackRightTop:     "back_right_top",
	BackLeftTop:      "back_left_top",
	FrontRightBottom: "front_right_bottom",
	FrontLeftBottom:  "front_left_bottom",
	BackRightBottom:  "back_right_bottom",
	BackLeftBottom:   "back_left_bottom",
}

// String names the motor for robot_config.toml / telemetry, matching
// original_source/motor_math/src/x3d.rs's naming.
func (id X3DMotorID) String() string {
	if name, ok := x3dMotorNames[id]; ok {
		return name
	}
	return fmt.Sprintf("motor_%d", int(id))
}

// NewX3D builds the canonical 8-thruster X3D geometry: each motor sits at
// a corner of the vehicle frame with its thrust axis pointed diagonally
// outward at 45 degrees in the horizontal plane and a fixed vertical
// pitch, alternating CW/CCW so each corner cancels the others' reaction
// torque under pure translation.
func NewX3D(com geom.Vec3) *Config[X3DMotorID] {
	cfg := NewConfig[X3DMotorID](com)

	const armLength = 0.2
	const vertical = 0.1
	elevation := 40 * math.Pi / 180

	type corner struct {
		id        X3DMotorID
		x, y, z   float64
		azimuth   float64 // degrees in the XY plane
		dir       Direction
	}

	corners := []corner{
		{FrontRightTop, armLength, armLength, vertical, 45, CW},
		{FrontLeftTop, -armLength, armLength, vertical, 135, CCW},
		{BackRightTop, armLength, -armLength, vertical, -45, CCW},
		{BackLeftTop, -armLength, -armLength, vertical, -135, CW},
		{FrontRightBottom, armLength, armLength, -vertical, 45, CCW},
		{FrontLeftBottom, -armLength, armLength, -vertical, 135, CW},
		{BackRightBottom, armLength, -armLength, -vertical, -45, CW},
		{BackLeftBottom, -armLength, -armLength, -vertical, -135, CCW},
	}

	for _, c := range corners {
		az := c.azimuth * math.Pi / 180
		orientation := geom.Vec3{
			X: math.Cos(az) * math.Cos(elevation),
			Y: math.Sin(az) * math.Cos(elevation),
			Z: math.Sin(elevation),
		}.Normalize()

		cfg.Set(c.id, Motor{
			Position:    geom.Vec3{X: c.x, Y: c.y, Z: c.z},
			Orientation: orientation,
			Direction:   c.dir,
		})
	}

	return cfg
}
