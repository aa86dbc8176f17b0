package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DebugMode mirrors the teacher's shared.DEBUG_MODE: a process-wide flag
// read once at startup from the DEBUG env var and consulted by logging.
var DebugMode bool

// LoadEnv loads a .env file if present, exactly as the teacher's main.go
// does, and derives DebugMode from the DEBUG variable. A missing .env file
// is not an error — both binaries may run from an environment where
// configuration is supplied directly.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	DebugMode = os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
	return nil
}

// MotorConfigKind names the thruster geometry in robot_config.toml. The
// field is parsed but not consulted: both binaries build the X3D rig
// whatever it says.
type MotorConfigKind string

const (
	MotorConfigX3D     MotorConfigKind = "x3d"
	MotorConfigBlueROV MotorConfigKind = "bluerov"
	MotorConfigCustom  MotorConfigKind = "custom"
)

// RobotConfig is the parsed contents of robot_config.toml, the optional
// startup config path spec.md §6 names. Only the robot binary reads this;
// the surface binary takes host:port on first input instead.
type RobotConfig struct {
	MotorConfig         MotorConfigKind `toml:"motor_config"`
	CenterOfMassX       float64         `toml:"center_of_mass_x"`
	CenterOfMassY       float64         `toml:"center_of_mass_y"`
	CenterOfMassZ       float64         `toml:"center_of_mass_z"`
	MotorAmperageBudget float64         `toml:"motor_amperage_budget"`
	JerkLimit           float64         `toml:"jerk_limit"`
	MotorDataPath       string          `toml:"motor_data_path"`
}

// DefaultRobotConfig matches the original's typical BlueROV Heavy loadout:
// a modest current budget and a jerk limit generous enough not to be felt
// by the pilot under normal maneuvering.
func DefaultRobotConfig() RobotConfig {
	return RobotConfig{
		MotorConfig:         MotorConfigX3D,
		MotorAmperageBudget: 20.0,
		JerkLimit:           40.0,
		MotorDataPath:       "motor_data.csv",
	}
}

// LoadRobotConfig reads path as TOML, falling back to DefaultRobotConfig
// when path doesn't exist — the robot binary takes no flags beyond an
// optional config path (spec.md §6), so absence of the file is not fatal.
func LoadRobotConfig(path string) (RobotConfig, error) {
	cfg := DefaultRobotConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return RobotConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return cfg, nil
}
