package motor

// Rekey rebuilds cfg under a different id type, used to turn a frame
// builder's typed ids (X3DMotorID) into the strings MotorDefinition/
// TargetForce/PwmChannel replicate over the wire.
func Rekey[From, To comparable](cfg *Config[From], key func(From) To) *Config[To] {
	out := NewConfig[To](cfg.centerOfMass)
	for _, id := range cfg.ids {
		out.Set(key(id), cfg.motors[id])
	}
	return out
}
