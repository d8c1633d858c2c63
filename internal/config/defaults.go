package config

import (
	_ "embed"
)

//go:embed defaults/session.yaml
var defaultSessionYAML []byte

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Clock: ClockConfig{
			TickRate: 60,
			MaxSteps: 5,
		},
		Cycle: CycleConfig{
			Ticks:     120,
			EndPolicy: "loop",
		},
		Input: InputConfig{
			DeadZone: 128,
		},
		Arenas: ArenaConfig{
			Count:     3,
			Width:     66,
			Height:    31,
			MaxGhosts: 8,
		},
		Abilities: AbilityConfig{
			CooldownTicks: 30,
		},
		Storage: StorageConfig{
			Path: "", // resolved by the storage package
		},
	}
}

// GetDefaultYAML returns the embedded default session YAML.
func GetDefaultYAML() []byte {
	return defaultSessionYAML
}
