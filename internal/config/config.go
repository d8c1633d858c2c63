// Package config provides YAML-based session configuration loading and
// preset management for the replay engine.
package config

import (
	"fmt"

	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/session"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// SessionConfig contains all configuration for one replay session.
type SessionConfig struct {
	Clock     ClockConfig   `yaml:"clock"`
	Cycle     CycleConfig   `yaml:"cycle"`
	Input     InputConfig   `yaml:"input"`
	Arenas    ArenaConfig   `yaml:"arenas"`
	Abilities AbilityConfig `yaml:"abilities"`
	Storage   StorageConfig `yaml:"storage"`
}

// ClockConfig defines the fixed-step simulation clock.
type ClockConfig struct {
	TickRate int `yaml:"tick_rate"` // simulation ticks per second
	MaxSteps int `yaml:"max_steps"` // catch-up cap per frame
}

// CycleConfig defines the recording cycle.
type CycleConfig struct {
	Ticks     uint64 `yaml:"ticks"`      // cycle length in ticks
	EndPolicy string `yaml:"end_policy"` // "loop" or "despawn"
}

// InputConfig defines raw input interpretation.
type InputConfig struct {
	DeadZone int32 `yaml:"dead_zone"` // minimum axis deflection, 1/256 units
}

// ArenaConfig defines the arena layout.
type ArenaConfig struct {
	Count     int `yaml:"count"`      // number of arenas, IDs 1..count
	Width     int `yaml:"width"`      // playable cells per row
	Height    int `yaml:"height"`     // playable cells per column
	MaxGhosts int `yaml:"max_ghosts"` // ghost capacity per arena
}

// AbilityConfig defines ability timing.
type AbilityConfig struct {
	CooldownTicks uint64 `yaml:"cooldown_ticks"`
}

// StorageConfig defines the timeline store location.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite database path; empty selects the default
}

// Validate checks the configuration for values the engine cannot run with.
func (c SessionConfig) Validate() error {
	if c.Clock.TickRate <= 0 {
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.Clock.TickRate)
	}
	if c.Cycle.Ticks == 0 {
		return fmt.Errorf("config: cycle ticks must be positive")
	}
	if c.Arenas.Count <= 0 {
		return fmt.Errorf("config: at least one arena required, got %d", c.Arenas.Count)
	}
	if c.Arenas.Width <= 0 || c.Arenas.Height <= 0 {
		return fmt.Errorf("config: arena bounds %dx%d not playable", c.Arenas.Width, c.Arenas.Height)
	}
	if _, err := playback.ParseEndPolicy(c.Cycle.EndPolicy); err != nil {
		return err
	}
	return nil
}

// ToSession converts the file configuration into the session manager's
// runtime configuration. Arena IDs are assigned 1..count.
func (c SessionConfig) ToSession() (session.Config, error) {
	if err := c.Validate(); err != nil {
		return session.Config{}, err
	}
	policy, err := playback.ParseEndPolicy(c.Cycle.EndPolicy)
	if err != nil {
		return session.Config{}, err
	}
	arenas := make([]sim.ArenaID, c.Arenas.Count)
	for i := range arenas {
		arenas[i] = sim.ArenaID(i + 1)
	}
	return session.Config{
		TickRate:          c.Clock.TickRate,
		MaxSteps:          c.Clock.MaxSteps,
		Bounds:            sim.GridRect{W: int32(c.Arenas.Width), H: int32(c.Arenas.Height)},
		CycleTicks:        sim.Tick(c.Cycle.Ticks),
		DeadZone:          c.Input.DeadZone,
		CooldownTicks:     sim.Tick(c.Abilities.CooldownTicks),
		EndPolicy:         policy,
		Arenas:            arenas,
		MaxGhostsPerArena: c.Arenas.MaxGhosts,
	}, nil
}

// Preset represents a named session profile.
type Preset string

const (
	// PresetStandard is the reference 120-tick cycle.
	PresetStandard Preset = "standard"
	// PresetSprint shortens cycles for quick recording iteration.
	PresetSprint Preset = "sprint"
	// PresetMarathon lengthens cycles and raises the ghost cap.
	PresetMarathon Preset = "marathon"
)

// ApplyPreset modifies the config based on a session preset. Unknown
// presets leave the config untouched.
func ApplyPreset(cfg *SessionConfig, preset Preset) {
	switch preset {
	case PresetSprint:
		cfg.Cycle.Ticks = 60
		cfg.Arenas.MaxGhosts = 4
	case PresetMarathon:
		cfg.Cycle.Ticks = 600
		cfg.Arenas.MaxGhosts = 16
	}
}
