// Package playback drives sealed timelines against ghost entities,
// reproducing the recorded actor's effect on simulation state tick for
// tick. Stepping is a pure, synchronous function of (ghost, timeline):
// given the same timeline and initial state it emits an identical delta
// stream on every machine.
package playback

import (
	"fmt"

	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// EndPolicy selects what happens when a ghost's cursor reaches the end of
// its timeline.
type EndPolicy uint8

const (
	// PolicyLoop wraps the cursor back to tick zero.
	PolicyLoop EndPolicy = iota
	// PolicyDespawn asks the scheduler to remove the ghost.
	PolicyDespawn
)

// String returns a human-readable name for the policy.
func (p EndPolicy) String() string {
	switch p {
	case PolicyLoop:
		return "loop"
	case PolicyDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

// ParseEndPolicy converts a policy name from configuration.
func ParseEndPolicy(s string) (EndPolicy, error) {
	switch s {
	case "loop", "":
		return PolicyLoop, nil
	case "despawn":
		return PolicyDespawn, nil
	}
	return 0, fmt.Errorf("playback: unknown end policy %q", s)
}

// Ghost is a runtime entity bound to a timeline and a playback cursor.
// Created when a sealed timeline is attached to an arena, mutated only by
// the engine's Step, and destroyed when its policy says so or the arena is
// torn down.
type Ghost struct {
	sim.ActorState

	// SpawnArena and SpawnPos are the state the ghost rewinds to when a
	// looping playback wraps, so every playthrough starts bit-identical.
	SpawnArena sim.ArenaID
	SpawnPos   sim.GridPoint

	Cursor    sim.Tick // current index into the timeline
	Policy    EndPolicy
	Loops     uint32 // completed playthroughs (PolicyLoop only)
	Despawned bool
}

// NewGhost creates a ghost at the given spawn position with its cursor at
// tick zero.
func NewGhost(id sim.EntityID, archetype sim.Archetype, arena sim.ArenaID, spawn sim.GridPoint, policy EndPolicy) *Ghost {
	return &Ghost{
		ActorState: sim.ActorState{
			ID:        id,
			Archetype: archetype,
			Arena:     arena,
			Pos:       spawn,
			Facing:    sim.DirEast,
		},
		SpawnArena: arena,
		SpawnPos:   spawn,
		Policy:     policy,
	}
}

// Config fixes the deterministic interpretation rules for commands.
type Config struct {
	Bounds sim.GridRect // arena bounds movement is clamped to
	// CooldownTicks is how long an ability stays on cooldown after a
	// cast. Integer ticks only; no wall-clock time.
	CooldownTicks sim.Tick
}

// DefaultCooldownTicks matches one quarter of the reference 120-tick cycle.
const DefaultCooldownTicks = 30

// Engine replays timelines. It holds only immutable configuration, so one
// engine is safely shared by every ghost in an arena.
type Engine struct {
	cfg Config
}

// NewEngine creates a playback engine. A zero cooldown selects the default.
func NewEngine(cfg Config) *Engine {
	if cfg.CooldownTicks == 0 {
		cfg.CooldownTicks = DefaultCooldownTicks
	}
	return &Engine{cfg: cfg}
}

// Step advances the ghost by exactly one tick: never more, never less,
// never skipped. The command at the cursor, if any, is applied in full;
// otherwise the ghost's state carries forward unchanged (glide). At the
// end of the timeline the cursor wraps or the ghost despawns per policy;
// the cursor never exceeds the timeline duration.
func (e *Engine) Step(g *Ghost, t *sim.Timeline) ([]sim.StateDelta, error) {
	if g.Despawned {
		return nil, fmt.Errorf("playback: step on despawned ghost %d", g.ID)
	}

	var deltas []sim.StateDelta

	if cmd := t.CommandAt(g.Cursor); cmd != nil {
		applied, err := e.Apply(&g.ActorState, cmd)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, applied...)
	}

	g.Cursor++
	if g.Cursor >= t.Duration() {
		switch g.Policy {
		case PolicyLoop:
			deltas = append(deltas, e.rewind(g, t.Duration())...)
		case PolicyDespawn:
			g.Despawned = true
			deltas = append(deltas, sim.StateDelta{
				Entity: g.ID,
				Tick:   t.Duration(),
				Kind:   sim.DeltaDespawn,
			})
		}
	}
	return deltas, nil
}

// rewind resets a looping ghost to its spawn state so the next playthrough
// reproduces the first one exactly. Emits the teleport back to the spawn
// cell and arena (if any) before the loop marker, so the delta stream
// fully describes the observable state change.
func (e *Engine) rewind(g *Ghost, duration sim.Tick) []sim.StateDelta {
	var deltas []sim.StateDelta
	if g.Arena != g.SpawnArena {
		deltas = append(deltas, sim.StateDelta{
			Entity:    g.ID,
			Tick:      duration,
			Kind:      sim.DeltaArena,
			FromArena: g.Arena,
			ToArena:   g.SpawnArena,
		})
		g.Arena = g.SpawnArena
	}
	if g.Pos != g.SpawnPos {
		deltas = append(deltas, sim.StateDelta{
			Entity: g.ID,
			Tick:   duration,
			Kind:   sim.DeltaMove,
			From:   g.Pos,
			To:     g.SpawnPos,
		})
		g.Pos = g.SpawnPos
	}
	g.Cooldowns = [sim.MaxAbilities]sim.Tick{}
	g.Facing = sim.DirEast
	g.Cursor = 0
	g.Loops++
	deltas = append(deltas, sim.StateDelta{
		Entity: g.ID,
		Tick:   duration,
		Kind:   sim.DeltaLoop,
	})
	return deltas
}

// Apply executes one command's full, deterministic effect on an actor's
// logical state. The arena scheduler uses the same interpretation for the
// live actor's captured commands, so recording and replay cannot diverge.
// The switch is exhaustive over the closed command set.
func (e *Engine) Apply(s *sim.ActorState, cmd *sim.Command) ([]sim.StateDelta, error) {
	switch cmd.Kind {
	case sim.KindMove:
		from := s.Pos
		dx, dy := cmd.Move.Dir.Delta()
		s.Pos = e.cfg.Bounds.Clamp(s.Pos.Add(dx, dy))
		s.Facing = cmd.Move.Dir
		if s.Pos == from {
			// Clamped against a wall: position is unchanged and no
			// delta is emitted, but facing still updated above.
			return nil, nil
		}
		return []sim.StateDelta{{
			Entity: s.ID,
			Tick:   cmd.Tick,
			Kind:   sim.DeltaMove,
			From:   from,
			To:     s.Pos,
		}}, nil

	case sim.KindCast:
		slot := int(cmd.Cast.Ability) % sim.MaxAbilities
		readyAt := cmd.Tick + e.cfg.CooldownTicks
		s.Cooldowns[slot] = readyAt
		return []sim.StateDelta{{
			Entity:  s.ID,
			Tick:    cmd.Tick,
			Kind:    sim.DeltaCooldown,
			Ability: cmd.Cast.Ability,
			ReadyAt: readyAt,
		}}, nil

	case sim.KindChangeArena:
		if cmd.ChangeArena.From != s.Arena {
			return nil, fmt.Errorf("%w: entity %d in arena %d applied ChangeArena from %d",
				sim.ErrTimelineCorrupted, s.ID, s.Arena, cmd.ChangeArena.From)
		}
		from := s.Arena
		s.Arena = cmd.ChangeArena.To
		return []sim.StateDelta{{
			Entity:    s.ID,
			Tick:      cmd.Tick,
			Kind:      sim.DeltaArena,
			FromArena: from,
			ToArena:   s.Arena,
		}}, nil

	default:
		return nil, fmt.Errorf("playback: unknown command kind %d", cmd.Kind)
	}
}
