package session

import (
	"github.com/matthewharwood/arenic-replay/internal/arena"
	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// Snapshot is an immutable copy of the observable session state at one
// tick boundary, taken for rendering or inspection. It shares no memory
// with the live simulation.
type Snapshot struct {
	Tick   sim.Tick
	Paused bool
	Focus  sim.ArenaID
	Alpha  float64
	Arenas []ArenaSnapshot // ascending arena ID
}

// ArenaSnapshot is one arena's slice of a session snapshot.
type ArenaSnapshot struct {
	ID     sim.ArenaID
	State  arena.State
	Bounds sim.GridRect
	Live   *sim.ActorState // nil when no live actor is resident
	Ghosts []playback.Ghost
}

// Snapshot captures the whole session. Safe to hold across ticks; the
// simulation never sees it again.
func (m *Manager) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   m.clock.Tick(),
		Paused: m.clock.Paused(),
		Focus:  m.focus,
		Alpha:  m.step.InterpolationAlpha(),
		Arenas: make([]ArenaSnapshot, 0, len(m.order)),
	}
	for _, id := range m.order {
		a := m.arenas[id]
		as := ArenaSnapshot{
			ID:     id,
			State:  a.State(),
			Bounds: a.Bounds(),
			Ghosts: a.Ghosts(),
		}
		if live := a.Live(); live != nil && live.Arena == id {
			copied := *live
			as.Live = &copied
		}
		snap.Arenas = append(snap.Arenas, as)
	}
	return snap
}
