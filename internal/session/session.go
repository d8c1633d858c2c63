// Package session implements the session manager: the single owner of the
// master clock and every arena scheduler. All arenas advance in lockstep
// under one tick counter; the manager is the only component allowed to
// move entities between arenas or to pause time.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/matthewharwood/arenic-replay/internal/arena"
	"github.com/matthewharwood/arenic-replay/internal/clock"
	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// ErrUnknownArena is returned when an operation names an arena ID the
// session was not configured with.
var ErrUnknownArena = errors.New("session: unknown arena")

// Config describes a whole session: the clock, the arena set and the
// shared playback rules. Every arena shares the same bounds; the arena
// set plus the bounds is what the topology hash binds timelines to.
type Config struct {
	TickRate int // simulation ticks per second
	MaxSteps int // fixed-step catch-up cap; <= 0 selects the default

	Bounds     sim.GridRect
	CycleTicks sim.Tick // recording cycle length
	DeadZone   int32    // recorder dead-zone; <= 0 selects the default

	CooldownTicks sim.Tick // ability cooldown; 0 selects the default
	EndPolicy     playback.EndPolicy

	Arenas            []sim.ArenaID
	MaxGhostsPerArena int
}

// SealedRecording pairs a freshly sealed timeline with the arena whose
// live actor produced it.
type SealedRecording struct {
	Arena    sim.ArenaID
	Timeline *sim.Timeline
}

// AdvanceReport is everything one Advance call produced, across all the
// simulation steps it ran.
type AdvanceReport struct {
	Steps  int
	Deltas []sim.StateDelta
	Sealed []SealedRecording
	// Alpha is the fixed-step interpolation fraction after the call, for
	// presentation smoothing only.
	Alpha float64
}

// Manager owns the session. It is not safe for concurrent use: the whole
// simulation runs on one goroutine and the manager is its entry point.
type Manager struct {
	cfg      Config
	topology uint64

	step  *clock.FixedStep
	clock *clock.Session

	arenas map[sim.ArenaID]*arena.Scheduler
	order  []sim.ArenaID // ascending arena ID; the per-step tick order
	focus  sim.ArenaID

	nextEntity sim.EntityID
}

// New creates a session with one scheduler per configured arena, all at
// tick zero.
func New(cfg Config) (*Manager, error) {
	if len(cfg.Arenas) == 0 {
		return nil, errors.New("session: at least one arena required")
	}
	if cfg.CycleTicks == 0 {
		return nil, errors.New("session: cycle length must be positive")
	}

	order := append([]sim.ArenaID(nil), cfg.Arenas...)
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j-1] > order[j]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	for i := 1; i < len(order); i++ {
		if order[i] == order[i-1] {
			return nil, fmt.Errorf("session: duplicate arena ID %d", order[i])
		}
	}

	topology := sim.TopologyHash(order, cfg.Bounds)
	engine := playback.NewEngine(playback.Config{
		Bounds:        cfg.Bounds,
		CooldownTicks: cfg.CooldownTicks,
	})

	arenas := make(map[sim.ArenaID]*arena.Scheduler, len(order))
	for _, id := range order {
		arenas[id] = arena.New(arena.Config{
			ID:        id,
			Bounds:    cfg.Bounds,
			MaxGhosts: cfg.MaxGhostsPerArena,
			Topology:  topology,
			Engine:    engine,
		})
	}

	return &Manager{
		cfg:        cfg,
		topology:   topology,
		step:       clock.NewFixedStepRate(cfg.TickRate, cfg.MaxSteps),
		clock:      clock.NewSession(),
		arenas:     arenas,
		order:      order,
		focus:      order[0],
		nextEntity: 1,
	}, nil
}

// Topology returns the hash binding timelines to this session's arena
// layout.
func (m *Manager) Topology() uint64 {
	return m.topology
}

// Tick returns the master clock's current tick.
func (m *Manager) Tick() sim.Tick {
	return m.clock.Tick()
}

// Paused reports whether session time is frozen.
func (m *Manager) Paused() bool {
	return m.clock.Paused()
}

// Pause freezes every arena at the same tick. Idempotent.
func (m *Manager) Pause() {
	m.clock.Pause()
}

// Resume unfreezes session time. Idempotent.
func (m *Manager) Resume() {
	m.clock.Resume()
}

// Arenas returns the configured arena IDs in ascending order.
func (m *Manager) Arenas() []sim.ArenaID {
	return append([]sim.ArenaID(nil), m.order...)
}

// Focus returns the arena currently receiving live input.
func (m *Manager) Focus() sim.ArenaID {
	return m.focus
}

// SwitchFocus redirects live input to another arena. The previous focus
// keeps simulating; its live actor just stops receiving input.
func (m *Manager) SwitchFocus(id sim.ArenaID) error {
	if _, ok := m.arenas[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArena, id)
	}
	m.focus = id
	return nil
}

// PauseArena freezes one arena's phases while its tick counter keeps
// following the session clock.
func (m *Manager) PauseArena(id sim.ArenaID) error {
	a, ok := m.arenas[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArena, id)
	}
	a.SetPaused(true)
	return nil
}

// ResumeArena unfreezes one arena at the next tick boundary.
func (m *Manager) ResumeArena(id sim.ArenaID) error {
	a, ok := m.arenas[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArena, id)
	}
	a.SetPaused(false)
	return nil
}

// StartRecording attaches a live recorder-driven actor to the arena and
// begins a recording cycle at the current session tick. Returns the live
// actor state the caller renders and steers through Advance input.
func (m *Manager) StartRecording(arenaID sim.ArenaID, actor string, archetype sim.Archetype, spawn sim.GridPoint) (*sim.ActorState, error) {
	a, ok := m.arenas[arenaID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArena, arenaID)
	}
	rec := recorder.New(recorder.Config{
		Actor:     actor,
		Archetype: archetype,
		Duration:  m.cfg.CycleTicks,
		DeadZone:  m.cfg.DeadZone,
		Topology:  m.topology,
		Arena:     arenaID,
	})
	state := &sim.ActorState{
		ID:        m.allocEntity(),
		Actor:     actor,
		Archetype: archetype,
		Pos:       m.cfg.Bounds.Clamp(spawn),
		Facing:    sim.DirEast,
	}
	if err := a.AttachLive(rec, state, m.clock.Tick()); err != nil {
		return nil, err
	}
	return state, nil
}

// SpawnGhost attaches a sealed timeline to an arena with a fresh entity
// ID.
func (m *Manager) SpawnGhost(arenaID sim.ArenaID, t *sim.Timeline, spawn sim.GridPoint, policy playback.EndPolicy) (sim.EntityID, error) {
	a, ok := m.arenas[arenaID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownArena, arenaID)
	}
	id := m.allocEntity()
	if _, err := a.SpawnGhost(id, t, spawn, policy); err != nil {
		return 0, err
	}
	return id, nil
}

func (m *Manager) allocEntity() sim.EntityID {
	id := m.nextEntity
	m.nextEntity++
	return id
}

// Advance feeds a wall-clock delta to the fixed-step clock and runs the
// resulting whole simulation steps. Live input is routed to the focused
// arena only; every other arena receives a neutral input frame. While the
// session is paused, wall time is consumed but no steps run, so resuming
// does not trigger a catch-up burst.
func (m *Manager) Advance(wallDelta time.Duration, input recorder.RawInput) (AdvanceReport, error) {
	steps, err := m.step.Advance(wallDelta)
	if err != nil {
		return AdvanceReport{}, err
	}

	var report AdvanceReport
	if m.clock.Paused() {
		report.Alpha = m.step.InterpolationAlpha()
		return report, nil
	}

	for i := 0; i < steps; i++ {
		if err := m.stepOnce(input, &report); err != nil {
			return AdvanceReport{}, err
		}
		report.Steps++
	}
	report.Alpha = m.step.InterpolationAlpha()
	return report, nil
}

// stepOnce ticks every arena at the current session tick, applies the
// resulting cross-arena transfers, then commits the tick. Transfers apply
// after all arenas have ticked so an entity is never simulated twice in
// one step.
func (m *Manager) stepOnce(input recorder.RawInput, report *AdvanceReport) error {
	tick := m.clock.Tick()

	var transfers []arena.Transfer
	for _, id := range m.order {
		in := recorder.RawInput{}
		if id == m.focus {
			in = input
		}
		r, err := m.arenas[id].AdvanceTick(tick, in)
		if err != nil {
			return fmt.Errorf("session: arena %d at tick %d: %w", id, tick, err)
		}
		report.Deltas = append(report.Deltas, r.Deltas...)
		transfers = append(transfers, r.Transfers...)
		if r.Sealed != nil {
			report.Sealed = append(report.Sealed, SealedRecording{Arena: id, Timeline: r.Sealed})
		}
	}

	for _, tr := range transfers {
		if err := m.applyTransfer(tr); err != nil {
			return err
		}
	}

	m.clock.Advance()
	m.assertSynchronized()
	return nil
}

// applyTransfer re-parents an entity between arenas. The destination must
// exist: a transfer to an unknown arena means the timeline or the input
// referenced a layout this session does not have.
func (m *Manager) applyTransfer(tr arena.Transfer) error {
	src, ok := m.arenas[tr.From]
	if !ok {
		return fmt.Errorf("%w: transfer source %d", ErrUnknownArena, tr.From)
	}
	dst, ok := m.arenas[tr.To]
	if !ok {
		return fmt.Errorf("%w: transfer destination %d", ErrUnknownArena, tr.To)
	}

	if g, t, ok := src.ReleaseGhost(tr.Entity); ok {
		dst.AdoptGhost(g, t)
		return nil
	}
	if live := src.Live(); live != nil && live.ID == tr.Entity {
		state, rec, _ := src.ReleaseLive()
		return dst.AdoptLive(state, rec)
	}
	return fmt.Errorf("session: transfer of unknown entity %d from arena %d", tr.Entity, tr.From)
}

// assertSynchronized panics if any arena's committed tick has drifted from
// the master clock. Drift is a scheduler bug, never a recoverable
// condition.
func (m *Manager) assertSynchronized() {
	want := m.clock.Tick()
	for _, id := range m.order {
		if got := m.arenas[id].Tick(); got != want {
			panic(fmt.Sprintf("session: arena %d at tick %d, session at %d", id, got, want))
		}
	}
}
