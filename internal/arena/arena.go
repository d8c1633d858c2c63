// Package arena implements the per-arena scheduler: one live
// recorder-driven actor plus zero or more ghosts, advanced in lockstep
// with the session clock. Each tick runs the same fixed phases in the
// same order — capture, playback, collision resolution, commit — which is
// what makes a whole-arena replay reproducible.
package arena

import (
	"errors"
	"fmt"

	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// ErrCapacityExceeded is returned when spawning a ghost into a full arena.
// Existing ghosts are unaffected; the spawn is simply rejected.
var ErrCapacityExceeded = errors.New("arena: ghost capacity exceeded")

// State is the arena scheduler state machine: Active arenas run their tick
// phases, Paused arenas keep their tick counter synchronized with the
// session clock but freeze capture and playback.
type State int

const (
	StateActive State = iota
	StatePaused
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Config fixes an arena's identity and limits at construction.
type Config struct {
	ID        sim.ArenaID
	Bounds    sim.GridRect
	MaxGhosts int
	Topology  uint64 // session topology hash; timelines must match
	Engine    *playback.Engine
}

// Transfer asks the session manager to re-parent an entity to another
// arena at the tick it was produced. Arena membership is state, not a
// timeline boundary: the entity's command log continues uninterrupted.
type Transfer struct {
	Entity sim.EntityID
	From   sim.ArenaID
	To     sim.ArenaID
}

// TickReport is everything one arena tick produced.
type TickReport struct {
	Deltas    []sim.StateDelta
	Transfers []Transfer
	// Sealed is non-nil when the live recording completed its cycle this
	// tick and was sealed into a timeline.
	Sealed *sim.Timeline
}

// ghostSlot pairs a ghost with the timeline that drives it. The timeline
// is owned exclusively by the scheduler that spawned the ghost (or, after
// a transfer, by the adopting scheduler) and is dropped with the ghost.
type ghostSlot struct {
	ghost    *playback.Ghost
	timeline *sim.Timeline
}

// liveSlot pairs the live actor's state with its recorder.
type liveSlot struct {
	state *sim.ActorState
	rec   *recorder.Recorder
}

// Scheduler owns one arena's entities and advances them in lockstep with
// the session clock. All mutation happens inside Tick on the single
// simulation goroutine.
type Scheduler struct {
	cfg   Config
	state State
	tick  sim.Tick

	live   *liveSlot
	ghosts []*ghostSlot // creation order; the playback ordering invariant
}

// New creates an idle arena scheduler at tick zero.
func New(cfg Config) *Scheduler {
	if cfg.Engine == nil {
		cfg.Engine = playback.NewEngine(playback.Config{Bounds: cfg.Bounds})
	}
	return &Scheduler{cfg: cfg, state: StateActive}
}

// ID returns the arena identifier.
func (a *Scheduler) ID() sim.ArenaID {
	return a.cfg.ID
}

// Bounds returns the arena's playable bounds.
func (a *Scheduler) Bounds() sim.GridRect {
	return a.cfg.Bounds
}

// Tick returns the arena's committed tick.
func (a *Scheduler) Tick() sim.Tick {
	return a.tick
}

// State returns the scheduler state.
func (a *Scheduler) State() State {
	return a.state
}

// SetPaused switches between Active and Paused. Takes effect at the next
// tick boundary, like every lifecycle change.
func (a *Scheduler) SetPaused(paused bool) {
	if paused {
		a.state = StatePaused
	} else {
		a.state = StateActive
	}
}

// GhostCount returns the number of resident ghosts.
func (a *Scheduler) GhostCount() int {
	return len(a.ghosts)
}

// Live returns the live actor's state, or nil when no recording is
// attached.
func (a *Scheduler) Live() *sim.ActorState {
	if a.live == nil {
		return nil
	}
	return a.live.state
}

// AttachLive binds a recorder-driven actor to the arena and starts the
// recording at the given session tick.
func (a *Scheduler) AttachLive(rec *recorder.Recorder, state *sim.ActorState, sessionTick sim.Tick) error {
	if a.live != nil {
		return fmt.Errorf("arena %d: live actor already attached", a.cfg.ID)
	}
	if err := rec.Start(sessionTick); err != nil {
		return err
	}
	state.Arena = a.cfg.ID
	a.live = &liveSlot{state: state, rec: rec}
	return nil
}

// SpawnGhost attaches a sealed timeline to the arena as a new ghost.
// Rejects timelines recorded against a different arena topology
// (ErrTimelineCorrupted) and spawns beyond the ghost capacity
// (ErrCapacityExceeded).
func (a *Scheduler) SpawnGhost(id sim.EntityID, t *sim.Timeline, spawn sim.GridPoint, policy playback.EndPolicy) (*playback.Ghost, error) {
	if t.Topology() != a.cfg.Topology {
		return nil, fmt.Errorf("%w: timeline topology %x does not match arena topology %x",
			sim.ErrTimelineCorrupted, t.Topology(), a.cfg.Topology)
	}
	if a.cfg.MaxGhosts > 0 && len(a.ghosts) >= a.cfg.MaxGhosts {
		return nil, fmt.Errorf("%w: arena %d holds %d ghosts", ErrCapacityExceeded, a.cfg.ID, len(a.ghosts))
	}
	g := playback.NewGhost(id, t.Archetype(), a.cfg.ID, a.cfg.Bounds.Clamp(spawn), policy)
	a.ghosts = append(a.ghosts, &ghostSlot{ghost: g, timeline: t})
	return g, nil
}

// AdvanceTick runs one simulation tick. The caller (session manager) must
// pass its own clock tick; a mismatch with the arena's committed tick is a
// scheduler bug, not bad input, and panics.
func (a *Scheduler) AdvanceTick(sessionTick sim.Tick, input recorder.RawInput) (TickReport, error) {
	if a.tick != sessionTick {
		panic(fmt.Sprintf("arena %d: tick drift (arena %d, session %d)", a.cfg.ID, a.tick, sessionTick))
	}
	if a.state == StatePaused {
		// Stay synchronized with the session clock; run no phases.
		a.tick++
		return TickReport{}, nil
	}

	var report TickReport
	prev := a.positionsBefore()

	// Phase 1: live capture.
	if err := a.captureLive(sessionTick, input, &report); err != nil {
		return TickReport{}, err
	}

	// Phase 2: ghost playback, in creation order.
	if err := a.stepGhosts(&report); err != nil {
		return TickReport{}, err
	}

	// Phase 3: collision resolution with a fixed tie-break.
	report.Deltas = append(report.Deltas, a.resolveCollisions(prev)...)

	// Phase 4: commit. Despawned ghosts leave at the tick boundary.
	a.removeDespawned()
	a.tick++
	return report, nil
}

// captureLive advances the recorder and applies the captured command to
// the live actor with the same interpretation playback uses.
func (a *Scheduler) captureLive(sessionTick sim.Tick, input recorder.RawInput, report *TickReport) error {
	if a.live == nil || a.live.rec.State() != recorder.StateRecording {
		return nil
	}
	if a.live.rec.Done(sessionTick) {
		timeline, err := a.live.rec.Stop()
		if err != nil {
			return err
		}
		report.Sealed = timeline
		return nil
	}
	cmd, err := a.live.rec.Capture(sessionTick, input)
	if err != nil {
		return err
	}
	if cmd == nil {
		return nil
	}
	deltas, err := a.cfg.Engine.Apply(a.live.state, cmd)
	if err != nil {
		return err
	}
	report.Deltas = append(report.Deltas, deltas...)
	for _, d := range deltas {
		if d.Kind == sim.DeltaArena {
			report.Transfers = append(report.Transfers, Transfer{
				Entity: d.Entity, From: d.FromArena, To: d.ToArena,
			})
		}
	}
	return nil
}

// stepGhosts advances every resident ghost by one tick in creation order.
// The ordering is itself an invariant: two ghosts colliding at the same
// tick must resolve identically on every run.
func (a *Scheduler) stepGhosts(report *TickReport) error {
	for _, slot := range a.ghosts {
		if slot.ghost.Despawned {
			continue
		}
		deltas, err := a.cfg.Engine.Step(slot.ghost, slot.timeline)
		if err != nil {
			return err
		}
		report.Deltas = append(report.Deltas, deltas...)
		for _, d := range deltas {
			if d.Kind == sim.DeltaArena {
				report.Transfers = append(report.Transfers, Transfer{
					Entity: d.Entity, From: d.FromArena, To: d.ToArena,
				})
			}
		}
	}
	return nil
}

// positionsBefore snapshots every resident entity's committed position.
func (a *Scheduler) positionsBefore() map[sim.EntityID]sim.GridPoint {
	prev := make(map[sim.EntityID]sim.GridPoint, len(a.ghosts)+1)
	if a.live != nil {
		prev[a.live.state.ID] = a.live.state.Pos
	}
	for _, slot := range a.ghosts {
		prev[slot.ghost.ID] = slot.ghost.Pos
	}
	return prev
}

// resolveCollisions enforces one entity per cell. Entities are considered
// in ascending entity ID: the lower ID keeps a contested cell, later ones
// revert to their pre-tick position. Corrective moves are emitted so the
// delta stream fully describes the committed state.
func (a *Scheduler) resolveCollisions(prev map[sim.EntityID]sim.GridPoint) []sim.StateDelta {
	entities := a.residentStates()

	var deltas []sim.StateDelta
	occupied := make(map[sim.GridPoint]sim.EntityID, len(entities))
	for _, s := range entities {
		if _, taken := occupied[s.Pos]; taken {
			prevPos, ok := prev[s.ID]
			if !ok || prevPos == s.Pos {
				// Entity did not move into the contested cell this
				// tick (it was transferred in, or never moved); leave
				// it be rather than invent a position.
				continue
			}
			deltas = append(deltas, sim.StateDelta{
				Entity: s.ID,
				Tick:   a.tick,
				Kind:   sim.DeltaMove,
				From:   s.Pos,
				To:     prevPos,
			})
			s.Pos = prevPos
			if _, stillTaken := occupied[s.Pos]; !stillTaken {
				occupied[s.Pos] = s.ID
			}
			continue
		}
		occupied[s.Pos] = s.ID
	}
	return deltas
}

// residentStates returns the entities currently owned by this arena in
// ascending entity ID order.
func (a *Scheduler) residentStates() []*sim.ActorState {
	out := make([]*sim.ActorState, 0, len(a.ghosts)+1)
	if a.live != nil && a.live.state.Arena == a.cfg.ID {
		out = append(out, a.live.state)
	}
	for _, slot := range a.ghosts {
		if !slot.ghost.Despawned && slot.ghost.Arena == a.cfg.ID {
			out = append(out, &slot.ghost.ActorState)
		}
	}
	// Creation order already ascends by ID for ghosts, but the live actor
	// may have any ID; insertion sort keeps the order total.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// removeDespawned drops despawned ghosts, preserving creation order of
// the remainder. Their timelines are released with them.
func (a *Scheduler) removeDespawned() {
	kept := a.ghosts[:0]
	for _, slot := range a.ghosts {
		if !slot.ghost.Despawned {
			kept = append(kept, slot)
		}
	}
	a.ghosts = kept
}

// ReleaseGhost detaches a ghost and its timeline for adoption by another
// arena. Returns false if the ghost is not resident.
func (a *Scheduler) ReleaseGhost(id sim.EntityID) (*playback.Ghost, *sim.Timeline, bool) {
	for i, slot := range a.ghosts {
		if slot.ghost.ID == id {
			a.ghosts = append(a.ghosts[:i], a.ghosts[i+1:]...)
			return slot.ghost, slot.timeline, true
		}
	}
	return nil, nil, false
}

// AdoptGhost accepts a ghost released by another arena. Capacity is
// enforced at spawn time only; an in-flight transfer never destroys an
// existing ghost.
func (a *Scheduler) AdoptGhost(g *playback.Ghost, t *sim.Timeline) {
	g.Pos = a.cfg.Bounds.Clamp(g.Pos)
	a.ghosts = append(a.ghosts, &ghostSlot{ghost: g, timeline: t})
}

// ReleaseLive detaches the live slot for adoption by another arena.
func (a *Scheduler) ReleaseLive() (*sim.ActorState, *recorder.Recorder, bool) {
	if a.live == nil {
		return nil, nil, false
	}
	slot := a.live
	a.live = nil
	return slot.state, slot.rec, true
}

// AdoptLive accepts a live slot released by another arena. The recorder
// keeps recording across the transfer; arena membership is state, not a
// timeline boundary.
func (a *Scheduler) AdoptLive(state *sim.ActorState, rec *recorder.Recorder) error {
	if a.live != nil {
		return fmt.Errorf("arena %d: live actor already attached", a.cfg.ID)
	}
	state.Pos = a.cfg.Bounds.Clamp(state.Pos)
	a.live = &liveSlot{state: state, rec: rec}
	return nil
}

// Entities returns deep copies of every resident entity state in entity
// ID order, for snapshots. Never exposes internal state.
func (a *Scheduler) Entities() []sim.ActorState {
	states := a.residentStates()
	out := make([]sim.ActorState, len(states))
	for i, s := range states {
		out[i] = *s
	}
	return out
}

// Ghosts returns deep copies of the resident ghosts in creation order.
func (a *Scheduler) Ghosts() []playback.Ghost {
	out := make([]playback.Ghost, 0, len(a.ghosts))
	for _, slot := range a.ghosts {
		out = append(out, *slot.ghost)
	}
	return out
}
