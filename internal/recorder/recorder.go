// Package recorder captures live per-tick input and converts it into the
// command log entries that later seal into a replayable timeline. A
// recorder is single-use: Idle -> Recording -> Sealed, with no way back.
package recorder

import (
	"errors"
	"fmt"

	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// ErrInvalidState is returned when an operation is called in the wrong
// lifecycle state (for example Capture before Start, or Stop twice).
// These are programming errors and are surfaced immediately, never
// silently ignored.
var ErrInvalidState = errors.New("recorder: invalid state")

// State is the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateSealed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRecording:
		return "Recording"
	case StateSealed:
		return "Sealed"
	default:
		return "Unknown"
	}
}

// RawInput is one tick's worth of raw input from the input collaborator.
// Movement is an analog deflection in units of 1/256 full scale; values
// below the dead-zone threshold produce no command, keeping logs compact.
// Arena ID zero means "no arena change requested".
type RawInput struct {
	MoveX, MoveY int32
	Cast         sim.AbilityID
	CastTarget   *sim.GridPoint
	ChangeArena  sim.ArenaID
}

// FullDeflection is the magnitude of a fully pushed movement axis.
const FullDeflection = 256

// DefaultDeadZone is the default minimum deflection that registers as
// movement.
const DefaultDeadZone = 128

// Config fixes the recording parameters for one recorder instance.
type Config struct {
	Actor     string
	Archetype sim.Archetype
	Duration  sim.Tick // cycle length; the recording auto-completes here
	DeadZone  int32    // minimum axis deflection that counts as movement
	Topology  uint64   // arena topology the recording is bound to
	Arena     sim.ArenaID
}

// Recorder converts raw input into commands on an open log, one command
// per tick. When the same tick yields more than one action, the extra
// actions are queued to following ticks rather than dropped.
type Recorder struct {
	cfg       Config
	state     State
	log       *sim.Log
	startTick sim.Tick // session tick bound as tick zero of this recording
	arena     sim.ArenaID
	pending   []sim.Command // overflow actions awaiting their tick
}

// New creates an idle recorder. A zero dead-zone selects the default.
func New(cfg Config) *Recorder {
	if cfg.DeadZone <= 0 {
		cfg.DeadZone = DefaultDeadZone
	}
	return &Recorder{cfg: cfg, state: StateIdle, arena: cfg.Arena}
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	return r.state
}

// Actor returns the recorded actor's identifier.
func (r *Recorder) Actor() string {
	return r.cfg.Actor
}

// Start opens a fresh command log, binding the given session tick as tick
// zero of this recording. Only valid while Idle.
func (r *Recorder) Start(sessionTick sim.Tick) error {
	if r.state != StateIdle {
		return fmt.Errorf("%w: Start while %s", ErrInvalidState, r.state)
	}
	r.log = sim.NewLog(r.cfg.Actor)
	r.startTick = sessionTick
	r.state = StateRecording
	return nil
}

// Elapsed returns how many ticks of the recording have passed at the given
// session tick.
func (r *Recorder) Elapsed(sessionTick sim.Tick) sim.Tick {
	if r.state == StateIdle || sessionTick < r.startTick {
		return 0
	}
	return sessionTick - r.startTick
}

// Done reports whether the configured cycle duration has elapsed.
func (r *Recorder) Done(sessionTick sim.Tick) bool {
	return r.state == StateRecording && r.Elapsed(sessionTick) >= r.cfg.Duration
}

// Capture converts one tick's raw input into zero or one appended command.
// Queued overflow from earlier ticks is flushed first; a new action
// arriving on a tick already taken is queued to the next tick. Returns the
// command appended this tick, if any.
func (r *Recorder) Capture(sessionTick sim.Tick, in RawInput) (*sim.Command, error) {
	if r.state != StateRecording {
		return nil, fmt.Errorf("%w: Capture while %s", ErrInvalidState, r.state)
	}
	rel := r.Elapsed(sessionTick)
	if rel >= r.cfg.Duration {
		return nil, fmt.Errorf("%w: Capture past cycle end (tick %d of %d)", ErrInvalidState, rel, r.cfg.Duration)
	}

	fresh := r.convert(rel, in)

	var appended *sim.Command
	if len(r.pending) > 0 {
		// Flush the oldest queued action at this tick; fresh actions wait.
		next := r.pending[0]
		r.pending = r.pending[1:]
		next.Tick = rel
		if err := r.log.Append(next); err != nil {
			return nil, err
		}
		appended = &next
		r.pending = append(r.pending, fresh...)
		return appended, nil
	}

	if len(fresh) == 0 {
		return nil, nil
	}
	first := fresh[0]
	if err := r.log.Append(first); err != nil {
		return nil, err
	}
	r.pending = append(r.pending, fresh[1:]...)
	return &first, nil
}

// convert maps raw input to command candidates in priority order: arena
// transitions, then casts, then movement.
func (r *Recorder) convert(tick sim.Tick, in RawInput) []sim.Command {
	var out []sim.Command
	if in.ChangeArena != 0 && in.ChangeArena != r.arena {
		out = append(out, sim.NewChangeArena(tick, r.cfg.Actor, r.arena, in.ChangeArena))
		r.arena = in.ChangeArena
	}
	if in.Cast != 0 {
		out = append(out, sim.NewCast(tick, r.cfg.Actor, in.Cast, in.CastTarget))
	}
	if dir, ok := r.moveDirection(in); ok {
		out = append(out, sim.NewMove(tick, r.cfg.Actor, dir))
	}
	return out
}

// moveDirection resolves analog deflection to a four-way direction using
// the dominant axis, or reports no movement inside the dead-zone.
func (r *Recorder) moveDirection(in RawInput) (sim.Direction, bool) {
	ax, ay := abs32(in.MoveX), abs32(in.MoveY)
	if ax < r.cfg.DeadZone && ay < r.cfg.DeadZone {
		return 0, false
	}
	if ax >= ay {
		if in.MoveX > 0 {
			return sim.DirEast, true
		}
		return sim.DirWest, true
	}
	if in.MoveY > 0 {
		return sim.DirSouth, true
	}
	return sim.DirNorth, true
}

// Stop seals the recording into an immutable timeline. Only valid while
// Recording; a recorder cannot resume after sealing, a new recording
// requires a new instance.
func (r *Recorder) Stop() (*sim.Timeline, error) {
	if r.state != StateRecording {
		return nil, fmt.Errorf("%w: Stop while %s", ErrInvalidState, r.state)
	}
	r.state = StateSealed
	r.pending = nil
	return r.log.Seal(r.cfg.Duration, r.cfg.Archetype, r.cfg.Topology), nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
