package sim

import "fmt"

// CommandKind discriminates the closed set of command variants. The set is
// finite and exhaustively handled in the playback engine; adding a kind
// means touching every switch over CommandKind.
type CommandKind uint8

const (
	// KindMove displaces the actor one grid unit in a direction.
	KindMove CommandKind = iota + 1
	// KindCast triggers an ability, optionally aimed at a grid cell.
	KindCast
	// KindChangeArena re-parents the actor from one arena to another.
	KindChangeArena
)

// String returns a human-readable name for the command kind.
func (k CommandKind) String() string {
	switch k {
	case KindMove:
		return "Move"
	case KindCast:
		return "Cast"
	case KindChangeArena:
		return "ChangeArena"
	default:
		return "Unknown"
	}
}

// MoveCommand carries the movement direction for one step.
type MoveCommand struct {
	Dir Direction
}

// CastCommand identifies the ability to trigger and an optional target cell.
type CastCommand struct {
	Ability AbilityID
	Target  *GridPoint // nil for self-cast / untargeted abilities
}

// ChangeArenaCommand moves the actor's arena membership. From is recorded
// for validation; replaying the command in an arena other than From is a
// scheduler bug.
type ChangeArenaCommand struct {
	From, To ArenaID
}

// Command is one discrete, atomic actor action, immutable once created.
// It is a tagged union: Kind selects exactly one non-nil payload.
type Command struct {
	Tick  Tick
	Actor string
	Kind  CommandKind

	Move        *MoveCommand
	Cast        *CastCommand
	ChangeArena *ChangeArenaCommand
}

// NewMove creates a move command issued at the given tick.
func NewMove(tick Tick, actor string, dir Direction) Command {
	return Command{Tick: tick, Actor: actor, Kind: KindMove, Move: &MoveCommand{Dir: dir}}
}

// NewCast creates a cast command. Target may be nil for untargeted casts.
func NewCast(tick Tick, actor string, ability AbilityID, target *GridPoint) Command {
	var t *GridPoint
	if target != nil {
		copied := *target
		t = &copied
	}
	return Command{Tick: tick, Actor: actor, Kind: KindCast, Cast: &CastCommand{Ability: ability, Target: t}}
}

// NewChangeArena creates an arena transition command.
func NewChangeArena(tick Tick, actor string, from, to ArenaID) Command {
	return Command{Tick: tick, Actor: actor, Kind: KindChangeArena, ChangeArena: &ChangeArenaCommand{From: from, To: to}}
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	switch c.Kind {
	case KindMove:
		return fmt.Sprintf("Move(%s)@%d", c.Move.Dir, c.Tick)
	case KindCast:
		if c.Cast.Target != nil {
			return fmt.Sprintf("Cast(%d,%d:%d)@%d", c.Cast.Ability, c.Cast.Target.X, c.Cast.Target.Y, c.Tick)
		}
		return fmt.Sprintf("Cast(%d)@%d", c.Cast.Ability, c.Tick)
	case KindChangeArena:
		return fmt.Sprintf("ChangeArena(%d->%d)@%d", c.ChangeArena.From, c.ChangeArena.To, c.Tick)
	default:
		return fmt.Sprintf("Unknown@%d", c.Tick)
	}
}

// Equal reports whether two commands are identical, payload included.
func (c Command) Equal(other Command) bool {
	if c.Tick != other.Tick || c.Actor != other.Actor || c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case KindMove:
		return c.Move.Dir == other.Move.Dir
	case KindCast:
		if c.Cast.Ability != other.Cast.Ability {
			return false
		}
		if (c.Cast.Target == nil) != (other.Cast.Target == nil) {
			return false
		}
		return c.Cast.Target == nil || *c.Cast.Target == *other.Cast.Target
	case KindChangeArena:
		return *c.ChangeArena == *other.ChangeArena
	}
	return false
}
