// Package sim provides the fundamental types of the record/replay core:
// ticks, grid geometry, commands, command logs, sealed timelines and state
// deltas. It contains no external dependencies (especially no Bubble Tea)
// so the simulation stays pure, deterministic and testable.
//
// All arithmetic in this package is integer arithmetic. Floating point is
// reserved for the presentation layer (interpolation alpha, rendering) and
// never feeds back into simulation state.
package sim

// Tick counts fixed-size simulation steps since an epoch specific to one
// timeline. It is the sole authoritative unit of time: ordering and
// synchronization never depend on wall-clock timestamps.
type Tick uint64

// EntityID identifies a runtime entity (live actor or ghost) within a
// session. IDs are assigned in spawn order and never reused, which makes
// "lower ID wins" a stable collision tie-break across replays.
type EntityID uint32

// ArenaID identifies one bounded arena within a session.
type ArenaID uint16

// AbilityID identifies one castable ability. Zero means "no ability".
type AbilityID uint16

// MaxAbilities bounds the per-entity cooldown table. A fixed-size array
// keeps ghost state free of map iteration order, so two replays always
// observe cooldowns identically.
const MaxAbilities = 8

// Archetype names the actor class a timeline was recorded as.
type Archetype string

// GridPoint is an integer cell coordinate inside an arena.
type GridPoint struct {
	X, Y int32
}

// Add returns the point displaced by (dx, dy).
func (p GridPoint) Add(dx, dy int32) GridPoint {
	return GridPoint{X: p.X + dx, Y: p.Y + dy}
}

// GridRect is an arena's playable bounds: cells with 0 <= X < W, 0 <= Y < H.
type GridRect struct {
	W, H int32
}

// Contains reports whether the point lies inside the bounds.
func (r GridRect) Contains(p GridPoint) bool {
	return p.X >= 0 && p.X < r.W && p.Y >= 0 && p.Y < r.H
}

// Clamp restricts a point to the bounds, moving it to the nearest edge cell.
func (r GridRect) Clamp(p GridPoint) GridPoint {
	if p.X < 0 {
		p.X = 0
	}
	if p.X >= r.W {
		p.X = r.W - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y >= r.H {
		p.Y = r.H - 1
	}
	return p
}

// Direction is a four-way movement direction.
type Direction uint8

const (
	DirNorth Direction = iota
	DirEast
	DirSouth
	DirWest
)

// Delta returns the unit cell displacement for the direction.
// North decreases Y (grid origin is the top-left corner, like a screen).
func (d Direction) Delta() (dx, dy int32) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirEast:
		return 1, 0
	case DirSouth:
		return 0, 1
	case DirWest:
		return -1, 0
	}
	return 0, 0
}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "north"
	case DirEast:
		return "east"
	case DirSouth:
		return "south"
	case DirWest:
		return "west"
	default:
		return "unknown"
	}
}

// ParseDirection converts a direction name to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "north", "up":
		return DirNorth, true
	case "east", "right":
		return DirEast, true
	case "south", "down":
		return DirSouth, true
	case "west", "left":
		return DirWest, true
	}
	return 0, false
}
