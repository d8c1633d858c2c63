package sim

import "errors"

// Sentinel errors surfaced by command logs, timelines and the codec.
// They are returned to the immediate caller and never swallowed; corrupted
// data is rejected, not repaired.
var (
	// ErrOutOfOrder is returned when a command's tick is not strictly
	// greater than the last appended tick (one command per tick per actor).
	ErrOutOfOrder = errors.New("sim: command tick out of order")

	// ErrLogSealed is returned when appending to a log that has already
	// been sealed into a timeline.
	ErrLogSealed = errors.New("sim: command log is sealed")

	// ErrTimelineCorrupted is returned when a decoded timeline's
	// fingerprint does not match its contents, or when a timeline is
	// attached to a session with an incompatible arena topology.
	ErrTimelineCorrupted = errors.New("sim: timeline corrupted")

	// ErrUnsupportedVersion is returned when decoding a timeline written
	// by a newer codec version.
	ErrUnsupportedVersion = errors.New("sim: unsupported timeline version")
)
