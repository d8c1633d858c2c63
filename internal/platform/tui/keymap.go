package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// Action represents a session-level control action derived from input.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPause
	ActionCycleFocus
	ActionRecord
	ActionSpawnGhost
)

// KeyMapper translates Bubble Tea key messages to session actions and raw
// simulation input. This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a session control action.
// Returns ActionNone for keys that carry simulation input instead.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) Action {
	switch msg.String() {
	case "ctrl+c", "q":
		return ActionQuit
	case " ", "p":
		return ActionPause
	case "tab":
		return ActionCycleFocus
	case "r":
		return ActionRecord
	case "g":
		return ActionSpawnGhost
	}
	return ActionNone
}

// MapKeyToInput updates a raw input frame based on a key message.
// Returns true if the key carried simulation input.
func (km *KeyMapper) MapKeyToInput(msg tea.KeyMsg, in *recorder.RawInput) bool {
	switch msg.String() {
	case "up", "w", "k":
		in.MoveY = -recorder.FullDeflection
	case "down", "s", "j":
		in.MoveY = recorder.FullDeflection
	case "left", "h":
		in.MoveX = -recorder.FullDeflection
	case "right", "l":
		in.MoveX = recorder.FullDeflection
	case "d":
		in.MoveX = recorder.FullDeflection
	case "a":
		in.MoveX = -recorder.FullDeflection
	case "1", "2", "3", "4", "5", "6", "7", "8":
		in.Cast = sim.AbilityID(msg.String()[0] - '0')
	default:
		return false
	}
	return true
}
