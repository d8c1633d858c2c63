package sim

// ActorState is the logical simulation state every entity carries, whether
// it is driven by live input or by timeline playback. Interpretation of
// commands against this state is identical for both, which is what makes a
// replayed ghost reproduce the live actor's effect exactly.
type ActorState struct {
	ID        EntityID
	Actor     string
	Archetype Archetype
	Arena     ArenaID
	Pos       GridPoint
	Facing    Direction

	// Cooldowns holds, per ability slot, the first tick the ability is
	// ready again. A fixed-size array keeps state free of map iteration
	// order, so digests and replays always observe it identically.
	Cooldowns [MaxAbilities]Tick
}

// AbilityReady reports whether the ability is off cooldown at the tick.
func (s *ActorState) AbilityReady(ability AbilityID, at Tick) bool {
	return at >= s.Cooldowns[int(ability)%MaxAbilities]
}
