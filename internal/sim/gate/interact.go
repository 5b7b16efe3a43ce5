package gate

import "gatecraft.ai/internal/sim/geom"

// Place initialises a freshly placed gate. The gate faces the actor's
// facing when one is known and valid, otherwise fallback.
func Place(q BlockQuery, pos geom.Vec3i, actor *Actor, fallback geom.Facing) (State, []Effect) {
	s := State{Facing: fallback}
	if actor != nil && actor.Facing.Valid() {
		s.Facing = actor.Facing
	}
	s.InWall = InWall(q, pos, s.Facing)
	return s, []Effect{updateBlock(pos, actor.id(), s)}
}

// Interact toggles the gate. When it swings open and the actor is facing
// the gate's back, the gate turns to face the actor's direction so it opens
// away from them. Interaction is never refused.
func Interact(pos geom.Vec3i, s State, actor *Actor) (State, []Effect) {
	s.Open = !s.Open
	if s.Open && actor != nil && actor.Facing == s.Facing.Opposite() {
		s.Facing = actor.Facing
	}
	return s, []Effect{
		updateBlock(pos, actor.id(), s),
		{Kind: EffectPlaySound, Pos: pos, Actor: actor.id(), Sound: SoundDoor},
	}
}
