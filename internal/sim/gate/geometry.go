package gate

import "gatecraft.ai/internal/sim/geom"

const (
	// Extra collision height above the cell so entities cannot jump a gate.
	collisionExtraHeight = 0.5
	collisionThickness   = 6.0 / 16
)

// CollisionBox returns the block-local collision box of a gate. An open
// gate has no collision and reports false.
func CollisionBox(s State) (geom.BBox, bool) {
	if s.Open {
		return geom.BBox{}, false
	}
	return geom.FullCube().
		ExtendUp(collisionExtraHeight).
		Squash(s.Facing.Axis().Perpendicular(), collisionThickness), true
}
