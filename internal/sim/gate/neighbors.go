package gate

import (
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/geom"
)

// InWall reports whether either cell beside the gate (facing rotated left
// or right) holds a wall. Diagonals are not considered.
func InWall(q BlockQuery, pos geom.Vec3i, facing geom.Facing) bool {
	return q.CategoryAt(pos.Side(facing.RotateLeft())) == catalogs.CategoryWall ||
		q.CategoryAt(pos.Side(facing.RotateRight())) == catalogs.CategoryWall
}

// OnNeighborChanged recomputes the in-wall flag after an adjacent cell
// changed. An update effect is returned only when the flag flipped.
func OnNeighborChanged(q BlockQuery, pos geom.Vec3i, s State) (State, []Effect) {
	inWall := InWall(q, pos, s.Facing)
	if inWall == s.InWall {
		return s, nil
	}
	s.InWall = inWall
	return s, []Effect{updateBlock(pos, "", s)}
}
