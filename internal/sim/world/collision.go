package world

import (
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
)

// CollisionBoxes returns the world-space collision boxes of the cell at pos.
// Air, plants and open gates have none.
func (w *World) CollisionBoxes(pos geom.Vec3i) []geom.BBox {
	id := w.BlockAt(pos)
	def, ok := w.catalogs.Blocks.Lookup(id)
	if !ok {
		return nil
	}
	switch def.Category {
	case catalogs.CategoryGate:
		s, ok := w.gates[pos]
		if !ok {
			return nil
		}
		box, ok := gate.CollisionBox(s)
		if !ok {
			return nil
		}
		return []geom.BBox{box.TranslateCell(pos)}
	case catalogs.CategoryWall:
		return []geom.BBox{geom.FullCube().ExtendUp(0.5).TranslateCell(pos)}
	case catalogs.CategorySolid:
		if !def.Solid {
			return nil
		}
		return []geom.BBox{geom.FullCube().TranslateCell(pos)}
	}
	return nil
}
