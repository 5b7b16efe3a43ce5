package world

import (
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
)

// CategoryAt implements gate.BlockQuery. Cells in chunks that were never
// loaded, and cells outside the world bounds, read as air.
func (w *World) CategoryAt(pos geom.Vec3i) catalogs.Category {
	id, _ := w.chunks.PeekBlock(pos.X, pos.Y, pos.Z)
	return w.catalogs.Blocks.CategoryOf(id)
}

// BlockAt returns the palette id stored at pos.
func (w *World) BlockAt(pos geom.Vec3i) uint16 {
	id, _ := w.chunks.PeekBlock(pos.X, pos.Y, pos.Z)
	return id
}

func (w *World) blockName(id uint16) string {
	if int(id) < len(w.catalogs.Blocks.Palette) {
		return w.catalogs.Blocks.Palette[id]
	}
	return ""
}

// GateAt returns the gate state stored at pos. The second result is false
// when the cell does not hold a gate.
func (w *World) GateAt(pos geom.Vec3i) (gate.State, bool) {
	if w.CategoryAt(pos) != catalogs.CategoryGate {
		return gate.State{}, false
	}
	s, ok := w.gates[pos]
	return s, ok
}

// GateCount reports how many gate cells the world tracks.
func (w *World) GateCount() int { return len(w.gates) }

// setBlock replaces the block id at pos and queues the six neighbours for
// an update. Gate state for pos is dropped when the old block was a gate.
func (w *World) setBlock(nowTick uint64, actor string, pos geom.Vec3i, to uint16, reason string) bool {
	from := w.chunks.GetBlock(pos.X, pos.Y, pos.Z)
	if from == to {
		return false
	}
	if !w.chunks.SetBlock(pos.X, pos.Y, pos.Z, to) {
		return false
	}
	if w.catalogs.Blocks.CategoryOf(from) == catalogs.CategoryGate {
		delete(w.gates, pos)
	}
	w.auditSetBlock(nowTick, actor, pos, from, to, reason)
	w.events = append(w.events, Event{
		Type:  EventBlockSet,
		Pos:   pos.ToArray(),
		Actor: actor,
		Block: w.blockName(to),
	})
	for _, n := range pos.Neighbors() {
		w.neighborQueue = append(w.neighborQueue, n)
	}
	return true
}

// drainNeighborUpdates delivers queued notifications in FIFO order. Gates
// only change metadata here, so no further notifications are queued.
func (w *World) drainNeighborUpdates(nowTick uint64) {
	for i := 0; i < len(w.neighborQueue); i++ {
		p := w.neighborQueue[i]
		id, loaded := w.chunks.PeekBlock(p.X, p.Y, p.Z)
		if !loaded || w.catalogs.Blocks.CategoryOf(id) != catalogs.CategoryGate {
			continue
		}
		s, ok := w.gates[p]
		if !ok {
			continue
		}
		_, effs := gate.OnNeighborChanged(w, p, s)
		w.applyGateEffects(nowTick, worldActor, effs)
	}
	w.neighborQueue = w.neighborQueue[:0]
}
