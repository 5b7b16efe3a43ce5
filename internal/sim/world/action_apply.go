package world

import (
	"fmt"

	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
)

func (w *World) applyAction(nowTick uint64, act protocol.Action) protocol.ActionResult {
	if err := act.Validate(); err != nil {
		return protocol.Fail(act.ID, protocol.ErrBadRequest, err.Error())
	}
	orient, err := actorOrientation(act)
	if err != nil {
		return protocol.Fail(act.ID, protocol.ErrBadRequest, err.Error())
	}
	pos := geom.FromArray(act.Pos)
	if !w.chunks.InBounds(pos.X, pos.Y, pos.Z) {
		return protocol.Fail(act.ID, protocol.ErrInvalidTarget, "position out of bounds")
	}
	actor := act.Actor
	if actor == "" {
		actor = worldActor
	}

	var res protocol.ActionResult
	switch act.Type {
	case protocol.ActionPlace:
		res = w.placeBlock(nowTick, act.ID, actor, orient, pos, act.Block)
	case protocol.ActionInteract:
		res = w.interact(nowTick, act.ID, actor, orient, pos)
	case protocol.ActionBreak:
		res = w.breakBlock(nowTick, act.ID, actor, pos)
	default:
		res = protocol.Fail(act.ID, protocol.ErrBadRequest, "unknown action type")
	}
	w.drainNeighborUpdates(nowTick)
	return res
}

// actorOrientation resolves the acting entity's horizontal facing. An
// explicit facing wins over yaw; with neither the orientation is unknown.
func actorOrientation(act protocol.Action) (*gate.Actor, error) {
	switch {
	case act.Facing != "":
		f, err := geom.ParseFacing(act.Facing)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", act.ID, err)
		}
		return &gate.Actor{ID: act.Actor, Facing: f}, nil
	case act.Yaw != nil:
		return &gate.Actor{ID: act.Actor, Facing: geom.FacingFromYaw(*act.Yaw)}, nil
	}
	return nil, nil
}

func (w *World) placeBlock(nowTick uint64, id, actor string, orient *gate.Actor, pos geom.Vec3i, name string) protocol.ActionResult {
	bid, ok := w.catalogs.Blocks.Index[name]
	if !ok {
		return protocol.Fail(id, protocol.ErrBadRequest, "unknown block: "+name)
	}
	def := w.catalogs.Blocks.Defs[name]
	if def.Category == catalogs.CategoryAir {
		return protocol.Fail(id, protocol.ErrBadRequest, "use BREAK to clear a cell")
	}
	cur := w.chunks.GetBlock(pos.X, pos.Y, pos.Z)
	switch w.catalogs.Blocks.CategoryOf(cur) {
	case catalogs.CategoryAir, catalogs.CategoryPlant:
	default:
		return protocol.Fail(id, protocol.ErrBlocked, "cell occupied by "+w.blockName(cur))
	}
	if !w.setBlock(nowTick, actor, pos, bid, "PLACE") {
		return protocol.Fail(id, protocol.ErrBlocked, "cell not writable")
	}
	if def.Category == catalogs.CategoryGate {
		_, effs := gate.Place(w, pos, orient, w.cfg.GateDefaultFacing)
		w.applyGateEffects(nowTick, actor, effs)
	}
	return protocol.OK(id)
}

func (w *World) interact(nowTick uint64, id, actor string, orient *gate.Actor, pos geom.Vec3i) protocol.ActionResult {
	if w.CategoryAt(pos) != catalogs.CategoryGate {
		return protocol.Fail(id, protocol.ErrInvalidTarget, "no gate at target")
	}
	s, ok := w.gates[pos]
	if !ok {
		s = w.defaultGate(w, pos)
		w.logger.Printf("gate at %v had no state; using %s", pos, s)
	}
	_, effs := gate.Interact(pos, s, orient)
	w.applyGateEffects(nowTick, actor, effs)
	return protocol.OK(id)
}

func (w *World) breakBlock(nowTick uint64, id, actor string, pos geom.Vec3i) protocol.ActionResult {
	cur := w.chunks.GetBlock(pos.X, pos.Y, pos.Z)
	def, ok := w.catalogs.Blocks.Lookup(cur)
	if !ok || def.Category == catalogs.CategoryAir {
		return protocol.Fail(id, protocol.ErrInvalidTarget, "nothing to break")
	}
	if !def.Breakable {
		return protocol.Fail(id, protocol.ErrBlocked, def.ID+" is not breakable")
	}
	w.setBlock(nowTick, actor, pos, w.air, "BREAK")
	return protocol.OK(id)
}
